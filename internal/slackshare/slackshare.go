// Package slackshare posts generated incident artifacts to Slack. It
// uses the external-upload flow (get upload URL, post bytes, complete
// and share) via the Slack SDK.
package slackshare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

type fileUploader interface {
	conversationLister
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// Uploader shares files to Slack channels.
type Uploader struct {
	api      fileUploader
	resolver *ChannelResolver
	log      *logrus.Logger
}

// New builds an Uploader from a bot token. The token is required.
func New(botToken string, log *logrus.Logger) (*Uploader, error) {
	if botToken == "" {
		return nil, errors.New("Slack bot token not found, set SLACK_BOT_AUTH")
	}
	api := slack.New(botToken)
	return &Uploader{
		api:      api,
		resolver: NewChannelResolver(api, log),
		log:      log,
	}, nil
}

// newWithAPI wires a fake API for tests.
func newWithAPI(api fileUploader, log *logrus.Logger) *Uploader {
	return &Uploader{api: api, resolver: NewChannelResolver(api, log), log: log}
}

// UploadResult is the JSON-serializable outcome of an upload.
type UploadResult struct {
	UploadSuccess bool   `json:"upload_success"`
	FileID        string `json:"file_id,omitempty"`
	Title         string `json:"title,omitempty"`
	Channel       string `json:"channel,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ShareFile uploads the file at path and shares it to the channel with
// an optional comment. An empty channel uploads privately to the bot.
func (u *Uploader) ShareFile(ctx context.Context, path, channel, title, comment string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	channelID := ""
	if channel != "" {
		channelID, err = u.resolver.Resolve(ctx, channel)
		if err != nil {
			return nil, err
		}
	}

	params := slack.UploadFileV2Parameters{
		Reader:   f,
		FileSize: int(stat.Size()),
		Filename: filepath.Base(path),
		Title:    title,
		Channel:  channelID,
	}
	if comment != "" {
		params.InitialComment = comment
	}

	summary, err := u.api.UploadFileV2Context(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to Slack: %w", filepath.Base(path), err)
	}

	u.log.Infof("uploaded %s to Slack (file %s)", filepath.Base(path), summary.ID)
	return &UploadResult{
		UploadSuccess: true,
		FileID:        summary.ID,
		Title:         summary.Title,
		Channel:       channelID,
	}, nil
}
