package slackshare

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// ChannelResolver resolves channel names to IDs, caching results for
// the lifetime of the resolver.
type ChannelResolver struct {
	api   conversationLister
	log   *logrus.Logger
	mu    sync.RWMutex
	cache map[string]string
}

type conversationLister interface {
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

func NewChannelResolver(api conversationLister, log *logrus.Logger) *ChannelResolver {
	return &ChannelResolver{
		api:   api,
		log:   log,
		cache: make(map[string]string),
	}
}

// Resolve turns a channel name ("#incidents" or "incidents") or a raw
// channel ID into a channel ID.
func (r *ChannelResolver) Resolve(ctx context.Context, nameOrID string) (string, error) {
	if nameOrID == "" {
		return "", fmt.Errorf("channel name/ID is empty")
	}
	if isChannelID(nameOrID) {
		return nameOrID, nil
	}

	name := strings.TrimPrefix(nameOrID, "#")

	r.mu.RLock()
	if id, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return id, nil
	}
	r.mu.RUnlock()

	id, err := r.lookup(ctx, name)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[name] = id
	r.mu.Unlock()

	r.log.Debugf("resolved channel %q to %s", name, id)
	return id, nil
}

// lookup searches public channels first, then private ones.
func (r *ChannelResolver) lookup(ctx context.Context, name string) (string, error) {
	for _, types := range [][]string{{"public_channel"}, {"private_channel"}} {
		channels, _, err := r.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           1000,
			Types:           types,
		})
		if err != nil {
			if types[0] == "private_channel" {
				r.log.Warnf("failed to list private channels: %v", err)
				break
			}
			return "", fmt.Errorf("failed to list channels: %w", err)
		}
		for _, channel := range channels {
			if channel.Name == name {
				return channel.ID, nil
			}
		}
	}
	return "", fmt.Errorf("channel %q not found", name)
}

// ClearCache drops all cached resolutions.
func (r *ChannelResolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]string)
}

// isChannelID reports whether s looks like a Slack channel ID: a "C"
// followed by 8 to 14 uppercase alphanumerics.
func isChannelID(s string) bool {
	if len(s) < 9 || len(s) > 15 {
		return false
	}
	if !strings.HasPrefix(s, "C") {
		return false
	}
	for _, c := range s[1:] {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
