// Package githubfix opens fix pull requests for incidents: it creates
// a branch from the base branch, commits the generated file changes
// and opens a PR whose description carries the root cause analysis.
package githubfix

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v58/github"
	"github.com/sirupsen/logrus"
)

var repoURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	Token      string
	MaxRetries int
	RetryDelay time.Duration
	Budget     time.Duration
	BaseURL    string
	HTTPClient *http.Client
	Log        *logrus.Logger
}

// Client talks to the GitHub API with a transport-level retry policy
// and a wall-clock budget per operation.
type Client struct {
	gh     *github.Client
	log    *logrus.Logger
	budget time.Duration
}

// New builds a Client. The token is required; operations fail fast
// rather than burn API calls with invalid credentials.
func New(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, errors.New("GitHub authentication token not found, set GITHUB_API_KEY")
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Budget == 0 {
		opts.Budget = 3 * time.Minute
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *httpClient
	wrapped.Transport = &retryTransport{
		base:       base,
		maxRetries: opts.MaxRetries,
		delay:      opts.RetryDelay,
		log:        opts.Log,
	}

	gh := github.NewClient(&wrapped).WithAuthToken(opts.Token)
	if opts.BaseURL != "" {
		parsed, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", opts.BaseURL, err)
		}
		if !strings.HasSuffix(parsed.Path, "/") {
			parsed.Path += "/"
		}
		gh.BaseURL = parsed
	}

	return &Client{gh: gh, log: opts.Log, budget: opts.Budget}, nil
}

// retryTransport retries network-level failures with a fixed delay.
// Responses with error status codes are API verdicts and pass through
// without retry.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	delay      time.Duration
	log        *logrus.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			t.log.Warnf("retrying %s %s (attempt %d/%d): %v",
				req.Method, req.URL.Path, attempt, t.maxRetries, lastErr)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(t.delay):
			}
		}
		resp, err := t.base.RoundTrip(req)
		if err == nil {
			return resp, nil
		}
		if req.Context().Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ParseRepoURL splits a GitHub repository URL into owner and repo.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(repoURL))
	if m == nil {
		return "", "", fmt.Errorf("invalid GitHub repository URL %q, expected https://github.com/owner/repo", repoURL)
	}
	return m[1], m[2], nil
}

// PullRequestResult is the JSON-serializable outcome of CreateFixPR.
type PullRequestResult struct {
	Success              bool     `json:"success"`
	PRURL                string   `json:"pr_url,omitempty"`
	PRNumber             int      `json:"pr_number,omitempty"`
	BranchName           string   `json:"branch_name,omitempty"`
	BaseBranch           string   `json:"base_branch,omitempty"`
	Repository           string   `json:"repository,omitempty"`
	CommittedFiles       []string `json:"committed_files,omitempty"`
	Message              string   `json:"message,omitempty"`
	ExecutionTimeSeconds float64  `json:"execution_time_seconds"`
	Error                string   `json:"error,omitempty"`
}

// CreateFixPR creates a branch off baseBranch, commits every entry of
// changes (path to full new content) and opens a pull request. The
// whole flow shares one wall-clock budget.
func (c *Client) CreateFixPR(ctx context.Context, repoURL, title, description string, changes map[string]string, baseBranch string) (*PullRequestResult, error) {
	start := time.Now()
	if baseBranch == "" {
		baseBranch = "main"
	}
	if len(changes) == 0 {
		return nil, errors.New("no file changes provided")
	}

	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	// Validate credentials before touching the repository.
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, c.classify("token validation", err)
	}
	c.log.Debugf("authenticated as GitHub user %s", user.GetLogin())

	if _, _, err := c.gh.Repositories.Get(ctx, owner, repo); err != nil {
		return nil, c.classify(fmt.Sprintf("repository access %s/%s", owner, repo), err)
	}

	branch := BranchName(title, time.Now())

	baseRef, _, err := c.gh.Git.GetRef(ctx, owner, repo, "heads/"+baseBranch)
	if err != nil {
		return nil, c.classify(fmt.Sprintf("base branch %q lookup", baseBranch), err)
	}

	newRef := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: baseRef.Object.SHA},
	}
	if _, _, err := c.gh.Git.CreateRef(ctx, owner, repo, newRef); err != nil {
		return nil, c.classify(fmt.Sprintf("branch %q creation", branch), err)
	}
	c.log.Infof("created branch %s in %s/%s", branch, owner, repo)

	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	committed := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := c.commitFile(ctx, owner, repo, branch, path, changes[path]); err != nil {
			return nil, err
		}
		committed = append(committed, path)
	}

	body := description + "\n\n**Files Modified:**\n"
	for _, path := range committed {
		body += "- " + path + "\n"
	}

	pr, _, err := c.gh.PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title:               github.String(title),
		Head:                github.String(branch),
		Base:                github.String(baseBranch),
		Body:                github.String(body),
		MaintainerCanModify: github.Bool(true),
	})
	if err != nil {
		return nil, c.classify("pull request creation", err)
	}

	c.log.Infof("created PR #%d: %s", pr.GetNumber(), pr.GetHTMLURL())
	return &PullRequestResult{
		Success:              true,
		PRURL:                pr.GetHTMLURL(),
		PRNumber:             pr.GetNumber(),
		BranchName:           branch,
		BaseBranch:           baseBranch,
		Repository:           owner + "/" + repo,
		CommittedFiles:       committed,
		Message:              fmt.Sprintf("Successfully created PR #%d: %s", pr.GetNumber(), title),
		ExecutionTimeSeconds: time.Since(start).Seconds(),
	}, nil
}

// commitFile creates or updates one file on the branch.
func (c *Client) commitFile(ctx context.Context, owner, repo, branch, path, content string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Update " + path),
		Content: []byte(content),
		Branch:  github.String(branch),
	}

	existing, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path,
		&github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		_, _, err = c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	case isNotFound(err):
		_, _, err = c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	default:
		return c.classify(fmt.Sprintf("file %q lookup", path), err)
	}

	if err != nil {
		return c.classify(fmt.Sprintf("file %q commit", path), err)
	}
	c.log.Debugf("committed %s to %s", path, branch)
	return nil
}

// ListTree lists every blob path in the repository at the given ref.
func (c *Client) ListTree(ctx context.Context, repoURL, ref string) ([]string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref = "main"
	}

	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, c.classify("tree listing", err)
	}

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}
	return paths, nil
}

// GetFileContent fetches and decodes one file at the given ref.
func (c *Client) GetFileContent(ctx context.Context, repoURL, path, ref string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return "", c.classify(fmt.Sprintf("file %q retrieval", path), err)
	}
	if file == nil {
		return "", &RejectionError{Op: fmt.Sprintf("file %q retrieval", path), StatusCode: http.StatusNotFound, Message: "path is a directory"}
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return content, nil
}

// classify maps raw client errors onto the package error taxonomy.
func (c *Client) classify(op string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		status := 0
		if ghErr.Response != nil {
			status = ghErr.Response.StatusCode
		}
		return &RejectionError{Op: op, StatusCode: status, Message: ghErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &BudgetExceededError{Budget: c.budget}
	}
	return &TransportError{Op: op, Err: err}
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
