package githubfix

import (
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// BranchName derives a fix branch name from the PR title:
// "<slug>-<YYYYMMDD-HHMMSS>" with the slug capped at 20 characters.
func BranchName(prTitle string, now time.Time) string {
	slug := strings.ToLower(prTitle)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = repeatedHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 20 {
		slug = strings.TrimRight(slug[:20], "-")
	}
	return slug + "-" + now.Format("20060102-150405")
}
