package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// TimelineEvent is one entry in the merged incident timeline.
type TimelineEvent struct {
	Timestamp   string `json:"timestamp"`
	Event       string `json:"event"`
	Description string `json:"description"`
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`
}

// buildTimeline merges lifecycle, pull request and documentation events
// into a single chronological list. Events without a timestamp are
// dropped. Timestamps use ISO 8601, so a lexical sort is chronological.
func buildTimeline(incident IncidentData, pr *PRDetails, doc *DocDetails) []TimelineEvent {
	events := []TimelineEvent{}

	add := func(timestamp, event, description, source, url string) {
		if timestamp == "" {
			return
		}
		events = append(events, TimelineEvent{
			Timestamp:   timestamp,
			Event:       event,
			Description: description,
			Source:      source,
			URL:         url,
		})
	}

	add(incident.CreatedAt, "Incident Created",
		fmt.Sprintf("Incident %s was created", orDefault(incident.IncidentID, "N/A")),
		"incident_management", "")
	add(incident.FirstResponseAt, "First Response",
		"Team began responding to the incident", "incident_management", "")

	if pr != nil {
		add(pr.CreatedAt, "Fix PR Created",
			fmt.Sprintf("Pull request created: %s", orDefault(pr.Title, "N/A")),
			"github", pr.HTMLURL)
		add(pr.MergedAt, "Fix PR Merged",
			"Fix was merged into the codebase", "github", pr.HTMLURL)
	}

	if doc != nil {
		add(doc.CreatedAt, "Documentation Created",
			fmt.Sprintf("Incident documentation created: %s", orDefault(doc.Title, "N/A")),
			"documentation", doc.URL)
	}

	add(incident.ResolvedAt, "Incident Resolved",
		"Incident was marked as resolved", "incident_management", "")

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	return events
}

// TextEvent is one parsed line of a free-form incident timeline.
type TextEvent struct {
	Time        string `json:"time"`
	Description string `json:"event"`
	Action      string `json:"action"`
	RawLine     string `json:"raw_line"`
}

var timeMarkerPattern = regexp.MustCompile(`(\d{1,2}:\d{2}|\d{4}-\d{2}-\d{2}|\w+\s+\d{1,2})`)

// ParseTimelineText splits a free-form timeline string, as stored on
// incident records, into discrete events. Lines shaped
// "<time> - <event>" keep their marker; other lines get time "Unknown".
func ParseTimelineText(timeline string) []TextEvent {
	events := []TextEvent{}
	for _, line := range strings.Split(timeline, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		event := TextEvent{Time: "Unknown", Description: line, RawLine: line}
		if idx := strings.Index(line, " - "); idx > 0 {
			marker := strings.TrimSpace(line[:idx])
			if timeMarkerPattern.MatchString(marker) {
				event.Time = marker
				event.Description = strings.TrimSpace(line[idx+3:])
			}
		}
		event.Action = classifyAction(event.Description)
		events = append(events, event)
	}
	return events
}

// classifyAction buckets a timeline entry by its response phase.
func classifyAction(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "resolv") || strings.Contains(lower, "fixed") || strings.Contains(lower, "restored"):
		return "Resolved"
	case strings.Contains(lower, "start") || strings.Contains(lower, "detect") || strings.Contains(lower, "alert"):
		return "Started"
	case strings.Contains(lower, "investigat") || strings.Contains(lower, "analyz") || strings.Contains(lower, "diagnos"):
		return "Investigating"
	default:
		return "Ongoing"
	}
}

// TimelineQuality grades a free-form timeline by how much it captured.
func TimelineQuality(events []TextEvent) string {
	if len(events) >= 3 {
		return "Good"
	}
	return "Limited"
}
