package report

import (
	"math"
	"strings"
	"time"
)

// Metrics are the quantitative outcomes of one incident. Duration and
// response metrics are nil when the timestamps needed to compute them
// are missing or unparseable.
type Metrics struct {
	TotalIncidentDurationMinutes *int     `json:"total_incident_duration_minutes,omitempty"`
	TotalIncidentDurationHours   *float64 `json:"total_incident_duration_hours,omitempty"`
	FirstResponseTimeMinutes     *int     `json:"first_response_time_minutes,omitempty"`
	ResolutionMethod             string   `json:"resolution_method"`
	AffectedSystems              int      `json:"affected_systems"`
	AffectedUsers                int      `json:"affected_users"`
	TeamMembersInvolved          *int     `json:"team_members_involved,omitempty"`
}

// timestampLayouts are tried in order when parsing incident timestamps.
// Sources mix RFC 3339, space-separated and zone-less forms.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
}

// parseTimestamp parses a timestamp in any of the accepted layouts.
func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func calculateMetrics(incident IncidentData, pr *PRDetails, doc *DocDetails, chat *ChatDetails) Metrics {
	metrics := Metrics{
		ResolutionMethod: resolutionMethod(incident, pr, doc),
		AffectedSystems:  len(incident.AffectedSystems),
		AffectedUsers:    incident.AffectedUsersCount,
	}

	created, createdOK := parseTimestamp(incident.CreatedAt)
	if resolved, ok := parseTimestamp(incident.ResolvedAt); ok && createdOK {
		duration := resolved.Sub(created)
		minutes := int(duration.Minutes())
		hours := math.Round(duration.Hours()*100) / 100
		metrics.TotalIncidentDurationMinutes = &minutes
		metrics.TotalIncidentDurationHours = &hours
	}

	if firstResponse, ok := parseTimestamp(incident.FirstResponseAt); ok && createdOK {
		minutes := int(firstResponse.Sub(created).Minutes())
		metrics.FirstResponseTimeMinutes = &minutes
	}

	if chat != nil {
		involved := len(uniqueStrings(chat.Participants))
		metrics.TeamMembersInvolved = &involved
	}

	return metrics
}

// resolutionMethod names how the incident was fixed, comma-joining all
// methods that apply.
func resolutionMethod(incident IncidentData, pr *PRDetails, doc *DocDetails) string {
	var methods []string
	if pr != nil && pr.MergedAt != "" {
		methods = append(methods, "Code Fix")
	}
	if len(incident.ManualSteps) > 0 {
		methods = append(methods, "Manual Intervention")
	}
	if len(incident.ConfigurationChanges) > 0 {
		methods = append(methods, "Configuration Change")
	}
	if doc != nil {
		methods = append(methods, "Documentation Update")
	}
	if len(methods) == 0 {
		return "Unknown"
	}
	return strings.Join(methods, ", ")
}
