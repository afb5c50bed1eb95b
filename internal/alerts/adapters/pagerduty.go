package adapters

import (
	"github.com/opsmindai/opsmind/internal/alerts"
)

// PagerDutyAdapter handles PagerDuty webhook payloads. The first
// message's incident carries the fields of interest.
type PagerDutyAdapter struct {
	alerts.BaseAdapter
}

// NewPagerDutyAdapter creates a new PagerDuty adapter
func NewPagerDutyAdapter() *PagerDutyAdapter {
	return &PagerDutyAdapter{
		BaseAdapter: alerts.BaseAdapter{Source: "pagerduty"},
	}
}

// Parse extracts alert fields from a PagerDuty webhook payload
func (a *PagerDutyAdapter) Parse(payload map[string]any) alerts.NormalizedAlert {
	n := alerts.NormalizedAlert{
		ServiceName: "pagerduty-alert",
		AlertType:   "unknown",
	}

	if messages, ok := payload["messages"].([]any); ok && len(messages) > 0 {
		if msg, ok := messages[0].(map[string]any); ok {
			incident, _ := msg["incident"].(map[string]any)
			if incident != nil {
				if name := alerts.ExtractString(incident, "service.name"); name != "" {
					n.ServiceName = name
				}
				if key := alerts.ExtractString(incident, "incident_key"); key != "" {
					n.AlertType = key
				} else {
					n.AlertType = "incident"
				}
				n.Timestamp = alerts.ExtractString(incident, "created_at")
				n.RawMessage = alerts.ExtractString(incident, "summary")

				status := alerts.ExtractString(incident, "status")
				n.ThresholdBreached = status == "triggered" || status == "acknowledged"
			}
		}
	}

	// PagerDuty payloads carry no metric values
	n.MetricValue = 0

	return n
}
