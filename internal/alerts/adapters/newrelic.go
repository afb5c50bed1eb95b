package adapters

import (
	"github.com/opsmindai/opsmind/internal/alerts"
)

// NewRelicAdapter handles New Relic alert webhook payloads
type NewRelicAdapter struct {
	alerts.BaseAdapter
}

// NewNewRelicAdapter creates a new New Relic adapter
func NewNewRelicAdapter() *NewRelicAdapter {
	return &NewRelicAdapter{
		BaseAdapter: alerts.BaseAdapter{Source: "newrelic"},
	}
}

// Parse extracts alert fields from a New Relic webhook payload
func (a *NewRelicAdapter) Parse(payload map[string]any) alerts.NormalizedAlert {
	n := alerts.NormalizedAlert{}

	n.ServiceName = alerts.ExtractString(payload, "application_name")
	if n.ServiceName == "" {
		n.ServiceName = alerts.ExtractString(payload, "account_name")
	}
	if n.ServiceName == "" {
		n.ServiceName = "newrelic-alert"
	}

	n.AlertType = alerts.ExtractString(payload, "condition_name")
	if n.AlertType == "" {
		n.AlertType = "unknown"
	}

	n.Timestamp = alerts.ExtractString(payload, "timestamp")
	n.RawMessage = alerts.ExtractString(payload, "details")

	state := alerts.ExtractString(payload, "current_state")
	n.ThresholdBreached = state == "open" || state == "acknowledged"

	if v, ok := alerts.ExtractFloat(payload, "metric_value_function"); ok {
		n.MetricValue = v
	}

	return n
}
