package adapters

import (
	"github.com/opsmindai/opsmind/internal/alerts"
)

// DatadogAdapter handles Datadog monitor webhook payloads
type DatadogAdapter struct {
	alerts.BaseAdapter
}

// NewDatadogAdapter creates a new Datadog adapter
func NewDatadogAdapter() *DatadogAdapter {
	return &DatadogAdapter{
		BaseAdapter: alerts.BaseAdapter{Source: "datadog"},
	}
}

// Parse extracts alert fields from a Datadog webhook payload
func (a *DatadogAdapter) Parse(payload map[string]any) alerts.NormalizedAlert {
	n := alerts.NormalizedAlert{}

	n.ServiceName = alerts.ExtractString(payload, "host")
	if n.ServiceName == "" {
		n.ServiceName = alerts.ExtractString(payload, "tags.service")
	}
	if n.ServiceName == "" {
		n.ServiceName = "datadog-alert"
	}

	n.AlertType = alerts.ExtractString(payload, "alert_type")
	if n.AlertType == "" {
		n.AlertType = "unknown"
	}

	n.Timestamp = alerts.ExtractString(payload, "date")
	n.RawMessage = alerts.ExtractString(payload, "body")

	transition := alerts.ExtractString(payload, "alert_transition")
	n.ThresholdBreached = transition == "Triggered" || transition == "No Data"

	if v, ok := alerts.ExtractFloat(payload, "snapshot"); ok {
		n.MetricValue = v
	}

	return n
}
