package adapters

import (
	"github.com/opsmindai/opsmind/internal/alerts"
)

// GrafanaAdapter handles Grafana alerting webhooks (legacy format with
// ruleName/state/evalMatches).
type GrafanaAdapter struct {
	alerts.BaseAdapter
}

// NewGrafanaAdapter creates a new Grafana adapter
func NewGrafanaAdapter() *GrafanaAdapter {
	return &GrafanaAdapter{
		BaseAdapter: alerts.BaseAdapter{Source: "grafana"},
	}
}

// Parse extracts alert fields from a Grafana webhook payload
func (a *GrafanaAdapter) Parse(payload map[string]any) alerts.NormalizedAlert {
	n := alerts.NormalizedAlert{}

	n.ServiceName = alerts.ExtractString(payload, "ruleName")
	if n.ServiceName == "" {
		n.ServiceName = alerts.ExtractString(payload, "title")
	}
	if n.ServiceName == "" {
		n.ServiceName = "grafana-alert"
	}

	n.AlertType = alerts.ExtractString(payload, "state")
	if n.AlertType == "" {
		n.AlertType = "unknown"
	}

	if matches, ok := payload["evalMatches"].([]any); ok && len(matches) > 0 {
		if match, ok := matches[0].(map[string]any); ok {
			if v, ok := alerts.ExtractFloat(match, "value"); ok {
				n.MetricValue = v
			}
		}
	}

	n.Timestamp = alerts.ExtractString(payload, "date")
	n.RawMessage = alerts.ExtractString(payload, "message")
	n.ThresholdBreached = alerts.ExtractString(payload, "state") == "alerting"

	return n
}
