package adapters

import (
	"github.com/opsmindai/opsmind/internal/alerts"
)

// PrometheusAdapter handles Alertmanager-style webhook payloads. Only
// the first alert in the group is considered.
type PrometheusAdapter struct {
	alerts.BaseAdapter
}

// NewPrometheusAdapter creates a new Prometheus adapter
func NewPrometheusAdapter() *PrometheusAdapter {
	return &PrometheusAdapter{
		BaseAdapter: alerts.BaseAdapter{Source: "prometheus"},
	}
}

// Parse extracts alert fields from a Prometheus webhook payload
func (a *PrometheusAdapter) Parse(payload map[string]any) alerts.NormalizedAlert {
	n := alerts.NormalizedAlert{
		ServiceName: "prometheus-alert",
		AlertType:   "unknown",
	}

	alertList, ok := payload["alerts"].([]any)
	if !ok || len(alertList) == 0 {
		return n
	}
	alert, ok := alertList[0].(map[string]any)
	if !ok {
		return n
	}

	for _, path := range []string{"labels.service", "labels.job", "labels.instance"} {
		if v := alerts.ExtractString(alert, path); v != "" {
			n.ServiceName = v
			break
		}
	}

	if name := alerts.ExtractString(alert, "labels.alertname"); name != "" {
		n.AlertType = name
	}
	n.Timestamp = alerts.ExtractString(alert, "startsAt")
	n.RawMessage = alerts.ExtractString(alert, "annotations.summary")
	n.ThresholdBreached = alerts.ExtractString(alert, "status") == "firing"

	if v, ok := alerts.ExtractFloat(alert, "annotations.value"); ok {
		n.MetricValue = v
	}

	return n
}
