package adapters

import "testing"

func TestPrometheusParse(t *testing.T) {
	payload := decodePayload(t, `{
		"alerts": [
			{
				"status": "firing",
				"labels": {"alertname": "HighErrorRate", "service": "orders", "job": "orders-job"},
				"annotations": {"summary": "Error rate above 5%", "value": "87.2"},
				"startsAt": "2026-03-14T10:15:22Z"
			}
		]
	}`)

	n := NewPrometheusAdapter().Parse(payload)

	if n.ServiceName != "orders" {
		t.Errorf("service label should win over job, got %s", n.ServiceName)
	}
	if n.AlertType != "HighErrorRate" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
	if n.MetricValue != 87.2 {
		t.Errorf("metric_value = %v", n.MetricValue)
	}
	if !n.ThresholdBreached {
		t.Error("firing alert should breach threshold")
	}
}

func TestPrometheusParseLabelFallbackOrder(t *testing.T) {
	payload := decodePayload(t, `{
		"alerts": [{"status": "resolved", "labels": {"instance": "node-3:9100"}}]
	}`)

	n := NewPrometheusAdapter().Parse(payload)

	if n.ServiceName != "node-3:9100" {
		t.Errorf("expected instance fallback, got %s", n.ServiceName)
	}
	if n.ThresholdBreached {
		t.Error("resolved alert should not breach threshold")
	}
}

func TestPrometheusParseNoAlerts(t *testing.T) {
	n := NewPrometheusAdapter().Parse(map[string]any{})

	if n.ServiceName != "prometheus-alert" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
	if n.MetricValue != 0 {
		t.Errorf("metric_value = %v", n.MetricValue)
	}
}

func TestPrometheusParseBadAnnotationValue(t *testing.T) {
	payload := decodePayload(t, `{
		"alerts": [{"labels": {"alertname": "X"}, "annotations": {"value": "n/a"}}]
	}`)

	n := NewPrometheusAdapter().Parse(payload)

	if n.MetricValue != 0 {
		t.Errorf("unparseable value should leave metric at 0, got %v", n.MetricValue)
	}
}
