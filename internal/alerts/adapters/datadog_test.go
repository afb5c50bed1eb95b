package adapters

import "testing"

func TestDatadogParse(t *testing.T) {
	payload := decodePayload(t, `{
		"host": "web-04",
		"alert_type": "error",
		"date": "2026-03-14T10:15:22Z",
		"body": "Memory usage critical on web-04",
		"alert_transition": "Triggered",
		"snapshot": "92.1"
	}`)

	n := NewDatadogAdapter().Parse(payload)

	if n.ServiceName != "web-04" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
	if n.AlertType != "error" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
	if n.MetricValue != 92.1 {
		t.Errorf("metric_value = %v", n.MetricValue)
	}
	if !n.ThresholdBreached {
		t.Error("Triggered transition should breach threshold")
	}
}

func TestDatadogParseTagsServiceFallback(t *testing.T) {
	payload := decodePayload(t, `{
		"tags": {"service": "billing"},
		"alert_transition": "Recovered"
	}`)

	n := NewDatadogAdapter().Parse(payload)

	if n.ServiceName != "billing" {
		t.Errorf("expected tags.service fallback, got %s", n.ServiceName)
	}
	if n.ThresholdBreached {
		t.Error("Recovered transition should not breach threshold")
	}
}

func TestDatadogParseNoDataTransition(t *testing.T) {
	payload := decodePayload(t, `{"alert_transition": "No Data"}`)

	n := NewDatadogAdapter().Parse(payload)

	if !n.ThresholdBreached {
		t.Error("No Data transition should breach threshold")
	}
	if n.ServiceName != "datadog-alert" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
}
