package adapters

import "testing"

func TestPagerDutyParse(t *testing.T) {
	payload := decodePayload(t, `{
		"messages": [
			{
				"incident": {
					"service": {"name": "checkout-api"},
					"incident_key": "srv-checkout-latency",
					"created_at": "2026-03-14T10:15:22Z",
					"summary": "Latency above SLO",
					"status": "triggered"
				}
			}
		]
	}`)

	n := NewPagerDutyAdapter().Parse(payload)

	if n.ServiceName != "checkout-api" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
	if n.AlertType != "srv-checkout-latency" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
	if n.RawMessage != "Latency above SLO" {
		t.Errorf("raw_message = %s", n.RawMessage)
	}
	if !n.ThresholdBreached {
		t.Error("triggered incident should breach threshold")
	}
	if n.MetricValue != 0 {
		t.Errorf("pagerduty carries no metric value, got %v", n.MetricValue)
	}
}

func TestPagerDutyParseNoMessages(t *testing.T) {
	n := NewPagerDutyAdapter().Parse(map[string]any{})

	if n.ServiceName != "pagerduty-alert" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
	if n.AlertType != "unknown" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
	if n.ThresholdBreached {
		t.Error("empty payload should not breach threshold")
	}
}

func TestPagerDutyParseResolvedStatus(t *testing.T) {
	payload := decodePayload(t, `{
		"messages": [{"incident": {"service": {"name": "api"}, "status": "resolved"}}]
	}`)

	n := NewPagerDutyAdapter().Parse(payload)

	if n.ThresholdBreached {
		t.Error("resolved incident should not breach threshold")
	}
}
