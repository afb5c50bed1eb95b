package adapters

import "testing"

func TestGenericParseCommonFields(t *testing.T) {
	payload := decodePayload(t, `{
		"service": "search-api",
		"type": "latency",
		"timestamp": "2026-03-14T10:15:22Z",
		"value": 83,
		"message": "p99 latency 4.2s",
		"triggered": "true"
	}`)

	n := NewGenericAdapter().Parse(payload)

	if n.ServiceName != "search-api" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
	if n.AlertType != "latency" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
	if n.MetricValue != 83 {
		t.Errorf("metric_value = %v", n.MetricValue)
	}
	if n.RawMessage != "p99 latency 4.2s" {
		t.Errorf("raw_message = %s", n.RawMessage)
	}
	if !n.ThresholdBreached {
		t.Error("triggered=true should breach threshold")
	}
}

func TestGenericParseCaseInsensitiveKeys(t *testing.T) {
	payload := decodePayload(t, `{"SERVICE": "ledger", "Kind": "outage"}`)

	n := NewGenericAdapter().Parse(payload)

	if n.ServiceName != "ledger" {
		t.Errorf("expected case-insensitive service match, got %s", n.ServiceName)
	}
	if n.AlertType != "outage" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
}

func TestGenericParseDebugInfo(t *testing.T) {
	payload := decodePayload(t, `{"service": "x", "unrelated": 1}`)

	n := NewGenericAdapter().Parse(payload)

	if n.DebugInfo == nil {
		t.Fatal("expected debug info on generic parse")
	}
	if _, ok := n.DebugInfo["payload_keys"]; !ok {
		t.Error("debug info should list payload keys")
	}
	if _, ok := n.DebugInfo["parsing_steps"]; !ok {
		t.Error("debug info should record parsing steps")
	}
}

func TestGenericParseDefaults(t *testing.T) {
	n := NewGenericAdapter().Parse(map[string]any{})

	if n.ServiceName != "generic-alert" {
		t.Errorf("service_name = %s", n.ServiceName)
	}
	if n.AlertType != "unknown" {
		t.Errorf("alert_type = %s", n.AlertType)
	}
	if n.ThresholdBreached {
		t.Error("empty payload should not breach threshold")
	}
}

func TestGenericParseSkipsEmptyValues(t *testing.T) {
	payload := decodePayload(t, `{"service": "", "host": "db-02"}`)

	n := NewGenericAdapter().Parse(payload)

	if n.ServiceName != "db-02" {
		t.Errorf("empty candidate should be skipped, got %s", n.ServiceName)
	}
}

func TestGenericParseUnparseableMetric(t *testing.T) {
	payload := decodePayload(t, `{"value": "not-a-number", "count": 7}`)

	n := NewGenericAdapter().Parse(payload)

	if n.MetricValue != 7 {
		t.Errorf("expected later numeric candidate to win, got %v", n.MetricValue)
	}
}
