package adapters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opsmindai/opsmind/internal/alerts"
)

// Candidate key names tried in order by the generic adapter. Exact
// matches win over case-insensitive ones.
var (
	serviceCandidates   = []string{"service", "service_name", "serviceName", "host", "application", "app", "name"}
	typeCandidates      = []string{"alert_type", "alertType", "type", "kind", "category", "event_type", "eventType", "alert_name", "alertName"}
	timestampCandidates = []string{"timestamp", "time", "date", "created_at", "createdAt", "occurred_at", "occurredAt"}
	valueCandidates     = []string{"metric_value", "metricValue", "value", "current_value", "currentValue", "threshold", "score", "count"}
	messageCandidates   = []string{"message", "description", "summary", "body", "details", "text"}
	breachCandidates    = []string{"alert", "critical", "warning", "breach", "triggered", "threshold_breached", "thresholdBreached"}
)

// breachValues are string forms that count as a threshold breach.
var breachValues = map[string]bool{
	"true": true, "1": true, "yes": true, "critical": true,
	"alert": true, "triggered": true, "breach": true, "high": true, "error": true,
}

// GenericAdapter is the fallback for webhook sources without a
// dedicated adapter. It probes common field names and records its
// parsing steps in the alert's debug info.
type GenericAdapter struct {
	alerts.BaseAdapter
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{
		BaseAdapter: alerts.BaseAdapter{Source: "generic"},
	}
}

// Parse extracts alert fields from an arbitrary webhook payload
func (a *GenericAdapter) Parse(payload map[string]any) alerts.NormalizedAlert {
	n := alerts.NormalizedAlert{
		ServiceName: "generic-alert",
		AlertType:   "unknown",
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	steps := []string{fmt.Sprintf("working with payload keys: %v", keys)}

	if key, val, ok := findCandidate(payload, serviceCandidates); ok {
		n.ServiceName = strings.TrimSpace(stringify(val))
		steps = append(steps, fmt.Sprintf("found service_name with key '%s': %s", key, n.ServiceName))
	}

	if key, val, ok := findCandidate(payload, typeCandidates); ok {
		n.AlertType = strings.TrimSpace(stringify(val))
		steps = append(steps, fmt.Sprintf("found alert_type with key '%s': %s", key, n.AlertType))
	} else {
		steps = append(steps, fmt.Sprintf("no alert_type found, checked candidates: %v", typeCandidates))
	}

	if key, val, ok := findCandidate(payload, timestampCandidates); ok {
		n.Timestamp = strings.TrimSpace(stringify(val))
		steps = append(steps, fmt.Sprintf("found timestamp with key '%s': %s", key, n.Timestamp))
	}

	for _, candidate := range valueCandidates {
		key, val, ok := findNumeric(payload, candidate)
		if !ok {
			continue
		}
		n.MetricValue = val
		steps = append(steps, fmt.Sprintf("found metric_value with key '%s': %v", key, val))
		break
	}

	for _, candidate := range messageCandidates {
		if val, ok := payload[candidate]; ok && truthy(val) {
			n.RawMessage = alerts.Snippet(stringify(val))
			steps = append(steps, fmt.Sprintf("found raw_message with key '%s'", candidate))
			break
		}
	}

	for _, candidate := range breachCandidates {
		val, ok := payload[candidate]
		if !ok || val == nil {
			continue
		}
		if breachValues[strings.TrimSpace(strings.ToLower(stringify(val)))] {
			n.ThresholdBreached = true
			steps = append(steps, fmt.Sprintf("found threshold_breached with key '%s'", candidate))
			break
		}
	}

	n.DebugInfo = map[string]any{
		"payload_keys":  keys,
		"parsing_steps": steps,
	}

	return n
}

// findCandidate tries each candidate key in order, preferring an exact
// match over a case-insensitive one, and skipping empty values.
func findCandidate(payload map[string]any, candidates []string) (string, any, bool) {
	for _, candidate := range candidates {
		if val, ok := payload[candidate]; ok && truthy(val) {
			return candidate, val, true
		}
		for key, val := range payload {
			if strings.EqualFold(key, candidate) && truthy(val) {
				return key, val, true
			}
		}
	}
	return "", nil, false
}

// findNumeric looks for one candidate key holding a value that parses
// as a number.
func findNumeric(payload map[string]any, candidate string) (string, float64, bool) {
	if val, ok := payload[candidate]; ok && val != nil {
		if f, ok := asFloat(val); ok {
			return candidate, f, true
		}
	}
	for key, val := range payload {
		if strings.EqualFold(key, candidate) && val != nil {
			if f, ok := asFloat(val); ok {
				return key, f, true
			}
		}
	}
	return "", 0, false
}

func asFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringify(val any) string {
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}

// truthy mirrors loose truthiness: nil, empty strings, zero numbers
// and false do not count as present.
func truthy(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return true
	}
}
