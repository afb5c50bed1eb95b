// Package alerts normalizes webhook payloads from monitoring systems
// into a standard incident format.
package alerts

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizedAlert is the common alert format all adapters produce.
// Severity and ShouldCreateIncident are filled by the Normalizer after
// the source-specific parse.
type NormalizedAlert struct {
	ServiceName          string         `json:"service_name"`
	AlertType            string         `json:"alert_type"`
	Severity             string         `json:"severity"`
	MetricValue          float64        `json:"metric_value"`
	ThresholdBreached    bool           `json:"threshold_breached"`
	Timestamp            string         `json:"timestamp"`
	RawMessage           string         `json:"raw_message"`
	ShouldCreateIncident bool           `json:"should_create_incident"`
	DebugInfo            map[string]any `json:"debug_info,omitempty"`
}

// Adapter defines the interface for source-specific alert parsing.
// Parse never fails; it extracts what it can and leaves the rest for
// the Normalizer's defaults.
type Adapter interface {
	// SourceType returns the source type name (e.g., "grafana")
	SourceType() string

	// Parse extracts alert fields from a decoded webhook payload
	Parse(payload map[string]any) NormalizedAlert
}

// BaseAdapter provides common functionality for all adapters
type BaseAdapter struct {
	Source string
}

// SourceType returns the source type name
func (b *BaseAdapter) SourceType() string {
	return b.Source
}

// ExtractNestedValue extracts a value using dot notation (e.g., "annotations.summary")
func ExtractNestedValue(data map[string]any, path string) any {
	if path == "" {
		return nil
	}

	parts := strings.Split(path, ".")
	current := any(data)

	for _, part := range parts {
		switch v := current.(type) {
		case map[string]any:
			current = v[part]
		case map[string]string:
			current = v[part]
		default:
			return nil
		}
		if current == nil {
			return nil
		}
	}

	return current
}

// ExtractString extracts a string value using dot notation
func ExtractString(data map[string]any, path string) string {
	val := ExtractNestedValue(data, path)
	if val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// ExtractFloat extracts a numeric value using dot notation. String
// values are parsed; anything else reports false.
func ExtractFloat(data map[string]any, path string) (float64, bool) {
	return toFloat(ExtractNestedValue(data, path))
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
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

// Snippet renders an arbitrary value as a string capped at 500
// characters, for raw_message fallbacks.
func Snippet(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}
