package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opsmindai/opsmind/internal/config"
)

// ParseError reports a webhook body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Normalizer routes webhook payloads to the adapter registered for the
// source system, falling back to the generic adapter for unknown
// sources, and applies severity classification.
type Normalizer struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewNormalizer builds a normalizer with the given source adapters and
// a fallback for unrecognized sources.
func NewNormalizer(fallback Adapter, adapters ...Adapter) *Normalizer {
	byType := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byType[a.SourceType()] = a
	}
	return &Normalizer{adapters: byType, fallback: fallback}
}

// Normalize decodes body and produces a normalized alert for the given
// source system. Severity is derived from the metric value against the
// thresholds; only P1 and P2 alerts request incident creation.
func (n *Normalizer) Normalize(body []byte, sourceSystem string, thresholds config.Thresholds) (NormalizedAlert, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return NormalizedAlert{}, &ParseError{Err: err}
	}

	adapter, ok := n.adapters[strings.ToLower(sourceSystem)]
	if !ok {
		adapter = n.fallback
	}
	logrus.Debugf("normalizing alert from source %s via %s adapter", sourceSystem, adapter.SourceType())

	alert := adapter.Parse(payload)

	alert.Severity = CalculateSeverity(alert.MetricValue, thresholds)
	alert.ShouldCreateIncident = alert.Severity == "P1" || alert.Severity == "P2"

	if alert.ServiceName == "" {
		alert.ServiceName = "unknown"
	}
	if alert.AlertType == "" {
		alert.AlertType = "unknown"
	}
	if alert.Timestamp == "" {
		alert.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000")
	}
	if alert.RawMessage == "" {
		alert.RawMessage = Snippet(payload)
	}

	return alert, nil
}

// CalculateSeverity maps a metric value to a P1..P4 priority against
// the configured thresholds.
func CalculateSeverity(metricValue float64, t config.Thresholds) string {
	switch {
	case metricValue >= t.Critical:
		return "P1"
	case metricValue >= t.High:
		return "P2"
	case metricValue >= t.Medium:
		return "P3"
	default:
		return "P4"
	}
}
