// Package analyzer classifies raw application log content into
// structured incident details. Structured key=value logs take priority;
// traditional stack-trace extraction is the fallback. Fields are only
// filled from content that actually appears in the log.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Classification is the analyzer output. Empty strings and a zero line
// number mean the field was not present in the log.
type Classification struct {
	ServiceName      string `json:"service_name"`
	ClassName        string `json:"extracted_classname"`
	MethodName       string `json:"method_name"`
	LineNumber       int    `json:"line_number"`
	ErrorType        string `json:"error_type"`
	Endpoint         string `json:"endpoint"`
	Timestamp        string `json:"timestamp"`
	FilePath         string `json:"file_path"`
	RootCauseSummary string `json:"root_cause_summary"`
	SuggestedFixType string `json:"suggested_fix_type"`
	LogFormat        string `json:"log_format"`
}

// populatedFields counts how many extraction fields carry data. Used to
// pick the most complete traditional extraction.
func (c Classification) populatedFields() int {
	n := 0
	for _, s := range []string{
		c.ServiceName, c.ClassName, c.MethodName, c.ErrorType,
		c.Endpoint, c.Timestamp, c.FilePath, c.RootCauseSummary,
	} {
		if s != "" {
			n++
		}
	}
	if c.LineNumber != 0 {
		n++
	}
	return n
}

// extractor is one log-dialect strategy. Extractors never fail; they
// return whatever they could find.
type extractor func(logContent string) Classification

// Analyze classifies log content. It never returns an error to the
// caller; an internal panic degrades to an analysis_error result.
func Analyze(logContent string) (result Classification) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("log analysis panicked: %v", r)
			result = Classification{
				ErrorType:        "analysis_error",
				RootCauseSummary: fmt.Sprintf("log analysis encountered an error: %v", r),
				SuggestedFixType: "code",
				LogFormat:        "error",
			}
		}
	}()

	structured := extractStructured(logContent)
	if structured.isSubstantial() {
		result = structured.Classification
		result.LogFormat = "structured"
	} else {
		extractors := []extractor{
			extractJava,
			extractPython,
			extractNode,
			extractGeneric,
		}
		best := extractors[0](logContent)
		for _, ex := range extractors[1:] {
			if c := ex(logContent); c.populatedFields() > best.populatedFields() {
				best = c
			}
		}
		result = best
		result.LogFormat = "traditional"
	}

	if result.Timestamp == "" {
		result.Timestamp = extractTimestamp(logContent)
	}
	result.SuggestedFixType = suggestFixType(result)

	return result
}

// Configuration-related keywords in the root cause summary point at a
// configuration fix rather than a code fix.
var configKeywords = []string{
	"config", "property", "setting", "parameter", "env",
	"connection", "timeout", "port", "host", "url",
	"permission", "access", "auth", "credential",
	"file not found", "enoent", "path", "directory",
}

func suggestFixType(c Classification) string {
	rootCause := strings.ToLower(c.RootCauseSummary)
	for _, kw := range configKeywords {
		if strings.Contains(rootCause, kw) {
			return "configuration"
		}
	}
	return "code"
}
