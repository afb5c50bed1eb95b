package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// kvPattern matches key=value pairs, allowing double- or single-quoted
// values.
var kvPattern = regexp.MustCompile(`(\w+)=(?:"([^"]+)"|'([^']+)'|([^\s]+))`)

// errorLevelPattern matches a log-level token at the very start of the
// content.
var errorLevelPattern = regexp.MustCompile(`(?i)^(ERROR|FATAL|WARN|WARNING|RUNTIME_ERROR|EXCEPTION)\b`)

type structuredResult struct {
	Classification
}

// isSubstantial reports whether the structured pass found enough of the
// key identity fields to trust over stack-trace extraction.
func (r structuredResult) isSubstantial() bool {
	found := 0
	for _, s := range []string{r.ServiceName, r.ClassName, r.MethodName, r.ErrorType} {
		if s != "" {
			found++
		}
	}
	return found >= 2
}

// extractStructured parses key=value formatted logs. Later occurrences
// of a key win, matching flat map semantics.
func extractStructured(logContent string) structuredResult {
	var result structuredResult

	pairs := make(map[string]string)
	for _, m := range kvPattern.FindAllStringSubmatch(logContent, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if value == "" {
			value = m[4]
		}
		pairs[m[1]] = value
	}

	result.ServiceName = pairs["service"]
	result.ClassName = pairs["className"]
	result.MethodName = pairs["methodName"]
	result.FilePath = pairs["file"]
	result.ErrorType = pairs["errorType"]
	result.Endpoint = pairs["endpoint"]
	result.Timestamp = pairs["timestamp"]

	if line, ok := pairs["line"]; ok {
		if n, err := strconv.Atoi(line); err == nil {
			result.LineNumber = n
		}
	}

	switch {
	case pairs["message"] != "":
		result.RootCauseSummary = pairs["message"]
	case pairs["msg"] != "":
		result.RootCauseSummary = pairs["msg"]
	case pairs["error"] != "":
		result.RootCauseSummary = pairs["error"]
	}

	if result.ErrorType == "" {
		if m := errorLevelPattern.FindStringSubmatch(logContent); m != nil {
			result.ErrorType = strings.ToLower(m[1])
		}
	}

	return result
}
