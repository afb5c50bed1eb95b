package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	javaExceptionPattern = regexp.MustCompile(`(?:Exception in thread ".*?" )?([a-zA-Z0-9.$_]+(?:Exception|Error)): (.+)`)
	javaStackPattern     = regexp.MustCompile(`at ([a-zA-Z0-9.$_]+)\.([a-zA-Z0-9_$<>]+)\(([^)]*):(\d+)\)`)

	pythonTracebackPattern = regexp.MustCompile(`File "([^"]+)", line (\d+), in ([^\n]+)`)
	pythonExceptionPattern = regexp.MustCompile(`([A-Za-z0-9_]+Error|[A-Za-z0-9_]+Exception): (.+)`)

	nodeErrorPattern = regexp.MustCompile(`([A-Za-z0-9_]+Error): (.+)`)
	nodeStackPattern = regexp.MustCompile(`at (?:([A-Za-z0-9_.$]+)\s+)?\(([^:]+):(\d+):\d+\)`)

	genericErrorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ERROR[:\s]+(.+)`),
		regexp.MustCompile(`(?i)FATAL[:\s]+(.+)`),
		regexp.MustCompile(`(?i)SEVERE[:\s]+(.+)`),
		regexp.MustCompile(`(?i)error[:\s]+(.+)`),
		regexp.MustCompile(`(?i)fail(?:ed|ure)[:\s]+(.+)`),
	}
	classMethodPattern = regexp.MustCompile(`([A-Z][a-zA-Z0-9]*(?:\.[A-Z][a-zA-Z0-9]*)*)\.([a-zA-Z0-9_]+)\(`)
	linePattern        = regexp.MustCompile(`(?i)line\s+(\d+)`)

	timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{3})?Z?`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}[\sT]\d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`\d{2}-\d{2}-\d{4}\s+\d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}`),
	}
)

// extractJava handles Java exceptions and stack traces. The topmost
// stack frame names the failing class, method, file and line.
func extractJava(logContent string) Classification {
	var result Classification

	if m := javaExceptionPattern.FindStringSubmatch(logContent); m != nil {
		result.ClassName = m[1]
		result.ErrorType = "java_exception"
		result.RootCauseSummary = strings.TrimSpace(m[2])
	}

	if m := javaStackPattern.FindStringSubmatch(logContent); m != nil {
		if result.ClassName == "" {
			result.ClassName = m[1]
		}
		result.MethodName = m[2]
		result.FilePath = m[3]
		result.LineNumber = mustAtoi(m[4])
	}

	if strings.Contains(logContent, "OutOfMemoryError") {
		result.ErrorType = "java_memory_error"
		result.RootCauseSummary = "Java heap space exhausted"
	} else if strings.Contains(logContent, "NullPointerException") {
		result.ErrorType = "java_null_pointer"
		if result.RootCauseSummary == "" {
			result.RootCauseSummary = "Null reference access"
		}
	}

	return result
}

// extractPython handles Python tracebacks. The last frame is the most
// recent call and names the failing location.
func extractPython(logContent string) Classification {
	var result Classification

	if frames := pythonTracebackPattern.FindAllStringSubmatch(logContent, -1); len(frames) > 0 {
		last := frames[len(frames)-1]
		result.FilePath = last[1]
		result.LineNumber = mustAtoi(last[2])
		result.MethodName = strings.TrimSpace(last[3])
	}

	if m := pythonExceptionPattern.FindStringSubmatch(logContent); m != nil {
		result.ClassName = m[1]
		result.ErrorType = "python_exception"
		result.RootCauseSummary = strings.TrimSpace(m[2])
	}

	if strings.Contains(logContent, "ImportError") || strings.Contains(logContent, "ModuleNotFoundError") {
		result.ErrorType = "python_import_error"
		if result.RootCauseSummary == "" {
			result.RootCauseSummary = "Missing module or import issue"
		}
	}

	return result
}

// extractNode handles Node.js errors and stack traces, skipping
// anonymous module wrapper frames.
func extractNode(logContent string) Classification {
	var result Classification

	if m := nodeErrorPattern.FindStringSubmatch(logContent); m != nil {
		result.ClassName = m[1]
		result.ErrorType = "nodejs_error"
		result.RootCauseSummary = strings.TrimSpace(m[2])
	}

	for _, frame := range nodeStackPattern.FindAllStringSubmatch(logContent, -1) {
		if frame[1] != "" && frame[1] != "Object.<anonymous>" {
			result.MethodName = frame[1]
			result.FilePath = frame[2]
			result.LineNumber = mustAtoi(frame[3])
			break
		}
	}

	if strings.Contains(logContent, "ENOENT") {
		result.ErrorType = "nodejs_file_not_found"
		if result.RootCauseSummary == "" {
			result.RootCauseSummary = "File or directory not found"
		}
	} else if strings.Contains(logContent, "TypeError") && strings.Contains(logContent, "undefined") {
		result.ErrorType = "nodejs_undefined_reference"
		if result.RootCauseSummary == "" {
			result.RootCauseSummary = "Undefined variable or property access"
		}
	}

	return result
}

// extractGeneric is the catch-all for logs with plain error lines.
func extractGeneric(logContent string) Classification {
	var result Classification

	for _, p := range genericErrorPatterns {
		if m := p.FindStringSubmatch(logContent); m != nil {
			result.ErrorType = "generic_error"
			summary := strings.TrimSpace(m[1])
			if len(summary) > 200 {
				summary = summary[:200]
			}
			result.RootCauseSummary = summary
			break
		}
	}

	if m := classMethodPattern.FindStringSubmatch(logContent); m != nil {
		result.ClassName = m[1]
		result.MethodName = m[2]
	}

	if m := linePattern.FindStringSubmatch(logContent); m != nil {
		result.LineNumber = mustAtoi(m[1])
	}

	return result
}

// extractTimestamp tries the known timestamp shapes in order and
// returns the first match.
func extractTimestamp(logContent string) string {
	for _, p := range timestampPatterns {
		if m := p.FindString(logContent); m != "" {
			return m
		}
	}
	return ""
}

// mustAtoi converts digit-only regex captures; the patterns guarantee
// the input parses.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
