package diffgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Null dereference shapes handled by the NPE fixer.
const (
	npeMethodCall  = "method_call"
	npeFieldAccess = "field_access"
	npeArrayAccess = "array_access"
	npeGeneral     = "general"
)

var (
	methodCallPattern = regexp.MustCompile(`\w+\.\w+\(`)
	dottedVarPattern  = regexp.MustCompile(`(\w+)\.`)
	arrayVarPattern   = regexp.MustCompile(`(\w+)\[`)
)

// NPEFix is the result of analyzing and patching a Java null pointer
// issue against real source code.
type NPEFix struct {
	NPEType        string `json:"npe_type"`
	Variable       string `json:"variable"`
	Description    string `json:"description"`
	FixDescription string `json:"fix_description"`
	Diff           string `json:"diff"`
	FixedSource    string `json:"fixed_source"`
}

// GenerateNPEFix splices a null-check block around the failing line of
// originalCode and returns a real unified diff of original vs patched
// source. errorLine is 1-based; lines past the end clamp to the last
// line. variableName may be empty, in which case it is inferred from
// the failing line where possible.
func GenerateNPEFix(originalCode, className, methodName string, errorLine int, variableName string) (*NPEFix, error) {
	lines := strings.Split(originalCode, "\n")

	lineIndex := errorLine - 1
	if lineIndex < 0 {
		lineIndex = 0
	}
	if lineIndex >= len(lines) {
		lineIndex = len(lines) - 1
	}

	fix := analyzeNPE(lines[lineIndex], variableName)
	fixedLines := applyNPEFix(lines, lineIndex, fix)
	fix.FixedSource = strings.Join(fixedLines, "\n")

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(originalCode),
		B:        difflib.SplitLines(fix.FixedSource),
		FromFile: fmt.Sprintf("a/%s.java", className),
		ToFile:   fmt.Sprintf("b/%s.java", className),
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate diff for %s.%s: %w", className, methodName, err)
	}
	fix.Diff = diff

	return fix, nil
}

// analyzeNPE classifies the failing line and picks the variable to
// guard.
func analyzeNPE(problematicLine, variableName string) *NPEFix {
	line := strings.TrimSpace(problematicLine)

	fix := &NPEFix{Variable: variableName}

	switch {
	case methodCallPattern.MatchString(line) && variableName != "":
		fix.NPEType = npeMethodCall
		fix.Description = fmt.Sprintf("Method call on null variable '%s'", variableName)
		fix.FixDescription = fmt.Sprintf("Added null check before calling method on '%s'", variableName)
	case strings.Contains(line, "[") && strings.Contains(line, "]"):
		fix.NPEType = npeArrayAccess
		fix.Description = "Array access on null reference"
		fix.FixDescription = "Added null check before array access"
	case strings.Contains(line, "."):
		if fix.Variable == "" {
			if m := dottedVarPattern.FindStringSubmatch(line); m != nil {
				fix.Variable = m[1]
			}
		}
		fix.NPEType = npeFieldAccess
		name := fix.Variable
		if name == "" {
			name = "unknown"
		}
		fix.Description = fmt.Sprintf("Field access on null variable '%s'", name)
		fix.FixDescription = fmt.Sprintf("Added null check before accessing field on '%s'", name)
	default:
		fix.NPEType = npeGeneral
		fix.Description = "General null pointer exception"
		fix.FixDescription = "Added defensive null checking"
	}

	return fix
}

// applyNPEFix replaces the failing line with a guarded block, keeping
// the original indentation.
func applyNPEFix(lines []string, lineIndex int, fix *NPEFix) []string {
	original := lines[lineIndex]
	trimmed := strings.TrimSpace(original)
	indent := original[:len(original)-len(strings.TrimLeft(original, " \t"))]

	var replacement []string

	switch fix.NPEType {
	case npeMethodCall, npeFieldAccess:
		if fix.Variable == "" {
			replacement = []string{indent + "// needs a null check, variable could not be inferred", original}
			break
		}
		replacement = []string{
			indent + "if (" + fix.Variable + " != null) {",
			indent + "    " + trimmed,
			indent + "}",
		}
		if strings.Contains(trimmed, "return") {
			replacement = append(replacement,
				indent+"else {",
				indent+"    return null;",
				indent+"}",
			)
		}

	case npeArrayAccess:
		arrayVar := "array"
		if m := arrayVarPattern.FindStringSubmatch(trimmed); m != nil {
			arrayVar = m[1]
		}
		replacement = []string{
			indent + "if (" + arrayVar + " != null && " + arrayVar + ".length > 0) {",
			indent + "    " + trimmed,
			indent + "}",
		}

	default:
		if fix.Variable != "" {
			replacement = []string{
				indent + "if (" + fix.Variable + " != null) {",
				indent + "    " + trimmed,
				indent + "}",
			}
		} else {
			replacement = []string{indent + "// needs a null check, variable could not be inferred", original}
		}
	}

	fixed := make([]string, 0, len(lines)+len(replacement))
	fixed = append(fixed, lines[:lineIndex]...)
	fixed = append(fixed, replacement...)
	fixed = append(fixed, lines[lineIndex+1:]...)
	return fixed
}
