package diffgen

import (
	"strings"
	"testing"
)

const loginSource = `public class DemoController {
    public String login(User user) {
        String name = user.getName();
        return name.toUpperCase();
    }
}`

func TestGenerateNPEFixMethodCall(t *testing.T) {
	fix, err := GenerateNPEFix(loginSource, "DemoController", "login", 3, "user")
	if err != nil {
		t.Fatalf("GenerateNPEFix failed: %v", err)
	}

	if fix.NPEType != "method_call" {
		t.Errorf("npe_type = %s", fix.NPEType)
	}
	if !strings.Contains(fix.FixedSource, "if (user != null) {") {
		t.Errorf("missing null check in fixed source:\n%s", fix.FixedSource)
	}
	if !strings.Contains(fix.FixedSource, "            String name = user.getName();") {
		t.Errorf("guarded line should keep extra indentation:\n%s", fix.FixedSource)
	}
	if !strings.Contains(fix.Diff, "--- a/DemoController.java") {
		t.Errorf("diff headers missing:\n%s", fix.Diff)
	}
	if !strings.Contains(fix.Diff, "+        if (user != null) {") {
		t.Errorf("diff should show the added guard:\n%s", fix.Diff)
	}
	if !strings.Contains(fix.Diff, "-        String name = user.getName();") {
		t.Errorf("diff should show the removed original line:\n%s", fix.Diff)
	}
}

func TestGenerateNPEFixReturnGetsElseBranch(t *testing.T) {
	fix, err := GenerateNPEFix(loginSource, "DemoController", "login", 4, "name")
	if err != nil {
		t.Fatalf("GenerateNPEFix failed: %v", err)
	}

	if !strings.Contains(fix.FixedSource, "else {") {
		t.Errorf("return statement should get an else branch:\n%s", fix.FixedSource)
	}
	if !strings.Contains(fix.FixedSource, "return null;") {
		t.Errorf("else branch should return null:\n%s", fix.FixedSource)
	}
}

func TestGenerateNPEFixArrayAccess(t *testing.T) {
	src := `public class Lookup {
    public String first(String[] items) {
        String head = items[0];
        return head;
    }
}`

	fix, err := GenerateNPEFix(src, "Lookup", "first", 3, "")
	if err != nil {
		t.Fatalf("GenerateNPEFix failed: %v", err)
	}

	if fix.NPEType != "array_access" {
		t.Errorf("npe_type = %s", fix.NPEType)
	}
	if !strings.Contains(fix.FixedSource, "if (items != null && items.length > 0) {") {
		t.Errorf("missing array guard:\n%s", fix.FixedSource)
	}
}

func TestGenerateNPEFixInfersVariable(t *testing.T) {
	src := `public class C {
    void run(Widget w) {
        w.size = 10;
    }
}`

	fix, err := GenerateNPEFix(src, "C", "run", 3, "")
	if err != nil {
		t.Fatalf("GenerateNPEFix failed: %v", err)
	}

	if fix.NPEType != "field_access" {
		t.Errorf("npe_type = %s", fix.NPEType)
	}
	if fix.Variable != "w" {
		t.Errorf("inferred variable = %s", fix.Variable)
	}
}

func TestGenerateNPEFixClampsErrorLine(t *testing.T) {
	fix, err := GenerateNPEFix("int x = 0;", "C", "m", 99, "x")
	if err != nil {
		t.Fatalf("GenerateNPEFix failed: %v", err)
	}
	if fix.FixedSource == "" {
		t.Error("expected a fixed source even for out-of-range line")
	}
}
