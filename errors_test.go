package lightschema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dcdncp/lightschema"
)

func TestIssues_ErrorSummary(t *testing.T) {
	iss := lightschema.Issues{
		{Path: "/a", Message: "m1"},
		{Path: "/b", Message: "m2"},
		{Path: "/c", Message: "m3"},
		{Path: "/d", Message: "m4"},
	}
	want := "m1 at /a; m2 at /b; m3 at /c; ... (total 4)"
	if got := iss.Error(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if (lightschema.Issues{}).Error() != "" {
		t.Fatalf("empty issues should render empty")
	}
}

func TestFields_IssuesSortedAndEscaped(t *testing.T) {
	errs := lightschema.Fields{
		"z":   lightschema.Messages{"last"},
		"a/b": lightschema.Messages{"slash"},
		"m": lightschema.Fields{
			"x~y": lightschema.Messages{"tilde", "twice"},
		},
	}
	got := errs.Issues()
	want := lightschema.Issues{
		{Path: "/a~1b", Message: "slash"},
		{Path: "/m/x~0y", Message: "tilde"},
		{Path: "/m/x~0y", Message: "twice"},
		{Path: "/z", Message: "last"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("issue %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestMessages_Error(t *testing.T) {
	m := lightschema.Messages{"a", "b"}
	if m.Error() != "a; b" {
		t.Fatalf("got %q", m.Error())
	}
	if iss := m.Issues(); len(iss) != 2 || iss[0].Path != "/" {
		t.Fatalf("issues: %v", iss)
	}
}

func TestAsIssues(t *testing.T) {
	wrapped := fmt.Errorf("request: %w", lightschema.Fields{"age": lightschema.Messages{"too small"}})
	iss, ok := lightschema.AsIssues(wrapped)
	if !ok || len(iss) != 1 || iss[0].Path != "/age" {
		t.Fatalf("got %v %v", iss, ok)
	}
	if _, ok := lightschema.AsIssues(errors.New("plain")); ok {
		t.Fatalf("plain errors carry no issues")
	}
	if _, ok := lightschema.AsIssues(nil); ok {
		t.Fatalf("nil carries no issues")
	}
	iss, ok = lightschema.AsIssues(lightschema.Messages{"x"})
	if !ok || iss[0].Message != "x" {
		t.Fatalf("messages: %v", iss)
	}
}

func TestFieldsError_MentionsPaths(t *testing.T) {
	err := error(lightschema.Fields{"name": lightschema.Messages{"Expected string"}})
	if !strings.Contains(err.Error(), "Expected string at /name") {
		t.Fatalf("got %q", err.Error())
	}
}

func TestAppendIssues_InitializesNil(t *testing.T) {
	var dst lightschema.Issues
	dst = lightschema.AppendIssues(dst)
	if dst == nil {
		t.Fatalf("expected non-nil slice")
	}
}
