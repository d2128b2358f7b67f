package catalog

import (
	"strings"
	"testing"
)

func TestNew_Empty(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestNew_DuplicateID(t *testing.T) {
	_, err := New([]Question{
		{Section: "s", ID: "a", Type: TypeText},
		{Section: "s", ID: "a", Type: TypeText},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestNew_Cycle(t *testing.T) {
	_, err := New([]Question{
		{Section: "s", ID: "a", Type: TypeText, Next: "b"},
		{Section: "s", ID: "b", Type: TypeRadio, Options: []string{"Yes", "No"}, Next: "c",
			Conditionals: []Conditional{{Value: "Yes", Next: "a"}}},
		{Section: "s", ID: "c", Type: TypeText},
	})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New([]Question{{Section: "s", ID: "a", Type: "slider"}})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNew_DanglingNextIsWarning(t *testing.T) {
	c, err := New([]Question{
		{Section: "s", ID: "a", Type: TypeText, Next: "missing"},
	})
	if err != nil {
		t.Fatalf("dangling next must not fail construction: %v", err)
	}

	issues := c.Validate()
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %v", len(issues), issues)
	}
	if issues[0].Severity != SeverityWarning {
		t.Errorf("severity = %q, want warning", issues[0].Severity)
	}
	if issues[0].QuestionID != "a" {
		t.Errorf("question id = %q, want a", issues[0].QuestionID)
	}
}

func TestValidate_ConditionalNotInOptions(t *testing.T) {
	c, err := New([]Question{
		{Section: "s", ID: "a", Type: TypeRadio, Options: []string{"Yes", "No"},
			Conditionals: []Conditional{{Value: "Maybe", Next: "b"}}},
		{Section: "s", ID: "b", Type: TypeText},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issues := c.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "Maybe") {
		t.Fatalf("expected one warning about Maybe, got %v", issues)
	}
	if len(Errors(issues)) != 0 {
		t.Error("expected no error-severity issues")
	}
}
