package answerkey

import (
	"encoding/json"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Control("AC", "Do you limit access?", "AC.L1-3.1.1"), "AC@Do you limit access?@AC.L1-3.1.1"},
		{Onboarding("Company name?", "company_name"), "onboarding^Company name?^company_name"},
		{FollowUp("Describe the gap", "AC.L1-3.1.1"), "Describe the gap**AC.L1-3.1.1_followup"},
	}
	for _, tt := range tests {
		if got := tt.key.Format(); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	keys := []Key{
		Control("AC", "Do you limit access?", "AC.L1-3.1.1"),
		Onboarding("Company name?", "company_name"),
		FollowUp("Describe the gap", "AC.L1-3.1.1"),
	}
	for _, k := range keys {
		if got := Parse(k.Format()); got != k {
			t.Errorf("Parse(%q) = %+v, want %+v", k.Format(), got, k)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	k := Parse("AC@only-two")
	if k.Kind != KindControl || k.Group != "AC" || k.Question != "only-two" || k.ShortForm != "" {
		t.Errorf("unexpected parse: %+v", k)
	}

	k = Parse("no separators at all")
	if k.Kind != KindUnknown {
		t.Errorf("kind = %q, want unknown", k.Kind)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		key                          string
		onboarding, control, followU bool
	}{
		{"onboarding^Q^q", true, false, false},
		{"AC@Q@q", false, true, false},
		{"Explain**q_followup", false, false, true},
		{"AC@Q@q_followup", false, false, true},
		{"onboarding without caret", false, false, false},
	}
	for _, tt := range tests {
		if got := IsOnboarding(tt.key); got != tt.onboarding {
			t.Errorf("IsOnboarding(%q) = %v", tt.key, got)
		}
		if got := IsControl(tt.key); got != tt.control {
			t.Errorf("IsControl(%q) = %v", tt.key, got)
		}
		if got := IsFollowUp(tt.key); got != tt.followU {
			t.Errorf("IsFollowUp(%q) = %v", tt.key, got)
		}
	}
}

func TestLabelOf(t *testing.T) {
	if got := LabelOf("Explain the gap**q1_followup"); got != "Explain the gap" {
		t.Errorf("LabelOf = %q", got)
	}
	if got := LabelOf("q1_followup"); got != "q1_followup" {
		t.Errorf("LabelOf without separator = %q", got)
	}
}

func TestStorageData_PreservesOrder(t *testing.T) {
	raw := []byte(`{"z@Q@z1":"Yes","a@Q@a1":"No","onboarding^Size^size":42}`)

	var d StorageData
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"z@Q@z1", "a@Q@a1", "onboarding^Size^size"}
	got := d.Keys()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}

	out, err := json.Marshal(&d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(raw) {
		t.Errorf("round trip = %s, want %s", out, raw)
	}
}

func TestStorageData_SetKeepsPosition(t *testing.T) {
	d := NewStorageData()
	d.Set("a", "1")
	d.Set("b", "2")
	d.Set("a", "3")
	if keys := d.Keys(); len(keys) != 2 || keys[0] != "a" {
		t.Fatalf("keys = %v", keys)
	}
	if v, _ := d.Get("a"); v != "3" {
		t.Errorf("a = %v, want 3", v)
	}

	d.Delete("a")
	if d.Len() != 1 {
		t.Errorf("len = %d, want 1", d.Len())
	}
}

func TestStorageData_RejectsNonObject(t *testing.T) {
	var d StorageData
	if err := json.Unmarshal([]byte(`["a"]`), &d); err == nil {
		t.Fatal("expected error for array input")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Yes", "Yes"},
		{float64(42), "42"},
		{1.5, "1.5"},
		{7, "7"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
