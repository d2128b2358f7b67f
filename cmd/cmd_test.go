package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/selfassess/internal/store"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().String("config", "", "")
	c.Flags().String("db", "", "")
	c.Flags().String("user", "", "")
	c.Flags().StringSlice("group", nil, "")
	if err := c.Flags().Parse(args); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadConfig_DBFlagOverrides(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "assess.db")
	cfg, err := loadConfig(newTestCommand(t, "--db", db))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Path != db {
		t.Errorf("store path = %q, want %q", cfg.Store.Path, db)
	}

	st, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	st.Close()
}

func TestLocalIdentity(t *testing.T) {
	id, err := localIdentity(newTestCommand(t, "--user", "alice", "--group", "assessors"))
	if err != nil {
		t.Fatal(err)
	}
	if id.ID != "alice" || len(id.Groups) != 1 || id.Groups[0] != "assessors" {
		t.Errorf("identity = %+v", id)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	want := map[string]bool{
		"serve": false, "take": false, "report": false, "list": false,
		"catalog": false, "llm": false, "version": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestCatalogValidate_BuiltIn(t *testing.T) {
	if err := catalogValidateCmd.RunE(catalogValidateCmd, nil); err != nil {
		t.Fatalf("built-in catalog must validate: %v", err)
	}
}

func TestWriteEvents(t *testing.T) {
	var sb strings.Builder
	if err := writeEvents(&sb, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "No AI calls recorded.") {
		t.Errorf("empty output = %q", sb.String())
	}

	sb.Reset()
	events := []store.LLMEvent{{
		ID:        7,
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		LLMRequestEventData: store.LLMRequestEventData{
			Purpose: "chat", Identity: "alice", Model: "gpt-4o-mini",
			InputTokens: 40, OutputTokens: 12, LatencyMs: 850,
		},
	}}
	if err := writeEvents(&sb, events); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, want := range []string{"7", "chat", "alice", "gpt-4o-mini", "850", "no"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row missing %q: %s", want, lines[1])
		}
	}
}

func TestWriteEvent_MissingBodies(t *testing.T) {
	var sb strings.Builder
	e := &store.LLMEvent{ID: 3, LLMRequestEventData: store.LLMRequestEventData{
		Provider: "openai", Model: "whisper-1", Purpose: "transcribe", ErrorMessage: "timeout",
	}}
	if err := writeEvent(&sb, e); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if strings.Count(out, "(not captured)") != 2 {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "openai (whisper-1)") || !strings.Contains(out, "timeout") {
		t.Errorf("output = %s", out)
	}
}

func TestWriteUsage(t *testing.T) {
	byPurpose := []store.LLMUsage{
		{Purpose: "chat", Calls: 2, InputTokens: 1_000_000, OutputTokens: 10},
		{Purpose: "transcribe", Calls: 1},
	}
	byModel := []store.LLMUsage{
		{Model: "claude-sonnet-4-20250514", Calls: 2, InputTokens: 1_000_000},
		{Model: "local-llama", Calls: 1, OutputTokens: 10},
	}

	var sb strings.Builder
	if err := writeUsage(&sb, byPurpose, byModel); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"$3.00", "total (partial)", "Pricing unavailable for: local-llama"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCost(t *testing.T) {
	if got := formatCost(0.0012); got != "$0.0012" {
		t.Errorf("small = %q", got)
	}
	if got := formatCost(12.5); got != "$12.50" {
		t.Errorf("large = %q", got)
	}
}
