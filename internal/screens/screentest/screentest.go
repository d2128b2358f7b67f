// Package screentest builds services and key events for screen tests.
package screentest

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/cache"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/store"
)

// Identity is the user every screen test acts as.
var Identity = storage.Identity{ID: "tester"}

// NewService returns a service over a private in-memory database.
func NewService(t *testing.T) *service.Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	bucket := storage.NewSQLiteBucket(s.ObjectRepo())
	c, err := cache.OpenInMemory(service.SubmissionLoader(s.AssessmentRepo(), bucket), zap.NewNop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return service.New(s.AssessmentRepo(), bucket, c, zap.NewNop())
}

// Key returns a key press for a special key such as tea.KeyEnter.
func Key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Type returns one key press per rune of s.
func Type(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return msgs
}
