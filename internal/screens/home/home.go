// Package home lists the user's assessments and starts new ones.
package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/selfassess/internal/router"
	"github.com/abhisek/selfassess/internal/screen"
	"github.com/abhisek/selfassess/internal/screens/questionnaire"
	reportscreen "github.com/abhisek/selfassess/internal/screens/report"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/store"
	"github.com/abhisek/selfassess/internal/timefmt"
	"github.com/abhisek/selfassess/internal/ui/components"
	"github.com/abhisek/selfassess/internal/ui/layout"
	"github.com/abhisek/selfassess/internal/ui/theme"
)

type listedMsg struct {
	Records []store.AssessmentRecord
	Err     error
}

type createdMsg struct {
	Loaded *service.Loaded
	Err    error
}

// HomeScreen is the landing screen.
type HomeScreen struct {
	svc      *service.Service
	identity storage.Identity
	now      func() time.Time

	records []store.AssessmentRecord
	menu    components.Menu
	loaded  bool
	errMsg  string

	naming bool
	title  components.TextInput
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen for identity.
func New(svc *service.Service, identity storage.Identity) *HomeScreen {
	h := &HomeScreen{svc: svc, identity: identity, now: time.Now}
	h.menu = h.buildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		recs, err := h.svc.List(context.Background(), h.identity)
		return listedMsg{Records: recs, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Assessments"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.naming {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Create"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "R", Description: "Report"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listedMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.records = msg.Records
		h.menu = h.buildMenu()
		return h, nil

	case createdMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		return h, h.open(msg.Loaded.Record.ID)

	case tea.KeyMsg:
		if h.naming {
			return h.updateNaming(msg)
		}
		if msg.String() == "r" {
			if rec, ok := h.selectedRecord(); ok && rec.Status == store.StatusSubmitted {
				s := reportscreen.New(h.svc, h.identity, rec.ID)
				return h, func() tea.Msg { return router.PushScreenMsg{Screen: s} }
			}
			return h, nil
		}
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}

	if h.naming {
		var cmd tea.Cmd
		h.title, cmd = h.title.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) updateNaming(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.naming = false
		return h, nil
	case "enter":
		title := strings.TrimSpace(h.title.Value())
		if title == "" {
			title = "Assessment " + h.now().Format("2006-01-02")
		}
		h.naming = false
		return h, func() tea.Msg {
			l, err := h.svc.Create(context.Background(), h.identity, title)
			return createdMsg{Loaded: l, Err: err}
		}
	}
	var cmd tea.Cmd
	h.title, cmd = h.title.Update(msg)
	return h, cmd
}

// Naming reports whether the new-assessment title prompt is open.
func (h *HomeScreen) Naming() bool {
	return h.naming
}

func (h *HomeScreen) open(id string) tea.Cmd {
	s := questionnaire.New(h.svc, h.identity, id)
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// selectedRecord maps the menu cursor to a record. The first item is
// "New assessment".
func (h *HomeScreen) selectedRecord() (store.AssessmentRecord, bool) {
	i := h.menu.Selected - 1
	if i < 0 || i >= len(h.records) {
		return store.AssessmentRecord{}, false
	}
	return h.records[i], true
}

func (h *HomeScreen) buildMenu() components.Menu {
	items := []components.MenuItem{{
		Label: "New assessment",
		Action: func() tea.Cmd {
			h.naming = true
			h.title = components.NewTextInput("Assessment title", "", 200)
			return h.title.Init()
		},
	}}
	now := h.now()
	for _, rec := range h.records {
		id := rec.ID
		items = append(items, components.MenuItem{
			Label:  rec.Title,
			Detail: fmt.Sprintf("%s · %s", rec.Status, timefmt.RelativeTime(rec.UpdatedAt, now)),
			Action: func() tea.Cmd { return h.open(id) },
		})
	}
	items = append(items, components.MenuItem{
		Label:  "Quit",
		Action: func() tea.Cmd { return tea.Quit },
	})
	return components.NewMenu(items)
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  CMMC Level 1 self-assessment"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("  Signed in as " + h.identity.ID))
	b.WriteString("\n\n")

	if h.naming {
		b.WriteString(theme.Body.Render("  Title for the new assessment:"))
		b.WriteString("\n\n  ")
		b.WriteString(h.title.View())
		b.WriteString("\n")
		return b.String()
	}

	if !h.loaded {
		b.WriteString(theme.Hint.Render("  Loading..."))
		return b.String()
	}
	b.WriteString(h.menu.View())
	if h.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Failed.Render("  " + h.errMsg))
	}
	return b.String()
}
