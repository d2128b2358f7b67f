// Package questionnaire walks the visible questions of one assessment and
// records answers as they are given.
package questionnaire

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/selfassess/internal/catalog"
	"github.com/abhisek/selfassess/internal/router"
	"github.com/abhisek/selfassess/internal/screen"
	reportscreen "github.com/abhisek/selfassess/internal/screens/report"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/ui/components"
	"github.com/abhisek/selfassess/internal/ui/layout"
	"github.com/abhisek/selfassess/internal/ui/theme"
)

// answerCharLimit bounds free-text answers.
const answerCharLimit = 2000

// QuestionnaireScreen implements screen.Screen for answering an assessment.
type QuestionnaireScreen struct {
	svc          *service.Service
	identity     storage.Identity
	assessmentID string

	loaded    *service.Loaded
	questions []catalog.Question
	cursor    int

	choice components.Choice
	input  components.TextInput

	saving bool
	errMsg string
}

var _ screen.Screen = (*QuestionnaireScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionnaireScreen)(nil)
var _ screen.StatusProvider = (*QuestionnaireScreen)(nil)

// New creates a QuestionnaireScreen for one assessment.
func New(svc *service.Service, identity storage.Identity, assessmentID string) *QuestionnaireScreen {
	return &QuestionnaireScreen{svc: svc, identity: identity, assessmentID: assessmentID}
}

func (s *QuestionnaireScreen) Init() tea.Cmd {
	return func() tea.Msg {
		l, err := s.svc.Get(context.Background(), s.identity, s.assessmentID)
		return loadedMsg{Loaded: l, Err: err}
	}
}

func (s *QuestionnaireScreen) Title() string {
	if s.loaded != nil && s.loaded.Record.Title != "" {
		return s.loaded.Record.Title
	}
	return "Questionnaire"
}

func (s *QuestionnaireScreen) Status() string {
	if s.loaded == nil {
		return ""
	}
	answered, total := s.loaded.Assessment.Progress()
	return fmt.Sprintf("%d/%d answered", answered, total)
}

func (s *QuestionnaireScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Save"},
		{Key: "Tab", Description: "Next"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Ctrl+S", Description: "Submit"},
		{Key: "Esc", Description: "Back"},
	}
}

// Current returns the question under the cursor.
func (s *QuestionnaireScreen) Current() (catalog.Question, bool) {
	if s.cursor < 0 || s.cursor >= len(s.questions) {
		return catalog.Question{}, false
	}
	return s.questions[s.cursor], true
}

func (s *QuestionnaireScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case savedMsg:
		return s.handleSaved(msg)
	case submittedMsg:
		return s.handleSubmitted(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if q, ok := s.Current(); ok && q.Type == catalog.TypeText {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuestionnaireScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	first := s.loaded == nil
	s.setLoaded(msg.Loaded)
	if first {
		s.cursor = firstUnanswered(s.questions)
	}
	return s, s.resetEditor()
}

func (s *QuestionnaireScreen) handleSaved(msg savedMsg) (screen.Screen, tea.Cmd) {
	s.saving = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.setLoaded(msg.Loaded)

	// The sequence after the answered question may have changed; advance
	// from wherever that question sits now.
	if i := slices.IndexFunc(s.questions, func(q catalog.Question) bool { return q.ID == msg.QuestionID }); i >= 0 {
		s.cursor = min(i+1, len(s.questions)-1)
	}
	return s, s.resetEditor()
}

func (s *QuestionnaireScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.saving = false
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	report := reportscreen.New(s.svc, s.identity, s.assessmentID)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: report} }
}

func (s *QuestionnaireScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.loaded == nil || s.saving {
		return s, nil
	}

	switch msg.String() {
	case "tab":
		return s, s.move(1)
	case "shift+tab":
		return s, s.move(-1)
	case "ctrl+s":
		s.saving = true
		return s, s.submit()
	}

	q, ok := s.Current()
	if !ok {
		return s, nil
	}

	if q.Type == catalog.TypeRadio {
		s.choice, _ = s.choice.Update(msg)
		if s.choice.Chosen != "" {
			value := s.choice.Chosen
			s.choice.Chosen = ""
			s.saving = true
			return s, s.save(q.ID, value)
		}
		return s, nil
	}

	if msg.String() == "enter" {
		s.saving = true
		return s, s.save(q.ID, strings.TrimSpace(s.input.Value()))
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuestionnaireScreen) setLoaded(l *service.Loaded) {
	s.loaded = l
	s.questions = l.Assessment.Questions()
	s.cursor = min(s.cursor, max(len(s.questions)-1, 0))
}

func (s *QuestionnaireScreen) move(delta int) tea.Cmd {
	next := s.cursor + delta
	if next < 0 || next >= len(s.questions) {
		return nil
	}
	s.cursor = next
	s.errMsg = ""
	return s.resetEditor()
}

// resetEditor prepares the input component for the current question.
func (s *QuestionnaireScreen) resetEditor() tea.Cmd {
	q, ok := s.Current()
	if !ok {
		return nil
	}
	if q.Type == catalog.TypeRadio {
		s.choice = components.NewChoice(q.Text, q.Options, q.Value)
		return nil
	}
	s.input = components.NewTextInput("Type your answer", q.Value, answerCharLimit)
	return s.input.Init()
}

func (s *QuestionnaireScreen) save(questionID, value string) tea.Cmd {
	return func() tea.Msg {
		l, err := s.svc.UpdateAnswer(context.Background(), s.identity, s.assessmentID, questionID, value)
		return savedMsg{QuestionID: questionID, Loaded: l, Err: err}
	}
}

func (s *QuestionnaireScreen) submit() tea.Cmd {
	return func() tea.Msg {
		rec, err := s.svc.Submit(context.Background(), s.identity, s.assessmentID)
		return submittedMsg{Record: rec, Err: err}
	}
}

func firstUnanswered(qs []catalog.Question) int {
	for i, q := range qs {
		if q.Value == "" {
			return i
		}
	}
	return max(len(qs)-1, 0)
}

func (s *QuestionnaireScreen) View(width, height int) string {
	if s.loaded == nil {
		if s.errMsg != "" {
			return theme.Failed.Render("  " + s.errMsg)
		}
		return theme.Hint.Render("  Loading assessment...")
	}

	cw := layout.ContentWidth(width)
	q, ok := s.Current()
	if !ok {
		return theme.Hint.Render("  This questionnaire has no questions.")
	}

	var b strings.Builder
	answered, total := s.loaded.Assessment.Progress()
	b.WriteString(components.NewProgressBar("Progress", answered, total, cw).View())
	b.WriteString("\n\n")

	b.WriteString(theme.Section.Render(sectionLabel(q)))
	b.WriteString(theme.Hint.Render(fmt.Sprintf("   question %d of %d", s.cursor+1, len(s.questions))))
	b.WriteString("\n\n")

	if q.Type == catalog.TypeRadio {
		b.WriteString(s.choice.View(q.Value))
	} else {
		b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(q.Text))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case s.saving:
		b.WriteString(theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		b.WriteString(theme.Failed.Render(s.errMsg))
	case q.Value != "":
		b.WriteString(theme.Answered.Render("✓ answered"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func sectionLabel(q catalog.Question) string {
	switch {
	case q.IsOnboarding():
		return "Organization"
	case q.IsFollowUp():
		return q.Section + " · follow-up"
	default:
		return q.Section + " · " + q.ID
	}
}
