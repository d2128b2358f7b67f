// Package report renders a submitted assessment's score breakdown.
package report

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	rpt "github.com/abhisek/selfassess/internal/report"
	"github.com/abhisek/selfassess/internal/screen"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
	"github.com/abhisek/selfassess/internal/ui/components"
	"github.com/abhisek/selfassess/internal/ui/layout"
	"github.com/abhisek/selfassess/internal/ui/theme"
)

// reportLoadedMsg carries the generated report.
type reportLoadedMsg struct {
	Result *rpt.Result
	Err    error
}

// ReportScreen displays the score of the last submission.
type ReportScreen struct {
	svc          *service.Service
	identity     storage.Identity
	assessmentID string

	result *rpt.Result
	err    error
	offset int
}

var _ screen.Screen = (*ReportScreen)(nil)
var _ screen.KeyHintProvider = (*ReportScreen)(nil)
var _ screen.StatusProvider = (*ReportScreen)(nil)

// New creates a ReportScreen for one assessment.
func New(svc *service.Service, identity storage.Identity, assessmentID string) *ReportScreen {
	return &ReportScreen{svc: svc, identity: identity, assessmentID: assessmentID}
}

func (s *ReportScreen) Init() tea.Cmd {
	return func() tea.Msg {
		res, err := s.svc.Report(context.Background(), s.identity, s.assessmentID)
		return reportLoadedMsg{Result: res, Err: err}
	}
}

func (s *ReportScreen) Title() string {
	return "Report"
}

func (s *ReportScreen) Status() string {
	if s.result == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d  %.0f%%", s.result.Score, s.result.MaxScore, s.result.Percent())
}

func (s *ReportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		s.result, s.err = msg.Result, msg.Err
		s.offset = 0
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

func (s *ReportScreen) View(width, height int) string {
	if s.err != nil {
		return theme.Failed.Render("  Could not load report: " + s.err.Error())
	}
	if s.result == nil {
		return theme.Hint.Render("  Loading report...")
	}

	lines := strings.Split(renderResult(*s.result, layout.ContentWidth(width)), "\n")
	s.offset = min(s.offset, max(len(lines)-height, 0))
	end := min(s.offset+height, len(lines))
	return strings.Join(lines[s.offset:end], "\n")
}

func renderResult(res rpt.Result, cw int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Overall"))
	b.WriteString("  ")
	b.WriteString(theme.ScoreColor(res.Percent()).Render(
		fmt.Sprintf("%d/%d (%.0f%%)", res.Score, res.MaxScore, res.Percent())))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", res.Score, res.MaxScore, cw).View())
	b.WriteString("\n\n")

	for _, c := range res.Controls {
		label := lipgloss.NewStyle().Width(6).Render(c.Group)
		b.WriteString(components.NewProgressBar(label, c.Score, c.MaxScore, cw).View())
		b.WriteString("\n")
		for _, qa := range c.QuestionAnswers {
			style := theme.Failed
			if strings.EqualFold(qa.Answer, "yes") {
				style = theme.Answered
			}
			b.WriteString(fmt.Sprintf("    %s  %s\n",
				lipgloss.NewStyle().Width(14).Foreground(theme.TextDim).Render(qa.ShortForm),
				style.Render(qa.Answer)))
			if qa.FollowUp != nil {
				b.WriteString(theme.Hint.Render("      "+qa.FollowUp.Answer) + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(res.Onboarding) > 0 {
		b.WriteString(theme.Section.Render("Organization"))
		b.WriteString("\n")
		for _, qa := range res.Onboarding {
			b.WriteString(fmt.Sprintf("  %s\n    %s\n",
				theme.Subtitle.Render(qa.Question), theme.Body.Render(qa.Answer)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
