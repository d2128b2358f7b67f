package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/selfassess/internal/ui/theme"
)

// Choice is a single-select option list for radio questions.
type Choice struct {
	Prompt   string
	Options  []string
	Selected int
	Chosen   string
}

// NewChoice creates a choice list. The cursor starts on current when it is
// one of the options.
func NewChoice(prompt string, options []string, current string) Choice {
	c := Choice{Prompt: prompt, Options: options}
	if i := slices.Index(options, current); i >= 0 {
		c.Selected = i
	}
	return c
}

// Update handles keyboard navigation. Enter records the selected option in
// Chosen.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Options) == 0 {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		c.Chosen = c.Options[c.Selected]
	}
	return c, nil
}

// View renders the prompt and options. current marks the stored answer.
func (c Choice) View(current string) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Prompt))
	b.WriteString("\n\n")

	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected {
			prefix = "▸ "
		}
		mark := " "
		if opt == current {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s", prefix, mark, opt)

		switch {
		case i == c.Selected:
			b.WriteString(theme.Selected.Render(line))
		case opt == current:
			b.WriteString(theme.Answered.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
