package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// QuestionAnswer is one answered question in a report.
type QuestionAnswer struct {
	Question  string    `json:"question"`
	ShortForm string    `json:"shortForm"`
	Answer    string    `json:"answer"`
	FollowUp  *FollowUp `json:"followUp,omitempty"`
}

// FollowUp is the free-text explanation attached to an answer.
type FollowUp struct {
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

// ControlResult is the scored answers of one control group.
type ControlResult struct {
	Group           string           `json:"group"`
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	QuestionAnswers []QuestionAnswer `json:"questionAnswers"`
}

// Percent returns the group score as a percentage.
func (c ControlResult) Percent() float64 {
	return percent(c.Score, c.MaxScore)
}

// Result is the full report.
type Result struct {
	Onboarding []QuestionAnswer `json:"onboarding"`
	Controls   []ControlResult  `json:"controls"`
	Score      int              `json:"score"`
	MaxScore   int              `json:"maxScore"`
}

// Percent returns the overall score as a percentage.
func (r Result) Percent() float64 {
	return percent(r.Score, r.MaxScore)
}

// Control returns the result for group.
func (r Result) Control(group string) (ControlResult, bool) {
	for _, c := range r.Controls {
		if c.Group == group {
			return c, true
		}
	}
	return ControlResult{}, false
}

// WriteText renders r as aligned plain text.
func (r Result) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if len(r.Onboarding) > 0 {
		fmt.Fprintln(tw, "ONBOARDING")
		for _, qa := range r.Onboarding {
			fmt.Fprintf(tw, "  %s\t%s\n", qa.Question, qa.Answer)
		}
		fmt.Fprintln(tw)
	}

	for _, c := range r.Controls {
		fmt.Fprintf(tw, "%s\t%d/%d\t(%.0f%%)\n", c.Group, c.Score, c.MaxScore, c.Percent())
		for _, qa := range c.QuestionAnswers {
			fmt.Fprintf(tw, "  %s\t%s\n", qa.ShortForm, qa.Answer)
			if qa.FollowUp != nil {
				fmt.Fprintf(tw, "    %s\t%s\n", qa.FollowUp.Label, qa.FollowUp.Answer)
			}
		}
	}
	fmt.Fprintf(tw, "\nOVERALL\t%d/%d\t(%.0f%%)\n", r.Score, r.MaxScore, r.Percent())
	return tw.Flush()
}

func percent(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
