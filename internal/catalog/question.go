package catalog

// Type is the input type of a question.
type Type string

const (
	TypeText  Type = "text"
	TypeRadio Type = "radio"
)

// SectionOnboarding is the section name shared by all onboarding questions.
// Every other section names a control group.
const SectionOnboarding = "onboarding"

// Conditional overrides a question's default successor when the question's
// current value equals Value.
type Conditional struct {
	Value string `json:"value"`
	Next  string `json:"next"`
}

// Question is a single questionnaire entry. Definitions are immutable once
// loaded into a Catalog; Value carries the default answer only.
type Question struct {
	Section      string        `json:"section"`
	ID           string        `json:"id"`
	Text         string        `json:"question"`
	Value        string        `json:"value"`
	Next         string        `json:"next,omitempty"`
	Conditionals []Conditional `json:"conditionals,omitempty"`
	Type         Type          `json:"type"`
	Options      []string      `json:"options,omitempty"`

	// FollowUpOf names the parent question when this question collects a
	// free-text explanation for the parent's answer.
	FollowUpOf string `json:"followUpOf,omitempty"`
}

// IsOnboarding reports whether q belongs to the onboarding section.
func (q Question) IsOnboarding() bool {
	return q.Section == SectionOnboarding
}

// IsFollowUp reports whether q is a follow-up to another question.
func (q Question) IsFollowUp() bool {
	return q.FollowUpOf != ""
}

// NextFor returns the successor id for the given answer value.
// The first conditional whose trigger equals value wins; otherwise the
// default Next is returned. An empty result means the question is terminal.
func (q Question) NextFor(value string) string {
	for _, c := range q.Conditionals {
		if c.Value == value {
			return c.Next
		}
	}
	return q.Next
}

// Successors returns every id reachable in one step from q.
func (q Question) Successors() []string {
	out := make([]string, 0, len(q.Conditionals)+1)
	if q.Next != "" {
		out = append(out, q.Next)
	}
	for _, c := range q.Conditionals {
		if c.Next != "" {
			out = append(out, c.Next)
		}
	}
	return out
}

func (q Question) clone() Question {
	if q.Conditionals != nil {
		q.Conditionals = append([]Conditional(nil), q.Conditionals...)
	}
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}
