// Package answerkey implements the flat answer-map wire format shared by the
// assessment engine and the report generator.
//
// A stored answer is keyed by a delimiter-packed string:
//
//	<group>@<question>@<shortForm>            control-group answer
//	onboarding^<question>^<shortForm>         onboarding answer
//	<label>**<shortForm>_followup             follow-up explanation
//
// Key models the same information as a tagged record. Format and Parse
// translate between the two so previously stored data stays readable.
package answerkey

import (
	"strings"
)

const (
	ControlSeparator    = "@"
	OnboardingSeparator = "^"
	LabelSeparator      = "**"
	FollowUpSuffix      = "_followup"
	OnboardingMarker    = "onboarding"
)

// Kind tags what a key refers to.
type Kind string

const (
	KindUnknown    Kind = ""
	KindOnboarding Kind = "onboarding"
	KindControl    Kind = "control"
	KindFollowUp   Kind = "followup"
)

// Key is the structured form of an answer-map key.
type Key struct {
	Kind      Kind
	Group     string
	Question  string
	ShortForm string
	Label     string
}

// Control returns the key for a control-group answer.
func Control(group, question, shortForm string) Key {
	return Key{Kind: KindControl, Group: group, Question: question, ShortForm: shortForm}
}

// Onboarding returns the key for an onboarding answer.
func Onboarding(question, shortForm string) Key {
	return Key{Kind: KindOnboarding, Group: OnboardingMarker, Question: question, ShortForm: shortForm}
}

// FollowUp returns the key for the follow-up explanation attached to the
// question identified by parentShortForm.
func FollowUp(label, parentShortForm string) Key {
	return Key{Kind: KindFollowUp, Label: label, ShortForm: parentShortForm}
}

// Format encodes the key in the legacy delimiter format.
func (k Key) Format() string {
	switch k.Kind {
	case KindControl:
		return k.Group + ControlSeparator + k.Question + ControlSeparator + k.ShortForm
	case KindOnboarding:
		return OnboardingMarker + OnboardingSeparator + k.Question + OnboardingSeparator + k.ShortForm
	case KindFollowUp:
		return k.Label + LabelSeparator + FollowUpMarker(k.ShortForm)
	default:
		return k.Question
	}
}

func (k Key) String() string { return k.Format() }

// Parse decodes a legacy key. Malformed keys are not rejected: missing
// segments are left empty and extra segments are ignored.
func Parse(s string) Key {
	switch {
	case IsFollowUp(s):
		label, rest, _ := strings.Cut(s, LabelSeparator)
		short := rest
		if i := strings.Index(rest, FollowUpSuffix); i >= 0 {
			short = rest[:i]
		}
		return Key{Kind: KindFollowUp, Label: label, ShortForm: short}
	case IsOnboarding(s):
		parts := strings.Split(s, OnboardingSeparator)
		return Key{Kind: KindOnboarding, Group: OnboardingMarker, Question: segment(parts, 1), ShortForm: segment(parts, 2)}
	case IsControl(s):
		parts := strings.Split(s, ControlSeparator)
		return Key{Kind: KindControl, Group: segment(parts, 0), Question: segment(parts, 1), ShortForm: segment(parts, 2)}
	default:
		return Key{Kind: KindUnknown, Question: s}
	}
}

// IsFollowUp reports whether a raw key is a follow-up key.
func IsFollowUp(key string) bool {
	return strings.Contains(key, FollowUpSuffix)
}

// IsOnboarding reports whether a raw key is an onboarding answer key.
func IsOnboarding(key string) bool {
	return strings.Contains(key, OnboardingMarker) &&
		strings.Contains(key, OnboardingSeparator) &&
		!IsFollowUp(key)
}

// IsControl reports whether a raw key is a control-group answer key.
func IsControl(key string) bool {
	return strings.Contains(key, ControlSeparator) && !IsFollowUp(key)
}

// FollowUpMarker returns the substring that identifies follow-up keys for
// the given short form.
func FollowUpMarker(shortForm string) string {
	return shortForm + FollowUpSuffix
}

// LabelOf returns the label segment of a follow-up key.
func LabelOf(key string) string {
	return strings.Split(key, LabelSeparator)[0]
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
