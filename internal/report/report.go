// Package report turns a flat answer map into grouped, scored results.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/selfassess/internal/answerkey"
)

// FollowUpQuestion is the label given to the synthetic onboarding entry
// that carries a follow-up answer.
const FollowUpQuestion = "follow up explanation"

// NullDataError is returned when a report is built from nil answer data.
type NullDataError struct{}

func (e *NullDataError) Error() string {
	return "report data is null"
}

// Report generates results from one assessment's answer map.
type Report struct {
	data *answerkey.StorageData
}

// New creates a Report over data. It fails with *NullDataError if data is nil.
func New(data *answerkey.StorageData) (*Report, error) {
	if data == nil {
		return nil, &NullDataError{}
	}
	return &Report{data: data}, nil
}

// FromJSON decodes a JSON answer map and creates a Report. A JSON null
// yields *NullDataError.
func FromJSON(raw []byte) (*Report, error) {
	var data *answerkey.StorageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode answer data: %w", err)
	}
	return New(data)
}

// Generate extracts onboarding answers, groups control answers and scores
// them. Keys are visited in answer-map order.
func (r *Report) Generate() Result {
	res := Result{
		Onboarding: r.onboarding(),
		Controls:   r.controls(),
	}
	for i := range res.Controls {
		c := &res.Controls[i]
		for _, qa := range c.QuestionAnswers {
			c.MaxScore++
			res.MaxScore++
			if strings.ToLower(qa.Answer) == "yes" {
				c.Score++
				res.Score++
			}
		}
	}
	return res
}

func (r *Report) onboarding() []QuestionAnswer {
	var out []QuestionAnswer
	for _, key := range r.data.Keys() {
		if !answerkey.IsOnboarding(key) {
			continue
		}
		parts := strings.Split(key, answerkey.OnboardingSeparator)
		qa := QuestionAnswer{
			Question:  segment(parts, 1),
			ShortForm: segment(parts, 2),
			Answer:    r.answer(key),
		}
		out = append(out, qa)

		if fu, ok := r.followUp(qa.ShortForm); ok {
			out = append(out, QuestionAnswer{
				Question:  FollowUpQuestion,
				ShortForm: answerkey.FollowUpMarker(qa.ShortForm),
				Answer:    fu.Answer,
			})
		}
	}
	return out
}

func (r *Report) controls() []ControlResult {
	var out []ControlResult
	index := make(map[string]int)
	for _, key := range r.data.Keys() {
		if !answerkey.IsControl(key) {
			continue
		}
		parts := strings.Split(key, answerkey.ControlSeparator)
		group := segment(parts, 0)
		qa := QuestionAnswer{
			Question:  segment(parts, 1),
			ShortForm: segment(parts, 2),
			Answer:    r.answer(key),
		}
		if fu, ok := r.followUp(qa.ShortForm); ok {
			qa.FollowUp = &fu
		}

		i, ok := index[group]
		if !ok {
			i = len(out)
			index[group] = i
			out = append(out, ControlResult{Group: group})
		}
		out[i].QuestionAnswers = append(out[i].QuestionAnswers, qa)
	}
	return out
}

// followUp returns the first answer whose key carries the follow-up marker
// for shortForm.
func (r *Report) followUp(shortForm string) (FollowUp, bool) {
	if shortForm == "" {
		return FollowUp{}, false
	}
	marker := answerkey.FollowUpMarker(shortForm)
	for _, key := range r.data.Keys() {
		if strings.Contains(key, marker) {
			return FollowUp{
				Label:  answerkey.LabelOf(key),
				Answer: r.answer(key),
			}, true
		}
	}
	return FollowUp{}, false
}

func (r *Report) answer(key string) string {
	v, _ := r.data.Get(key)
	return answerkey.FormatValue(v)
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
