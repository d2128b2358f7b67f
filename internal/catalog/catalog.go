package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// Catalog is an ordered, immutable set of question definitions with an id
// index. The first question is the entry point of every traversal.
type Catalog struct {
	name      string
	version   string
	questions []Question
	byID      map[string]int
	followUps map[string]string
}

// New builds a Catalog from an ordered question list. It fails when the
// list has structural errors (empty, duplicate ids, cycles). Dangling
// successor references are only warnings; see Validate.
func New(questions []Question) (*Catalog, error) {
	return newCatalog("", "", questions)
}

func newCatalog(name, version string, questions []Question) (*Catalog, error) {
	if errs := Errors(validateQuestions(questions)); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
	}

	c := &Catalog{
		name:      name,
		version:   version,
		questions: make([]Question, len(questions)),
		byID:      make(map[string]int, len(questions)),
		followUps: make(map[string]string),
	}
	for i, q := range questions {
		c.questions[i] = q.clone()
		c.byID[q.ID] = i
		if q.FollowUpOf != "" {
			if _, seen := c.followUps[q.FollowUpOf]; !seen {
				c.followUps[q.FollowUpOf] = q.ID
			}
		}
	}
	return c, nil
}

// Name returns the catalog's display name, if any.
func (c *Catalog) Name() string { return c.name }

// Version returns the catalog's version label, if any.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// First returns the entry question.
func (c *Catalog) First() Question {
	return c.questions[0].clone()
}

// Get returns the question with the given id.
func (c *Catalog) Get(id string) (Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i].clone(), true
}

// Has reports whether id names a question in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Questions returns all questions in catalog order.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = q.clone()
	}
	return out
}

// FollowUpFor returns the follow-up question attached to parentID.
func (c *Catalog) FollowUpFor(parentID string) (Question, bool) {
	id, ok := c.followUps[parentID]
	if !ok {
		return Question{}, false
	}
	return c.Get(id)
}

// Sections returns the distinct section names in first-appearance order.
func (c *Catalog) Sections() []string {
	var out []string
	for _, q := range c.questions {
		if !slices.Contains(out, q.Section) {
			out = append(out, q.Section)
		}
	}
	return out
}

// Validate re-runs the structural checks and returns every issue found,
// including warnings that did not prevent construction.
func (c *Catalog) Validate() []Issue {
	return validateQuestions(c.questions)
}
