// Package assessment holds the question-flow engine: the visible question
// sequence computed from a catalog and the current answers, plus the
// software and hardware inventory registries attached to an assessment.
//
// An Assessment is not safe for concurrent use. Callers serialise access.
package assessment

import (
	"maps"
	"slices"

	"github.com/abhisek/selfassess/internal/answerkey"
	"github.com/abhisek/selfassess/internal/catalog"
)

// Assessment is one user's pass through a questionnaire.
type Assessment struct {
	catalog  *catalog.Catalog
	answers  map[string]string
	sequence []string

	software *Registry[SoftwareEntry]
	hardware *Registry[HardwareEntry]
}

// New creates a fresh assessment over c. Each question starts with its
// catalog default value.
func New(c *catalog.Catalog) *Assessment {
	a := &Assessment{
		catalog:  c,
		answers:  make(map[string]string),
		software: NewRegistry[SoftwareEntry]("software entry"),
		hardware: NewRegistry[HardwareEntry]("hardware entry"),
	}
	a.sequence = a.walk([]string{c.First().ID})
	return a
}

// FromStorageData rehydrates an assessment from a stored answer map.
// Keys that do not resolve to a catalog question are ignored.
func FromStorageData(c *catalog.Catalog, data *answerkey.StorageData) *Assessment {
	a := New(c)
	if data == nil {
		return a
	}

	for _, raw := range data.Keys() {
		v, _ := data.Get(raw)
		id, ok := a.questionIDForKey(answerkey.Parse(raw))
		if !ok {
			continue
		}
		a.answers[id] = answerkey.FormatValue(v)
	}
	a.sequence = a.walk([]string{c.First().ID})
	return a
}

func (a *Assessment) questionIDForKey(k answerkey.Key) (string, bool) {
	switch k.Kind {
	case answerkey.KindOnboarding, answerkey.KindControl:
		if a.catalog.Has(k.ShortForm) {
			return k.ShortForm, true
		}
	case answerkey.KindFollowUp:
		if fu, ok := a.catalog.FollowUpFor(k.ShortForm); ok {
			return fu.ID, true
		}
		if id := answerkey.FollowUpMarker(k.ShortForm); a.catalog.Has(id) {
			return id, true
		}
	}
	return "", false
}

// Catalog returns the catalog this assessment runs over.
func (a *Assessment) Catalog() *catalog.Catalog {
	return a.catalog
}

// UpdateValue sets the answer of a visible question and recomputes the
// sequence from that question forward. It fails with *NotFoundError if id
// is not part of the current sequence.
func (a *Assessment) UpdateValue(id, value string) error {
	pos := slices.Index(a.sequence, id)
	if pos < 0 {
		return &NotFoundError{Kind: "question", ID: id}
	}
	a.answers[id] = value
	a.sequence = a.walk(slices.Clone(a.sequence[:pos+1]))
	return nil
}

// Questions returns the visible questions in traversal order, each carrying
// its current value. The slice is a snapshot.
func (a *Assessment) Questions() []catalog.Question {
	out := make([]catalog.Question, 0, len(a.sequence))
	for _, id := range a.sequence {
		q, _ := a.catalog.Get(id)
		q.Value = a.value(id)
		out = append(out, q)
	}
	return out
}

// QuestionIDs returns the ids of the visible questions in traversal order.
func (a *Assessment) QuestionIDs() []string {
	return slices.Clone(a.sequence)
}

// Value returns the current value of question id.
func (a *Assessment) Value(id string) (string, bool) {
	if !a.catalog.Has(id) {
		return "", false
	}
	return a.value(id), true
}

// Answers returns a copy of every explicitly set answer, visible or not.
func (a *Assessment) Answers() map[string]string {
	return maps.Clone(a.answers)
}

// Progress reports how many visible questions have a non-empty value.
func (a *Assessment) Progress() (answered, total int) {
	for _, id := range a.sequence {
		if a.value(id) != "" {
			answered++
		}
	}
	return answered, len(a.sequence)
}

// StorageData serialises the answers of visible questions into the flat
// answer-map format consumed by the report generator. Unanswered questions
// are omitted.
func (a *Assessment) StorageData() *answerkey.StorageData {
	data := answerkey.NewStorageData()
	for _, q := range a.Questions() {
		if q.Value == "" {
			continue
		}
		data.SetKey(storageKey(q), q.Value)
	}
	return data
}

func storageKey(q catalog.Question) answerkey.Key {
	switch {
	case q.IsFollowUp():
		return answerkey.FollowUp(q.Text, q.FollowUpOf)
	case q.IsOnboarding():
		return answerkey.Onboarding(q.Text, q.ID)
	default:
		return answerkey.Control(q.Section, q.Text, q.ID)
	}
}

// value returns the explicit answer for id, or the catalog default.
func (a *Assessment) value(id string) string {
	if v, ok := a.answers[id]; ok {
		return v
	}
	q, _ := a.catalog.Get(id)
	return q.Value
}

// walk extends seq from its last question until a terminal question, an id
// missing from the catalog, or a revisited id.
func (a *Assessment) walk(seq []string) []string {
	seen := make(map[string]bool, len(seq))
	for _, id := range seq {
		seen[id] = true
	}

	cur := seq[len(seq)-1]
	for {
		q, ok := a.catalog.Get(cur)
		if !ok {
			return seq
		}
		next := q.NextFor(a.value(cur))
		if next == "" || !a.catalog.Has(next) || seen[next] {
			return seq
		}
		seq = append(seq, next)
		seen[next] = true
		cur = next
	}
}

// AddSoftwareEntry registers a software asset.
func (a *Assessment) AddSoftwareEntry(e SoftwareEntry) error {
	return a.software.Add(e)
}

// AddHardwareEntry registers a hardware asset.
func (a *Assessment) AddHardwareEntry(e HardwareEntry) error {
	return a.hardware.Add(e)
}

// RemoveSoftwareEntry removes a software asset by id.
func (a *Assessment) RemoveSoftwareEntry(id string) error {
	return a.software.Remove(id)
}

// RemoveHardwareEntry removes a hardware asset by id.
func (a *Assessment) RemoveHardwareEntry(id string) error {
	return a.hardware.Remove(id)
}

// SoftwareEntries returns the registered software assets.
func (a *Assessment) SoftwareEntries() []SoftwareEntry {
	return a.software.List()
}

// HardwareEntries returns the registered hardware assets.
func (a *Assessment) HardwareEntries() []HardwareEntry {
	return a.hardware.List()
}

// Inventory returns both registries in serialisable form.
func (a *Assessment) Inventory() Inventory {
	return Inventory{
		Software: a.software.List(),
		Hardware: a.hardware.List(),
	}
}

// RestoreInventory loads previously saved entries into empty registries.
func (a *Assessment) RestoreInventory(inv Inventory) error {
	for _, e := range inv.Software {
		if err := a.software.Add(e); err != nil {
			return err
		}
	}
	for _, e := range inv.Hardware {
		if err := a.hardware.Add(e); err != nil {
			return err
		}
	}
	return nil
}
