package assessment

import "slices"

// SoftwareEntry is a user-declared software asset.
type SoftwareEntry struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Vendor  string `json:"vendor,omitempty"`
	Version string `json:"version,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// EntryID implements Entry.
func (e SoftwareEntry) EntryID() string { return e.ID }

// HardwareEntry is a user-declared hardware asset.
type HardwareEntry struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Type         string `json:"type,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Location     string `json:"location,omitempty"`
}

// EntryID implements Entry.
func (e HardwareEntry) EntryID() string { return e.ID }

// Entry is anything that can be kept in a Registry.
type Entry interface {
	EntryID() string
}

// Inventory is the serialisable form of both registries.
type Inventory struct {
	Software []SoftwareEntry `json:"software"`
	Hardware []HardwareEntry `json:"hardware"`
}

// Registry is an insertion-ordered collection of entries with unique ids.
type Registry[T Entry] struct {
	kind    string
	entries []T
}

// NewRegistry creates an empty registry. kind names the entry type in errors.
func NewRegistry[T Entry](kind string) *Registry[T] {
	return &Registry[T]{kind: kind}
}

// Add appends e. It fails with *DuplicateIDError if the id is taken.
func (r *Registry[T]) Add(e T) error {
	id := e.EntryID()
	if id == "" {
		return ErrMissingID
	}
	if r.index(id) >= 0 {
		return &DuplicateIDError{Kind: r.kind, ID: id}
	}
	r.entries = append(r.entries, e)
	return nil
}

// Remove deletes the entry with the given id. It fails with
// *NotFoundError if no such entry exists.
func (r *Registry[T]) Remove(id string) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{Kind: r.kind, ID: id}
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return nil
}

// Get returns the entry with the given id.
func (r *Registry[T]) Get(id string) (T, bool) {
	i := r.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return r.entries[i], true
}

// List returns a copy of all entries in insertion order.
func (r *Registry[T]) List() []T {
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int { return len(r.entries) }

func (r *Registry[T]) index(id string) int {
	return slices.IndexFunc(r.entries, func(e T) bool { return e.EntryID() == id })
}
