package assessment

import (
	"errors"
	"testing"

	"github.com/abhisek/selfassess/internal/catalog"
)

func TestSoftwareInventory(t *testing.T) {
	a := New(catalog.Default())

	if err := a.AddSoftwareEntry(SoftwareEntry{ID: "s1", Name: "Office"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := a.AddSoftwareEntry(SoftwareEntry{ID: "s2", Name: "Slack"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	var dup *DuplicateIDError
	for range 2 {
		if err := a.AddSoftwareEntry(SoftwareEntry{ID: "s1", Name: "Again"}); !errors.As(err, &dup) {
			t.Fatalf("err = %v, want *DuplicateIDError", err)
		}
	}
	if n := len(a.SoftwareEntries()); n != 2 {
		t.Fatalf("entries = %d, want 2", n)
	}

	if err := a.RemoveSoftwareEntry("s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	var nf *NotFoundError
	for range 2 {
		if err := a.RemoveSoftwareEntry("s1"); !errors.As(err, &nf) {
			t.Fatalf("err = %v, want *NotFoundError", err)
		}
	}
	if got := a.SoftwareEntries(); len(got) != 1 || got[0].ID != "s2" {
		t.Errorf("entries = %+v", got)
	}
}

func TestHardwareInventory(t *testing.T) {
	a := New(catalog.Default())

	if err := a.AddHardwareEntry(HardwareEntry{ID: "h1", Name: "Laptop"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	var dup *DuplicateIDError
	if err := a.AddHardwareEntry(HardwareEntry{ID: "h1", Name: "Laptop"}); !errors.As(err, &dup) {
		t.Errorf("err = %v, want *DuplicateIDError", err)
	}
	var nf *NotFoundError
	if err := a.RemoveHardwareEntry("h9"); !errors.As(err, &nf) {
		t.Errorf("err = %v, want *NotFoundError", err)
	}
	if err := a.AddHardwareEntry(HardwareEntry{Name: "No id"}); !errors.Is(err, ErrMissingID) {
		t.Errorf("err = %v, want ErrMissingID", err)
	}
}

func TestRegistry_OrderAndCopy(t *testing.T) {
	r := NewRegistry[SoftwareEntry]("software entry")
	for _, id := range []string{"c", "a", "b"} {
		if err := r.Add(SoftwareEntry{ID: id, Name: id}); err != nil {
			t.Fatal(err)
		}
	}
	list := r.List()
	if list[0].ID != "c" || list[1].ID != "a" || list[2].ID != "b" {
		t.Errorf("order = %+v", list)
	}
	list[0].Name = "changed"
	if e, _ := r.Get("c"); e.Name != "c" {
		t.Error("List returned aliased storage")
	}
}

func TestRestoreInventory(t *testing.T) {
	src := New(catalog.Default())
	_ = src.AddSoftwareEntry(SoftwareEntry{ID: "s1", Name: "Office"})
	_ = src.AddHardwareEntry(HardwareEntry{ID: "h1", Name: "Laptop"})

	dst := New(catalog.Default())
	if err := dst.RestoreInventory(src.Inventory()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(dst.SoftwareEntries()) != 1 || len(dst.HardwareEntries()) != 1 {
		t.Errorf("restored inventory = %+v", dst.Inventory())
	}
	var dup *DuplicateIDError
	if err := dst.RestoreInventory(src.Inventory()); !errors.As(err, &dup) {
		t.Errorf("second restore err = %v, want *DuplicateIDError", err)
	}
}
