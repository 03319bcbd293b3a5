package ecs

import "testing"

func TestTagDictionaryInternIsIdempotent(t *testing.T) {
	d := NewTagDictionary()
	a := d.Intern("enemy")
	b := d.Intern("enemy")
	if a != b {
		t.Fatalf("interning the same name twice should return the same id")
	}
}

func TestTagDictionaryLookupUnknown(t *testing.T) {
	d := NewTagDictionary()
	if _, ok := d.Lookup("ghost"); ok {
		t.Fatalf("lookup of a never-interned name should fail")
	}
}

func TestTagDictionaryNameRoundTrip(t *testing.T) {
	d := NewTagDictionary()
	id := d.Intern("boss")
	if got := d.Name(id); got != "boss" {
		t.Fatalf("Name(id) = %q, want boss", got)
	}
}

func TestTagMaskBuildsBitset(t *testing.T) {
	d := NewTagDictionary()
	mask := d.tagMask([]string{"a", "b"})
	idA, _ := d.Lookup("a")
	idB, _ := d.Lookup("b")
	if !mask.Has(TypeID(idA)) || !mask.Has(TypeID(idB)) {
		t.Fatalf("tagMask should set bits for every named tag")
	}
}
