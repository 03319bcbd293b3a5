package ecs

import "testing"

func TestArchetypeIndexGetOrCreateReusesSameSignature(t *testing.T) {
	idx := NewArchetypeIndex()
	sig := SignatureOf(1, 2)
	a := idx.GetOrCreate(sig, nil)
	b := idx.GetOrCreate(sig, nil)
	if a != b {
		t.Fatalf("GetOrCreate with the same signature should return the same archetype")
	}
}

func TestArchetypeIndexVersionBumpsOnCreate(t *testing.T) {
	idx := NewArchetypeIndex()
	v0 := idx.Version()
	idx.GetOrCreate(SignatureOf(1), nil)
	if idx.Version() == v0 {
		t.Fatalf("version should bump when a new archetype is created")
	}
	v1 := idx.Version()
	idx.GetOrCreate(SignatureOf(1), nil)
	if idx.Version() != v1 {
		t.Fatalf("version should not bump on a cache hit")
	}
}

func TestArchetypeIndexMatchRequiredForbidden(t *testing.T) {
	idx := NewArchetypeIndex()
	ab := idx.GetOrCreate(SignatureOf(1, 2), nil)
	idx.GetOrCreate(SignatureOf(1, 2, 3), nil)
	idx.GetOrCreate(SignatureOf(2), nil)

	var matched []*Archetype
	for a := range idx.Match(SignatureOf(1, 2), SignatureOf(3)) {
		matched = append(matched, a)
	}
	if len(matched) != 1 || matched[0] != ab {
		t.Fatalf("expected only the (1,2) archetype to match required={1,2} forbidden={3}, got %d results", len(matched))
	}
}

func TestArchetypeIndexCleanupRemovesEmpty(t *testing.T) {
	idx := NewArchetypeIndex()
	sig := SignatureOf(1)
	a := idx.GetOrCreate(sig, nil)
	e := Entity(1)
	a.appendRow(e)
	v0 := idx.Version()

	idx.Cleanup()
	if len(idx.All()) != 1 {
		t.Fatalf("non-empty archetype should survive cleanup")
	}

	a.swapRemove(e)
	idx.Cleanup()
	if len(idx.All()) != 0 {
		t.Fatalf("empty archetype should be removed by cleanup")
	}
	if idx.Version() == v0 {
		t.Fatalf("cleanup removing an archetype should bump the version")
	}
	if _, ok := idx.Get(sig.Key()); ok {
		t.Fatalf("removed archetype should no longer be resolvable by key")
	}
}
