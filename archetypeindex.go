package ecs

import "iter"

// ArchetypeIndex maps signatures to archetypes, versioned so query plans
// know when to rebuild (spec §4.3). Grounded on the teacher's
// storage.archetypes{nextID, asSlice, idsGroupedByMask}/NewOrExistingArchetype
// lookup-or-create pattern, generalized with the structural version counter
// query plans cache.
type ArchetypeIndex struct {
	byKey   map[string]*Archetype
	all     []*Archetype
	nextID  archetypeID
	version uint64
}

// NewArchetypeIndex returns an empty index.
func NewArchetypeIndex() *ArchetypeIndex {
	return &ArchetypeIndex{
		byKey:  make(map[string]*Archetype),
		nextID: 1,
	}
}

// Version returns the current structural version, incremented on every
// archetype create/destroy.
func (idx *ArchetypeIndex) Version() uint64 { return idx.version }

// GetOrCreate returns the archetype for sig, creating it if absent and
// bumping the structural version.
func (idx *ArchetypeIndex) GetOrCreate(sig Signature, kinds []*ComponentKind) *Archetype {
	key := sig.Key()
	if a, ok := idx.byKey[key]; ok {
		return a
	}
	a := newArchetype(idx.nextID, sig, kinds)
	idx.nextID++
	idx.byKey[key] = a
	idx.all = append(idx.all, a)
	idx.version++
	return a
}

// Get looks up an archetype by its canonical signature key.
func (idx *ArchetypeIndex) Get(key string) (*Archetype, bool) {
	a, ok := idx.byKey[key]
	return a, ok
}

// All returns every archetype currently tracked.
func (idx *ArchetypeIndex) All() []*Archetype { return idx.all }

// Cleanup removes empty archetypes and bumps the structural version if any
// were removed (spec §4.3, §8 "empty archetypes are garbage-collected on
// cleanup").
func (idx *ArchetypeIndex) Cleanup() {
	kept := idx.all[:0]
	removed := false
	for _, a := range idx.all {
		if a.Len() == 0 {
			delete(idx.byKey, a.key)
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	idx.all = kept
	if removed {
		idx.version++
	}
}

// Match returns an iterator over archetypes whose signature contains all of
// required and none of forbidden (spec §4.3).
func (idx *ArchetypeIndex) Match(required, forbidden Signature) iter.Seq[*Archetype] {
	return func(yield func(*Archetype) bool) {
		for _, a := range idx.all {
			if !a.sig.ContainsAll(required) {
				continue
			}
			if !forbidden.IsEmpty() && a.sig.Intersects(forbidden) {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}
