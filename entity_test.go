package ecs

import (
	"testing"
)

func TestEntityManagerCreateDestroy(t *testing.T) {
	m := NewEntityManager()

	e1 := m.Create(true)
	if !m.IsAlive(e1) {
		t.Fatalf("e1 should be alive after create")
	}
	if e1.IsNil() {
		t.Fatalf("freshly created entity should not be nil")
	}

	if !m.Destroy(e1) {
		t.Fatalf("destroy of live entity should succeed")
	}
	if m.IsAlive(e1) {
		t.Fatalf("e1 should not be alive after destroy")
	}

	// A second destroy of the same stale handle must fail, not panic.
	if m.Destroy(e1) {
		t.Fatalf("destroying an already-dead handle should return false")
	}
}

func TestEntityManagerRecycleBumpsGeneration(t *testing.T) {
	m := NewEntityManager()

	e1 := m.Create(true)
	m.Destroy(e1)

	e2 := m.Create(true)
	if e2.Slot() != e1.Slot() {
		t.Fatalf("expected slot reuse, got e1.Slot=%d e2.Slot=%d", e1.Slot(), e2.Slot())
	}
	if e2.Generation() != e1.Generation()+1 {
		t.Fatalf("expected generation bump, got e1.Generation=%d e2.Generation=%d", e1.Generation(), e2.Generation())
	}

	// The stale handle from before destroy must never be reported alive,
	// even though its slot has been recycled into a new live entity.
	if m.IsAlive(e1) {
		t.Fatalf("stale handle must not be alive after recycle")
	}
	if !m.IsAlive(e2) {
		t.Fatalf("recycled handle must be alive")
	}
}

func TestEntityManagerGenerationSoundnessProperty(t *testing.T) {
	// Property test (spec §8 invariant 1): random interleavings of
	// create/destroy never report a stale handle as alive, and every handle
	// returned by Create remains alive until its matching Destroy.
	m := NewEntityManager()
	var live []Entity
	var seed uint64 = 1

	next := func() uint64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return seed >> 33
	}

	for i := 0; i < 5000; i++ {
		switch next() % 3 {
		case 0, 1:
			e := m.Create(true)
			if !m.IsAlive(e) {
				t.Fatalf("entity not alive immediately after create")
			}
			live = append(live, e)
		default:
			if len(live) == 0 {
				continue
			}
			idx := int(next()) % len(live)
			e := live[idx]
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			if !m.Destroy(e) {
				t.Fatalf("destroy of tracked-live entity failed")
			}
			if m.IsAlive(e) {
				t.Fatalf("entity still alive after destroy")
			}
		}
	}

	for _, e := range live {
		if !m.IsAlive(e) {
			t.Fatalf("entity expected alive at end of run is not")
		}
	}
}

func TestEntityManagerSetEnabled(t *testing.T) {
	m := NewEntityManager()
	e := m.Create(false)
	if m.IsEnabled(e) {
		t.Fatalf("entity created disabled should report disabled")
	}
	m.SetEnabled(e, true)
	if !m.IsEnabled(e) {
		t.Fatalf("entity should be enabled after SetEnabled(true)")
	}
}

func TestEntityManagerAliveCount(t *testing.T) {
	m := NewEntityManager()
	a := m.Create(true)
	m.Create(true)
	m.Destroy(a)
	if got := m.AliveCount(); got != 1 {
		t.Fatalf("AliveCount() = %d, want 1", got)
	}
}

func TestEntityManagerGrowthPreservesContents(t *testing.T) {
	m := NewEntityManager()
	var entities []Entity
	for i := 0; i < 300; i++ {
		entities = append(entities, m.Create(true))
	}
	for _, e := range entities {
		if !m.IsAlive(e) {
			t.Fatalf("entity %v lost after growth", e)
		}
	}
}
