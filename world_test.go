package ecs

import "testing"

type wtPosition struct{ X, Y float64 }
type wtVelocity struct{ X, Y float64 }

func TestWorldCreateDestroyEntity(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity(true)
	if !w.IsAlive(e) {
		t.Fatalf("freshly created entity should be alive")
	}
	if !w.DestroyEntity(e) {
		t.Fatalf("destroy of live entity should succeed")
	}
	if w.IsAlive(e) {
		t.Fatalf("entity should not be alive after destroy")
	}
}

func TestWorldSetGetComponentTransitionsArchetype(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	e := w.CreateEntity(true)

	if pos.Has(w, e) {
		t.Fatalf("entity should not have Position before Set")
	}
	pos.Set(w, e, wtPosition{X: 1, Y: 2})
	if !pos.Has(w, e) {
		t.Fatalf("entity should have Position after Set")
	}
	got := pos.Get(w, e)
	if got == nil || got.X != 1 || got.Y != 2 {
		t.Fatalf("Get = %v, want {1 2}", got)
	}
}

func TestWorldSetComponentOverwritesInPlace(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	e := w.CreateEntity(true)
	pos.Set(w, e, wtPosition{X: 1, Y: 1})
	archBefore := w.ArchetypeOf(e)
	pos.Set(w, e, wtPosition{X: 5, Y: 5})
	if w.ArchetypeOf(e) != archBefore {
		t.Fatalf("overwriting an existing component should not change archetype")
	}
	if got := pos.Get(w, e); got.X != 5 {
		t.Fatalf("value should be overwritten, got %v", got)
	}
}

func TestWorldAddSecondComponentMovesArchetype(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	vel := RegisterComponent[wtVelocity](w)
	e := w.CreateEntity(true)
	pos.Set(w, e, wtPosition{X: 1})
	firstArch := w.ArchetypeOf(e)
	vel.Set(w, e, wtVelocity{X: 2})
	if w.ArchetypeOf(e) == firstArch {
		t.Fatalf("adding a second component type should move the entity to a new archetype")
	}
	if !pos.Has(w, e) || !vel.Has(w, e) {
		t.Fatalf("entity should carry both components after the transition")
	}
	if got := pos.Get(w, e); got.X != 1 {
		t.Fatalf("Position value should survive the archetype transition, got %v", got)
	}
}

func TestWorldRemoveComponent(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	vel := RegisterComponent[wtVelocity](w)
	e := w.CreateEntity(true)
	pos.Set(w, e, wtPosition{X: 1})
	vel.Set(w, e, wtVelocity{X: 2})

	pos.Remove(w, e)
	if pos.Has(w, e) {
		t.Fatalf("Position should be gone after Remove")
	}
	if !vel.Has(w, e) {
		t.Fatalf("Velocity should survive removing Position")
	}
}

func TestWorldRemoveLastComponentDropsArchetypeEntry(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	e := w.CreateEntity(true)
	pos.Set(w, e, wtPosition{X: 1})
	pos.Remove(w, e)
	if w.ArchetypeOf(e) != nil {
		t.Fatalf("entity with no remaining components should have no archetype entry")
	}
}

func TestWorldMarkChanged(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	e := w.CreateEntity(true)
	pos.Set(w, e, wtPosition{X: 1})
	arch := w.ArchetypeOf(e)
	row, _ := arch.RowOf(e)
	arch.cols[pos.ID()].resetWriteMask()
	pos.MarkChanged(w, e)
	if !arch.cols[pos.ID()].changedAt(row, w.frame) {
		t.Fatalf("MarkChanged should flip the row back to changed")
	}
}

func TestWorldSetEnabled(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity(false)
	if w.IsEnabled(e) {
		t.Fatalf("entity created disabled should report disabled")
	}
	w.SetEnabled(e, true)
	if !w.IsEnabled(e) {
		t.Fatalf("entity should be enabled after SetEnabled(true)")
	}
}

func TestWorldTagsAddHasRemove(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity(true)
	w.AddTag(e, "boss")
	if !w.HasTag(e, "boss") {
		t.Fatalf("entity should carry the tag after AddTag")
	}
	w.RemoveTag(e, "boss")
	if w.HasTag(e, "boss") {
		t.Fatalf("entity should not carry the tag after RemoveTag")
	}
}

func TestWorldStructuralMutationRejectedWhileLocked(t *testing.T) {
	w := NewWorld()
	pos := RegisterComponent[wtPosition](w)
	e := w.CreateEntity(true)

	w.lockForIteration()
	pos.Set(w, e, wtPosition{X: 1})
	w.unlockIteration()

	if pos.Has(w, e) {
		t.Fatalf("structural mutation attempted while locked should be rejected")
	}
	failures := w.Diagnostics().Recent()
	if len(failures) == 0 {
		t.Fatalf("rejected mutation should be reported to diagnostics")
	}
}
