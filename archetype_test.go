package ecs

import "testing"

type atPosition struct{ X, Y float64 }

func newTestArchetype(t *testing.T, r *TypeRegistry) *Archetype {
	t.Helper()
	kind, err := register[atPosition](r, 0)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	sig := SignatureOf(kind.ID)
	return newArchetype(1, sig, []*ComponentKind{kind})
}

func TestArchetypeAppendAndRowOf(t *testing.T) {
	r := NewTypeRegistry()
	a := newTestArchetype(t, r)
	e := NewEntity(1, 0)
	row := a.appendRow(e)
	if row != 0 {
		t.Fatalf("first appended row should be 0, got %d", row)
	}
	got, ok := a.RowOf(e)
	if !ok || got != 0 {
		t.Fatalf("RowOf(e) = (%d, %v), want (0, true)", got, ok)
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
}

func TestArchetypeSwapRemoveFixesRowOf(t *testing.T) {
	r := NewTypeRegistry()
	a := newTestArchetype(t, r)
	e1 := NewEntity(1, 0)
	e2 := NewEntity(2, 0)
	e3 := NewEntity(3, 0)
	a.appendRow(e1)
	a.appendRow(e2)
	a.appendRow(e3)

	moved := a.swapRemove(e1)
	if moved != e3 {
		t.Fatalf("swapRemove should report the last entity moved into the vacated row, got %v", moved)
	}
	row, ok := a.RowOf(e3)
	if !ok || row != 0 {
		t.Fatalf("e3 should now be at row 0, got (%d, %v)", row, ok)
	}
	if _, ok := a.RowOf(e1); ok {
		t.Fatalf("e1 should no longer be present after removal")
	}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
}

func TestArchetypeVerifyCatchesLengthMismatch(t *testing.T) {
	r := NewTypeRegistry()
	a := newTestArchetype(t, r)
	e := NewEntity(1, 0)
	a.appendRow(e)
	// Corrupt the invariant directly: entities advanced but no column value
	// was ever appended for this row.
	if err := a.verify(); err == nil {
		t.Fatalf("expected verify to catch column/entities length mismatch")
	}
}

func TestDenseColumnChangeTracking(t *testing.T) {
	col := newDenseColumn[int](1)
	col.append(10, 5)
	if !col.changedAt(0, 5) {
		t.Fatalf("row written this frame should be considered changed")
	}
	col.resetWriteMask()
	if col.changedAt(0, 6) {
		t.Fatalf("after resetWriteMask and a later frame, row should not read as changed")
	}
	col.markChanged(0, 9)
	if !col.changedAt(0, 9) {
		t.Fatalf("markChanged should flip the row back to changed")
	}
}

func TestDenseColumnSwapRemove(t *testing.T) {
	col := newDenseColumn[string](1)
	col.append("a", 0)
	col.append("b", 0)
	col.append("c", 0)
	col.swapRemove(0)
	if col.len() != 2 {
		t.Fatalf("len() = %d, want 2", col.len())
	}
	if *col.get(0) != "c" {
		t.Fatalf("row 0 should now hold the former last value, got %v", *col.get(0))
	}
}
