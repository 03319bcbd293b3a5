package ecs

import "fmt"

// InvalidHandleError is returned for operations on a handle whose generation
// no longer matches the slot, or whose slot is dead. Query and accessor
// paths surface it as a plain boolean/zero-value instead where the spec
// calls for that; command-buffer flush logs and skips it.
type InvalidHandleError struct {
	Entity Entity
}

func (e InvalidHandleError) Error() string {
	return fmt.Sprintf("ecs: invalid entity handle %v", e.Entity)
}

// StructuralChangeDuringIterationError is raised synchronously by any
// structural mutation attempted while the world's iteration depth is > 0.
type StructuralChangeDuringIterationError struct{}

func (e StructuralChangeDuringIterationError) Error() string {
	return "ecs: structural change attempted during iteration"
}

// IdCollisionError is raised when an explicit component type id conflicts
// with an existing registration.
type IdCollisionError struct {
	TypeID TypeID
}

func (e IdCollisionError) Error() string {
	return fmt.Sprintf("ecs: component type id %d is already registered", e.TypeID)
}

// PrefabNotFoundError is raised when Spawn is called with an unknown prefab id.
type PrefabNotFoundError struct {
	ID string
}

func (e PrefabNotFoundError) Error() string {
	return fmt.Sprintf("ecs: prefab %q not found", e.ID)
}

// CycleInHierarchyError is raised by Link when the requested parent would
// create a cycle, or when a depth walk exceeds the hard cap.
type CycleInHierarchyError struct {
	Child, Parent Entity
}

func (e CycleInHierarchyError) Error() string {
	return fmt.Sprintf("ecs: linking %v under %v would create a cycle", e.Child, e.Parent)
}

// HierarchyCorruptError is raised when a depth walk exceeds the hard cap of
// 1000 without reaching the root, indicating malformed parent/child data.
type HierarchyCorruptError struct {
	Entity Entity
}

func (e HierarchyCorruptError) Error() string {
	return fmt.Sprintf("ecs: hierarchy walk from %v exceeded max depth", e.Entity)
}

// SerdeMissingError indicates a component type has no registered codec; the
// component is skipped with a warning rather than failing the whole load/save.
type SerdeMissingError struct {
	TypeID TypeID
}

func (e SerdeMissingError) Error() string {
	return fmt.Sprintf("ecs: no serde registered for component type %d", e.TypeID)
}

// VersionMismatchError is raised when a save's format version is unknown to
// the loader.
type VersionMismatchError struct {
	Got, Want uint32
}

func (e VersionMismatchError) Error() string {
	return fmt.Sprintf("ecs: save format version %d is not supported (want %d)", e.Got, e.Want)
}

// StorageLockedError describes a structural call made while the world is
// locked. No call in this package returns it: a structural call made during
// iteration is dropped and reported to Diagnostics as
// StructuralChangeDuringIterationError.
type StorageLockedError struct{}

func (e StorageLockedError) Error() string {
	return "ecs: storage is locked"
}

// StorageCorruptError indicates a debug verify() pass found an archetype
// invariant violation (spec §7: "fatal corruption ... terminates the current
// tick").
type StorageCorruptError struct {
	ArchetypeKey string
	Entity       Entity
}

func (e StorageCorruptError) Error() string {
	return fmt.Sprintf("ecs: archetype %q failed invariant check at entity %v", e.ArchetypeKey, e.Entity)
}
