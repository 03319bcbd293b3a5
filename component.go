package ecs

import "reflect"

// Component is a marker interface for types usable as component data. Unlike
// the teacher's Component (table.ElementType), this module's storage is
// hand-rolled (column.go/sparseset.go) rather than wrapping table.Table, so
// the marker carries no method set — any Go type, including plain structs
// with no methods, qualifies.
type Component interface{}

// ComponentType[T] is the typed accessor a caller gets back from
// RegisterComponent, binding a Go type to its registry TypeID so later calls
// (Get/Set/Has/Remove) are compile-time type-checked rather than taking a
// raw TypeID (spec §6.1 "TypeRef").
type ComponentType[T any] struct {
	id TypeID
}

// ID returns the stable small integer this component type was assigned.
func (c ComponentType[T]) ID() TypeID { return c.id }

// String returns the underlying Go type's name.
func (c ComponentType[T]) String() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// RegisterComponent registers T with the world's type registry, idempotent
// per Go type (spec §4.2 invariant 5), and returns a typed accessor for it.
func RegisterComponent[T any](w *World) ComponentType[T] {
	kind, err := register[T](w.types, 0)
	if err != nil {
		// register only fails on explicit id collision, and 0 is never
		// passed as explicit here, so this path is unreachable.
		fatal(err)
	}
	return ComponentType[T]{id: kind.ID}
}

// RegisterComponentWithID is RegisterComponent but pins the TypeID, failing
// with IdCollisionError if another live type already holds it (spec §4.2).
func RegisterComponentWithID[T any](w *World, id TypeID) (ComponentType[T], error) {
	kind, err := register[T](w.types, id)
	if err != nil {
		return ComponentType[T]{}, err
	}
	return ComponentType[T]{id: kind.ID}, nil
}

// Get returns a pointer to e's component value, or nil if e does not have
// one (spec §6.1 getComponent).
func (c ComponentType[T]) Get(w *World, e Entity) *T {
	return getComponent[T](w, e, c.id)
}

// Set adds or overwrites e's component value (spec §6.1 addComponent, used
// outside of deferred structural mutation for in-place value updates on an
// entity that already has T).
func (c ComponentType[T]) Set(w *World, e Entity, value T) {
	setComponent[T](w, e, c.id, value)
}

// Has reports whether e currently has a component of type T.
func (c ComponentType[T]) Has(w *World, e Entity) bool {
	return w.hasComponent(e, c.id)
}

// MarkChanged stamps e's component row with the current frame without
// altering the value, so change-filtered queries run later in the same frame
// observe it (the next step resets write masks) (spec
// §6.1 markChanged, §4.4.4).
func (c ComponentType[T]) MarkChanged(w *World, e Entity) {
	w.markChanged(e, c.id)
}

// Remove drops the component from e, a no-op if absent (spec §6.1
// removeComponent).
func (c ComponentType[T]) Remove(w *World, e Entity) {
	w.removeComponent(e, c.id)
}
