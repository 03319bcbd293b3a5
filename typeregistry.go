package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// TypeID is a stable small integer identifying a registered component type.
// Id 0 is reserved (spec §3.2).
type TypeID uint32

// ComponentKind describes one registered component type: its id, its Go
// type, and a human-readable name. A Kind whose Ctor is the zero Type is a
// "shell" type — known by id only, as §4.2 permits for deferred operations
// that reference a type id before (or without) a live Go-side registration.
type ComponentKind struct {
	ID        TypeID
	Name      string
	Ctor      reflect.Type
	elem      table.ElementType
	newColumn func() column
	setRaw    func(w *World, e Entity, value any)
}

// TypeRegistry assigns stable small integer ids to component types and
// provides bidirectional lookup, backed by a github.com/TheBitDrifter/table
// Schema the same way the teacher's storage.schema does (spec §4.2).
type TypeRegistry struct {
	schema   table.Schema
	byGoType map[reflect.Type]*ComponentKind
	byID     map[TypeID]*ComponentKind
	nextID   TypeID
}

// NewTypeRegistry returns a registry backed by a fresh table.Schema.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		schema:   table.Factory.NewSchema(),
		byGoType: make(map[reflect.Type]*ComponentKind),
		byID:     make(map[TypeID]*ComponentKind),
		nextID:   1, // id 0 is reserved
	}
}

// register is the generic entry point invoked by RegisterComponent[T];
// registration is idempotent per Go type (spec §4.2 invariant 5) and, when
// explicitID is non-zero, fails with IdCollisionError on conflict.
func register[T any](r *TypeRegistry, explicitID TypeID) (*ComponentKind, error) {
	goType := reflect.TypeOf((*T)(nil)).Elem()
	if kind, ok := r.byGoType[goType]; ok {
		return kind, nil
	}

	var id TypeID
	if explicitID != 0 {
		if existing, taken := r.byID[explicitID]; taken && existing.Ctor != nil {
			return nil, IdCollisionError{TypeID: explicitID}
		}
		id = explicitID
	} else {
		id = r.nextID
		for {
			if _, taken := r.byID[id]; !taken {
				break
			}
			id++
		}
		r.nextID = id + 1
	}

	elem := table.FactoryNewElementType[T]()
	r.schema.Register(elem)

	kind := &ComponentKind{
		ID:        id,
		Name:      goType.String(),
		Ctor:      goType,
		elem:      elem,
		newColumn: func() column { return newDenseColumn[T](id) },
		setRaw: func(w *World, e Entity, value any) {
			setComponent[T](w, e, id, value.(T))
		},
	}
	r.byGoType[goType] = kind
	r.byID[id] = kind
	return kind, nil
}

// KindByGoType returns the registered kind for a Go type, if any.
func (r *TypeRegistry) KindByGoType(t reflect.Type) (*ComponentKind, bool) {
	k, ok := r.byGoType[t]
	return k, ok
}

// KindByID returns the registered kind for a type id. If the id was only
// ever referenced (never registered with a live Go type), a shell Kind with
// a nil Ctor is returned, per §4.2's "may return a shell type" allowance.
func (r *TypeRegistry) KindByID(id TypeID) (*ComponentKind, bool) {
	k, ok := r.byID[id]
	if ok {
		return k, true
	}
	return &ComponentKind{ID: id, Name: "<unregistered>"}, false
}

// EnsureShell records a bare id reference (e.g. from a deserialized command
// buffer operation) without requiring a Go-side type, so later lookups by id
// succeed even though no constructor is known.
func (r *TypeRegistry) EnsureShell(id TypeID, name string) *ComponentKind {
	if k, ok := r.byID[id]; ok {
		return k
	}
	k := &ComponentKind{ID: id, Name: name}
	r.byID[id] = k
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return k
}
