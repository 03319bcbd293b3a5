package ecs

import "reflect"

// Resources is the world-scoped typed singleton container (spec §3.6).
// Grounded on edwinsyarief-lazyecs/resources.go's
// Resources{items []any, types map[reflect.Type]int}, trimmed to the
// spec's getResource/setResource contract: resources are world-scoped
// singletons created on first access and destroyed with the world, not a
// pooled collection, so no free-list is needed here.
type Resources struct {
	items map[reflect.Type]any
}

// NewResources returns an empty resource container.
func NewResources() *Resources {
	return &Resources{items: make(map[reflect.Type]any)}
}

// SetResource installs or replaces the resource of type T.
func SetResource[T any](r *Resources, value *T) {
	r.items[reflect.TypeOf((*T)(nil))] = value
}

// GetResource returns the resource of type T, or nil if none is installed.
func GetResource[T any](r *Resources) *T {
	v, ok := r.items[reflect.TypeOf((*T)(nil))]
	if !ok {
		return nil
	}
	return v.(*T)
}

// GetOrCreateResource returns the resource of type T, creating and
// installing the value factory returns on first access (spec §3.6
// "created on first get_or_create").
func GetOrCreateResource[T any](r *Resources, factory func() *T) *T {
	if existing := GetResource[T](r); existing != nil {
		return existing
	}
	created := factory()
	SetResource[T](r, created)
	return created
}

// RemoveResource deletes the resource of type T, if any.
func RemoveResource[T any](r *Resources) {
	delete(r.items, reflect.TypeOf((*T)(nil)))
}
