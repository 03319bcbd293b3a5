package ecs

// CommandBuffer records deferred structural operations against one world,
// applied in a fixed phase order on Flush (spec §4.5). Grounded on the
// teacher's operation_queue.go EntityOperationsQueue/EntityOperation shape —
// this module accumulates one entry per entity rather than a flat operation
// list, since the spec's add/remove-cancel-each-other and destroy-clears-all
// rules require per-entity state rather than a naively replayed log.
type CommandBuffer struct {
	world *World

	spawns  []prefabSpawnOp
	entries map[Entity]*cmdEntry
	order   []Entity
}

type cmdEntry struct {
	destroy   bool
	enableSet bool
	enableVal bool
	adds      map[TypeID]func(w *World, e Entity)
	addsOrder []TypeID
	removes   map[TypeID]struct{}
}

type prefabSpawnOp struct {
	prefabID string
	opts     SpawnOptions
}

// NewCommandBuffer returns an empty buffer bound to w.
func NewCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{world: w, entries: make(map[Entity]*cmdEntry)}
}

// Cmd is shorthand for NewCommandBuffer(w) (spec §6.1 `cmd()`).
func (w *World) Cmd() *CommandBuffer { return NewCommandBuffer(w) }

func (b *CommandBuffer) entry(e Entity) *cmdEntry {
	en, ok := b.entries[e]
	if !ok {
		en = &cmdEntry{adds: make(map[TypeID]func(w *World, e Entity)), removes: make(map[TypeID]struct{})}
		b.entries[e] = en
		b.order = append(b.order, e)
	}
	return en
}

// Create allocates an entity immediately (so it can be referenced elsewhere
// in the same buffer) and records it for initialization at flush (spec
// §4.5: "allocates entity id immediately").
func (b *CommandBuffer) Create(enabled bool) Entity {
	e := b.world.CreateEntity(enabled)
	b.entry(e)
	return e
}

// Destroy records e for destruction, clearing any other pending operation on
// it (spec §4.5 "destroy supersedes every other pending op").
func (b *CommandBuffer) Destroy(e Entity) {
	en := b.entry(e)
	en.destroy = true
	en.enableSet = false
	en.adds = make(map[TypeID]func(w *World, e Entity))
	en.addsOrder = nil
	en.removes = make(map[TypeID]struct{})
}

// SetEnabled records e's enabled flag for flush, last write wins.
func (b *CommandBuffer) SetEnabled(e Entity, enabled bool) {
	en := b.entry(e)
	en.enableSet = true
	en.enableVal = enabled
}

// AddTyped records adding a component, cancelling any pending Remove of the
// same type; last write wins for repeated Add of the same (entity, type)
// (spec §4.5). A package-level generic function, not a method, since Go
// methods cannot introduce their own type parameters.
func AddTyped[T any](b *CommandBuffer, e Entity, ct ComponentType[T], value T) {
	en := b.entry(e)
	delete(en.removes, ct.id)
	if _, exists := en.adds[ct.id]; !exists {
		en.addsOrder = append(en.addsOrder, ct.id)
	}
	en.adds[ct.id] = func(w *World, e Entity) { setComponent[T](w, e, ct.id, value) }
}

// Remove records removing a component, cancelling any pending Add of the
// same type (spec §4.5).
func (b *CommandBuffer) Remove(e Entity, id TypeID) {
	en := b.entry(e)
	delete(en.adds, id)
	en.removes[id] = struct{}{}
}

// Spawn records a deferred prefab batch spawn (spec §4.5/§4.6).
func (b *CommandBuffer) Spawn(prefabID string, opts SpawnOptions) {
	b.spawns = append(b.spawns, prefabSpawnOp{prefabID: prefabID, opts: opts})
}

// Flush applies every recorded operation in the five fixed phases (spec
// §4.5): spawn prefabs, removes, adds, enable, destroy. A failed spawn, or an
// add or remove on a stale handle, is reported to Diagnostics and skipped
// rather than aborting the whole flush; an enable change or destroy on a
// stale handle, or a remove of an unregistered type, is skipped without a
// report. The buffer is cleared on completion.
func (b *CommandBuffer) Flush() {
	// Phase 1: spawn prefabs.
	for _, s := range b.spawns {
		if _, err := b.world.Spawn(s.prefabID, s.opts); err != nil {
			b.world.diag.Report(Failure{Kind: FailurePrefabSpawn, Message: err.Error()})
		}
	}

	// Phase 2: removes.
	for _, e := range b.order {
		en := b.entries[e]
		if en.destroy {
			continue
		}
		for id := range en.removes {
			b.world.removeComponent(e, id)
		}
	}

	// Phase 3: adds.
	for _, e := range b.order {
		en := b.entries[e]
		if en.destroy {
			continue
		}
		for _, id := range en.addsOrder {
			if thunk, ok := en.adds[id]; ok {
				thunk(b.world, e)
			}
		}
	}

	// Phase 4: enable.
	for _, e := range b.order {
		en := b.entries[e]
		if en.destroy || !en.enableSet {
			continue
		}
		b.world.SetEnabled(e, en.enableVal)
	}

	// Phase 5: destroy.
	for _, e := range b.order {
		if b.entries[e].destroy {
			b.world.DestroyEntity(e)
		}
	}

	b.spawns = nil
	b.entries = make(map[Entity]*cmdEntry)
	b.order = nil
}
