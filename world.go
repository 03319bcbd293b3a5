package ecs

import (
	"hash/maphash"

	"github.com/TheBitDrifter/mask"
)

// World is the central facade binding entity identity, component storage,
// queries, resources, events, and the scheduler together (spec §6.1).
// Grounded on the teacher's storage{locks mask.Mask256, schema, archetypes,
// operationQueue} composition; this module splits those concerns into
// EntityManager/TypeRegistry/ArchetypeIndex/command buffers but keeps the
// single mask.Mask256 re-entrancy lock the teacher uses verbatim — every
// observed use of Mask256 in the teacher is exactly this fixed, small,
// never-grown bitmask, unlike mask.Mask (see signature.go).
type World struct {
	entities  *EntityManager
	types     *TypeRegistry
	archIndex *ArchetypeIndex
	tags      *TagDictionary
	resources *Resources
	diag      *Diagnostics

	entityArchetype map[Entity]*Archetype
	entityTags      map[Entity]Signature

	// sparseIndex mirrors, per component type, which entities currently carry
	// it — a SparseSet[struct{}] membership set (spec §3.5) rather than a
	// second copy of component values. UseArchetypeOptimization(false)'s scan
	// (query.go) walks this dense array instead of ranging entityArchetype,
	// so the two query paths are genuinely distinct storage walks.
	sparseIndex map[TypeID]*SparseSet[struct{}]

	addedCh   EventChannel
	removedCh EventChannel

	locks mask.Mask256

	scheduler *Scheduler
	rng       *DeterministicRNG
	hasher    *FrameHasher

	prefabs map[string]*PrefabDef

	cfg   SchedulerConfig
	frame uint64
}

const iterationLockBit = 0

// NewWorld constructs an empty world with the package-default scheduler
// config. Use WithConfig to override tunables before first use.
func NewWorld() *World {
	w := &World{
		entities:        NewEntityManager(),
		types:           NewTypeRegistry(),
		archIndex:       NewArchetypeIndex(),
		tags:            NewTagDictionary(),
		resources:       NewResources(),
		entityArchetype: make(map[Entity]*Archetype),
		entityTags:      make(map[Entity]Signature),
		sparseIndex:     make(map[TypeID]*SparseSet[struct{}]),
		prefabs:         make(map[string]*PrefabDef),
		cfg:             Config,
		rng:             NewDeterministicRNG(1),
		hasher:          NewFrameHasher(maphash.MakeSeed()),
	}
	w.diag = NewDiagnostics(logFallback)
	w.scheduler = newScheduler(w)
	return w
}

// WithConfig overrides the world's scheduler/query tunables.
func (w *World) WithConfig(cfg SchedulerConfig) *World {
	w.cfg = cfg
	return w
}

// Diagnostics returns the world's failure observer/collector (spec §7).
func (w *World) Diagnostics() *Diagnostics { return w.diag }

// Resources returns the world's typed singleton container (spec §3.6).
func (w *World) Resources() *Resources { return w.resources }

// Tags returns the world's tag dictionary (spec §9 open question 2).
func (w *World) Tags() *TagDictionary { return w.tags }

// Scheduler returns the world's fixed-timestep scheduler (spec §4.8).
func (w *World) Scheduler() *Scheduler { return w.scheduler }

// RNG returns the world's deterministic RNG (spec §4.6/§8 invariant 9).
func (w *World) RNG() *DeterministicRNG { return w.rng }

// Frame returns the current simulation frame counter, used as the change
// epoch stamped into columns (spec §4.4.4).
func (w *World) Frame() uint64 { return w.frame }

// AddedEvents returns the channel of component-added notifications (spec
// §3.8).
func (w *World) AddedEvents() *EventChannel { return &w.addedCh }

// RemovedEvents returns the channel of component-removed notifications
// (spec §3.8).
func (w *World) RemovedEvents() *EventChannel { return &w.removedCh }

// ensureSparseIndex returns id's membership SparseSet, creating it on first
// use.
func (w *World) ensureSparseIndex(id TypeID) *SparseSet[struct{}] {
	s, ok := w.sparseIndex[id]
	if !ok {
		s = NewSparseSet[struct{}]()
		w.sparseIndex[id] = s
	}
	return s
}

// resetWriteMasks clears every archetype column's write mask, run once at
// the start of each scheduler step so a changed(T) query only admits rows
// actually written during the current step rather than every row ever
// written (spec §3.4 "modified since last reset", §8 invariant 7).
func (w *World) resetWriteMasks() {
	for _, arch := range w.archIndex.All() {
		for _, col := range arch.cols {
			col.resetWriteMask()
		}
	}
}

// locked reports whether structural mutation is currently forbidden (spec
// §5: query iteration holds the lock).
func (w *World) locked() bool {
	return !w.locks.IsEmpty()
}

// lockForIteration increments the iteration re-entrancy lock (spec §5); a
// query or cursor calls this before walking archetypes and unlockIteration
// after, mirroring the teacher's cursor.Initialize/Reset AddLock/RemoveLock
// pairing.
func (w *World) lockForIteration() {
	w.locks.Mark(iterationLockBit)
}

func (w *World) unlockIteration() {
	w.locks.Unmark(iterationLockBit)
}

// CreateEntity allocates a new entity handle (spec §6.1 createEntity).
func (w *World) CreateEntity(enabled bool) Entity {
	return w.entities.Create(enabled)
}

// DestroyEntity immediately destroys e: every component it carries is
// removed (emitting Removed events) and its handle is invalidated. Calling
// this while the world is locked for iteration reports
// StructuralChangeDuringIterationError and is a no-op (spec §5).
func (w *World) DestroyEntity(e Entity) bool {
	if w.locked() {
		w.diag.Report(Failure{Kind: FailureCommandBuffer, Entity: e, Message: StructuralChangeDuringIterationError{}.Error()})
		return false
	}
	if arch, ok := w.entityArchetype[e]; ok {
		for _, t := range arch.types {
			w.removedCh.Push(ComponentEvent{Entity: e, TypeID: t})
			if s, ok := w.sparseIndex[t]; ok {
				s.Remove(e)
			}
		}
		arch.swapRemove(e)
		delete(w.entityArchetype, e)
	}
	return w.entities.Destroy(e)
}

// IsAlive reports whether e is a live handle (spec §6.1 isAlive).
func (w *World) IsAlive(e Entity) bool { return w.entities.IsAlive(e) }

// SetEnabled toggles e's enabled flag (spec §6.1 setEnabled).
func (w *World) SetEnabled(e Entity, enabled bool) { w.entities.SetEnabled(e, enabled) }

// IsEnabled reports whether e is alive and enabled.
func (w *World) IsEnabled(e Entity) bool { return w.entities.IsEnabled(e) }

// ArchetypeOf returns the archetype e currently lives in, or nil if e has no
// components.
func (w *World) ArchetypeOf(e Entity) *Archetype { return w.entityArchetype[e] }

func (w *World) kindsForSignature(sig Signature) []*ComponentKind {
	ids := sig.TypeIDs()
	kinds := make([]*ComponentKind, 0, len(ids))
	for _, id := range ids {
		k, _ := w.types.KindByID(id)
		kinds = append(kinds, k)
	}
	return kinds
}

// hasComponent reports whether e's current archetype stores typeID.
func (w *World) hasComponent(e Entity, id TypeID) bool {
	arch, ok := w.entityArchetype[e]
	return ok && arch.Has(id)
}

// markChanged stamps e's row for typeID with the current frame, without
// requiring the caller to know the value's type (spec §6.1 markChanged).
func (w *World) markChanged(e Entity, id TypeID) {
	arch, ok := w.entityArchetype[e]
	if !ok {
		return
	}
	row, ok := arch.RowOf(e)
	if !ok {
		return
	}
	if col, ok := arch.cols[id]; ok {
		col.markChanged(row, w.frame)
	}
}

// getComponent returns a pointer to e's T value, or nil if absent.
func getComponent[T any](w *World, e Entity, id TypeID) *T {
	arch, ok := w.entityArchetype[e]
	if !ok {
		return nil
	}
	col, ok := arch.cols[id]
	if !ok {
		return nil
	}
	row, ok := arch.RowOf(e)
	if !ok {
		return nil
	}
	return col.(*denseColumn[T]).get(row)
}

// setComponent adds T to e (transitioning archetypes if e doesn't already
// carry it) or overwrites the existing value in place (spec §6.1
// addComponent).
func setComponent[T any](w *World, e Entity, id TypeID, value T) {
	if !w.entities.IsAlive(e) {
		w.diag.Report(Failure{Kind: FailureInvalidHandle, Entity: e, TypeID: id, Message: InvalidHandleError{Entity: e}.Error()})
		return
	}
	if w.locked() {
		w.diag.Report(Failure{Kind: FailureCommandBuffer, Entity: e, TypeID: id, Message: StructuralChangeDuringIterationError{}.Error()})
		return
	}

	old := w.entityArchetype[e]
	if old != nil && old.Has(id) {
		row, _ := old.RowOf(e)
		col := old.cols[id].(*denseColumn[T])
		*col.get(row) = value
		col.markChanged(row, w.frame)
		return
	}

	var oldSig Signature
	var oldRow int
	if old != nil {
		oldSig = old.Signature()
		oldRow, _ = old.RowOf(e)
	}
	newSig := oldSig.Clone()
	newSig.Mark(id)
	newArch := w.archIndex.GetOrCreate(newSig, w.kindsForSignature(newSig))
	newArch.appendRow(e)
	for _, t := range newArch.types {
		if t == id {
			newArch.cols[t].(*denseColumn[T]).append(value, w.frame)
			continue
		}
		if old != nil && old.Has(t) {
			newArch.cols[t].appendFrom(old.cols[t], oldRow)
		}
	}
	if old != nil {
		old.swapRemove(e)
	}
	w.entityArchetype[e] = newArch
	w.ensureSparseIndex(id).Set(e, struct{}{}, w.frame)
	w.addedCh.Push(ComponentEvent{Entity: e, TypeID: id, Value: value})
}

// removeComponent drops typeID from e's archetype (spec §6.1
// removeComponent). A no-op if e does not currently carry it.
func (w *World) removeComponent(e Entity, id TypeID) {
	if !w.entities.IsAlive(e) {
		w.diag.Report(Failure{Kind: FailureInvalidHandle, Entity: e, TypeID: id, Message: InvalidHandleError{Entity: e}.Error()})
		return
	}
	if w.locked() {
		w.diag.Report(Failure{Kind: FailureCommandBuffer, Entity: e, TypeID: id, Message: StructuralChangeDuringIterationError{}.Error()})
		return
	}
	old, ok := w.entityArchetype[e]
	if !ok || !old.Has(id) {
		return
	}
	oldRow, _ := old.RowOf(e)
	oldVal := old.cols[id].valueAt(oldRow)

	newSig := old.Signature()
	newSig.Unmark(id)
	newArch := w.archIndex.GetOrCreate(newSig, w.kindsForSignature(newSig))
	newArch.appendRow(e)
	for _, t := range newArch.types {
		newArch.cols[t].appendFrom(old.cols[t], oldRow)
	}
	old.swapRemove(e)
	if newSig.IsEmpty() {
		delete(w.entityArchetype, e)
	} else {
		w.entityArchetype[e] = newArch
	}
	if s, ok := w.sparseIndex[id]; ok {
		s.Remove(e)
	}
	w.removedCh.Push(ComponentEvent{Entity: e, TypeID: id, Value: oldVal})
}

// AddTag attaches a string tag to e, interning it in the world's tag
// dictionary on first use (spec §3.7/§9 open question 2).
func (w *World) AddTag(e Entity, name string) {
	mask := w.entityTags[e]
	mask.Mark(TypeID(w.tags.Intern(name)))
	w.entityTags[e] = mask
}

// RemoveTag detaches a string tag from e, a no-op if not present.
func (w *World) RemoveTag(e Entity, name string) {
	id, ok := w.tags.Lookup(name)
	if !ok {
		return
	}
	mask, ok := w.entityTags[e]
	if !ok {
		return
	}
	mask.Unmark(TypeID(id))
	w.entityTags[e] = mask
}

// HasTag reports whether e carries the named tag.
func (w *World) HasTag(e Entity, name string) bool {
	id, ok := w.tags.Lookup(name)
	if !ok {
		return false
	}
	mask, ok := w.entityTags[e]
	return ok && mask.Has(TypeID(id))
}

// entityTagMask returns e's tag bitset, the empty signature if untagged.
func (w *World) entityTagMask(e Entity) Signature {
	return w.entityTags[e]
}
