package ecs

// queryCore is the type-erased query builder and execution engine (spec
// §4.4). Grounded on the teacher's query.go And/Or/Not composite-node shape
// for the idea of a chainable filter builder, re-expressed here over the
// archetype index's required/forbidden signature match (archetypeindex.go)
// since the spec's filter is a flat AND of required/without/optional/where/
// changed, not an arbitrary boolean tree.
type queryCore struct {
	world *World

	required []TypeID
	without  []TypeID
	optional []TypeID

	requireTags []string
	forbidTags  []string

	changed    []TypeID
	useArchOpt bool

	delta *queryDelta

	built       bool
	planVersion uint64
	plan        []*Archetype
}

func newQueryCore(w *World, required []TypeID) *queryCore {
	return &queryCore{world: w, required: required, useArchOpt: true}
}

// Query starts a builder requiring every listed type (spec §4.4.1
// `query(requiredTypes…)`).
func (w *World) Query(required ...TypeID) *queryCore {
	return newQueryCore(w, required)
}

// Without excludes archetypes containing any of the given types.
func (q *queryCore) Without(types ...TypeID) *queryCore {
	q.without = append(q.without, types...)
	q.built = false
	return q
}

// Optional includes the entity's value for each type if present, or an
// absent slot in the tuple handed to the callback.
func (q *queryCore) Optional(types ...TypeID) *queryCore {
	q.optional = append(q.optional, types...)
	q.built = false
	return q
}

// Where applies a per-row string-tag filter: every requireTag must be
// present, every forbidTag must be absent (spec §4.4.1).
func (q *queryCore) Where(requireTags, forbidTags []string) *queryCore {
	q.requireTags = requireTags
	q.forbidTags = forbidTags
	return q
}

// Changed restricts admitted rows to those where at least one of the named
// types was written this frame (spec §4.4.4, OR semantics across types).
func (q *queryCore) Changed(types ...TypeID) *queryCore {
	q.changed = append(q.changed, types...)
	return q
}

// UseArchetypeOptimization toggles the cached archetype-plan path (true,
// default) versus the sparse-store-path (false): a scan anchored on the
// first required type's SparseSet membership index (sparseset.go) instead
// of the archetype plan, useful when the caller knows the matched set is
// tiny relative to total archetype count (spec §4.4.1 "force
// archetype-path vs sparse-store-path").
func (q *queryCore) UseArchetypeOptimization(enabled bool) *queryCore {
	q.useArchOpt = enabled
	q.built = false
	return q
}

// EnableDelta registers this query for incremental added/removed/changed
// tracking, consumed via ConsumeDelta (spec §4.4.6).
func (q *queryCore) EnableDelta() *queryCore {
	if q.delta == nil {
		q.delta = newQueryDelta(q.world.cfg.DeltaOverflowCap)
	}
	return q
}

// OverflowCap overrides the default delta dedup-set cap for this query
// (spec §9 open question 3: configurable per query).
func (q *queryCore) OverflowCap(n int) *queryCore {
	q.EnableDelta()
	q.delta.cap = n
	return q
}

func (q *queryCore) requiredSig() Signature {
	return SignatureOf(q.required...)
}

func (q *queryCore) forbidSig() Signature {
	return SignatureOf(q.without...)
}

// ensurePlan rebuilds the archetype list when the builder changed or the
// archetype index's structural version advanced (spec §4.4.2).
func (q *queryCore) ensurePlan() {
	v := q.world.archIndex.Version()
	if q.built && q.planVersion == v {
		q.pollDelta()
		return
	}
	q.plan = q.plan[:0]
	for arch := range q.world.archIndex.Match(q.requiredSig(), q.forbidSig()) {
		q.plan = append(q.plan, arch)
	}
	q.planVersion = v
	q.built = true
	q.pollDelta()
}

func (q *queryCore) tagsOK(e Entity) bool {
	if len(q.requireTags) == 0 && len(q.forbidTags) == 0 {
		return true
	}
	mask := q.world.entityTagMask(e)
	for _, name := range q.requireTags {
		id, ok := q.world.tags.Lookup(name)
		if !ok || !mask.Has(TypeID(id)) {
			return false
		}
	}
	for _, name := range q.forbidTags {
		if id, ok := q.world.tags.Lookup(name); ok && mask.Has(TypeID(id)) {
			return false
		}
	}
	return true
}

// sparseScan is the sparse-store-path counterpart to the plan-cache walk in
// ForEach/ForEachRow: it walks the first required type's SparseSet
// membership (spec §3.5) rather than ranging every entry in
// world.entityArchetype, reconstructing each live Entity via
// EntityManager.EntityAt and re-checking the full required/forbidden
// signature before handing the row to visit. Falls back to the archetype
// map scan when the builder has no required type to anchor on.
func (q *queryCore) sparseScan(visit func(arch *Archetype, e Entity, row int) bool) {
	if len(q.required) == 0 {
		q.archetypeMapScan(visit)
		return
	}
	reqSig, forbidSig := q.requiredSig(), q.forbidSig()
	idx := q.world.ensureSparseIndex(q.required[0])
	idx.ForEach(func(slot uint32, _ *struct{}) bool {
		e, ok := q.world.entities.EntityAt(slot)
		if !ok {
			return true
		}
		arch, ok := q.world.entityArchetype[e]
		if !ok || !arch.Signature().ContainsAll(reqSig) {
			return true
		}
		if !forbidSig.IsEmpty() && arch.Signature().Intersects(forbidSig) {
			return true
		}
		row, ok := arch.RowOf(e)
		if !ok {
			return true
		}
		return visit(arch, e, row)
	})
}

// archetypeMapScan ranges every live entity's archetype entry directly,
// the fallback used by sparseScan when a query has no required type.
func (q *queryCore) archetypeMapScan(visit func(arch *Archetype, e Entity, row int) bool) {
	reqSig, forbidSig := q.requiredSig(), q.forbidSig()
	for e, arch := range q.world.entityArchetype {
		if !arch.Signature().ContainsAll(reqSig) {
			continue
		}
		if !forbidSig.IsEmpty() && arch.Signature().Intersects(forbidSig) {
			continue
		}
		row, ok := arch.RowOf(e)
		if !ok {
			continue
		}
		if !visit(arch, e, row) {
			return
		}
	}
}

func (q *queryCore) changedOK(arch *Archetype, row int) bool {
	if len(q.changed) == 0 {
		return true
	}
	frame := q.world.frame
	for _, t := range q.changed {
		if col, ok := arch.cols[t]; ok {
			if col.changedAt(row, frame) {
				return true
			}
		} else {
			// no such facility on this archetype for the watched type: the
			// conservative admit-all case (spec §4.4.4).
			return true
		}
	}
	return false
}

// rowValues reads the required and optional values for row as `any`, in
// builder declaration order.
func (q *queryCore) rowValues(arch *Archetype, row int) (required, optional []any) {
	required = make([]any, len(q.required))
	for i, t := range q.required {
		required[i] = arch.cols[t].valueAt(row)
	}
	optional = make([]any, len(q.optional))
	for i, t := range q.optional {
		if col, ok := arch.cols[t]; ok {
			optional[i] = col.valueAt(row)
		}
	}
	return required, optional
}

// ForEach invokes fn for every admitted row; fn returning false stops
// iteration early (spec §4.4.3's "documented early-termination mechanism").
// Structural mutation is forbidden for the duration (spec §5): the world is
// locked for iteration around the walk.
func (q *queryCore) ForEach(fn func(e Entity, required, optional []any) bool) {
	q.ensurePlan()
	q.world.lockForIteration()
	defer q.world.unlockIteration()

	if q.useArchOpt {
		for _, arch := range q.plan {
			entities := arch.Entities()
			for row := 0; row < len(entities); row++ {
				e := entities[row]
				if !q.admit(arch, e, row) {
					continue
				}
				req, opt := q.rowValues(arch, row)
				if !fn(e, req, opt) {
					return
				}
			}
		}
		return
	}

	q.sparseScan(func(arch *Archetype, e Entity, row int) bool {
		if !q.admit(arch, e, row) {
			return true
		}
		req, opt := q.rowValues(arch, row)
		return fn(e, req, opt)
	})
}

// ForEachRow is the zero-copy counterpart of ForEach: it hands the typed
// wrappers (Query1/Query2) the admitted archetype and row directly so they
// can fetch a live pointer into column storage instead of an `any`-boxed
// copy. fn returning false stops iteration early.
func (q *queryCore) ForEachRow(fn func(arch *Archetype, row int, e Entity) bool) {
	q.ensurePlan()
	q.world.lockForIteration()
	defer q.world.unlockIteration()

	if q.useArchOpt {
		for _, arch := range q.plan {
			entities := arch.Entities()
			for row := 0; row < len(entities); row++ {
				e := entities[row]
				if !q.admit(arch, e, row) {
					continue
				}
				if !fn(arch, row, e) {
					return
				}
			}
		}
		return
	}

	q.sparseScan(func(arch *Archetype, e Entity, row int) bool {
		if !q.admit(arch, e, row) {
			return true
		}
		return fn(arch, row, e)
	})
}

func (q *queryCore) admit(arch *Archetype, e Entity, row int) bool {
	if !q.world.entities.IsEnabled(e) {
		return false
	}
	if !q.tagsOK(e) {
		return false
	}
	return q.changedOK(arch, row)
}

// First returns the first admitted row, if any.
func (q *queryCore) First() (e Entity, required, optional []any, ok bool) {
	q.ForEach(func(ee Entity, req, opt []any) bool {
		e, required, optional, ok = ee, req, opt, true
		return false
	})
	return
}

// Some reports whether any row is admitted.
func (q *queryCore) Some() bool {
	_, _, _, ok := q.First()
	return ok
}

// Count returns the number of admitted rows.
func (q *queryCore) Count() int {
	n := 0
	q.ForEach(func(Entity, []any, []any) bool { n++; return true })
	return n
}

// Row is one admitted query result (spec §4.4.3).
type Row struct {
	Entity   Entity
	Required []any
	Optional []any
}

// ToArray materializes every admitted row.
func (q *queryCore) ToArray() []Row {
	var out []Row
	q.ForEach(func(e Entity, req, opt []any) bool {
		out = append(out, Row{Entity: e, Required: req, Optional: opt})
		return true
	})
	return out
}

// Map applies fn to every admitted row and collects the results.
func (q *queryCore) Map(fn func(e Entity, required, optional []any) any) []any {
	var out []any
	q.ForEach(func(e Entity, req, opt []any) bool {
		out = append(out, fn(e, req, opt))
		return true
	})
	return out
}

// Chunk is a read-only view over a contiguous run of admitted rows within
// one archetype (spec §4.4.5). It becomes invalid after the next structural
// mutation.
type Chunk struct {
	ArchetypeKey string
	Entities     []Entity
	StartRow     int
	EndRow       int
	arch         *Archetype
}

// ChunkGet reads ct's value for the entity at local index i within the
// chunk.
func ChunkGet[T any](ct ComponentType[T], c Chunk, i int) *T {
	row := c.StartRow + i
	return c.arch.cols[ct.id].(*denseColumn[T]).get(row)
}

// ToChunks splits admitted rows (in archetype order) into maximal contiguous
// runs and cuts each run into Chunks of at most target rows (spec §4.4.5).
func (q *queryCore) ToChunks(target int) []Chunk {
	if target <= 0 {
		target = 1
	}
	q.ensurePlan()
	var chunks []Chunk
	for _, arch := range q.plan {
		entities := arch.Entities()
		start := -1
		flush := func(end int) {
			if start < 0 {
				return
			}
			for s := start; s < end; s += target {
				e := s + target
				if e > end {
					e = end
				}
				chunks = append(chunks, Chunk{
					ArchetypeKey: arch.Key(),
					Entities:     entities[s:e],
					StartRow:     s,
					EndRow:       e,
					arch:         arch,
				})
			}
			start = -1
		}
		for row := 0; row < len(entities); row++ {
			if q.admit(arch, entities[row], row) {
				if start < 0 {
					start = row
				}
				continue
			}
			flush(row)
		}
		flush(len(entities))
	}
	return chunks
}

// queryDelta accumulates deduplicated added/removed/changed entity sets for
// one query subscription (spec §4.4.6). Implemented by polling the matched
// set on every ensurePlan rather than wiring push notifications from every
// mutation site: consumeDelta is already pull-based, so the observable
// contract is identical and this avoids a second notification path through
// World alongside addedCh/removedCh.
type queryDelta struct {
	cap         int
	added       map[Entity]struct{}
	removed     map[Entity]struct{}
	changed     map[Entity]struct{}
	overflowed  bool
	prevMatched map[Entity]struct{}
}

func newQueryDelta(cap int) *queryDelta {
	return &queryDelta{
		cap:         cap,
		added:       make(map[Entity]struct{}),
		removed:     make(map[Entity]struct{}),
		changed:     make(map[Entity]struct{}),
		prevMatched: make(map[Entity]struct{}),
	}
}

func (d *queryDelta) size() int {
	return len(d.added) + len(d.removed) + len(d.changed)
}

func (d *queryDelta) record(set map[Entity]struct{}, e Entity) {
	if d.overflowed {
		return
	}
	set[e] = struct{}{}
	if d.size() > d.cap {
		d.added = make(map[Entity]struct{})
		d.removed = make(map[Entity]struct{})
		d.changed = make(map[Entity]struct{})
		d.overflowed = true
	}
}

func (q *queryCore) pollDelta() {
	if q.delta == nil {
		return
	}
	d := q.delta
	current := make(map[Entity]struct{})
	for _, arch := range q.plan {
		for row, e := range arch.Entities() {
			if !q.world.entities.IsAlive(e) {
				continue
			}
			current[e] = struct{}{}
			if _, existed := d.prevMatched[e]; !existed {
				d.record(d.added, e)
			} else if q.changedAnyWatched(arch, row) {
				d.record(d.changed, e)
			}
		}
	}
	for e := range d.prevMatched {
		if _, still := current[e]; !still {
			d.record(d.removed, e)
		}
	}
	d.prevMatched = current
}

// changedAnyWatched reports whether any required or explicitly watched type
// changed this frame for row, used to populate the delta's changed set.
func (q *queryCore) changedAnyWatched(arch *Archetype, row int) bool {
	watch := q.changed
	if len(watch) == 0 {
		watch = q.required
	}
	for _, t := range watch {
		if col, ok := arch.cols[t]; ok && col.changedAt(row, q.world.frame) {
			return true
		}
	}
	return false
}

// DeltaResult is the atomic drain of a query's delta subscription (spec
// §4.4.6).
type DeltaResult struct {
	Added      []Entity
	Removed    []Entity
	Changed    []Entity
	Overflowed bool
}

// ConsumeDelta atomically drains and returns the query's accumulated
// added/removed/changed sets.
func (q *queryCore) ConsumeDelta() DeltaResult {
	q.ensurePlan()
	if q.delta == nil {
		return DeltaResult{}
	}
	d := q.delta
	res := DeltaResult{Overflowed: d.overflowed}
	for e := range d.added {
		res.Added = append(res.Added, e)
	}
	for e := range d.removed {
		res.Removed = append(res.Removed, e)
	}
	for e := range d.changed {
		res.Changed = append(res.Changed, e)
	}
	d.added = make(map[Entity]struct{})
	d.removed = make(map[Entity]struct{})
	d.changed = make(map[Entity]struct{})
	d.overflowed = false
	return res
}
