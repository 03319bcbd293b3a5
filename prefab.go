package ecs

import "sort"

// componentSpec is one component slot in a prefab definition: either a
// factory called per spawned row, or a fixed shared default copied per row
// (spec §4.6 "base = defaults() ... or {...defaults}").
type componentSpec struct {
	id      TypeID
	factory func() any
	shared  any
	useFn   bool
}

// PrefabDef is a registered prefab: its component specs (sorted by type id,
// spec §4.6 "precompiled sorted type-id list"), default tags, and optional
// init hook.
type PrefabDef struct {
	id    string
	specs []componentSpec
	tags  []string
	init  func(w *World, e Entity, index int, rng *DeterministicRNG)
}

// PrefabSpec is the caller-facing definition passed to DefinePrefab.
type PrefabSpec struct {
	Tags []string
	Init func(w *World, e Entity, index int, rng *DeterministicRNG)
}

// ComponentFactory adds a per-row factory-produced component of type T to a
// prefab being defined (spec §4.6 "call factory each row").
func ComponentFactory[T any](def *PrefabDef, ct ComponentType[T], factory func() T) {
	def.specs = append(def.specs, componentSpec{
		id:      ct.id,
		factory: func() any { return factory() },
		useFn:   true,
	})
	resortSpecs(def)
}

// ComponentDefault adds a shared-default component of type T to a prefab
// being defined; the same value is copied into every spawned row unless an
// override replaces it (spec §4.6 "{...defaults}").
func ComponentDefault[T any](def *PrefabDef, ct ComponentType[T], value T) {
	def.specs = append(def.specs, componentSpec{id: ct.id, shared: value})
	resortSpecs(def)
}

func resortSpecs(def *PrefabDef) {
	sort.Slice(def.specs, func(i, j int) bool { return def.specs[i].id < def.specs[j].id })
}

// DefinePrefab registers a prefab under id, replacing any prior definition
// with the same id. The returned *PrefabDef is populated with
// ComponentFactory/ComponentDefault calls before the world spawns it (spec
// §4.6 `definePrefab(id, {comps, tags?, init?})`).
func (w *World) DefinePrefab(id string, spec PrefabSpec) *PrefabDef {
	def := &PrefabDef{id: id, tags: spec.Tags, init: spec.Init}
	w.prefabs[id] = def
	return def
}

// SpawnOptions parameterizes a batch spawn (spec §4.6).
type SpawnOptions struct {
	Count      int
	Seed       uint64
	Tags       []string
	Epoch      uint64
	HasEpoch   bool
	Shared     map[TypeID]any
	PerEntity  func(index int) map[TypeID]any
	WithGuid   bool
}

// Spawn instantiates Count entities from the named prefab, deterministically
// given (prefab, count, seed) (spec §4.6). Returns PrefabNotFoundError for an
// unknown id.
func (w *World) Spawn(id string, opts SpawnOptions) ([]Entity, error) {
	def, ok := w.prefabs[id]
	if !ok {
		return nil, PrefabNotFoundError{ID: id}
	}
	if opts.Count < 1 {
		opts.Count = 1
	}
	epoch := w.frame
	if opts.HasEpoch {
		epoch = opts.Epoch
	}
	rng := NewDeterministicRNG(opts.Seed)

	entities := make([]Entity, opts.Count)
	for i := 0; i < opts.Count; i++ {
		entities[i] = w.CreateEntity(true)
	}

	for _, spec := range def.specs {
		for i, e := range entities {
			var perEntity map[TypeID]any
			if opts.PerEntity != nil {
				perEntity = opts.PerEntity(i)
			}
			value := baseValue(spec)
			if opts.Shared != nil {
				if v, ok := opts.Shared[spec.id]; ok {
					value = v
				}
			}
			if perEntity != nil {
				if v, ok := perEntity[spec.id]; ok {
					value = v
				}
			}
			applyPrefabValue(w, e, spec.id, value, epoch)
		}
	}

	if opts.WithGuid {
		ensureGuidType(w)
	}
	allTags := append(append([]string{}, def.tags...), opts.Tags...)
	for _, e := range entities {
		for _, tag := range allTags {
			w.AddTag(e, tag)
		}
		if opts.WithGuid {
			g := rng.Guid128()
			setComponent[Guid](w, e, guidType.id, Guid{High: g[0], Low: g[1]})
		}
	}

	if def.init != nil {
		for i, e := range entities {
			def.init(w, e, i, rng)
		}
	}

	return entities, nil
}

func baseValue(spec componentSpec) any {
	if spec.useFn {
		return spec.factory()
	}
	return spec.shared
}

// applyPrefabValue stamps a prefab component value onto e via its
// registered Go type, since prefab specs are collected type-erased (spec
// §4.6 step 2 "add the value to the entity and stamp its write epoch").
func applyPrefabValue(w *World, e Entity, id TypeID, value any, epoch uint64) {
	frame := w.frame
	w.frame = epoch
	defer func() { w.frame = frame }()
	kind, ok := w.types.KindByID(id)
	if !ok || kind.setRaw == nil {
		w.diag.Report(Failure{Kind: FailurePrefabSpawn, Entity: e, TypeID: id, Message: "prefab: component type has no registered setter"})
		return
	}
	kind.setRaw(w, e, value)
}

// Guid is the optional persisted-identity component a prefab spawn attaches
// when SpawnOptions.WithGuid is set (spec §6.3). Uniqueness is
// probabilistic; no global index is maintained.
type Guid struct {
	High, Low uint64
}

var guidType ComponentType[Guid]

// ensureGuidType registers the Guid component in w (a no-op if w already
// has it) and stores its handle in the package-level guidType, which thus
// holds the id from the world that called it last.
func ensureGuidType(w *World) {
	guidType = RegisterComponent[Guid](w)
}
