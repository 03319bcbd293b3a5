package ecs

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// saveFormatVersion is bumped whenever the on-disk shape of SaveData
// changes incompatibly (spec §6.2 "version bumps require a migration
// routine").
const saveFormatVersion uint32 = 1

// Codec is a registered component type's serialize/deserialize pair (spec
// §6.2 "typeId → {typeRef, serialize(value) → codecOutput,
// deserialize(codecOutput) → value}"). The default codec registered by
// RegisterSerde marshals through encoding/json; no third-party codec
// library appears anywhere in the example pack's direct dependencies (see
// DESIGN.md), so the stdlib is used here rather than inventing one.
type Codec struct {
	Serialize   func(value any) (json.RawMessage, error)
	Deserialize func(data json.RawMessage) (any, error)
}

// serdeCacheCapacity bounds the number of distinct component types a single
// SerdeRegistry can hold codecs for, mirroring the teacher's Cache[T]'s fixed
// capacity rather than an unbounded map.
const serdeCacheCapacity = 4096

// SerdeRegistry maps component type names to their Codec (spec §6.2). Keyed
// by name rather than TypeID since a save file's type ids are not portable
// across process restarts (the registry rebuilds ids in registration order)
// while its component Go-type name is. Backed by the teacher's Cache[T]
// (api.go/cache.go's SimpleCache), the same typeId/name→codec registry shape
// this file's Codec type is built for.
type SerdeRegistry struct {
	byName Cache[Codec]
	byID   map[TypeID]string
}

// NewSerdeRegistry returns an empty serde registry.
func NewSerdeRegistry() *SerdeRegistry {
	return &SerdeRegistry{byName: FactoryNewCache[Codec](serdeCacheCapacity), byID: make(map[TypeID]string)}
}

// RegisterSerde installs the default JSON codec for T, associated with ct's
// type id for this process's lifetime.
func RegisterSerde[T any](reg *SerdeRegistry, ct ComponentType[T]) {
	name := ct.String()
	codec := Codec{
		Serialize: func(value any) (json.RawMessage, error) {
			return json.Marshal(value)
		},
		Deserialize: func(data json.RawMessage) (any, error) {
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	if _, ok := reg.byName.GetIndex(name); ok {
		reg.byID[ct.id] = name
		return
	}
	if _, err := reg.byName.Register(name, codec); err != nil {
		return
	}
	reg.byID[ct.id] = name
}

// lookupCodec returns the codec registered under name, if any.
func (reg *SerdeRegistry) lookupCodec(name string) (Codec, bool) {
	idx, ok := reg.byName.GetIndex(name)
	if !ok {
		return Codec{}, false
	}
	return *reg.byName.GetItem(idx), true
}

// SavedEntity is one entity's serialized form (spec §6.2).
type SavedEntity struct {
	Guid       string                     `json:"guid"`
	Components map[string]json.RawMessage `json:"components"`
}

// SaveData is the full on-disk save shape (spec §6.2).
type SaveData struct {
	Version  uint32            `json:"version"`
	Entities []SavedEntity     `json:"entities"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Save serializes every live entity's registered components into a SaveData
// value (spec §6.2). Components without a registered codec are skipped,
// reported via Diagnostics as SerdeMissing rather than failing the save.
func (w *World) Save(reg *SerdeRegistry, metadata map[string]string) SaveData {
	out := SaveData{Version: saveFormatVersion, Metadata: metadata}

	for e, arch := range w.entityArchetype {
		row, ok := arch.RowOf(e)
		if !ok {
			continue
		}
		se := SavedEntity{Guid: entityGuid(w, e), Components: make(map[string]json.RawMessage)}
		for _, id := range arch.types {
			name, ok := reg.byID[id]
			if !ok {
				w.diag.Report(Failure{Kind: FailureSerdeMissing, Entity: e, TypeID: id, Message: SerdeMissingError{TypeID: id}.Error()})
				continue
			}
			codec, _ := reg.lookupCodec(name)
			raw, err := codec.Serialize(arch.cols[id].valueAt(row))
			if err != nil {
				w.diag.Report(Failure{Kind: FailureSerdeMissing, Entity: e, TypeID: id, Message: err.Error()})
				continue
			}
			se.Components[name] = raw
		}
		out.Entities = append(out.Entities, se)
	}
	return out
}

// LoadOptions controls how Load merges a SaveData into a world (spec §6.2
// "clearWorld, mergeEntities (by guid)").
type LoadOptions struct {
	ClearWorld    bool
	MergeEntities bool
}

// Load applies a previously Saved world state into w (spec §6.2). Returns
// VersionMismatchError if data.Version is not supported. When
// opts.MergeEntities is set, an incoming entity whose guid matches a Guid
// component already present in w updates that entity in place instead of
// creating a new one.
func (w *World) Load(reg *SerdeRegistry, data SaveData, opts LoadOptions) error {
	if data.Version != saveFormatVersion {
		return VersionMismatchError{Got: data.Version, Want: saveFormatVersion}
	}

	if opts.ClearWorld {
		w.clear()
	}

	var byGuid map[string]Entity
	if opts.MergeEntities {
		byGuid = w.guidIndex()
	}

	for _, se := range data.Entities {
		e, ok := byGuid[se.Guid]
		if !ok {
			e = w.CreateEntity(true)
			if se.Guid != "" {
				ensureGuidType(w)
				if g, ok := decodeGuid(se.Guid); ok {
					setComponent[Guid](w, e, guidType.id, g)
				}
			}
		}
		for name, raw := range se.Components {
			codec, ok := reg.lookupCodec(name)
			if !ok {
				w.diag.Report(Failure{Kind: FailureSerdeMissing, Entity: e, Message: "serde: no codec registered for " + name})
				continue
			}
			value, err := codec.Deserialize(raw)
			if err != nil {
				w.diag.Report(Failure{Kind: FailureSerdeMissing, Entity: e, Message: err.Error()})
				continue
			}
			kind, ok := w.types.byGoType[goTypeOf(value)]
			if !ok || kind.setRaw == nil {
				continue
			}
			kind.setRaw(w, e, value)
		}
	}
	return nil
}

// clear destroys every live entity in w, used by Load's clearWorld option.
func (w *World) clear() {
	for e := range w.entityArchetype {
		w.DestroyEntity(e)
	}
}

// guidIndex builds a guid string → Entity map from every entity currently
// carrying a Guid component, for merge-by-guid loads.
func (w *World) guidIndex() map[string]Entity {
	out := make(map[string]Entity)
	if guidType.id == 0 {
		return out
	}
	for e := range w.entityArchetype {
		if g := guidType.Get(w, e); g != nil {
			out[encodeGuid(*g)] = e
		}
	}
	return out
}

// goTypeOf returns the dynamic reflect.Type a deserialized any value holds,
// used to look up its registered ComponentKind without the caller needing
// to know T.
func goTypeOf(value any) reflect.Type {
	return reflect.TypeOf(value)
}

// encodeGuid renders a Guid as a fixed-width hex string.
func encodeGuid(g Guid) string {
	return fmt.Sprintf("%016x%016x", g.High, g.Low)
}

// decodeGuid parses a string produced by encodeGuid.
func decodeGuid(s string) (Guid, bool) {
	if len(s) != 32 {
		return Guid{}, false
	}
	high, err := strconv.ParseUint(s[:16], 16, 64)
	if err != nil {
		return Guid{}, false
	}
	low, err := strconv.ParseUint(s[16:], 16, 64)
	if err != nil {
		return Guid{}, false
	}
	return Guid{High: high, Low: low}, true
}

// entityGuid returns e's persisted-identity string if it carries a Guid
// component, otherwise its slot/generation as a stable-for-this-process
// fallback (spec §6.2 "guid: string").
func entityGuid(w *World, e Entity) string {
	if guidType.id != 0 {
		if g := guidType.Get(w, e); g != nil {
			return encodeGuid(*g)
		}
	}
	return e.String()
}
