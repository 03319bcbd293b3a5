package ecs

// TagID is a stable small integer assigned to a registered tag string,
// resolving spec §9 open question 2 (no tag store was fully specified in
// the reviewed sources): a per-world string→bit dictionary, the same
// "register once, get a stable small int back" shape typeregistry.go uses
// for component types, applied to strings instead of Go types.
type TagID uint32

// TagDictionary is the world-level string↔bit mapping.
type TagDictionary struct {
	byName map[string]TagID
	names  []string
}

// NewTagDictionary returns an empty tag dictionary.
func NewTagDictionary() *TagDictionary {
	return &TagDictionary{byName: make(map[string]TagID)}
}

// Intern returns the TagID for name, registering it on first use.
func (d *TagDictionary) Intern(name string) TagID {
	if id, ok := d.byName[name]; ok {
		return id
	}
	id := TagID(len(d.names))
	d.byName[name] = id
	d.names = append(d.names, name)
	return id
}

// Lookup returns the TagID for an already-registered name.
func (d *TagDictionary) Lookup(name string) (TagID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Name returns the string for a TagID.
func (d *TagDictionary) Name(id TagID) string {
	if int(id) >= len(d.names) {
		return ""
	}
	return d.names[id]
}

// tagMask returns the Signature-backed mask for a set of tag names, creating
// dictionary entries as needed. Signature is reused here purely as a
// growable bitset, not as a component signature.
func (d *TagDictionary) tagMask(names []string) Signature {
	var s Signature
	for _, n := range names {
		s.Mark(TypeID(d.Intern(n)))
	}
	return s
}
