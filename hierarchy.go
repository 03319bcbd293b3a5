package ecs

// Parent is the component a child entity carries to declare its place in the
// hierarchy (spec §4.7). Adding, changing, or removing it drives
// ChildrenIndex through the ordinary Added/Removed event channels rather
// than a bespoke hierarchy-only notification path.
type Parent struct {
	Entity Entity
}

// HierarchyPolicy selects how ChildrenIndex's reconciliation system handles
// a parent entity that is no longer alive (spec §4.7).
type HierarchyPolicy int

const (
	// DetachToRoot rebinds each orphaned child's Parent to the root sentinel.
	DetachToRoot HierarchyPolicy = iota
	// DestroyChildren command-buffer destroys every orphaned child.
	DestroyChildren
)

// ChildrenIndex is the world resource maintaining parent/child adjacency
// (spec §6.1 "resources ChildrenIndex and HierarchyPolicy"). Grounded on
// this module's own map-of-slices style already used by
// ArchetypeIndex/TagDictionary, rather than storing the relation only in the
// Parent component column, since §4.7's takeChildrenOf and cycle check both
// need the reverse (parent → children) direction.
type ChildrenIndex struct {
	parentOf map[Entity]Entity
	children map[Entity][]Entity
	parentCT ComponentType[Parent]
	ready    bool
}

const maxHierarchyDepth = 1000

// childrenIndexResource returns the world's ChildrenIndex, creating and
// registering the Parent component type on first access.
func childrenIndexResource(w *World) *ChildrenIndex {
	return GetOrCreateResource(w.resources, func() *ChildrenIndex {
		return &ChildrenIndex{
			parentOf: make(map[Entity]Entity),
			children: make(map[Entity][]Entity),
			parentCT: RegisterComponent[Parent](w),
			ready:    true,
		}
	})
}

// ParentComponent returns the world's registered Parent component type,
// creating ChildrenIndex if this is the first hierarchy use.
func ParentComponent(w *World) ComponentType[Parent] {
	return childrenIndexResource(w).parentCT
}

// Link binds child under parent, first unlinking child from any existing
// parent. parent == NilEntity or a dead handle binds child to the root
// (spec §4.7). Self-links and cycles (parent is already a descendant of
// child) are rejected with CycleInHierarchyError.
func (w *World) Link(child, parent Entity) error {
	idx := childrenIndexResource(w)

	if child == parent && child != NilEntity {
		return CycleInHierarchyError{Child: child, Parent: parent}
	}
	if parent != NilEntity && w.IsAlive(parent) {
		if idx.isDescendant(parent, child) {
			return CycleInHierarchyError{Child: child, Parent: parent}
		}
	} else {
		parent = NilEntity
	}

	idx.unlink(child)
	idx.parentOf[child] = parent
	idx.children[parent] = append(idx.children[parent], child)
	idx.parentCT.Set(w, child, Parent{Entity: parent})
	return nil
}

// isDescendant walks parentOf from candidate upward, depth-capped at
// maxHierarchyDepth, looking for target (spec §4.7 "cycle test = walk
// parentOf from newParent upward for child").
func (idx *ChildrenIndex) isDescendant(candidate, target Entity) bool {
	cur := candidate
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		if cur == target {
			return true
		}
		next, ok := idx.parentOf[cur]
		if !ok || next == NilEntity {
			return false
		}
		cur = next
	}
	return true
}

// unlink removes child from its current parent's children slice, if any.
func (idx *ChildrenIndex) unlink(child Entity) {
	old, ok := idx.parentOf[child]
	if !ok {
		return
	}
	siblings := idx.children[old]
	for i, s := range siblings {
		if s == child {
			idx.children[old] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	delete(idx.parentOf, child)
}

// ChildrenOf returns parent's direct children, nil if it has none.
func (idx *ChildrenIndex) ChildrenOf(parent Entity) []Entity {
	return idx.children[parent]
}

// ParentOf returns child's current parent, or NilEntity if it has none.
func (idx *ChildrenIndex) ParentOf(child Entity) Entity {
	return idx.parentOf[child]
}

// TakeChildrenOf atomically detaches and returns parent's direct children,
// clearing their Parent links (spec §4.7 "atomically detaches").
func (w *World) TakeChildrenOf(parent Entity) []Entity {
	idx := childrenIndexResource(w)
	taken := idx.children[parent]
	delete(idx.children, parent)
	for _, child := range taken {
		delete(idx.parentOf, child)
		idx.parentCT.Remove(w, child)
	}
	return taken
}

// HierarchySync is the frame reconciliation system registered in preUpdate
// (spec §4.7/§6.1). It drains Removed(Parent) events first (unlinking),
// then Added(Parent) events (validating and linking via Link; an event whose
// entity no longer carries Parent, or is already linked to that parent, is
// skipped), then walks every known parent key whose entity is no longer
// alive and applies the configured policy to its orphaned children.
func HierarchySync(policy HierarchyPolicy) System {
	return SystemFunc(func(ctx *StepContext) {
		w := ctx.World
		idx := childrenIndexResource(w)

		w.RemovedEvents().Drain(func(ev ComponentEvent) {
			if ev.TypeID != idx.parentCT.ID() {
				return
			}
			idx.unlink(ev.Entity)
		})

		w.AddedEvents().Drain(func(ev ComponentEvent) {
			if ev.TypeID != idx.parentCT.ID() {
				return
			}
			p, ok := ev.Value.(Parent)
			if !ok {
				return
			}
			if !idx.parentCT.Has(w, ev.Entity) {
				return
			}
			if cur, linked := idx.parentOf[ev.Entity]; linked && cur == p.Entity {
				return
			}
			if err := w.Link(ev.Entity, p.Entity); err != nil {
				w.diag.Report(Failure{Kind: FailureHierarchy, Entity: ev.Entity, Message: err.Error()})
			}
		})

		for parent := range idx.children {
			if parent == NilEntity || w.IsAlive(parent) {
				continue
			}
			orphans := append([]Entity(nil), idx.children[parent]...)
			switch policy {
			case DestroyChildren:
				for _, child := range orphans {
					ctx.Cmd.Destroy(child)
				}
			default: // DetachToRoot
				for _, child := range orphans {
					AddTyped(ctx.Cmd, child, idx.parentCT, Parent{Entity: NilEntity})
				}
			}
			delete(idx.children, parent)
			for _, child := range orphans {
				delete(idx.parentOf, child)
			}
		}
	})
}

// Depth returns child's distance from the root, or HierarchyCorruptError if
// the walk exceeds maxHierarchyDepth without reaching NilEntity (spec §4.7
// "hard cap (1000)").
func (w *World) Depth(child Entity) (int, error) {
	idx := childrenIndexResource(w)
	cur := child
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		parent, ok := idx.parentOf[cur]
		if !ok || parent == NilEntity {
			return depth, nil
		}
		cur = parent
	}
	return 0, HierarchyCorruptError{Entity: child}
}
