package ecs

// SparseSet is a per-type sparse store mapping entity slot to a dense
// value/write-frame row (spec §3.5). World uses it only as a membership
// index; component values live in archetype columns. Grounded on
// other_examples/.../lzuwei-pecs-go__ecs-component_storage.go's
// ComponentPool[T]{entities *SparseSet, components []T} shape: a sparse
// array mapping entity slot to dense index, paired with dense value/frame
// arrays, swap-remove on delete.
type SparseSet[T any] struct {
	sparse    []int32 // entity slot -> dense index, or -1
	denseSlot []uint32
	values    []T
	writeFrm  []uint64
}

const noIndex = -1

// NewSparseSet returns an empty sparse set.
func NewSparseSet[T any]() *SparseSet[T] {
	return &SparseSet[T]{}
}

func (s *SparseSet[T]) ensureSparse(slot uint32) {
	for uint32(len(s.sparse)) <= slot {
		s.sparse = append(s.sparse, noIndex)
	}
}

// Has reports whether e has a value in the set.
func (s *SparseSet[T]) Has(e Entity) bool {
	slot := e.Slot()
	return int(slot) < len(s.sparse) && s.sparse[slot] != noIndex
}

// Set inserts or overwrites the value for e, stamping writeFrame.
func (s *SparseSet[T]) Set(e Entity, value T, frame uint64) {
	slot := e.Slot()
	s.ensureSparse(slot)
	if idx := s.sparse[slot]; idx != noIndex {
		s.values[idx] = value
		s.writeFrm[idx] = frame
		return
	}
	idx := int32(len(s.values))
	s.denseSlot = append(s.denseSlot, slot)
	s.values = append(s.values, value)
	s.writeFrm = append(s.writeFrm, frame)
	s.sparse[slot] = idx
}

// Get returns a pointer to the value for e, or nil if absent.
func (s *SparseSet[T]) Get(e Entity) *T {
	slot := e.Slot()
	if int(slot) >= len(s.sparse) {
		return nil
	}
	idx := s.sparse[slot]
	if idx == noIndex {
		return nil
	}
	return &s.values[idx]
}

// WriteFrame returns the frame e's value was last written at, and whether a
// value is present at all.
func (s *SparseSet[T]) WriteFrame(e Entity) (uint64, bool) {
	slot := e.Slot()
	if int(slot) >= len(s.sparse) || s.sparse[slot] == noIndex {
		return 0, false
	}
	return s.writeFrm[s.sparse[slot]], true
}

// Remove deletes e's value via swap-remove, returning whether it was
// present.
func (s *SparseSet[T]) Remove(e Entity) bool {
	slot := e.Slot()
	if int(slot) >= len(s.sparse) || s.sparse[slot] == noIndex {
		return false
	}
	idx := s.sparse[slot]
	last := int32(len(s.values) - 1)
	if idx != last {
		movedSlot := s.denseSlot[last]
		s.values[idx] = s.values[last]
		s.writeFrm[idx] = s.writeFrm[last]
		s.denseSlot[idx] = movedSlot
		s.sparse[movedSlot] = idx
	}
	s.values = s.values[:last]
	s.writeFrm = s.writeFrm[:last]
	s.denseSlot = s.denseSlot[:last]
	s.sparse[slot] = noIndex
	return true
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int { return len(s.values) }

// ForEach visits every (entity slot, value) pair in dense order, stopping
// early if fn returns false. It does not reconstruct a full Entity
// (generation is not tracked by the sparse set), so callers combine it with
// an EntityManager to recover a live handle.
func (s *SparseSet[T]) ForEach(fn func(slot uint32, value *T) bool) {
	for i := range s.values {
		if !fn(s.denseSlot[i], &s.values[i]) {
			return
		}
	}
}
