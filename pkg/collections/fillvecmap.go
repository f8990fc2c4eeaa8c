package collections

// FillVecMap is a VecMap whose slots may or may not yet be populated. The
// protocol runtime uses it to buffer incoming per-round broadcasts and
// peer-to-peer messages: a slot starts empty and is filled exactly once as
// messages arrive.
type FillVecMap[K Tag, V any] struct {
	values []*V
	filled int
}

// NewFillVecMap allocates an all-empty FillVecMap of length n.
func NewFillVecMap[K Tag, V any](n int) FillVecMap[K, V] {
	return FillVecMap[K, V]{values: make([]*V, n)}
}

// Len returns the total number of slots (filled or not).
func (m FillVecMap[K, V]) Len() int { return len(m.values) }

// CountFilled returns the number of populated slots.
func (m FillVecMap[K, V]) CountFilled() int { return m.filled }

// IsFull reports whether every slot is populated.
func (m FillVecMap[K, V]) IsFull() bool { return m.filled == len(m.values) }

// IsNone reports whether the slot at i is still empty.
func (m FillVecMap[K, V]) IsNone(i TypedUsize[K]) bool {
	return m.values[int(i.AsUsize())] == nil
}

// Get returns the value at i and whether it was present.
func (m FillVecMap[K, V]) Get(i TypedUsize[K]) (V, bool) {
	p := m.values[int(i.AsUsize())]
	if p == nil {
		var zero V
		return zero, false
	}
	return *p, true
}

// Set populates the slot at i. Returns false if the slot was already
// populated (a duplicate-delivery condition the caller must treat as an
// attributable fault on the sender, per spec.md "Envelope duplicate
// rejection").
func (m *FillVecMap[K, V]) Set(i TypedUsize[K], v V) bool {
	idx := int(i.AsUsize())
	if m.values[idx] != nil {
		return false
	}
	m.values[idx] = &v
	m.filled++
	return true
}

// Iter calls f for every populated (index, value) pair, in index order.
func (m FillVecMap[K, V]) Iter(f func(TypedUsize[K], V)) {
	for i, p := range m.values {
		if p != nil {
			f(NewTypedUsize[K](uint32(i)), *p)
		}
	}
}

// MissingIndices returns the indices that are still unfilled, in order.
func (m FillVecMap[K, V]) MissingIndices() []TypedUsize[K] {
	var out []TypedUsize[K]
	for i, p := range m.values {
		if p == nil {
			out = append(out, NewTypedUsize[K](uint32(i)))
		}
	}
	return out
}
