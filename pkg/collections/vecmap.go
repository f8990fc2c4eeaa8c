package collections

import "fmt"

// VecMap is a dense vector indexed only by TypedUsize[K]. Every slot is
// populated; there are no holes. Use FillVecMap when slots are populated
// incrementally (e.g. buffering incoming messages).
type VecMap[K Tag, V any] struct {
	values []V
}

// NewVecMap wraps an existing slice. The slice becomes owned by the map.
func NewVecMap[K Tag, V any](values []V) VecMap[K, V] {
	return VecMap[K, V]{values: values}
}

// FillVecMapWithFunc builds a VecMap of length n by calling f for each index.
func FillVecMapWithFunc[K Tag, V any](n int, f func(TypedUsize[K]) V) VecMap[K, V] {
	values := make([]V, n)
	for i := range values {
		values[i] = f(NewTypedUsize[K](uint32(i)))
	}
	return VecMap[K, V]{values: values}
}

// Len returns the number of entries.
func (m VecMap[K, V]) Len() int { return len(m.values) }

// Get returns the value at index i. Panics if i is out of range: this is
// always a library invariant violation, never an attributable or recoverable
// condition, since indices are constructed internally from Len.
func (m VecMap[K, V]) Get(i TypedUsize[K]) V {
	idx := int(i.AsUsize())
	if idx < 0 || idx >= len(m.values) {
		panic(fmt.Sprintf("collections: VecMap index %d out of range [0,%d)", idx, len(m.values)))
	}
	return m.values[idx]
}

// Set overwrites the value at index i.
func (m VecMap[K, V]) Set(i TypedUsize[K], v V) {
	m.values[int(i.AsUsize())] = v
}

// Iter calls f for every (index, value) pair in order.
func (m VecMap[K, V]) Iter(f func(TypedUsize[K], V)) {
	for i, v := range m.values {
		f(NewTypedUsize[K](uint32(i)), v)
	}
}

// ToSlice returns the underlying values in index order. The returned slice
// shares storage with the map; callers must not mutate it unless they own
// the map exclusively.
func (m VecMap[K, V]) ToSlice() []V { return m.values }
