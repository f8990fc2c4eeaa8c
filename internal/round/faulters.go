package round

import "github.com/gg20lab/tofn/pkg/collections"

// Fault is one attributable-fault entry: the share id blamed and a short
// human-readable reason, used both for the returned FaulterList and for
// logging.
type Fault[K collections.Tag] struct {
	ID     collections.TypedUsize[K]
	Reason string
}

// FaulterList accumulates attributable faults detected while executing a
// single round. A round may detect several independent faults (e.g. two
// peers both sent bad range proofs); all of them are reported together
// rather than stopping at the first (spec.md's "Tie-breaking rule": all
// faulters are reported, order-independent).
type FaulterList[K collections.Tag] struct {
	entries []Fault[K]
	seen    map[uint32]bool
}

// NewFaulterList returns an empty builder.
func NewFaulterList[K collections.Tag]() *FaulterList[K] {
	return &FaulterList[K]{seen: make(map[uint32]bool)}
}

// Add records a fault against id, deduplicating repeat accusations of the
// same party within one round.
func (f *FaulterList[K]) Add(id collections.TypedUsize[K], reason string) {
	idx := id.AsUsize()
	if f.seen[idx] {
		return
	}
	f.seen[idx] = true
	f.entries = append(f.entries, Fault[K]{ID: id, Reason: reason})
}

// IsEmpty reports whether no fault has been recorded.
func (f *FaulterList[K]) IsEmpty() bool { return f == nil || len(f.entries) == 0 }

// Entries returns every recorded fault, in the order first added.
func (f *FaulterList[K]) Entries() []Fault[K] {
	if f == nil {
		return nil
	}
	return f.entries
}

// Contains reports whether id has been faulted.
func (f *FaulterList[K]) Contains(id collections.TypedUsize[K]) bool {
	return f != nil && f.seen[id.AsUsize()]
}
