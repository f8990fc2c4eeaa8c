package collections

import "fmt"

// PartyTag indexes parties; ShareTag indexes shares. A PartyShareCounts maps
// PartyTag indices to the number of shares that party holds, and derives the
// flattened 0..n enumeration of share indices used throughout keygen/sign.
type PartyTag struct{}

// PartyID indexes the set of distinct parties in a session.
type PartyID = TypedUsize[PartyTag]

// PartyShareCounts records how many shares[K] each party holds.
type PartyShareCounts[K Tag] struct {
	counts        []uint32
	shareToParty  []PartyID
	shareToSub    []uint8
	partyToFirst  []uint32
	total         uint32
}

// NewPartyShareCounts builds the mapping from a per-party share count slice.
// Every count must be >= 1.
func NewPartyShareCounts[K Tag](counts []uint32) (PartyShareCounts[K], error) {
	shareToParty := make([]PartyID, 0)
	shareToSub := make([]uint8, 0)
	partyToFirst := make([]uint32, len(counts))
	var total uint32
	for p, c := range counts {
		if c == 0 {
			return PartyShareCounts[K]{}, fmt.Errorf("collections: party %d holds zero shares", p)
		}
		partyToFirst[p] = total
		for s := uint32(0); s < c; s++ {
			shareToParty = append(shareToParty, NewTypedUsize[PartyTag](uint32(p)))
			shareToSub = append(shareToSub, uint8(s))
		}
		total += c
	}
	return PartyShareCounts[K]{
		counts:       append([]uint32(nil), counts...),
		shareToParty: shareToParty,
		shareToSub:   shareToSub,
		partyToFirst: partyToFirst,
		total:        total,
	}, nil
}

// PartyCount returns n, the number of distinct parties.
func (p PartyShareCounts[K]) PartyCount() int { return len(p.counts) }

// TotalShareCount returns the sum of all per-party share counts.
func (p PartyShareCounts[K]) TotalShareCount() uint32 { return p.total }

// SharesOf returns the number of shares the given party holds.
func (p PartyShareCounts[K]) SharesOf(party PartyID) uint32 {
	return p.counts[int(party.AsUsize())]
}

// ShareToParty maps a flattened share index back to its owning party.
func (p PartyShareCounts[K]) ShareToParty(share TypedUsize[K]) PartyID {
	return p.shareToParty[int(share.AsUsize())]
}

// ShareToSubshareID returns the 0-based index of share within its party's
// allotment (e.g. the 2nd of 3 shares held by one party has subshare id 1).
func (p PartyShareCounts[K]) ShareToSubshareID(share TypedUsize[K]) uint8 {
	return p.shareToSub[int(share.AsUsize())]
}

// AllShareIDs returns every flattened share index in order.
func (p PartyShareCounts[K]) AllShareIDs() []TypedUsize[K] {
	out := make([]TypedUsize[K], p.total)
	for i := range out {
		out[i] = NewTypedUsize[K](uint32(i))
	}
	return out
}
