// Package round implements the generic, round-driven protocol orchestrator
// described in spec.md §4.1: a uniform contract every keygen/sign round
// satisfies, plus the Protocol driver that buffers inbound messages and
// advances rounds once their input slots are full. The round interface
// (Execute/NeedsBcastIn/NeedsP2pIn/Number/BcastContent/P2pContent) and the
// two-channel fault model (a recorded, attributable FaulterList versus a
// hard TofnFatal error) follow the conventions CMP-style threshold-signing
// implementations use for their own round runtimes.
package round

import (
	"github.com/gg20lab/tofn/pkg/collections"
)

// Number identifies a round within a session, starting at 1.
type Number uint8

// Round is the uniform per-round contract: given every received broadcast
// and peer-to-peer message for this round, produce the next round (or a
// terminal result). Implementations own their private state and must not
// perform I/O; the runtime performs all message delivery.
//
// K is the phantom share-id tag (KeygenShareID or SignShareID) so that a
// keygen Round can never be handed a sign session's indices or vice versa.
type Round[K collections.Tag] interface {
	// Execute runs this round to completion. bcasts and p2ps are guaranteed
	// full per NeedsBcastIn/NeedsP2pIn before the driver calls Execute. Both
	// are indexed by sender: p2ps holds, for each peer, the single payload
	// that peer addressed to this party.
	Execute(bcasts collections.FillVecMap[K, any], p2ps collections.FillVecMap[K, any]) (*ProtocolBuilder[K], error)

	// NeedsBcastIn reports whether this round expects a broadcast slot per
	// party before it can execute.
	NeedsBcastIn() bool

	// NeedsP2pIn reports whether this round expects peer-to-peer slots per
	// party before it can execute.
	NeedsP2pIn() bool

	// Number returns this round's position in the session (1-indexed).
	Number() Number

	// BcastContent returns a fresh pointer to this round's broadcast
	// message type, used by the driver to decode an inbound broadcast
	// envelope's payload. Never called if NeedsBcastIn is false.
	BcastContent() any

	// P2pContent is BcastContent's peer-to-peer counterpart. Never called
	// if NeedsP2pIn is false.
	P2pContent() any
}

// RoundBuilder is the payload of a NotDone ProtocolBuilder: the next round's
// handler plus whatever this round wants to send out.
type RoundBuilder[K collections.Tag] struct {
	Next Round[K]

	// BcastOut, if non-nil, is broadcast to all n parties (including self).
	BcastOut any

	// P2pOut maps recipient share index to a per-recipient payload. Since
	// p2pIn is sized for all n parties just like bcastIn, a round that needs
	// p2p input must address an entry to self too, same as BcastOut.
	P2pOut map[uint32]any
}

// ProtocolBuilder is the outcome of one round's Execute: either carry the
// session forward (NotDone) or terminate it (Done), matching spec.md's
// "ProtocolBuilder variants".
type ProtocolBuilder[K collections.Tag] struct {
	rb       *RoundBuilder[K]
	terminal bool
	output   any
	faulters *FaulterList[K]
}

// NotDone carries the session forward to its next round.
func NotDone[K collections.Tag](rb *RoundBuilder[K]) *ProtocolBuilder[K] {
	return &ProtocolBuilder[K]{rb: rb}
}

// Done terminates the session successfully with the given output.
func Done[K collections.Tag](output any) *ProtocolBuilder[K] {
	return &ProtocolBuilder[K]{terminal: true, output: output}
}

// DoneFaulters terminates the session with an attributable fault list. The
// list must be non-empty; an empty faulter list on a failed session is a
// fatal implementation bug (spec.md §4.3, type-7 sad path note).
func DoneFaulters[K collections.Tag](faulters *FaulterList[K]) *ProtocolBuilder[K] {
	if faulters == nil || faulters.IsEmpty() {
		panic("round: DoneFaulters called with no faulters")
	}
	return &ProtocolBuilder[K]{terminal: true, faulters: faulters}
}
