package round

import (
	"fmt"
	"log/slog"

	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/sdk"
	"github.com/gg20lab/tofn/pkg/serialize"
)

// Protocol is the driver described in spec.md §4.1 and §6: it buffers
// inbound messages for the current round and advances to the next round
// once every expected slot is filled. One Protocol value is exclusively
// owned by a single session/thread (spec.md §5).
type Protocol[K collections.Tag] struct {
	protocolID uint16
	sessionID  []byte
	selfID     collections.TypedUsize[K]
	n          int
	logger     *slog.Logger

	current Round[K]
	bcastIn collections.FillVecMap[K, any]
	p2pIn   collections.FillVecMap[K, any]

	driverFaults *FaulterList[K]

	pendingBcastOut any
	pendingP2pOut   map[uint32]any
	pendingOutRound Number

	terminal bool
	output   any
	faulters *FaulterList[K]
}

// New starts a Protocol in its first round.
func New[K collections.Tag](protocolID uint16, sessionID []byte, selfID collections.TypedUsize[K], n int, first Round[K], logger *slog.Logger) *Protocol[K] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Protocol[K]{
		protocolID: protocolID,
		sessionID:  sessionID,
		selfID:     selfID,
		n:          n,
		logger:     logger,
		current:    first,
		bcastIn:    collections.NewFillVecMap[K, any](n),
		p2pIn:      collections.NewFillVecMap[K, any](n),
	}
}

// SelfID returns this party's own share index.
func (p *Protocol[K]) SelfID() collections.TypedUsize[K] { return p.selfID }

// Round returns the current round number.
func (p *Protocol[K]) Round() Number { return p.current.Number() }

// MsgIn decodes a framed Envelope and buffers its payload for the current
// round. A round-tag mismatch is fatal (the caller should have buffered the
// message itself per spec.md's ordering guarantees); a malformed or
// duplicate payload attributes blame to the sender instead.
func (p *Protocol[K]) MsgIn(raw []byte) error {
	if p.terminal {
		return nil
	}
	var env Envelope
	if err := serialize.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("round: envelope decode failed: %w", sdk.TofnFatal)
	}
	if env.Round != p.current.Number() {
		return fmt.Errorf("round: message for round %d delivered during round %d: %w", env.Round, p.current.Number(), sdk.TofnFatal)
	}
	from := collections.NewTypedUsize[K](env.From)

	switch env.Kind {
	case KindBcast:
		if !p.current.NeedsBcastIn() {
			return fmt.Errorf("round: unexpected broadcast in round %d: %w", p.current.Number(), sdk.TofnFatal)
		}
		content := p.current.BcastContent()
		if err := serialize.Unmarshal(env.Payload, content); err != nil {
			p.addDriverFault(from, "malformed broadcast payload")
			return nil
		}
		if !p.bcastIn.Set(from, content) {
			p.addDriverFault(from, "duplicate broadcast delivery")
		}
	case KindP2p:
		if env.To != p.selfID.AsUsize() {
			p.addDriverFault(from, "p2p message misaddressed")
			return nil
		}
		if !p.current.NeedsP2pIn() {
			return fmt.Errorf("round: unexpected p2p message in round %d: %w", p.current.Number(), sdk.TofnFatal)
		}
		content := p.current.P2pContent()
		if err := serialize.Unmarshal(env.Payload, content); err != nil {
			p.addDriverFault(from, "malformed p2p payload")
			return nil
		}
		if !p.p2pIn.Set(from, content) {
			p.addDriverFault(from, "duplicate p2p delivery")
		}
	default:
		return fmt.Errorf("round: unknown envelope kind %d: %w", env.Kind, sdk.TofnFatal)
	}
	return nil
}

func (p *Protocol[K]) addDriverFault(id collections.TypedUsize[K], reason string) {
	if p.driverFaults == nil {
		p.driverFaults = NewFaulterList[K]()
	}
	p.driverFaults.Add(id, reason)
	LogFaultWarn(p.logger, p.selfID, id, reason)
}

// ExpectingMoreMsgsThisRound reports whether any expected slot for the
// current round is still unfilled.
func (p *Protocol[K]) ExpectingMoreMsgsThisRound() bool {
	if p.terminal {
		return false
	}
	if p.current.NeedsBcastIn() && !p.bcastIn.IsFull() {
		return true
	}
	if p.current.NeedsP2pIn() && !p.p2pIn.IsFull() {
		return true
	}
	return false
}

// ExecuteNextRound advances the session by one round. Its precondition
// (every expected slot filled) is the caller's responsibility to establish
// via ExpectingMoreMsgsThisRound; violating it is a library bug, not an
// attributable fault, so it panics rather than returning an error.
func (p *Protocol[K]) ExecuteNextRound() error {
	if p.terminal {
		panic("round: ExecuteNextRound called on a terminated protocol")
	}
	if p.ExpectingMoreMsgsThisRound() {
		panic("round: ExecuteNextRound called before all slots for this round were filled")
	}

	if p.driverFaults != nil && !p.driverFaults.IsEmpty() {
		p.terminal = true
		p.faulters = p.driverFaults
		return nil
	}

	pb, err := p.current.Execute(p.bcastIn, p.p2pIn)
	if err != nil {
		p.logger.Error("round execution failed", "party", p.selfID.AsUsize(), "round", p.current.Number(), "error", err.Error())
		return err
	}

	if pb.terminal {
		if pb.faulters != nil && pb.faulters.IsEmpty() {
			panic("round: Done(Err(...)) produced with an empty faulter list")
		}
		p.terminal = true
		p.output = pb.output
		p.faulters = pb.faulters
		return nil
	}

	p.pendingOutRound = pb.rb.Next.Number()
	p.current = pb.rb.Next
	p.pendingBcastOut = pb.rb.BcastOut
	p.pendingP2pOut = pb.rb.P2pOut
	p.bcastIn = collections.NewFillVecMap[K, any](p.n)
	p.p2pIn = collections.NewFillVecMap[K, any](p.n)
	return nil
}

// Done reports whether the session has terminated, and if so its output
// (on success) or faulter list (on failure). Exactly one of output/faulters
// is non-nil when ok is true.
func (p *Protocol[K]) Done() (output any, faulters *FaulterList[K], ok bool) {
	return p.output, p.faulters, p.terminal
}

// TakeBcastOut returns and clears this round's outbound broadcast payload,
// if any, as a (protocolID, round, from)-stamped Envelope ready to
// broadcast verbatim.
func (p *Protocol[K]) TakeBcastOut() (Envelope, bool) {
	if p.pendingBcastOut == nil {
		return Envelope{}, false
	}
	payload, err := serialize.Marshal(p.pendingBcastOut)
	p.pendingBcastOut = nil
	if err != nil {
		panic(err) // serialize.Marshal only fails on an unsupported type, a library bug
	}
	return Envelope{
		ProtocolID: p.protocolID,
		SessionID:  p.sessionID,
		Round:      p.pendingOutRound,
		From:       p.selfID.AsUsize(),
		Kind:       KindBcast,
		Payload:    payload,
	}, true
}

// TakeP2pOut returns and clears this round's outbound per-recipient
// payloads as Envelopes addressed to each recipient.
func (p *Protocol[K]) TakeP2pOut() []Envelope {
	if len(p.pendingP2pOut) == 0 {
		return nil
	}
	out := make([]Envelope, 0, len(p.pendingP2pOut))
	for to, content := range p.pendingP2pOut {
		payload, err := serialize.Marshal(content)
		if err != nil {
			panic(err)
		}
		out = append(out, Envelope{
			ProtocolID: p.protocolID,
			SessionID:  p.sessionID,
			Round:      p.pendingOutRound,
			From:       p.selfID.AsUsize(),
			Kind:       KindP2p,
			To:         to,
			Payload:    payload,
		})
	}
	p.pendingP2pOut = nil
	return out
}
