package keygen

import (
	"log/slog"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/paillierkey"
	"github.com/gg20lab/tofn/pkg/zk/paillierprm"
)

// Round1Bcast is round 1's broadcast payload: a commitment to g·u_i plus the
// share's Paillier encryption key and ZK setup, each with its correctness
// proof (spec.md §4.2 R1).
type Round1Bcast struct {
	YICommit hash.Output
	EK       *paillier.PublicKey
	EKProof  *paillierkey.Proof
	Zkp      *pedersen.Parameters
	ZkpProof *paillierprm.Proof
}

// round1 carries everything NewKeygen already computed; Execute simply
// packages it into the first outbound broadcast (the Rust source performs
// all of this work before calling round1::start, not inside it).
type round1 struct {
	threshold        int
	partyShareCounts PartyShareCounts
	selfID           ShareID
	logger           *slog.Logger
	behaviour        Behaviour

	vssPoly  *vss.Vss
	dk       *paillier.SecretKey
	ek       *paillier.PublicKey
	ekProof  *paillierkey.Proof
	zkp      *pedersen.Parameters
	zkpProof *paillierprm.Proof
	yICommit hash.Output
	yIReveal hash.Decommitment
}

func (r *round1) Number() round.Number { return 1 }
func (r *round1) NeedsBcastIn() bool   { return false }
func (r *round1) NeedsP2pIn() bool     { return false }
func (r *round1) BcastContent() any    { return &Round1Bcast{} }
func (r *round1) P2pContent() any      { return nil }

func (r *round1) Execute(_ collections.FillVecMap[ShareTag, any], _ collections.FillVecMap[ShareTag, any]) (*round.ProtocolBuilder[ShareTag], error) {
	bcast := &Round1Bcast{
		YICommit: maybeCorruptCommit(r.logger, r.selfID, r.behaviour, r.yICommit),
		EK:       r.ek,
		EKProof:  maybeCorruptEKProof(r.logger, r.selfID, r.behaviour, r.ekProof),
		Zkp:      r.zkp,
		ZkpProof: maybeCorruptZkpProof(r.logger, r.selfID, r.behaviour, r.zkpProof),
	}

	next := &round2{
		threshold:        r.threshold,
		partyShareCounts: r.partyShareCounts,
		selfID:           r.selfID,
		logger:           r.logger,
		behaviour:        r.behaviour,
		vssPoly:          r.vssPoly,
		dk:               r.dk,
		yIReveal:         r.yIReveal,
	}

	return round.NotDone(&round.RoundBuilder[ShareTag]{Next: next, BcastOut: bcast}), nil
}
