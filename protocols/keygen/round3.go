package keygen

import (
	"log/slog"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/schnorr"
)

// Round3Bcast carries a share's proof of knowledge of its reconstructed
// Shamir secret x_i = Σ_j f_j(i) (spec.md §4.2 R3).
type Round3Bcast struct {
	XIProof *schnorr.Proof
}

type round3 struct {
	threshold        int
	partyShareCounts PartyShareCounts
	selfID           ShareID
	logger           *slog.Logger
	behaviour        Behaviour

	dk      *paillier.SecretKey
	vssPoly *vss.Vss

	peerEKs      []*paillier.PublicKey
	peerZkps     []*pedersen.Parameters
	peerYCommits []hash.Output
}

func (r *round3) Number() round.Number { return 3 }
func (r *round3) NeedsBcastIn() bool   { return true }
func (r *round3) NeedsP2pIn() bool     { return true }
func (r *round3) BcastContent() any    { return &Round2Bcast{} }
func (r *round3) P2pContent() any      { return &Round2P2p{} }

func (r *round3) Execute(bcasts collections.FillVecMap[ShareTag, any], p2ps collections.FillVecMap[ShareTag, any]) (*round.ProtocolBuilder[ShareTag], error) {
	n := bcasts.Len()
	selfScalar := vss.ShareIDToScalar(r.selfID.AsUsize())

	vssCommits := make([]*vss.Exponent, n)
	xI := curve.NewScalar()

	faulters := round.NewFaulterList[ShareTag]()
	for j := 0; j < n; j++ {
		jID := collections.NewTypedUsize[ShareTag](uint32(j))
		peerBcast, _ := bcasts.Get(jID)
		pb := peerBcast.(*Round2Bcast)
		vssCommits[j] = pb.UIVssCommit

		p2p, _ := p2ps.Get(jID)
		plaintext, err := r.dk.Dec(p2p.(*Round2P2p).Ciphertext)
		if err != nil {
			round.LogFaultWarn(r.logger, r.selfID, jID, "undecryptable share ciphertext")
			faulters.Add(jID, "undecryptable share ciphertext")
			continue
		}
		evalScalar, err := intToScalar(plaintext)
		if err != nil {
			round.LogFaultWarn(r.logger, r.selfID, jID, "share ciphertext decrypts to a non-scalar value")
			faulters.Add(jID, "share ciphertext decrypts to a non-scalar value")
			continue
		}

		expected := pb.UIVssCommit.Evaluate(selfScalar)
		got := curve.NewIdentityPoint().ScalarBaseMult(evalScalar)
		if !got.Equal(expected) {
			round.LogFaultWarn(r.logger, r.selfID, jID, "share fails VSS consistency check")
			faulters.Add(jID, "share fails VSS consistency check")
			continue
		}

		if !hash.Open(hash.TagYICommit, uint32(j), r.peerYCommits[j], pb.YIReveal, pb.UIVssCommit.ConstantCommit().ToCompressed()) {
			round.LogFaultWarn(r.logger, r.selfID, jID, "y_i_reveal does not open y_i_commit")
			faulters.Add(jID, "y_i_reveal does not open y_i_commit")
			continue
		}

		xI.Add(xI, evalScalar)
	}

	if !faulters.IsEmpty() {
		return round.DoneFaulters[ShareTag](faulters), nil
	}

	xIProof := schnorr.Prove(r.selfID.AsUsize(), schnorr.Statement{Public: curve.NewIdentityPoint().ScalarBaseMult(xI)}, xI)
	xIProof = maybeCorruptXIProof(r.logger, r.selfID, r.behaviour, xIProof)

	next := &round4{
		threshold:        r.threshold,
		partyShareCounts: r.partyShareCounts,
		selfID:           r.selfID,
		logger:           r.logger,

		dk:         r.dk,
		xI:         xI,
		vssCommits: vssCommits,
		peerEKs:    r.peerEKs,
		peerZkps:   r.peerZkps,
	}

	return round.NotDone(&round.RoundBuilder[ShareTag]{Next: next, BcastOut: &Round3Bcast{XIProof: xIProof}}), nil
}
