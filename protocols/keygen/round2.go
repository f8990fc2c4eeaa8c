package keygen

import (
	"log/slog"

	"github.com/gg20lab/tofn/internal/pool"
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/paillierkey"
	"github.com/gg20lab/tofn/pkg/zk/paillierprm"
)

// Round2Bcast carries a share's public VSS commitment plus the decommitment
// that opens its round-1 y_i_commit (spec.md §4.2 R2).
type Round2Bcast struct {
	UIVssCommit *vss.Exponent
	YIReveal    hash.Decommitment
}

// Round2P2p is the encrypted evaluation f_i(k) sent from share i to share k.
type Round2P2p struct {
	Ciphertext *paillier.Ciphertext
}

type round2 struct {
	threshold        int
	partyShareCounts PartyShareCounts
	selfID           ShareID
	logger           *slog.Logger
	behaviour        Behaviour

	vssPoly  *vss.Vss
	dk       *paillier.SecretKey
	yIReveal hash.Decommitment
}

func (r *round2) Number() round.Number { return 2 }
func (r *round2) NeedsBcastIn() bool   { return true }
func (r *round2) NeedsP2pIn() bool     { return false }
func (r *round2) BcastContent() any    { return &Round1Bcast{} }
func (r *round2) P2pContent() any      { return nil }

func (r *round2) Execute(bcasts collections.FillVecMap[ShareTag, any], _ collections.FillVecMap[ShareTag, any]) (*round.ProtocolBuilder[ShareTag], error) {
	n := bcasts.Len()
	peerBcasts := make([]*Round1Bcast, n)
	bcasts.Iter(func(i ShareID, v any) { peerBcasts[i.AsUsize()] = v.(*Round1Bcast) })

	pl := pool.New(0)
	type verifyResult struct {
		ok     bool
		reason string
	}
	results := pl.Parallelize(n, func(i int) any {
		peer := peerBcasts[i]
		party := r.partyShareCounts.ShareToParty(collections.NewTypedUsize[ShareTag](uint32(i)))
		if !paillierkey.Verify(party.AsUsize(), paillierkey.Statement{N: peer.EK.N()}, peer.EKProof) {
			return verifyResult{false, "ek_proof failed verification"}
		}
		zkpStmt := paillierprm.Statement{N: peer.Zkp.N(), S: peer.Zkp.S(), T: peer.Zkp.T()}
		if !paillierprm.Verify(party.AsUsize(), zkpStmt, peer.ZkpProof) {
			return verifyResult{false, "zkp_proof failed verification"}
		}
		return verifyResult{true, ""}
	})

	faulters := round.NewFaulterList[ShareTag]()
	for i, res := range results {
		vr := res.(verifyResult)
		if !vr.ok {
			id := collections.NewTypedUsize[ShareTag](uint32(i))
			round.LogFaultWarn(r.logger, r.selfID, id, vr.reason)
			faulters.Add(id, vr.reason)
		}
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[ShareTag](faulters), nil
	}

	commit := maybeCorruptVssCommit(r.logger, r.selfID, r.behaviour, r.threshold, r.vssPoly.Commit())
	bcastOut := &Round2Bcast{UIVssCommit: commit, YIReveal: r.yIReveal}

	// Every share, including this one, gets an encrypted evaluation: round 3
	// needs a filled p2p slot per share (itself included), and decrypting
	// its own entry is how a share recovers its own f_i(i) term uniformly
	// alongside every peer's.
	p2pOut := make(map[uint32]any, n)
	for k := 0; k < n; k++ {
		peerEK := peerBcasts[k].EK
		evalScalar := r.vssPoly.Polynomial().Evaluate(vss.ShareIDToScalar(uint32(k)))
		ct, _ := peerEK.Enc(scalarToInt(evalScalar))
		p2pOut[uint32(k)] = &Round2P2p{Ciphertext: ct}
	}

	peerEKs := make([]*paillier.PublicKey, n)
	peerZkps := make([]*pedersen.Parameters, n)
	peerYCommits := make([]hash.Output, n)
	for i, peer := range peerBcasts {
		peerEKs[i] = peer.EK
		peerZkps[i] = peer.Zkp
		peerYCommits[i] = peer.YICommit
	}

	next := &round3{
		threshold:        r.threshold,
		partyShareCounts: r.partyShareCounts,
		selfID:           r.selfID,
		logger:           r.logger,
		behaviour:        r.behaviour,
		dk:               r.dk,
		vssPoly:          r.vssPoly,
		peerEKs:          peerEKs,
		peerZkps:         peerZkps,
		peerYCommits:     peerYCommits,
	}

	return round.NotDone(&round.RoundBuilder[ShareTag]{Next: next, BcastOut: bcastOut, P2pOut: p2pOut}), nil
}
