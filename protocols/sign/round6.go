package sign

import (
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/zk/eq"
	"github.com/gg20lab/tofn/pkg/zk/pedersenwc"
)

// Round6Bcast carries S_i = σ_i·R plus a WC proof reusing round 3's
// (sigma, g·sigma) commitment, now rebased to (sigma, R·sigma) (spec.md
// §4.3 R6).
type Round6Bcast struct {
	SI      *curve.Point
	WcProof *pedersenwc.Proof
}

type round6 struct {
	sess *signSession
	st   *signState
}

func (r *round6) Number() round.Number { return 6 }
func (r *round6) NeedsBcastIn() bool   { return true }
func (r *round6) NeedsP2pIn() bool     { return false }
func (r *round6) BcastContent() any    { return &Round5Bcast{} }
func (r *round6) P2pContent() any      { return nil }

func (r *round6) Execute(bcasts collections.FillVecMap[SignShareTag, any], _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m

	sumR := curve.NewIdentityPoint()
	faulters := round.NewFaulterList[SignShareTag]()
	for j := 0; j < n; j++ {
		jID := collections.NewTypedUsize[SignShareTag](uint32(j))
		v, _ := bcasts.Get(jID)
		pb := v.(*Round5Bcast)

		ok := eq.Verify(uint32(j),
			eq.Statement{Ciphertext: st.peerCiphers[j], Prover: sess.peerEKs[j], Aux: sess.peerZkps[j], PublicPoint: pb.RI, Base: st.r},
			pb.EqProof)
		if !ok {
			round.LogFaultWarn(sess.logger, sess.selfSignID, jID, "eq proof failed verification")
			faulters.Add(jID, "eq proof failed verification")
			continue
		}
		sumR.Add(sumR, pb.RI)
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[SignShareTag](faulters), nil
	}

	if !sumR.Equal(curve.Generator()) {
		// Every eq proof verified, yet the aggregate check fails: this can
		// only be explained by a bad, unprovable δ_j broadcast back in
		// round 3. Fall through to the reveal-and-audit sad path.
		return typeSevenReveal(sess, st, 7, nil)
	}

	sI := curve.NewIdentityPoint().ScalarMult(st.sigma, st.r)
	sI = maybeCorruptSI(sess.logger, sess.selfSignID, sess.behaviour, sI)
	proof := pedersenwc.Prove(sess.selfSignID.AsUsize(),
		pedersenwc.Statement{Commit: st.sigmaCommit, Aux: sess.selfZkp(), PublicPoint: sI, Base: st.r},
		pedersenwc.Witness{X: scalarToInt(st.sigma), Y: st.sigmaBlind, XScalar: st.sigma})

	bcastOut := &Round6Bcast{SI: sI, WcProof: proof}

	next := &round7{sess: sess, st: st}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut}), nil
}
