package sign

import (
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/zk/pedersenwc"
)

// Round7Bcast carries this share's partial signature s_i = m·k_i + r·σ_i
// (spec.md §4.3 R7).
type Round7Bcast struct {
	SI *curve.Scalar
}

type round7 struct {
	sess *signSession
	st   *signState
}

func (r *round7) Number() round.Number { return 7 }
func (r *round7) NeedsBcastIn() bool   { return true }
func (r *round7) NeedsP2pIn() bool     { return false }
func (r *round7) BcastContent() any    { return &Round6Bcast{} }
func (r *round7) P2pContent() any      { return nil }

func (r *round7) Execute(bcasts collections.FillVecMap[SignShareTag, any], _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m

	sumS := curve.NewIdentityPoint()
	wcFailures := round.NewFaulterList[SignShareTag]()
	for j := 0; j < n; j++ {
		jID := collections.NewTypedUsize[SignShareTag](uint32(j))
		v, _ := bcasts.Get(jID)
		pb := v.(*Round6Bcast)

		ok := pedersenwc.Verify(uint32(j),
			pedersenwc.Statement{Commit: st.reportedSigmaCommit[j], Aux: sess.peerZkps[j], PublicPoint: pb.SI, Base: st.r},
			pb.WcProof)
		if !ok {
			round.LogFaultWarn(sess.logger, sess.selfSignID, jID, "sigma wc proof failed verification")
			wcFailures.Add(jID, "sigma wc proof failed verification")
			continue
		}
		sumS.Add(sumS, pb.SI)
	}
	if !wcFailures.IsEmpty() {
		// Unlike round 6's eq-proof check, round 7 carries no carve-out for
		// a malformed individual proof (spec.md's R7 description faults both
		// checks into the same sad path): the culprit is already known from
		// the failed verification above, but the reveal-and-audit round
		// still runs so every party reaches the same terminal state the
		// same way.
		return typeSevenReveal(sess, st, 8, wcFailures)
	}

	if !sumS.Equal(sess.groupY) {
		// Every WC proof verified, yet ΣS_i doesn't match the group public
		// key: again only explainable by a bad round-3 δ_j broadcast.
		return typeSevenReveal(sess, st, 8, nil)
	}

	rScalar := st.r.XCoordScalar()
	mScalar := digestToScalar(sess.digest)
	sI := addScalars(curve.NewScalar().Mul(mScalar, st.kI), curve.NewScalar().Mul(rScalar, st.sigma))

	bcastOut := &Round7Bcast{SI: sI}

	next := &round8{sess: sess, st: st, r: rScalar}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut}), nil
}
