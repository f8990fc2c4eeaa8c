package sign

import (
	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/zk/pedersenwc"
)

// Round4Bcast reveals this share's round-1 GammaCommit opening plus the
// committed point Γ_i (spec.md §4.3 R4).
type Round4Bcast struct {
	GammaReveal hash.Decommitment
	GammaPoint  *curve.Point
}

type round4 struct {
	sess *signSession
	st   *signState
}

func (r *round4) Number() round.Number { return 4 }
func (r *round4) NeedsBcastIn() bool   { return true }
func (r *round4) NeedsP2pIn() bool     { return false }
func (r *round4) BcastContent() any    { return &Round3Bcast{} }
func (r *round4) P2pContent() any      { return nil }

func (r *round4) Execute(bcasts collections.FillVecMap[SignShareTag, any], _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m
	selfIdx := sess.selfSignID.AsUsize()

	reportedDelta := make([]*curve.Scalar, n)
	reportedSigmaCommit := make([]*safenum.Nat, n)
	reportedSigmaPoint := make([]*curve.Point, n)

	faulters := round.NewFaulterList[SignShareTag]()
	for j := 0; j < n; j++ {
		jID := collections.NewTypedUsize[SignShareTag](uint32(j))
		v, _ := bcasts.Get(jID)
		pb := v.(*Round3Bcast)
		reportedDelta[j] = pb.Delta
		reportedSigmaCommit[j] = pb.SigmaCommit
		reportedSigmaPoint[j] = pb.SigmaPoint

		if uint32(j) == selfIdx {
			continue
		}
		ok := pedersenwc.Verify(uint32(j),
			pedersenwc.Statement{Commit: pb.SigmaCommit, Aux: sess.peerZkps[j], PublicPoint: pb.SigmaPoint},
			pb.SigmaProof)
		if !ok {
			round.LogFaultWarn(sess.logger, sess.selfSignID, jID, "sigma proof failed verification")
			faulters.Add(jID, "sigma proof failed verification")
		}
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[SignShareTag](faulters), nil
	}

	delta := curve.NewScalar()
	for _, d := range reportedDelta {
		delta = addScalars(delta, d)
	}
	if delta.IsZero() {
		// No single party's δ_j can be blamed for an unprovable aggregate
		// zero; falling back to faulting everyone keeps DoneFaulters' non-
		// empty invariant satisfied (spec.md §4.3, type-7 sad path note).
		return round.DoneFaulters[SignShareTag](faultAll(sess, "delta sums to zero, R would be undefined")), nil
	}
	deltaInv := curve.NewScalar().Invert(delta)

	st.reportedDelta = reportedDelta
	st.reportedSigmaCommit = reportedSigmaCommit
	st.reportedSigmaPoint = reportedSigmaPoint
	st.deltaInv = deltaInv

	gammaPoint := curve.NewIdentityPoint().ScalarBaseMult(st.gammaI)
	bcastOut := &Round4Bcast{GammaReveal: st.gammaReveal, GammaPoint: gammaPoint}

	next := &round5{sess: sess, st: st}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut}), nil
}

// faultAll is the conservative fallback used whenever a δ-sum anomaly can't
// be pinned on a specific signer from locally available data alone.
func faultAll(sess *signSession, reason string) *round.FaulterList[SignShareTag] {
	faulters := round.NewFaulterList[SignShareTag]()
	for i := 0; i < sess.m; i++ {
		id := collections.NewTypedUsize[SignShareTag](uint32(i))
		faulters.Add(id, reason)
	}
	return faulters
}
