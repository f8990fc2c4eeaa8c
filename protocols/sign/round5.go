package sign

import (
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/zk/eq"
)

// Round5Bcast carries R_i = k_i·R plus a proof binding it to the k_i
// encrypted back in round 1 (spec.md §4.3 R5).
type Round5Bcast struct {
	RI      *curve.Point
	EqProof *eq.Proof
}

type round5 struct {
	sess *signSession
	st   *signState
}

func (r *round5) Number() round.Number { return 5 }
func (r *round5) NeedsBcastIn() bool   { return true }
func (r *round5) NeedsP2pIn() bool     { return false }
func (r *round5) BcastContent() any    { return &Round4Bcast{} }
func (r *round5) P2pContent() any      { return nil }

func (r *round5) Execute(bcasts collections.FillVecMap[SignShareTag, any], _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m

	sumGamma := curve.NewIdentityPoint()
	faulters := round.NewFaulterList[SignShareTag]()
	for j := 0; j < n; j++ {
		jID := collections.NewTypedUsize[SignShareTag](uint32(j))
		v, _ := bcasts.Get(jID)
		pb := v.(*Round4Bcast)

		ok := hash.Open(hash.TagGammaCommit, uint32(j), st.peerGammaCommits[j], pb.GammaReveal, pb.GammaPoint.ToCompressed())
		if !ok {
			round.LogFaultWarn(sess.logger, sess.selfSignID, jID, "gamma reveal does not open gamma commit")
			faulters.Add(jID, "gamma reveal does not open gamma commit")
			continue
		}
		sumGamma.Add(sumGamma, pb.GammaPoint)
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[SignShareTag](faulters), nil
	}

	r2 := curve.NewIdentityPoint().ScalarMult(st.deltaInv, sumGamma)
	if r2.IsIdentity() {
		return round.DoneFaulters[SignShareTag](faultAll(sess, "R is the identity point")), nil
	}
	st.r = r2

	rI := curve.NewIdentityPoint().ScalarMult(st.kI, r2)
	eqProof := eq.Prove(sess.selfSignID.AsUsize(),
		eq.Statement{Ciphertext: st.kICipher, Prover: sess.selfEK(), Aux: sess.selfZkp(), PublicPoint: rI, Base: r2},
		eq.Witness{K: scalarToInt(st.kI), KScalar: st.kI, Nonce: st.kINonce})

	bcastOut := &Round5Bcast{RI: rI, EqProof: eqProof}

	next := &round6{sess: sess, st: st}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut}), nil
}
