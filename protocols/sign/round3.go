package sign

import (
	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/zk/pedersenwc"
)

// Round3Bcast carries this share's δ_i (bare, unproven — see the type-7 sad
// path) and a Pedersen-with-check proof binding σ_i to the public point
// g·σ_i (spec.md §4.3 R3).
type Round3Bcast struct {
	Delta       *curve.Scalar
	SigmaCommit *safenum.Nat
	SigmaPoint  *curve.Point
	SigmaProof  *pedersenwc.Proof
}

type round3 struct {
	sess *signSession
	st   *signState
}

func (r *round3) Number() round.Number { return 3 }
func (r *round3) NeedsBcastIn() bool   { return false }
func (r *round3) NeedsP2pIn() bool     { return true }
func (r *round3) BcastContent() any    { return nil }
func (r *round3) P2pContent() any      { return &Round2P2p{} }

func (r *round3) Execute(_ collections.FillVecMap[SignShareTag, any], p2ps collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m
	selfIdx := sess.selfSignID.AsUsize()

	delta := curve.NewScalar().Mul(st.kI, st.gammaI)
	sigma := curve.NewScalar().Mul(st.kI, sess.wI)
	receivedDeltaCipher := make(map[uint32]*paillier.Ciphertext, n-1)

	faulters := round.NewFaulterList[SignShareTag]()
	for j := 0; j < n; j++ {
		if uint32(j) == selfIdx {
			continue
		}
		jID := collections.NewTypedUsize[SignShareTag](uint32(j))
		v, _ := p2ps.Get(jID)
		p := v.(*Round2P2p)
		receivedDeltaCipher[uint32(j)] = p.MtaResponse

		alphaInt, err := sess.dk.Dec(p.MtaResponse)
		if err != nil {
			round.LogFaultWarn(sess.logger, sess.selfSignID, jID, "undecryptable mta response")
			faulters.Add(jID, "undecryptable mta response")
			continue
		}
		muInt, err := sess.dk.Dec(p.MtaWcResponse)
		if err != nil {
			round.LogFaultWarn(sess.logger, sess.selfSignID, jID, "undecryptable mtawc response")
			faulters.Add(jID, "undecryptable mtawc response")
			continue
		}

		delta = addScalars(delta, intToScalar(alphaInt))
		delta = addScalars(delta, st.deltaMasks[uint32(j)])
		sigma = addScalars(sigma, intToScalar(muInt))
		sigma = addScalars(sigma, st.sigmaMasks[uint32(j)])
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[SignShareTag](faulters), nil
	}

	st.sigma = sigma
	st.receivedDeltaCipher = receivedDeltaCipher

	sigmaPoint := curve.NewIdentityPoint().ScalarBaseMult(sigma)
	yBlinding := randomBlindingInt(sess.selfZkp().N())
	sigmaCommit := sess.selfZkp().Commit(scalarToInt(sigma), yBlinding)
	proof := pedersenwc.Prove(selfIdx,
		pedersenwc.Statement{Commit: sigmaCommit, Aux: sess.selfZkp(), PublicPoint: sigmaPoint},
		pedersenwc.Witness{X: scalarToInt(sigma), Y: yBlinding, XScalar: sigma})

	st.sigmaCommit = sigmaCommit
	st.sigmaBlind = yBlinding

	bcastOut := &Round3Bcast{Delta: delta, SigmaCommit: sigmaCommit, SigmaPoint: sigmaPoint, SigmaProof: proof}

	next := &round4{sess: sess, st: st}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut}), nil
}
