package sign

import (
	"io"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/zk/paillierrange"
)

// Round1Bcast carries the commitment to Γ_i = g·γ_i (spec.md §4.3 R1).
type Round1Bcast struct {
	GammaCommit hash.Output
}

// Round1P2p carries the shared Enc(ek_i, k_i) ciphertext plus a range proof
// addressed to the recipient's own ZK setup. Every signer, self included,
// gets an entry: round 2 needs a filled p2p slot per signer.
type Round1P2p struct {
	Ciphertext *paillier.Ciphertext
	RangeProof *paillierrange.Proof
}

type round1 struct {
	sess *signSession
	st   *signState
}

func newRound1(sess *signSession, rnd io.Reader) (*round1, error) {
	kI, err := curve.NewScalarFromReader(rnd)
	if err != nil {
		return nil, err
	}
	gammaI, err := curve.NewScalarFromReader(rnd)
	if err != nil {
		return nil, err
	}

	kICipher, kINonce := sess.selfEK().Enc(scalarToInt(kI))

	gammaPoint := curve.NewIdentityPoint().ScalarBaseMult(gammaI)
	gammaCommit, gammaReveal, err := hash.Commit(hash.TagGammaCommit, sess.selfSignID.AsUsize(), gammaPoint.ToCompressed())
	if err != nil {
		return nil, err
	}

	rangeProofs := make([]*paillierrange.Proof, sess.m)
	for j := 0; j < sess.m; j++ {
		rangeProofs[j] = paillierrange.Prove(sess.selfSignID.AsUsize(),
			paillierrange.Statement{Ciphertext: kICipher, Prover: sess.selfEK(), Aux: sess.peerZkps[j]},
			paillierrange.Witness{Plaintext: scalarToInt(kI), Nonce: kINonce})
	}

	st := &signState{
		kI:          kI,
		gammaI:      gammaI,
		kICipher:    kICipher,
		kINonce:     kINonce,
		gammaCommit: gammaCommit,
		gammaReveal: gammaReveal,
		rangeProofs: rangeProofs,
	}

	return &round1{sess: sess, st: st}, nil
}

func (r *round1) Number() round.Number { return 1 }
func (r *round1) NeedsBcastIn() bool   { return false }
func (r *round1) NeedsP2pIn() bool     { return false }
func (r *round1) BcastContent() any    { return nil }
func (r *round1) P2pContent() any      { return nil }

func (r *round1) Execute(_, _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	gammaCommit := maybeCorruptGammaCommit(r.sess.logger, r.sess.selfSignID, r.sess.behaviour, r.st.gammaCommit)
	bcastOut := &Round1Bcast{GammaCommit: gammaCommit}

	p2pOut := make(map[uint32]any, r.sess.m)
	for j := 0; j < r.sess.m; j++ {
		p2pOut[uint32(j)] = &Round1P2p{Ciphertext: r.st.kICipher, RangeProof: r.st.rangeProofs[j]}
	}

	next := &round2{sess: r.sess, st: r.st}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut, P2pOut: p2pOut}), nil
}
