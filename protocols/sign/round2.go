package sign

import (
	"github.com/gg20lab/tofn/internal/pool"
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/zk/mta"
	"github.com/gg20lab/tofn/pkg/zk/mtawc"
	"github.com/gg20lab/tofn/pkg/zk/paillierrange"
)

// Round2P2p carries this share's MtA and MtAwc responses to one peer. The
// self-addressed slot is always empty: a share never acts as its own MtA
// responder.
type Round2P2p struct {
	MtaResponse   *paillier.Ciphertext
	MtaProof      *mta.Proof
	MtaWcResponse *paillier.Ciphertext
	MtaWcProof    *mtawc.Proof
}

type round2 struct {
	sess *signSession
	st   *signState
}

func (r *round2) Number() round.Number { return 2 }
func (r *round2) NeedsBcastIn() bool   { return true }
func (r *round2) NeedsP2pIn() bool     { return true }
func (r *round2) BcastContent() any    { return &Round1Bcast{} }
func (r *round2) P2pContent() any      { return &Round1P2p{} }

func (r *round2) Execute(bcasts, p2ps collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m
	selfIdx := sess.selfSignID.AsUsize()

	peerGammaCommits := make([]hash.Output, n)
	bcasts.Iter(func(i SignShareID, v any) { peerGammaCommits[i.AsUsize()] = v.(*Round1Bcast).GammaCommit })

	peerCiphers := make([]*paillier.Ciphertext, n)
	peerRangeProofs := make([]*paillierrange.Proof, n)
	p2ps.Iter(func(i SignShareID, v any) {
		p := v.(*Round1P2p)
		peerCiphers[i.AsUsize()] = p.Ciphertext
		peerRangeProofs[i.AsUsize()] = p.RangeProof
	})

	pl := pool.New(0)
	type verifyResult struct {
		ok     bool
		reason string
	}
	results := pl.Parallelize(n, func(i int) any {
		if uint32(i) == selfIdx {
			return verifyResult{true, ""}
		}
		ok := paillierrange.Verify(uint32(i),
			paillierrange.Statement{Ciphertext: peerCiphers[i], Prover: sess.peerEKs[i], Aux: sess.selfZkp()},
			peerRangeProofs[i])
		if !ok {
			return verifyResult{false, "range proof failed verification"}
		}
		return verifyResult{true, ""}
	})

	faulters := round.NewFaulterList[SignShareTag]()
	for i, res := range results {
		vr := res.(verifyResult)
		if !vr.ok {
			id := collections.NewTypedUsize[SignShareTag](uint32(i))
			round.LogFaultWarn(sess.logger, sess.selfSignID, id, vr.reason)
			faulters.Add(id, vr.reason)
		}
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[SignShareTag](faulters), nil
	}

	st.peerGammaCommits = peerGammaCommits
	st.peerCiphers = peerCiphers
	st.deltaMasks = make(map[uint32]*curve.Scalar, n-1)
	st.sigmaMasks = make(map[uint32]*curve.Scalar, n-1)

	p2pOut := make(map[uint32]any, n)
	for j := 0; j < n; j++ {
		if uint32(j) == selfIdx {
			p2pOut[uint32(j)] = &Round2P2p{}
			continue
		}
		peerEK := sess.peerEKs[j]
		peerZkp := sess.peerZkps[j]

		betaPrime := curve.NewScalarRandom()
		betaCipher, betaNonce := peerEK.Enc(scalarToInt(betaPrime))
		mtaResp := peerEK.AddCiphertexts(peerEK.MulByScalar(peerCiphers[j], scalarToInt(st.gammaI)), betaCipher)
		mtaProof := mta.Prove(selfIdx,
			mta.Statement{InitiatorCiphertext: peerCiphers[j], ResponseCiphertext: mtaResp, Initiator: peerEK, Aux: peerZkp},
			mta.Witness{Multiplicand: scalarToInt(st.gammaI), Beta: scalarToInt(betaPrime), Nonce: betaNonce})
		st.deltaMasks[uint32(j)] = negateScalar(betaPrime)

		nuPrime := curve.NewScalarRandom()
		nuCipher, nuNonce := peerEK.Enc(scalarToInt(nuPrime))
		mtawcResp := peerEK.AddCiphertexts(peerEK.MulByScalar(peerCiphers[j], scalarToInt(sess.wI)), nuCipher)
		mtawcProof := mtawc.Prove(selfIdx,
			mtawc.Statement{InitiatorCiphertext: peerCiphers[j], ResponseCiphertext: mtawcResp, Initiator: peerEK, Aux: peerZkp, PublicPoint: sess.selfW()},
			mtawc.Witness{Multiplicand: scalarToInt(sess.wI), MultiplicandScalar: sess.wI, Beta: scalarToInt(nuPrime), Nonce: nuNonce})
		st.sigmaMasks[uint32(j)] = negateScalar(nuPrime)

		p2pOut[uint32(j)] = &Round2P2p{
			MtaResponse:   mtaResp,
			MtaProof:      mtaProof,
			MtaWcResponse: mtawcResp,
			MtaWcProof:    mtawcProof,
		}
	}

	next := &round3{sess: sess, st: st}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, P2pOut: p2pOut}), nil
}
