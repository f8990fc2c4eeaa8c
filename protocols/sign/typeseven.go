package sign

import (
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/paillier"
)

// TypeSevenReveal is the sad-path broadcast used whenever round 6, 7, or 8
// falls into the reveal-and-audit path: either an aggregate check (ΣR_i=G,
// ΣS_i=y, or the assembled signature) fails despite every individual ZK
// proof verifying, or round 7 catches an individual bad sigma WC proof
// outright. The only unproven values in the whole protocol are δ_i's round-3
// broadcast and s_i's round-7 broadcast, so the only way to find a culprit
// the proofs themselves don't already name is for every signer to reveal
// enough to let everyone else recompute δ_i.
//
// Deliberately absent: w_i, σ_i, and the ν-masks (the σ-channel). Revealing
// those alongside k_i would leak this signer's long-term key share; only the
// δ-channel (k_i, γ_i, and the MtA masks/ciphertexts behind it) needs to
// become public to audit δ_i (spec.md §4.3, type-7 sad path).
type TypeSevenReveal struct {
	KI              *curve.Scalar
	GammaI          *curve.Scalar
	DK              *paillier.SecretKey
	Betas           map[uint32]*curve.Scalar
	ReceivedCiphers map[uint32]*paillier.Ciphertext
}

// typeSevenReveal builds this signer's reveal broadcast and transitions to
// typeSevenFinal, which every signer also reaches deterministically (the
// triggering mismatch is computed from data already agreed on by the whole
// group, so every honest party takes this branch at the same point).
// finalNumber is the round number the reveal round would otherwise have been
// (7 out of round 6, 8 out of round 7, 9 out of round 8). preFaulters carries
// any faulter(s) already known directly from a failed ZK proof verification
// at the trigger round (e.g. round 7's per-peer WC-proof check): the
// delta-channel audit below cannot see a bad sigma/WC proof, so those
// culprits are threaded through rather than rediscovered.
func typeSevenReveal(sess *signSession, st *signState, finalNumber round.Number, preFaulters *round.FaulterList[SignShareTag]) (*round.ProtocolBuilder[SignShareTag], error) {
	round.LogTypeSevenEntered(sess.logger, sess.selfSignID, finalNumber)
	bcastOut := &TypeSevenReveal{
		KI:              st.kI,
		GammaI:          st.gammaI,
		DK:              sess.dk,
		Betas:           st.deltaMasks,
		ReceivedCiphers: st.receivedDeltaCipher,
	}
	next := &typeSevenFinal{sess: sess, st: st, number: finalNumber, preFaulters: preFaulters}
	return round.NotDone(&round.RoundBuilder[SignShareTag]{Next: next, BcastOut: bcastOut}), nil
}

type typeSevenFinal struct {
	sess        *signSession
	st          *signState
	number      round.Number
	preFaulters *round.FaulterList[SignShareTag]
}

func (r *typeSevenFinal) Number() round.Number { return r.number }
func (r *typeSevenFinal) NeedsBcastIn() bool   { return true }
func (r *typeSevenFinal) NeedsP2pIn() bool     { return false }
func (r *typeSevenFinal) BcastContent() any    { return &TypeSevenReveal{} }
func (r *typeSevenFinal) P2pContent() any      { return nil }

func (r *typeSevenFinal) Execute(bcasts collections.FillVecMap[SignShareTag, any], _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess, st := r.sess, r.st
	n := sess.m

	faulters := round.NewFaulterList[SignShareTag]()
	for p := 0; p < n; p++ {
		pID := collections.NewTypedUsize[SignShareTag](uint32(p))
		v, _ := bcasts.Get(pID)
		reveal := v.(*TypeSevenReveal)

		claimedDelta := curve.NewScalar().Mul(reveal.KI, reveal.GammaI)
		mismatch := false
		for j, cipher := range reveal.ReceivedCiphers {
			alphaInt, err := reveal.DK.Dec(cipher)
			if err != nil {
				mismatch = true
				break
			}
			beta, ok := reveal.Betas[j]
			if !ok {
				mismatch = true
				break
			}
			claimedDelta = addScalars(claimedDelta, intToScalar(alphaInt))
			claimedDelta = addScalars(claimedDelta, beta)
		}

		if mismatch || !claimedDelta.Equal(st.reportedDelta[p]) {
			round.LogFaultWarn(sess.logger, sess.selfSignID, pID, "revealed delta-channel data does not match round 3 broadcast")
			faulters.Add(pID, "revealed delta-channel data does not match round 3 broadcast")
		}
	}

	// Culprits already known directly from a failed ZK proof at the trigger
	// round (e.g. a bad sigma WC proof in round 7) are on the sigma channel,
	// which this delta-only audit never inspects; fold them in regardless of
	// what the audit itself found.
	for _, f := range r.preFaulters.Entries() {
		faulters.Add(f.ID, f.Reason)
	}

	if faulters.IsEmpty() {
		// The mismatch was real (round 5/6 already established that) but no
		// single party's revealed data contradicts its own round-3 claim;
		// with nothing left to distinguish a culprit, fault the whole group
		// rather than violate DoneFaulters' non-empty invariant.
		faulters = faultAll(sess, "unable to attribute delta-sum mismatch to a single signer")
	}

	return round.DoneFaulters[SignShareTag](faulters), nil
}
