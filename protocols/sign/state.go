package sign

import (
	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/zk/paillierrange"
)

// signState is this share's accumulated per-session secret and reported-peer
// state, threaded by pointer from round to round and mutated in place as
// each round completes. Splitting this from signSession (the session's
// static, never-mutated config) keeps each round's Execute focused on what
// changes that round rather than repeating a long, mostly-unchanging field
// list the way keygen's four rounds can afford to.
type signState struct {
	kI     *curve.Scalar
	gammaI *curve.Scalar
	sigma  *curve.Scalar

	kICipher    *paillier.Ciphertext
	kINonce     *safenum.Nat
	rangeProofs []*paillierrange.Proof

	gammaCommit hash.Output
	gammaReveal hash.Decommitment

	// peerCiphers[j] is the Enc(ek_j, k_j) ciphertext signer j broadcast (as
	// a directed p2p message) in round 1, retained so round 6 can verify j's
	// eq proof against it.
	peerCiphers []*paillier.Ciphertext

	// deltaMasks[j] = -β'_ij mod q, this share's own retained contribution to
	// δ_i from acting as MtA responder for peer j (spec.md §4.3 R2/R3).
	deltaMasks map[uint32]*curve.Scalar
	// sigmaMasks[j] = -ν'_ij mod q, the MtAwc analogue of deltaMasks.
	sigmaMasks map[uint32]*curve.Scalar

	// receivedDeltaCipher[j] is the raw MtA response ciphertext received from
	// peer j in round 2, retained only for the type-7 reveal.
	receivedDeltaCipher map[uint32]*paillier.Ciphertext

	sigmaCommit *safenum.Nat
	sigmaBlind  *safenum.Int

	peerGammaCommits     []hash.Output
	reportedDelta        []*curve.Scalar
	reportedSigmaCommit  []*safenum.Nat
	reportedSigmaPoint   []*curve.Point

	deltaInv *curve.Scalar
	r        *curve.Point
}
