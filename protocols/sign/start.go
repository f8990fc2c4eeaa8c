package sign

import (
	"fmt"
	"log/slog"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/rng"
	"github.com/gg20lab/tofn/pkg/sdk"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/protocols/keygen"
)

// SeedTag domain-separates sign's deterministic RNG stream from keygen's
// (spec.md §6 "Deterministic seeding"). Unlike keygen, sign's determinism is
// not a contractual golden-vector property (spec.md §8), but every witness
// this package samples still flows through the same seeded-HKDF machinery.
var SeedTag rng.Tag = []byte("tofn/sign")

// SeedSubtag is sign's single rng.Subtag value.
const SeedSubtag rng.Subtag = 0x01

// signSession is the immutable context every sign round shares: the signer
// set, each signer's Lagrange-adjusted public data, and this share's own
// long-term secret material. Built once in NewSign and threaded by pointer
// through every round, mirroring keygen's per-round field carry-forward but
// collected in one place since sign's eight rounds share far more state than
// keygen's four.
type signSession struct {
	m          int
	selfSignID SignShareID
	signers    Signers
	digest     sdk.MessageDigest
	behaviour  Behaviour
	logger     *slog.Logger

	groupY *curve.Point
	dk     *paillier.SecretKey
	wI     *curve.Scalar

	peerEKs  []*paillier.PublicKey
	peerZkps []*pedersen.Parameters
	peerW    []*curve.Point // W_j = λ_j · Y_j, the Lagrange-adjusted public share commitment
}

func (s *signSession) selfEK() *paillier.PublicKey     { return s.peerEKs[s.selfSignID.AsUsize()] }
func (s *signSession) selfZkp() *pedersen.Parameters    { return s.peerZkps[s.selfSignID.AsUsize()] }
func (s *signSession) selfW() *curve.Point              { return s.peerW[s.selfSignID.AsUsize()] }

// NewSign builds the first round of a sign session. signers must name
// exactly threshold+1 keygen shares (GG20 fixes the signer set size; it is
// never a superset), one of which must be share itself.
func NewSign(
	share *keygen.SecretKeyShare,
	signers Signers,
	digest sdk.MessageDigest,
	srk sdk.SecretRecoveryKey,
	sessionNonce []byte,
	behaviour Behaviour,
	logger *slog.Logger,
) (*round.Protocol[SignShareTag], error) {
	m := signers.Len()
	if m != share.Group.Threshold+1 {
		return nil, fmt.Errorf("sign: signer set has %d members, want threshold+1=%d", m, share.Group.Threshold+1)
	}
	if logger == nil {
		logger = slog.Default()
	}

	selfSignID, found := findSelf(signers, share.Share.Index)
	if !found {
		return nil, fmt.Errorf("sign: this share's keygen index is not among the named signers")
	}

	keygenIdx := make([]uint32, m)
	signers.Iter(func(i SignShareID, kid keygen.ShareID) { keygenIdx[i.AsUsize()] = kid.AsUsize() })

	lagrange := vss.Lagrange(keygenIdx)

	wI := curve.NewScalar().Mul(lagrange[share.Share.Index.AsUsize()], share.Share.X)

	n := share.Group.VssCommits.Len()
	peerEKs := make([]*paillier.PublicKey, m)
	peerZkps := make([]*pedersen.Parameters, m)
	peerW := make([]*curve.Point, m)
	for i := 0; i < m; i++ {
		kid := collections.NewTypedUsize[keygen.ShareTag](keygenIdx[i])
		peerEKs[i] = share.Group.EncryptionKeys.Get(kid)
		peerZkps[i] = share.Group.ZkSetups.Get(kid)

		xScalar := vss.ShareIDToScalar(keygenIdx[i])
		y := curve.NewIdentityPoint()
		for k := 0; k < n; k++ {
			commit := share.Group.VssCommits.Get(collections.NewTypedUsize[keygen.ShareTag](uint32(k)))
			y.Add(y, commit.Evaluate(xScalar))
		}
		peerW[i] = curve.NewIdentityPoint().ScalarMult(lagrange[keygenIdx[i]], y)
	}

	sess := &signSession{
		m:          m,
		selfSignID: selfSignID,
		signers:    signers,
		digest:     digest,
		behaviour:  behaviour,
		logger:     logger,
		groupY:     share.Group.Y,
		dk:         share.Share.DecryptionKey,
		wI:         wI,
		peerEKs:    peerEKs,
		peerZkps:   peerZkps,
		peerW:      peerW,
	}

	rnd, err := rng.SeedSigningKey(SeedTag, SeedSubtag, srk, sessionNonce)
	if err != nil {
		return nil, fmt.Errorf("sign: %w: %w", err, sdk.TofnFatal)
	}

	r1, err := newRound1(sess, rnd)
	if err != nil {
		return nil, err
	}

	return round.New[SignShareTag](ProtocolID, sessionNonce, selfSignID, m, r1, logger), nil
}

func findSelf(signers Signers, target keygen.ShareID) (SignShareID, bool) {
	var found SignShareID
	ok := false
	signers.Iter(func(i SignShareID, kid keygen.ShareID) {
		if kid == target {
			found = i
			ok = true
		}
	})
	return found, ok
}
