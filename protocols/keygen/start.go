package keygen

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/rng"
	"github.com/gg20lab/tofn/pkg/sdk"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/paillierkey"
	"github.com/gg20lab/tofn/pkg/zk/paillierprm"
)

// SeedTag domain-separates keygen's deterministic RNG stream from every
// other protocol's seeded stream (spec.md §6 "Deterministic seeding").
var SeedTag rng.Tag = []byte("tofn/keygen")

// SeedSubtag is keygen's single rng.Subtag value. Uniqueness across parties
// comes from each party's own SecretRecoveryKey, not from this constant.
const SeedSubtag rng.Subtag = 0x01

// NewKeygen builds the first round of a keygen session for share selfID out
// of n total shares distributed per partyShareCounts, requiring threshold+1
// shares to reconstruct the secret. srk and sessionNonce together determine
// every byte of randomness this share spends (spec.md §8 "Determinism");
// every party in the session must supply the same sessionNonce and
// partyShareCounts, and a distinct srk.
func NewKeygen(
	partyShareCounts PartyShareCounts,
	threshold int,
	selfID ShareID,
	srk sdk.SecretRecoveryKey,
	sessionNonce []byte,
	behaviour Behaviour,
	logger *slog.Logger,
) (*round.Protocol[ShareTag], error) {
	n := int(partyShareCounts.TotalShareCount())
	if threshold < 1 || threshold >= n {
		return nil, fmt.Errorf("keygen: threshold %d invalid for %d shares", threshold, n)
	}
	if logger == nil {
		logger = slog.Default()
	}

	rnd, err := rng.SeedSigningKey(SeedTag, SeedSubtag, srk, sessionNonce)
	if err != nil {
		return nil, fmt.Errorf("keygen: %w: %w", err, sdk.TofnFatal)
	}

	r1, err := newRound1(partyShareCounts, threshold, selfID, rnd, behaviour, logger)
	if err != nil {
		return nil, err
	}

	return round.New[ShareTag](ProtocolID, sessionNonce, selfID, n, r1, logger), nil
}

// newRound1 performs every bit of key/proof generation the Rust source does
// before calling round1::start (gg20/keygen/r1.rs: the Paillier keypair, ZK
// setup and VSS polynomial are all constructed by the caller, not inside the
// round itself).
func newRound1(partyShareCounts PartyShareCounts, threshold int, selfID ShareID, rnd io.Reader, behaviour Behaviour, logger *slog.Logger) (*round1, error) {
	vssPoly, err := vss.NewFromReader(threshold, rnd)
	if err != nil {
		return nil, fmt.Errorf("keygen: %w: %w", err, sdk.TofnFatal)
	}

	ek, dk, err := paillier.KeyGen(rnd)
	if err != nil {
		return nil, fmt.Errorf("keygen: %w: %w", err, sdk.TofnFatal)
	}

	s, t, lambda := dk.GeneratePedersenSecret(rnd)
	zkp := pedersen.New(dk.N(), s, t)

	party := partyShareCounts.ShareToParty(selfID)

	ekProof := paillierkey.Prove(party.AsUsize(), paillierkey.Statement{N: ek.N()}, paillierkey.Witness{P: dk.P(), Q: dk.Q()})
	zkpProof := paillierprm.Prove(party.AsUsize(), paillierprm.Statement{N: zkp.N(), S: zkp.S(), T: zkp.T()}, paillierprm.Witness{Lambda: lambda})

	yICommit, yIReveal, err := hash.Commit(hash.TagYICommit, selfID.AsUsize(), vssPoly.Commit().ConstantCommit().ToCompressed())
	if err != nil {
		return nil, fmt.Errorf("keygen: %w: %w", err, sdk.TofnFatal)
	}

	return &round1{
		threshold:        threshold,
		partyShareCounts: partyShareCounts,
		selfID:           selfID,
		logger:           logger,
		behaviour:        behaviour,
		vssPoly:          vssPoly,
		dk:               dk,
		ek:               ek,
		ekProof:          ekProof,
		zkp:              zkp,
		zkpProof:         zkpProof,
		yICommit:         yICommit,
		yIReveal:         yIReveal,
	}, nil
}
