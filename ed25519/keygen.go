// Package ed25519 is a single-party Ed25519 signer, independent of the GG20
// threshold protocol in protocols/keygen and protocols/sign (spec.md §4.6).
// It shares only the deterministic RNG seeding machinery in pkg/rng.
package ed25519

import (
	stded25519 "crypto/ed25519"
	"fmt"

	"github.com/gg20lab/tofn/pkg/rng"
	"github.com/gg20lab/tofn/pkg/sdk"
)

// Tag domain-separates this primitive's RNG stream from GG20's (spec.md §1,
// "Deterministic seeding"), so a party's (secret_recovery_key, session_nonce)
// pair never collides with its GG20 keygen/sign streams.
var Tag rng.Tag = []byte("tofn/ed25519")

// KeygenSubtag is this package's single rng.Subtag value.
const KeygenSubtag rng.Subtag = 0x00

// KeyPair is an Ed25519 signing key.
type KeyPair struct {
	signingKey stded25519.PrivateKey
}

// VerifyingKey returns the 32-byte public key a verifier needs.
func (kp *KeyPair) VerifyingKey() []byte {
	return []byte(kp.signingKey.Public().(stded25519.PublicKey))
}

// Keygen derives an Ed25519 signing key from a tag-separated deterministic
// RNG seeded from srk and sessionNonce (spec.md §4.6).
func Keygen(srk sdk.SecretRecoveryKey, sessionNonce []byte) (*KeyPair, error) {
	rnd, err := rng.SeedSigningKey(Tag, KeygenSubtag, srk, sessionNonce)
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w: %w", err, sdk.TofnFatal)
	}
	_, priv, err := stded25519.GenerateKey(rnd)
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w: %w", err, sdk.TofnFatal)
	}
	return &KeyPair{signingKey: priv}, nil
}
