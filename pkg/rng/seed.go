// Package rng implements the deterministic RNG seeder described in spec.md
// §1 as an external collaborator: given a domain-separation tag, the party's
// secret recovery key, and a session nonce, it returns a reproducible
// cryptographic RNG. Every byte the protocol core spends (VSS polynomials,
// Paillier primes, sign nonces, the Ed25519 signing key) flows through this
// seeder, so a session's entire output is a pure function of its inputs —
// this is what makes spec.md §8's determinism property and golden vectors
// possible.
package rng

import (
	"crypto/sha512"
	"io"

	"github.com/gg20lab/tofn/pkg/sdk"
	"golang.org/x/crypto/hkdf"
)

// Tag domain-separates the purpose an RNG stream is used for (e.g. keygen
// vs. the Ed25519 primitive), so the same (secret_recovery_key, nonce) pair
// never yields the same byte stream for two different purposes.
type Tag []byte

// Subtag further domain-separates within a Tag (e.g. ed25519's KEYGEN_TAG).
type Subtag byte

// SeedSigningKey derives a deterministic io.Reader from
// (tag, subtag, secret_recovery_key, session_nonce). The same four inputs
// always produce byte-identical output, on every platform, forever — this
// is a hard compatibility requirement (spec.md §6, "Deterministic seeding"),
// so the construction below (HKDF-SHA512 over "tag||subtag" as salt and
// secret_recovery_key as the input keying material, with session_nonce as
// HKDF info) must never change.
func SeedSigningKey(tag Tag, subtag Subtag, srk sdk.SecretRecoveryKey, sessionNonce []byte) (io.Reader, error) {
	salt := make([]byte, 0, len(tag)+1)
	salt = append(salt, tag...)
	salt = append(salt, byte(subtag))
	return hkdf.New(sha512.New, srk[:], salt, sessionNonce), nil
}
