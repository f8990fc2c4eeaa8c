package ed25519_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gg20lab/tofn/ed25519"
	"github.com/gg20lab/tofn/pkg/sdk"
)

func digest(b byte) sdk.MessageDigest {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = b
	}
	d, _ := sdk.NewMessageDigest(buf)
	return d
}

// TestKeygenSignVerifyRoundTrip mirrors the Rust keygen_sign_decode_verify
// fixture: a signature over the signer's own digest verifies, and tampering
// with any byte of it flips verification to false (spec.md §8, scenario 6).
func TestKeygenSignVerifyRoundTrip(t *testing.T) {
	d := digest(42)
	kp, err := ed25519.Keygen(sdk.DummySecretRecoveryKey(42), []byte("tofn nonce"))
	require.NoError(t, err)

	sig, err := ed25519.Sign(kp, d)
	require.NoError(t, err)
	require.True(t, ed25519.Verify(kp.VerifyingKey(), d, sig))

	tampered := append([]byte(nil), sig...)
	tampered[len(tampered)-1] ^= 0x01
	require.False(t, ed25519.Verify(kp.VerifyingKey(), d, tampered))
}

// TestKeygenDeterministic checks the property golden-vector comparison
// would otherwise pin: identical (secret_recovery_key, session_nonce) always
// derives byte-identical keys, on every run (spec.md §6, "Deterministic
// seeding").
func TestKeygenDeterministic(t *testing.T) {
	srk := sdk.DummySecretRecoveryKey(7)
	nonce := []byte("fixed-nonce")

	kp1, err := ed25519.Keygen(srk, nonce)
	require.NoError(t, err)
	kp2, err := ed25519.Keygen(srk, nonce)
	require.NoError(t, err)

	require.Equal(t, kp1.VerifyingKey(), kp2.VerifyingKey())
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	d := digest(1)
	kp, err := ed25519.Keygen(sdk.DummySecretRecoveryKey(1), []byte("nonce-a"))
	require.NoError(t, err)
	other, err := ed25519.Keygen(sdk.DummySecretRecoveryKey(2), []byte("nonce-b"))
	require.NoError(t, err)

	sig, err := ed25519.Sign(kp, d)
	require.NoError(t, err)

	require.False(t, ed25519.Verify(other.VerifyingKey(), d, sig))
}
