//go:build malicious

package sign_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/sdk"
	"github.com/gg20lab/tofn/protocols/keygen"
	"github.com/gg20lab/tofn/protocols/sign"
	"github.com/gg20lab/tofn/testutils"
)

func TestSignRejectsBadGammaCommit(t *testing.T) {
	shares := runKeygen(t, 4, 2)
	signers := []*keygen.SecretKeyShare{shares[0], shares[1], shares[2]}
	d := digest(9)

	outcomes := runSign(t, shares, signers, d, map[int]sign.Behaviour{1: sign.R1BadCommit})
	for i, out := range outcomes {
		require.Nil(t, out.Output, "signer %d should not have produced output", i)
		require.NotNil(t, out.Faulters)
		assert.True(t, out.Faulters.Contains(collections.NewTypedUsize[sign.SignShareTag](1)))
	}
}

// TestSignRejectsFalseAccusation exercises spec.md's type-7 end-to-end
// scenario: a signer with a bad round-6 S_i must drive the whole group
// through the reveal-and-audit sad path (not a direct fault), which must
// still single out that signer as the sole faulter.
func TestSignRejectsFalseAccusation(t *testing.T) {
	shares := runKeygen(t, 4, 2)
	signers := []*keygen.SecretKeyShare{shares[0], shares[1], shares[2]}
	d := digest(11)

	m := len(signers)
	signerMap := collections.FillVecMapWithFunc[sign.SignShareTag](m, func(i collections.TypedUsize[sign.SignShareTag]) keygen.ShareID {
		return signers[i.AsUsize()].Share.Index
	})
	sessionNonce := []byte("sign-test-session")

	var logs bytes.Buffer
	protocols := make([]*round.Protocol[sign.SignShareTag], m)
	for i := 0; i < m; i++ {
		behaviour := sign.Honest
		if i == 2 {
			behaviour = sign.R6FalseAccusation
		}
		logger := quietLogger()
		if i == 0 {
			logger = slog.New(slog.NewTextHandler(&logs, nil))
		}
		p, err := sign.NewSign(signers[i], signerMap, d, sdk.DummySecretRecoveryKey(byte(100+i)), sessionNonce, behaviour, logger)
		require.NoError(t, err)
		protocols[i] = p
	}
	outcomes := testutils.RunToCompletion(protocols)

	for i, out := range outcomes {
		require.Nil(t, out.Output, "signer %d should not have produced output", i)
		require.NotNil(t, out.Faulters)
		assert.True(t, out.Faulters.Contains(collections.NewTypedUsize[sign.SignShareTag](2)))
		assert.Len(t, out.Faulters.Entries(), 1, "the corrupted signer must be the sole faulter, not the whole group")
	}

	assert.Contains(t, logs.String(), "type-7 sad path entered",
		"a bad round-6 WC proof must route through the type-7 sad path, not an immediate fault")
}
