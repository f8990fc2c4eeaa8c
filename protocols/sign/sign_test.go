package sign_test

import (
	"io"
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

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runKeygen produces n single-share keygen outputs at the given threshold,
// the fixture every sign test builds its signer set from.
func runKeygen(t *testing.T, n, threshold int) []*keygen.SecretKeyShare {
	t.Helper()
	counts := make([]uint32, n)
	for i := range counts {
		counts[i] = 1
	}
	partyShareCounts, err := collections.NewPartyShareCounts[keygen.ShareTag](counts)
	require.NoError(t, err)

	sessionNonce := []byte("sign-test-keygen-session")
	protocols := make([]*round.Protocol[keygen.ShareTag], n)
	for i := 0; i < n; i++ {
		selfID := collections.NewTypedUsize[keygen.ShareTag](uint32(i))
		p, err := keygen.NewKeygen(partyShareCounts, threshold, selfID, sdk.DummySecretRecoveryKey(byte(i+1)), sessionNonce, keygen.Honest, quietLogger())
		require.NoError(t, err)
		protocols[i] = p
	}
	outcomes := testutils.RunToCompletion(protocols)

	shares := make([]*keygen.SecretKeyShare, n)
	for i, out := range outcomes {
		require.NotNil(t, out.Output, "keygen fixture: party %d should have produced output", i)
		shares[i] = out.Output.(*keygen.SecretKeyShare)
	}
	return shares
}

func runSign(t *testing.T, shares []*keygen.SecretKeyShare, signerShares []*keygen.SecretKeyShare, digest sdk.MessageDigest, behaviours map[int]sign.Behaviour) []testutils.Outcome[sign.SignShareTag] {
	t.Helper()
	m := len(signerShares)
	signerMap := collections.FillVecMapWithFunc[sign.SignShareTag](m, func(i collections.TypedUsize[sign.SignShareTag]) keygen.ShareID {
		return signerShares[i.AsUsize()].Share.Index
	})

	sessionNonce := []byte("sign-test-session")
	digestCopy := digest

	protocols := make([]*round.Protocol[sign.SignShareTag], m)
	for i := 0; i < m; i++ {
		behaviour := behaviours[i]
		p, err := sign.NewSign(signerShares[i], signerMap, digestCopy, sdk.DummySecretRecoveryKey(byte(100+i)), sessionNonce, behaviour, quietLogger())
		require.NoError(t, err)
		protocols[i] = p
	}
	return testutils.RunToCompletion(protocols)
}

func digest(b byte) sdk.MessageDigest {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = b
	}
	d, _ := sdk.NewMessageDigest(buf)
	return d
}

func TestSignHonestConverges(t *testing.T) {
	shares := runKeygen(t, 4, 2)
	signers := []*keygen.SecretKeyShare{shares[0], shares[1], shares[2]}
	d := digest(7)

	outcomes := runSign(t, shares, signers, d, nil)

	var firstDER []byte
	for i, out := range outcomes {
		require.NotNil(t, out.Output, "signer %d should have produced output, faulters=%v", i, out.Faulters)
		sig := out.Output.(*sign.Signature)
		if firstDER == nil {
			firstDER = sig.DER
		} else {
			assert.Equal(t, firstDER, sig.DER, "every signer must agree on the assembled signature")
		}

		var digestArr [32]byte
		copy(digestArr[:], d.Bytes())
		assert.True(t, sign.Verify(shares[0].Group.Y, digestArr, sig), "assembled signature must verify against the group public key")
	}
}
