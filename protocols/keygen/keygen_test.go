package keygen_test

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
	"github.com/gg20lab/tofn/testutils"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runKeygen(t *testing.T, counts []uint32, threshold int, behaviours map[int]keygen.Behaviour) []testutils.Outcome[keygen.ShareTag] {
	t.Helper()
	partyShareCounts, err := collections.NewPartyShareCounts[keygen.ShareTag](counts)
	require.NoError(t, err)
	n := int(partyShareCounts.TotalShareCount())

	sessionNonce := []byte("keygen-test-session")
	protocols := make([]*round.Protocol[keygen.ShareTag], n)
	for i := 0; i < n; i++ {
		selfID := collections.NewTypedUsize[keygen.ShareTag](uint32(i))
		behaviour := behaviours[i]
		p, err := keygen.NewKeygen(partyShareCounts, threshold, selfID, sdk.DummySecretRecoveryKey(byte(i+1)), sessionNonce, behaviour, quietLogger())
		require.NoError(t, err)
		protocols[i] = p
	}

	return testutils.RunToCompletion(protocols)
}

func TestKeygenHonestConverges(t *testing.T) {
	outcomes := runKeygen(t, []uint32{1, 1, 1, 1}, 2, nil)

	var firstY []byte
	for i, out := range outcomes {
		require.NotNil(t, out.Output, "party %d should have produced output, faulters=%v", i, out.Faulters)
		share := out.Output.(*keygen.SecretKeyShare)
		assert.Equal(t, uint32(i), share.Share.Index.AsUsize())

		y := share.Group.Y.ToCompressed()
		if firstY == nil {
			firstY = y
		} else {
			assert.Equal(t, firstY, y, "every party must agree on the group public key")
		}
	}
}

func TestKeygenHonestMultiShareParty(t *testing.T) {
	// Party 0 holds two shares; every other party holds one.
	outcomes := runKeygen(t, []uint32{2, 1, 1}, 2, nil)
	for i, out := range outcomes {
		require.NotNil(t, out.Output, "share %d should have produced output, faulters=%v", i, out.Faulters)
	}
}

func TestKeygenDeterministic(t *testing.T) {
	counts := []uint32{1, 1, 1}
	a := runKeygen(t, counts, 1, nil)
	b := runKeygen(t, counts, 1, nil)

	for i := range a {
		shareA := a[i].Output.(*keygen.SecretKeyShare)
		shareB := b[i].Output.(*keygen.SecretKeyShare)
		assert.Equal(t, shareA.Share.X.Bytes(), shareB.Share.X.Bytes(), "identical inputs must reproduce identical shares")
		assert.Equal(t, shareA.Group.Y.ToCompressed(), shareB.Group.Y.ToCompressed())
	}
}

func TestSecretKeyShareRoundTrip(t *testing.T) {
	outcomes := runKeygen(t, []uint32{1, 1, 1}, 1, nil)
	share := outcomes[0].Output.(*keygen.SecretKeyShare)

	data, err := share.MarshalBinary()
	require.NoError(t, err)

	var roundTripped keygen.SecretKeyShare
	require.NoError(t, roundTripped.UnmarshalBinary(data))

	assert.Equal(t, share.Share.X.Bytes(), roundTripped.Share.X.Bytes())
	assert.Equal(t, share.Group.Y.ToCompressed(), roundTripped.Group.Y.ToCompressed())
	assert.Equal(t, share.Group.Threshold, roundTripped.Group.Threshold)
}
