//go:build malicious

package keygen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/protocols/keygen"
)

func TestKeygenRejectsBadEncryptionKeyProof(t *testing.T) {
	outcomes := runKeygen(t, []uint32{1, 1, 1, 1}, 2, map[int]keygen.Behaviour{1: keygen.R1BadEncryptionKeyProof})
	for i, out := range outcomes {
		require.Nil(t, out.Output, "share %d should not have produced output", i)
		require.NotNil(t, out.Faulters)
		assert.True(t, out.Faulters.Contains(collections.NewTypedUsize[keygen.ShareTag](1)))
	}
}

func TestKeygenRejectsBadZkSetupProof(t *testing.T) {
	outcomes := runKeygen(t, []uint32{1, 1, 1, 1}, 2, map[int]keygen.Behaviour{2: keygen.R1BadZkSetupProof})
	for i, out := range outcomes {
		require.Nil(t, out.Output)
		require.NotNil(t, out.Faulters)
		assert.True(t, out.Faulters.Contains(collections.NewTypedUsize[keygen.ShareTag](2)))
	}
}

func TestKeygenRejectsBadVssCommit(t *testing.T) {
	outcomes := runKeygen(t, []uint32{1, 1, 1, 1}, 2, map[int]keygen.Behaviour{0: keygen.R2BadVssCommit})
	for i, out := range outcomes {
		require.Nil(t, out.Output)
		require.NotNil(t, out.Faulters)
		assert.True(t, out.Faulters.Contains(collections.NewTypedUsize[keygen.ShareTag](0)))
	}
}

func TestKeygenRejectsBadXIProof(t *testing.T) {
	outcomes := runKeygen(t, []uint32{1, 1, 1, 1}, 2, map[int]keygen.Behaviour{3: keygen.R3BadXIProof})
	for i, out := range outcomes {
		require.Nil(t, out.Output)
		require.NotNil(t, out.Faulters)
		assert.True(t, out.Faulters.Contains(collections.NewTypedUsize[keygen.ShareTag](3)))
	}
}
