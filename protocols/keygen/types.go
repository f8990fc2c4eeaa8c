// Package keygen implements the GG20 keygen protocol's four rounds (spec.md
// §4.2): each share samples a VSS polynomial, proves its Paillier key and ZK
// setup well-formed, exchanges encrypted polynomial evaluations, and
// converges on a common ECDSA public key y and a per-share SecretKeyShare.
package keygen

import (
	"encoding/binary"

	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/serialize"
	"github.com/gg20lab/tofn/pkg/vss"
)

// ShareTag phantom-tags every index into the flattened 0..n keygen share
// space, so it can never be confused with a sign session's SignShareID.
type ShareTag struct{}

// ShareID indexes a keygen share.
type ShareID = collections.TypedUsize[ShareTag]

// PartyShareCounts maps PartyID to the number of keygen shares that party
// holds (spec.md §3 "PartyShareCounts").
type PartyShareCounts = collections.PartyShareCounts[ShareTag]

// ProtocolID tags keygen envelopes, distinguishing them from sign envelopes
// on a shared transport.
const ProtocolID uint16 = 1

// GroupPublicInfo is the shared, public half of keygen's output: every
// quantity a signer needs about its peers (spec.md §3 "SecretKeyShare").
type GroupPublicInfo struct {
	Y                *curve.Point
	Threshold        int
	PartyShareCounts PartyShareCounts
	EncryptionKeys   collections.VecMap[ShareTag, *paillier.PublicKey]
	ZkSetups         collections.VecMap[ShareTag, *pedersen.Parameters]
	// VssCommits holds, for every share j, the public commitment to that
	// share's polynomial f_j — the coefficients Σ's sign protocol needs to
	// verify Lagrange-adjusted signing-key commitments.
	VssCommits collections.VecMap[ShareTag, *vss.Exponent]
}

// ShareSecretInfo is the local, secret half of keygen's output: this share's
// Shamir x_i, its Paillier decryption key, and its own index.
type ShareSecretInfo struct {
	Index         ShareID
	X             *curve.Scalar
	DecryptionKey *paillier.SecretKey
}

// SecretKeyShare is keygen's terminal output (spec.md §3), the value a
// caller persists and later feeds into sign.
type SecretKeyShare struct {
	Group *GroupPublicInfo
	Share *ShareSecretInfo
}

// MarshalBinary flattens GroupPublicInfo's collections field by field: the
// VecMap/PartyShareCounts types it embeds keep their backing slices
// unexported, so gob's struct reflection cannot reach them directly (spec.md
// §6, "SecretKeyShare... is serialized with the same codec as wire
// messages").
func (g *GroupPublicInfo) MarshalBinary() ([]byte, error) {
	yBytes, err := g.Y.MarshalBinary()
	if err != nil {
		return nil, err
	}
	n := g.PartyShareCounts.TotalShareCount()

	var out []byte
	out = serialize.PutLP(out, yBytes)
	out = putUint32(out, uint32(g.Threshold))

	out = putUint32(out, uint32(g.PartyShareCounts.PartyCount()))
	for p := uint32(0); p < uint32(g.PartyShareCounts.PartyCount()); p++ {
		out = putUint32(out, g.PartyShareCounts.SharesOf(collections.NewTypedUsize[collections.PartyTag](p)))
	}

	out = putUint32(out, n)
	for i := uint32(0); i < n; i++ {
		idx := collections.NewTypedUsize[ShareTag](i)
		ekBytes, err := g.EncryptionKeys.Get(idx).MarshalBinary()
		if err != nil {
			return nil, err
		}
		zkpBytes, err := g.ZkSetups.Get(idx).MarshalBinary()
		if err != nil {
			return nil, err
		}
		vssBytes, err := g.VssCommits.Get(idx).MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = serialize.PutLP(out, ekBytes)
		out = serialize.PutLP(out, zkpBytes)
		out = serialize.PutLP(out, vssBytes)
	}
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (g *GroupPublicInfo) UnmarshalBinary(data []byte) error {
	yBytes, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	y := curve.NewIdentityPoint()
	if err := y.UnmarshalBinary(yBytes); err != nil {
		return err
	}

	threshold, rest, err := takeUint32(rest)
	if err != nil {
		return err
	}

	partyCount, rest, err := takeUint32(rest)
	if err != nil {
		return err
	}
	counts := make([]uint32, partyCount)
	for p := range counts {
		var c uint32
		c, rest, err = takeUint32(rest)
		if err != nil {
			return err
		}
		counts[p] = c
	}
	shareCounts, err := collections.NewPartyShareCounts[ShareTag](counts)
	if err != nil {
		return err
	}

	n, rest, err := takeUint32(rest)
	if err != nil {
		return err
	}
	eks := make([]*paillier.PublicKey, n)
	zkps := make([]*pedersen.Parameters, n)
	vssCommits := make([]*vss.Exponent, n)
	for i := uint32(0); i < n; i++ {
		var ekBytes, zkpBytes, vssBytes []byte
		ekBytes, rest, err = serialize.TakeLP(rest)
		if err != nil {
			return err
		}
		zkpBytes, rest, err = serialize.TakeLP(rest)
		if err != nil {
			return err
		}
		vssBytes, rest, err = serialize.TakeLP(rest)
		if err != nil {
			return err
		}
		eks[i] = &paillier.PublicKey{}
		if err := eks[i].UnmarshalBinary(ekBytes); err != nil {
			return err
		}
		zkps[i] = &pedersen.Parameters{}
		if err := zkps[i].UnmarshalBinary(zkpBytes); err != nil {
			return err
		}
		vssCommits[i] = &vss.Exponent{}
		if err := vssCommits[i].UnmarshalBinary(vssBytes); err != nil {
			return err
		}
	}

	g.Y = y
	g.Threshold = int(threshold)
	g.PartyShareCounts = shareCounts
	g.EncryptionKeys = collections.NewVecMap[ShareTag](eks)
	g.ZkSetups = collections.NewVecMap[ShareTag](zkps)
	g.VssCommits = collections.NewVecMap[ShareTag](vssCommits)
	return nil
}

// MarshalBinary encodes a share's secret half: its index, Shamir scalar, and
// Paillier decryption key.
func (s *ShareSecretInfo) MarshalBinary() ([]byte, error) {
	xBytes, err := s.X.MarshalBinary()
	if err != nil {
		return nil, err
	}
	dkBytes, err := s.DecryptionKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var out []byte
	out = putUint32(out, s.Index.AsUsize())
	out = serialize.PutLP(out, xBytes)
	out = serialize.PutLP(out, dkBytes)
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (s *ShareSecretInfo) UnmarshalBinary(data []byte) error {
	index, rest, err := takeUint32(data)
	if err != nil {
		return err
	}
	xBytes, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	dkBytes, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	x := curve.NewScalar()
	if err := x.UnmarshalBinary(xBytes); err != nil {
		return err
	}
	dk := &paillier.SecretKey{}
	if err := dk.UnmarshalBinary(dkBytes); err != nil {
		return err
	}
	s.Index = collections.NewTypedUsize[ShareTag](index)
	s.X = x
	s.DecryptionKey = dk
	return nil
}

// MarshalBinary encodes the full persisted key share (spec.md §6).
func (s *SecretKeyShare) MarshalBinary() ([]byte, error) {
	groupBytes, err := s.Group.MarshalBinary()
	if err != nil {
		return nil, err
	}
	shareBytes, err := s.Share.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var out []byte
	out = serialize.PutLP(out, groupBytes)
	out = serialize.PutLP(out, shareBytes)
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (s *SecretKeyShare) UnmarshalBinary(data []byte) error {
	groupBytes, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	shareBytes, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	group := &GroupPublicInfo{}
	if err := group.UnmarshalBinary(groupBytes); err != nil {
		return err
	}
	share := &ShareSecretInfo{}
	if err := share.UnmarshalBinary(shareBytes); err != nil {
		return err
	}
	s.Group = group
	s.Share = share
	return nil
}

func putUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func takeUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, serialize.ErrTruncated
	}
	return binary.BigEndian.Uint32(b), b[4:], nil
}
