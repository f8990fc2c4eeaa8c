package keygen

import (
	"log/slog"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/schnorr"
)

// round4 is keygen's terminal round: every share publishes its x_i_proof,
// each is checked against the public VSS commitments, and the session
// converges on y and each share's SecretKeyShare (spec.md §4.2 R4).
type round4 struct {
	threshold        int
	partyShareCounts PartyShareCounts
	selfID           ShareID
	logger           *slog.Logger

	dk         *paillier.SecretKey
	xI         *curve.Scalar
	vssCommits []*vss.Exponent
	peerEKs    []*paillier.PublicKey
	peerZkps   []*pedersen.Parameters
}

func (r *round4) Number() round.Number { return 4 }
func (r *round4) NeedsBcastIn() bool   { return true }
func (r *round4) NeedsP2pIn() bool     { return false }
func (r *round4) BcastContent() any    { return &Round3Bcast{} }
func (r *round4) P2pContent() any      { return nil }

func (r *round4) Execute(bcasts collections.FillVecMap[ShareTag, any], _ collections.FillVecMap[ShareTag, any]) (*round.ProtocolBuilder[ShareTag], error) {
	n := bcasts.Len()

	faulters := round.NewFaulterList[ShareTag]()
	for i := 0; i < n; i++ {
		iID := collections.NewTypedUsize[ShareTag](uint32(i))
		peerBcast, _ := bcasts.Get(iID)
		pb := peerBcast.(*Round3Bcast)

		iScalar := vss.ShareIDToScalar(uint32(i))
		expected := curve.NewIdentityPoint()
		for _, commit := range r.vssCommits {
			expected.Add(expected, commit.Evaluate(iScalar))
		}

		if !schnorr.Verify(uint32(i), schnorr.Statement{Public: expected}, pb.XIProof) {
			round.LogFaultWarn(r.logger, r.selfID, iID, "x_i_proof failed verification")
			faulters.Add(iID, "x_i_proof failed verification")
		}
	}
	if !faulters.IsEmpty() {
		return round.DoneFaulters[ShareTag](faulters), nil
	}

	y := curve.NewIdentityPoint()
	for _, commit := range r.vssCommits {
		y.Add(y, commit.ConstantCommit())
	}

	group := &GroupPublicInfo{
		Y:                y,
		Threshold:        r.threshold,
		PartyShareCounts: r.partyShareCounts,
		EncryptionKeys:   collections.NewVecMap[ShareTag](r.peerEKs),
		ZkSetups:         collections.NewVecMap[ShareTag](r.peerZkps),
		VssCommits:       collections.NewVecMap[ShareTag](r.vssCommits),
	}
	share := &ShareSecretInfo{
		Index:         r.selfID,
		X:             r.xI,
		DecryptionKey: r.dk,
	}

	return round.Done[ShareTag](&SecretKeyShare{Group: group, Share: share}), nil
}
