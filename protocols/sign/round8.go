package sign

import (
	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/curve"
)

type round8 struct {
	sess *signSession
	st   *signState
	r    *curve.Scalar
}

func (r *round8) Number() round.Number { return 8 }
func (r *round8) NeedsBcastIn() bool   { return true }
func (r *round8) NeedsP2pIn() bool     { return false }
func (r *round8) BcastContent() any    { return &Round7Bcast{} }
func (r *round8) P2pContent() any      { return nil }

func (r *round8) Execute(bcasts collections.FillVecMap[SignShareTag, any], _ collections.FillVecMap[SignShareTag, any]) (*round.ProtocolBuilder[SignShareTag], error) {
	sess := r.sess
	n := sess.m

	s := curve.NewScalar()
	for j := 0; j < n; j++ {
		jID := collections.NewTypedUsize[SignShareTag](uint32(j))
		v, _ := bcasts.Get(jID)
		pb := v.(*Round7Bcast)
		s = addScalars(s, pb.SI)
	}

	sig, err := buildSignature(r.r, s)
	if err != nil {
		return nil, err
	}
	var digestArr [32]byte
	copy(digestArr[:], sess.digest.Bytes())
	if !Verify(sess.groupY, digestArr, sig) {
		// Round 7's s_i broadcast carries no ZK proof, exactly like round
		// 3's unproven δ_i: a single lying signer's bad s_i should be
		// attributable via the reveal-and-audit sad path rather than
		// blamed on every signer including the honest ones.
		return typeSevenReveal(r.sess, r.st, 9, nil)
	}

	return round.Done[SignShareTag](sig), nil
}
