// Package sign implements the GG20 threshold signing protocol's eight
// rounds (spec.md §4.3): a t+1 subset of keygen shares jointly produce an
// ECDSA signature over a 32-byte digest without ever reconstructing the
// long-term signing key.
package sign

import (
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/protocols/keygen"
)

// SignShareTag phantom-tags the compact 0..m enumeration of participants in
// one sign session, distinct from keygen's ShareTag so a sign round can
// never be handed a keygen session's indices.
type SignShareTag struct{}

// SignShareID indexes a participant within one sign session.
type SignShareID = collections.TypedUsize[SignShareTag]

// Signers maps each sign-local index to the keygen share it speaks for.
type Signers = collections.VecMap[SignShareTag, keygen.ShareID]

// ProtocolID tags sign envelopes, distinguishing them from keygen envelopes
// on a shared transport.
const ProtocolID uint16 = 2

// Signature is sign's terminal output: the raw (r, s) scalars (s already
// normalized to the low half, per spec.md §8) plus the DER encoding a
// caller would hand to a standard ECDSA verifier.
type Signature struct {
	R, S []byte // canonical 32-byte big-endian encodings
	DER  []byte
}
