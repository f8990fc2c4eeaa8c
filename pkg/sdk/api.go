// Package sdk defines the external contract types shared by every protocol
// package: the fatal-error sentinel, byte-vector alias, and message digest
// type described in spec.md §6-7.
package sdk

import "errors"

// TofnFatal is returned for local, non-attributable errors: serialization
// failure, allocator failure, or an internal invariant violation. A session
// that returns TofnFatal is unrecoverable and must not be re-entered.
var TofnFatal = errors.New("tofn: fatal local error")

// BytesVec is an opaque, length-prefixed wire payload.
type BytesVec = []byte

// MessageDigest is the 32-byte digest a sign session produces a signature
// over. It is never hashed again internally — the caller is responsible for
// applying whatever digest algorithm their application requires before
// constructing one.
type MessageDigest [32]byte

// NewMessageDigest copies b into a MessageDigest. Returns an error if b is
// not exactly 32 bytes.
func NewMessageDigest(b []byte) (MessageDigest, error) {
	var d MessageDigest
	if len(b) != 32 {
		return d, errors.New("sdk: message digest must be 32 bytes")
	}
	copy(d[:], b)
	return d, nil
}

func (d MessageDigest) Bytes() []byte { return d[:] }
