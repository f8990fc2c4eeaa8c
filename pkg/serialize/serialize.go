// Package serialize provides the self-delimiting binary codec used for both
// wire messages and persisted SecretKeyShare values
// (spec.md §6 "Persisted state" / "Message envelope"). Grounded on
// original_source/src/refactor/sdk/implementer_api/utils.rs's `serialize`
// helper (there backed by `bincode`); no serialization library is declared
// in any retrieved go.mod (see SPEC_FULL.md §4), so this repo uses the
// standard library's encoding/gob, whose output is self-delimiting; Marshal
// adds no length prefix of its own. Frame/Unframe and PutLP/TakeLP provide
// explicit length-prefix framing separately (the zk/* proof codecs use
// PutLP/TakeLP).
package serialize

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/gg20lab/tofn/pkg/sdk"
)

// ErrTruncated is returned when a framed buffer is shorter than its own
// declared length prefix.
var ErrTruncated = errors.New("serialize: truncated frame")

// Marshal encodes v with gob and returns a serialization failure as
// sdk.TofnFatal, per spec.md §7 ("serialization failure" is always fatal,
// never attributable).
func Marshal(v any) (sdk.BytesVec, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("serialize: encode failed: %w: %w", err, sdk.TofnFatal)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes into v. A decode failure is the caller's responsibility
// to classify: inputs from an untrusted peer attribute blame to the sender
// (spec.md §7), while decoding the local caller's own persisted state on a
// failure is sdk.TofnFatal.
func Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("serialize: decode failed: %w", err)
	}
	return nil
}

// Frame prefixes payload with its own length as a big-endian uint32, so a
// stream of frames is self-delimiting (spec.md §6: "Framing MUST be
// self-describing").
func Frame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// Unframe reads one length-prefixed frame from the front of buf, returning
// the payload and the number of bytes consumed.
func Unframe(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < 4 {
		return nil, 0, ErrTruncated
	}
	n := binary.BigEndian.Uint32(buf)
	total := 4 + int(n)
	if len(buf) < total {
		return nil, 0, ErrTruncated
	}
	return buf[4:total], total, nil
}

// PutLP appends b to dst as a self-delimiting length-prefixed chunk. Used by
// the hand-written MarshalBinary implementations of big-integer-bearing
// types (paillier, pedersen, the zk proof families) whose fields come from
// github.com/cronokirby/safenum, a type this package does not control and
// so cannot assume gob can encode directly.
func PutLP(dst []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

// TakeLP reads one PutLP-encoded chunk from the front of b, returning the
// chunk and the remaining bytes.
func TakeLP(b []byte) (value, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, ErrTruncated
	}
	n := binary.BigEndian.Uint32(b)
	total := 4 + int(n)
	if len(b) < total {
		return nil, nil, ErrTruncated
	}
	return b[4:total], b[total:], nil
}
