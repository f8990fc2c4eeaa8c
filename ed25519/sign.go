package ed25519

import (
	stded25519 "crypto/ed25519"
	"encoding/asn1"
	"fmt"

	"github.com/gg20lab/tofn/pkg/sdk"
)

// oid is the Ed25519 algorithm identifier, RFC 8410 §3.
var oid = asn1.ObjectIdentifier{1, 3, 101, 112}

type algorithmIdentifier struct {
	Algorithm asn1.ObjectIdentifier
}

// derSignature is the wire shape spec.md §4.6 requires: SEQUENCE {
// AlgorithmIdentifier, BIT STRING }, the same shape RFC 6960 §4.1.1 defines
// for its Signature type, minus the optional certs field this primitive
// never populates.
type derSignature struct {
	Algorithm algorithmIdentifier
	Signature asn1.BitString
}

// Sign produces an ASN.1 DER-encoded Ed25519 signature over digest (spec.md
// §4.6): the inner signature is the raw 64-byte EdDSA output.
func Sign(kp *KeyPair, digest sdk.MessageDigest) ([]byte, error) {
	sig := stded25519.Sign(kp.signingKey, digest.Bytes())
	der, err := asn1.Marshal(derSignature{
		Algorithm: algorithmIdentifier{Algorithm: oid},
		Signature: asn1.BitString{Bytes: sig, BitLength: len(sig) * 8},
	})
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w: %w", err, sdk.TofnFatal)
	}
	return der, nil
}

// Verify checks a DER-encoded signature against verifyingKey and digest
// (spec.md §4.6). No malleability is tolerated: a non-canonical OID, a
// truncated or padded BIT STRING, or a signature failing strict EdDSA
// verification all return false rather than panicking or erroring.
func Verify(verifyingKey []byte, digest sdk.MessageDigest, encodedSignature []byte) bool {
	if len(verifyingKey) != stded25519.PublicKeySize {
		return false
	}

	var sig derSignature
	rest, err := asn1.Unmarshal(encodedSignature, &sig)
	if err != nil || len(rest) != 0 {
		return false
	}
	if !sig.Algorithm.Algorithm.Equal(oid) {
		return false
	}
	if sig.Signature.BitLength != stded25519.SignatureSize*8 || len(sig.Signature.Bytes) != stded25519.SignatureSize {
		return false
	}

	return stded25519.Verify(stded25519.PublicKey(verifyingKey), digest.Bytes(), sig.Signature.Bytes)
}
