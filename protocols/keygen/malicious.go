//go:build malicious

package keygen

import (
	"log/slog"

	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/paillierkey"
	"github.com/gg20lab/tofn/pkg/zk/paillierprm"
	"github.com/gg20lab/tofn/pkg/zk/schnorr"
)

// Behaviour selects a single-round malicious deviation a share injects into
// its own output, for the fault-attribution test scenarios in spec.md §8.
// Go has no equivalent of the Rust source's per-round #[cfg(feature =
// "malicious")] behaviour enums, so this is a plain value threaded through
// the round constructors instead.
type Behaviour int

const (
	// Honest follows the protocol exactly.
	Honest Behaviour = iota
	// R1BadCommit broadcasts a y_i_commit that will never open correctly.
	R1BadCommit
	// R1BadEncryptionKeyProof broadcasts an ek_proof that fails verification.
	R1BadEncryptionKeyProof
	// R1BadZkSetupProof broadcasts a zkp_proof that fails verification.
	R1BadZkSetupProof
	// R2BadVssCommit broadcasts a VSS commitment inconsistent with the
	// shares actually sent out, so every recipient's consistency check
	// fails in round 3.
	R2BadVssCommit
	// R3BadXIProof broadcasts an x_i_proof for the wrong witness.
	R3BadXIProof
)

func (b Behaviour) String() string {
	switch b {
	case Honest:
		return "honest"
	case R1BadCommit:
		return "r1-bad-commit"
	case R1BadEncryptionKeyProof:
		return "r1-bad-ek-proof"
	case R1BadZkSetupProof:
		return "r1-bad-zkp-proof"
	case R2BadVssCommit:
		return "r2-bad-vss-commit"
	case R3BadXIProof:
		return "r3-bad-xi-proof"
	default:
		return "unknown"
	}
}

func logInjected(logger *slog.Logger, self ShareID, b Behaviour) {
	logger.Warn("malicious behaviour injected", "share", self.AsUsize(), "behaviour", b.String())
}

func maybeCorruptCommit(logger *slog.Logger, self ShareID, b Behaviour, commit hash.Output) hash.Output {
	if b != R1BadCommit {
		return commit
	}
	logInjected(logger, self, b)
	corrupted := commit
	corrupted[0] ^= 0xFF
	return corrupted
}

func maybeCorruptEKProof(logger *slog.Logger, self ShareID, b Behaviour, proof *paillierkey.Proof) *paillierkey.Proof {
	if b != R1BadEncryptionKeyProof {
		return proof
	}
	logInjected(logger, self, b)
	corrupted := *proof
	corrupted.Rounds[0].A = !corrupted.Rounds[0].A
	return &corrupted
}

func maybeCorruptZkpProof(logger *slog.Logger, self ShareID, b Behaviour, proof *paillierprm.Proof) *paillierprm.Proof {
	if b != R1BadZkSetupProof {
		return proof
	}
	logInjected(logger, self, b)
	corrupted := *proof
	corrupted.Response = corrupted.A
	return &corrupted
}

// maybeCorruptVssCommit swaps in an unrelated polynomial's commitment of the
// same degree, leaving the shares actually encrypted to peers untouched, so
// every peer's round-3 evaluation check against this commitment fails.
func maybeCorruptVssCommit(logger *slog.Logger, self ShareID, b Behaviour, threshold int, commit *vss.Exponent) *vss.Exponent {
	if b != R2BadVssCommit {
		return commit
	}
	logInjected(logger, self, b)
	return vss.New(threshold).Commit()
}

func maybeCorruptXIProof(logger *slog.Logger, self ShareID, b Behaviour, proof *schnorr.Proof) *schnorr.Proof {
	if b != R3BadXIProof {
		return proof
	}
	logInjected(logger, self, b)
	corrupted := *proof
	corrupted.Response = curve.NewScalarRandom()
	return &corrupted
}
