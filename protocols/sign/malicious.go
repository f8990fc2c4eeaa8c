//go:build malicious

package sign

import (
	"log/slog"

	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
)

// Behaviour selects a single-round malicious deviation a signer injects into
// its own output, for the fault-attribution test scenarios in spec.md §8.
// Mirrors protocols/keygen's Behaviour: a plain value threaded through round
// constructors rather than a build-time feature flag.
type Behaviour int

const (
	// Honest follows the protocol exactly.
	Honest Behaviour = iota
	// R1BadCommit broadcasts a GammaCommit that will never open correctly.
	R1BadCommit
	// R6FalseAccusation corrupts this signer's own round-6 S_i so its WC
	// proof fails verification in round 7, driving the whole group into
	// the type-7 reveal-and-audit sad path with this signer named as the
	// sole faulter.
	R6FalseAccusation
)

func (b Behaviour) String() string {
	switch b {
	case Honest:
		return "honest"
	case R1BadCommit:
		return "r1-bad-commit"
	case R6FalseAccusation:
		return "r6-false-accusation"
	default:
		return "unknown"
	}
}

func logInjected(logger *slog.Logger, self SignShareID, b Behaviour) {
	logger.Warn("malicious behaviour injected", "share", self.AsUsize(), "behaviour", b.String())
}

func maybeCorruptGammaCommit(logger *slog.Logger, self SignShareID, b Behaviour, commit hash.Output) hash.Output {
	if b != R1BadCommit {
		return commit
	}
	logInjected(logger, self, b)
	corrupted := commit
	corrupted[0] ^= 0xFF
	return corrupted
}

// maybeCorruptSI negates this signer's own S_i, so its round-6 WC proof
// (which binds S_i to the already-published sigma commitment) fails
// verification in round 7, which routes the group through the type-7
// sad path with this signer attributed directly.
func maybeCorruptSI(logger *slog.Logger, self SignShareID, b Behaviour, si *curve.Point) *curve.Point {
	if b != R6FalseAccusation {
		return si
	}
	logInjected(logger, self, b)
	return curve.NewIdentityPoint().Negate(si)
}
