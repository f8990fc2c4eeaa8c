//go:build !malicious

package sign

import (
	"log/slog"

	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
)

// Behaviour selects a single-round malicious deviation a signer injects into
// its own output. The fault-injection variants live behind the malicious
// build tag (malicious.go) so the corruption machinery never compiles into
// a release build; this is the default build's stand-in, which only ever
// sees Honest.
type Behaviour int

// Honest follows the protocol exactly. It is the only value this build tag
// defines; every corrupting Behaviour requires -tags malicious.
const Honest Behaviour = 0

func (b Behaviour) String() string { return "honest" }

func maybeCorruptGammaCommit(_ *slog.Logger, _ SignShareID, _ Behaviour, commit hash.Output) hash.Output {
	return commit
}

func maybeCorruptSI(_ *slog.Logger, _ SignShareID, _ Behaviour, si *curve.Point) *curve.Point {
	return si
}
