//go:build !malicious

package keygen

import (
	"log/slog"

	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/vss"
	"github.com/gg20lab/tofn/pkg/zk/paillierkey"
	"github.com/gg20lab/tofn/pkg/zk/paillierprm"
	"github.com/gg20lab/tofn/pkg/zk/schnorr"
)

// Behaviour selects a single-round malicious deviation a share injects into
// its own output. The fault-injection variants live behind the malicious
// build tag (malicious.go) so the corruption machinery never compiles into
// a release build; this is the default build's stand-in, which only ever
// sees Honest.
type Behaviour int

// Honest follows the protocol exactly. It is the only value this build tag
// defines; every corrupting Behaviour requires -tags malicious.
const Honest Behaviour = 0

func (b Behaviour) String() string { return "honest" }

func maybeCorruptCommit(_ *slog.Logger, _ ShareID, _ Behaviour, commit hash.Output) hash.Output {
	return commit
}

func maybeCorruptEKProof(_ *slog.Logger, _ ShareID, _ Behaviour, proof *paillierkey.Proof) *paillierkey.Proof {
	return proof
}

func maybeCorruptZkpProof(_ *slog.Logger, _ ShareID, _ Behaviour, proof *paillierprm.Proof) *paillierprm.Proof {
	return proof
}

func maybeCorruptVssCommit(_ *slog.Logger, _ ShareID, _ Behaviour, _ int, commit *vss.Exponent) *vss.Exponent {
	return commit
}

func maybeCorruptXIProof(_ *slog.Logger, _ ShareID, _ Behaviour, proof *schnorr.Proof) *schnorr.Proof {
	return proof
}
