// Package testutils provides an in-memory, synchronous transport for
// driving several protocols/keygen or protocols/sign Protocol[K] instances
// to completion within a single test process (spec.md §8, end-to-end
// scenarios), standing in for the network transport a real deployment would
// use.
package testutils

import (
	"fmt"

	"github.com/gg20lab/tofn/internal/round"
	"github.com/gg20lab/tofn/pkg/collections"
	"github.com/gg20lab/tofn/pkg/serialize"
)

// Outcome is one party's terminal result: exactly one of Output or Faulters
// is set.
type Outcome[K collections.Tag] struct {
	Output   any
	Faulters *round.FaulterList[K]
}

// RunToCompletion drives every protocol in lockstep: each round, every
// still-running party executes once its inbound slots are full, and its
// outbound envelopes are fanned out to every party, including back to the
// sender itself (both bcastIn and p2pIn are sized for all n parties, so a
// round's own broadcast and any p2p entry it addresses to itself must be
// delivered back to it like any other party's message). Panics on any
// fatal (non-attributable) error, since those indicate a harness or
// library bug rather than a test scenario outcome.
func RunToCompletion[K collections.Tag](protocols []*round.Protocol[K]) []Outcome[K] {
	n := len(protocols)
	outcomes := make([]Outcome[K], n)
	done := make([]bool, n)

	for {
		progressed := false
		var outFrom []int
		var outEnvs []round.Envelope

		for i, p := range protocols {
			if done[i] || p.ExpectingMoreMsgsThisRound() {
				continue
			}
			if err := p.ExecuteNextRound(); err != nil {
				panic(fmt.Sprintf("testutils: party %d: %v", i, err))
			}
			progressed = true

			if output, faulters, ok := p.Done(); ok {
				done[i] = true
				outcomes[i] = Outcome[K]{Output: output, Faulters: faulters}
				continue
			}

			if env, ok := p.TakeBcastOut(); ok {
				outFrom = append(outFrom, i)
				outEnvs = append(outEnvs, env)
			}
			for _, env := range p.TakeP2pOut() {
				outFrom = append(outFrom, i)
				outEnvs = append(outEnvs, env)
			}
		}
		for k, env := range outEnvs {
			deliverToAll(protocols, outFrom[k], env)
		}

		allDone := true
		for _, d := range done {
			if !d {
				allDone = false
				break
			}
		}
		if allDone {
			break
		}
		if !progressed {
			panic("testutils: no party progressed this round; a protocol is stuck waiting on a message that will never arrive")
		}
	}

	return outcomes
}

// deliverToAll fans a single outbound envelope out to its recipients.
// Broadcasts loop back to the sender too: bcastIn is sized for all n
// parties, sender included. A p2p envelope goes only to the one party it
// names, which may be the sender itself.
func deliverToAll[K collections.Tag](protocols []*round.Protocol[K], from int, env round.Envelope) {
	raw, err := serialize.Marshal(env)
	if err != nil {
		panic(fmt.Sprintf("testutils: envelope encode failed: %v", err))
	}
	for j, p := range protocols {
		if env.Kind == round.KindP2p && env.To != p.SelfID().AsUsize() {
			continue
		}
		if err := p.MsgIn(raw); err != nil {
			panic(fmt.Sprintf("testutils: party %d failed to receive message from %d: %v", j, from, err))
		}
	}
}
