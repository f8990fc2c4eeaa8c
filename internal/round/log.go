package round

import (
	"log/slog"

	"github.com/gg20lab/tofn/pkg/collections"
)

// LogFaultInfo records that me observed faulter commit fault, at Info level:
// the local view has not yet broadcast an accusation, it is simply noting
// what it found. Mirrors implementer_api::utils::log_fault_info.
func LogFaultInfo[K collections.Tag](logger *slog.Logger, me, faulter collections.TypedUsize[K], fault string) {
	logger.Info("fault detected", "party", me.AsUsize(), "faulter", faulter.AsUsize(), "reason", fault)
}

// LogFaultWarn is LogFaultInfo's Warn-level counterpart, used when the fault
// is severe enough to end the session (mirrors log_fault_warn).
func LogFaultWarn[K collections.Tag](logger *slog.Logger, me, faulter collections.TypedUsize[K], fault string) {
	logger.Warn("fault detected", "party", me.AsUsize(), "faulter", faulter.AsUsize(), "reason", fault)
}

// LogAccuseWarn records that me is actively accusing faulter, at Warn level
// (mirrors log_accuse_warn).
func LogAccuseWarn[K collections.Tag](logger *slog.Logger, me, faulter collections.TypedUsize[K], fault string) {
	logger.Warn("accusation raised", "party", me.AsUsize(), "accused", faulter.AsUsize(), "reason", fault)
}

// LogTypeSevenEntered records that me's session fell into the type-7 sad
// path at the named trigger round, so tests and operators can distinguish
// "recovered via reveal-and-audit" from a direct fault.
func LogTypeSevenEntered[K collections.Tag](logger *slog.Logger, me collections.TypedUsize[K], triggerRound Number) {
	logger.Warn("type-7 sad path entered", "party", me.AsUsize(), "trigger_round", triggerRound)
}
