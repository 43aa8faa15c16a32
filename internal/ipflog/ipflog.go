// Package ipflog is the IPF engine's diagnostic logging sink. It wraps
// github.com/rs/zerolog (the structured-logging library used elsewhere in
// the pack by itohio-EasyRobot and sawpanic-cryptorun) behind a small
// interface so the engine depends on a seam, not a concrete global logger.
package ipflog

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the diagnostic sink the IPF engine writes to: convergence
// outcomes and soft-consistency adjustments (spec §6/§7).
type Logger interface {
	Converged(iterations int)
	NotConverged(iterations int, crit float64)
	ProportionsNormalized()
	OverlapForced(subsets [][]int)
}

// zerologSink is the default Logger, backed by a zerolog.Logger writing
// structured events to stderr.
type zerologSink struct {
	log zerolog.Logger
}

// Default returns a zerolog-backed Logger writing to stderr, console
// formatted, mirroring the teacher pack's `log.Output(zerolog.ConsoleWriter{...})`
// setup (sawpanic-cryptorun cmd/cprotocol/main.go).
func Default() Logger {
	return &zerologSink{log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()}
}

// Noop returns a Logger that discards every event, for callers (and tests)
// that don't want engine diagnostics on stderr.
func Noop() Logger { return noopLogger{} }

func (z *zerologSink) Converged(iterations int) {
	z.log.Info().Int("iterations", iterations).Msg("ipf: converged")
}

func (z *zerologSink) NotConverged(iterations int, crit float64) {
	z.log.Warn().Int("iterations", iterations).Float64("crit", crit).Msg("ipf: did not converge")
}

func (z *zerologSink) ProportionsNormalized() {
	z.log.Info().Msg("ipf: scalar sums inconsistent, targets rescaled to proportions")
}

func (z *zerologSink) OverlapForced(subsets [][]int) {
	z.log.Warn().Interface("subsets", subsets).Msg("ipf: overlap inconsistency forced to consistency")
}

type noopLogger struct{}

func (noopLogger) Converged(int)                {}
func (noopLogger) NotConverged(int, float64)     {}
func (noopLogger) ProportionsNormalized()        {}
func (noopLogger) OverlapForced(subsets [][]int) {}
