package reporting

import (
	"fmt"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// OutputLevel controls how much the sampler narrates its own progress.
type OutputLevel int

const (
	Quiet OutputLevel = iota
	Normal
	Talkative
	Verbose
	ExtraVerbose
)

// ParseOutputLevel maps a CLI/config string onto an OutputLevel.
func ParseOutputLevel(s string) (OutputLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return Quiet, nil
	case "normal", "":
		return Normal, nil
	case "talkative":
		return Talkative, nil
	case "verbose":
		return Verbose, nil
	case "extra-verbose", "extraverbose":
		return ExtraVerbose, nil
	default:
		return 0, stmerr.New(stmerr.InvalidConfig, "unknown output level %q", s)
	}
}

func (o OutputLevel) String() string {
	switch o {
	case Quiet:
		return "quiet"
	case Normal:
		return "normal"
	case Talkative:
		return "talkative"
	case Verbose:
		return "verbose"
	case ExtraVerbose:
		return "extra-verbose"
	default:
		return "unknown"
	}
}

// ProgressReporter narrates a sampling run's phase transitions,
// adaptation tables, per-iteration log-likelihoods, parameter dumps, and
// the final DIC summary, each gated by a minimum OutputLevel.
type ProgressReporter struct {
	level  OutputLevel
	logger *Logger
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(level OutputLevel, logger *Logger) *ProgressReporter {
	return &ProgressReporter{level: level, logger: logger}
}

// Phase reports a run-state-machine transition. Shown at Normal and
// above.
func (pr *ProgressReporter) Phase(from, to string) {
	if pr.level < Normal {
		return
	}
	fmt.Printf("[PHASE] %s -> %s\n", from, to)
}

// AcceptanceTable reports one adaptation loop's per-parameter variance
// and acceptance state. Shown at Talkative and above.
func (pr *ProgressReporter) AcceptanceTable(rows []AcceptanceRow) {
	if pr.level < Talkative {
		return
	}
	fmt.Println("[ADAPT] name           variance      acceptance  adapted")
	for _, r := range rows {
		status := "no"
		if r.Adapted {
			status = "yes"
		}
		fmt.Printf("        %-14s %-13.6g %-11.4f %s\n", r.Name, r.Variance, r.Acceptance, status)
	}
}

// Iteration reports the current iteration count and log-likelihood.
// Shown at Verbose and above.
func (pr *ProgressReporter) Iteration(iter int, logLik float64) {
	if pr.level < Verbose {
		return
	}
	fmt.Printf("[ITER] %d logLik=%g\n", iter, logLik)
}

// ParameterDump reports every parameter's current value. Shown at
// ExtraVerbose only.
func (pr *ProgressReporter) ParameterDump(values map[string]float64) {
	if pr.level < ExtraVerbose {
		return
	}
	fmt.Print("[PARAMS]")
	for name, v := range values {
		fmt.Printf(" %s=%g", name, v)
	}
	fmt.Println()
}

// DIC reports the final deviance information criterion summary. Shown at
// Normal and above (the sampler's headline result, not a verbosity
// detail).
func (pr *ProgressReporter) DIC(d DICSummary) {
	if pr.level < Normal {
		return
	}
	fmt.Print(FormatDIC(d))
}

// Warn routes a warning through the underlying logger, satisfying
// likelihood.Warner so a ProgressReporter's logger can be handed
// straight to likelihood.New if no separate Logger is at hand. Shown at
// Talkative and above.
func (pr *ProgressReporter) Warn(msg string, fields ...interface{}) {
	if pr.level < Talkative {
		return
	}
	if pr.logger != nil {
		pr.logger.Warn(msg, fields...)
	}
}
