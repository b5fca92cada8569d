// Package model publishes the per-variant state alphabet, the logit-scale
// rate polynomials, and the table of transition-probability closures
// chosen once at startup for the run's model variant.
package model

import "github.com/quiccfor/stmmcmc/pkg/stm/state"

// ClosureFunc computes a transition probability from a rescaled rate map
// (annual rates already converted from logit scale and rescaled to the
// observation's interval) and the transition's expected-prevalence map.
type ClosureFunc func(rates map[string]float64, expected map[state.Tag]float64) float64

// Registry is chosen once per process at model-variant selection and is
// immutable and safe for concurrent read access thereafter.
type Registry interface {
	Variant() state.Variant
	Alphabet() []state.Tag
	// RateNames lists the logical rate names this variant's polynomials
	// produce, e.g. "gamma"/"epsilon" for two-state.
	RateNames() []string
	// LogitRates evaluates every named rate's polynomial at (env1, env2)
	// using parameter values drawn from params. Missing parameter names
	// contribute a zero coefficient rather than failing, since a
	// constant-folded or partially configured parameter set is valid.
	LogitRates(params map[string]float64, env1, env2 float64) map[string]float64
	// Closure returns the probability closure registered for the
	// (initial, final) pair, and whether one exists. A missing closure
	// means the pair is not a reachable transition for this variant.
	Closure(from, to state.Tag) (ClosureFunc, bool)
}

// New builds the registry for v. cubic only affects the two-state
// variant's gamma/epsilon polynomials; it is ignored for four-state,
// which is always cubic per its fixed p0..p6 form.
func New(v state.Variant, cubic bool) Registry {
	switch v {
	case state.TwoState:
		return newTwoState(cubic)
	case state.FourState:
		return newFourState()
	default:
		return nil
	}
}
