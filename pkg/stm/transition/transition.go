// Package transition models one observed initial→final state pair and
// computes its probability under a chosen model variant's rates.
package transition

import (
	"math"

	"github.com/quiccfor/stmmcmc/pkg/stm/model"
	"github.com/quiccfor/stmmcmc/pkg/stm/state"
	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// PrevalenceModel selects how a Transition's expected-prevalence map is
// populated at construction.
type PrevalenceModel int

const (
	Empirical PrevalenceModel = iota
	STM
	Global
)

// Transition is one observation: an initial and final state, the two
// environmental covariates at the time of observation, the number of
// years between observations, and the plot's expected state prevalences.
type Transition struct {
	Initial  state.Tag
	Final    state.Tag
	Env1     float64
	Env2     float64
	Interval int
	Expected map[state.Tag]float64

	registry model.Registry
	closure  model.ClosureFunc
}

// New validates and constructs a Transition against registry. It fails
// with stmerr.InvalidTransition if the states are outside the registry's
// alphabet, the interval is not positive, or no closure is registered for
// the (initial, final) pair.
func New(registry model.Registry, initial, final state.Tag, env1, env2 float64, interval int, expected map[state.Tag]float64, prevalence PrevalenceModel) (*Transition, error) {
	if !registry.Variant().Valid(initial) {
		return nil, stmerr.New(stmerr.InvalidTransition, "initial state %q not in %s alphabet", initial, registry.Variant())
	}
	if !registry.Variant().Valid(final) {
		return nil, stmerr.New(stmerr.InvalidTransition, "final state %q not in %s alphabet", final, registry.Variant())
	}
	if interval < 1 {
		return nil, stmerr.New(stmerr.InvalidTransition, "interval must be >= 1, got %d", interval)
	}
	closure, ok := registry.Closure(initial, final)
	if !ok {
		return nil, stmerr.New(stmerr.InvalidTransition, "no transition closure registered for %q -> %q", initial, final)
	}

	exp := make(map[state.Tag]float64, len(expected))
	for k, v := range expected {
		exp[k] = v
	}
	if prevalence == Global {
		for _, tag := range registry.Alphabet() {
			exp[tag] = 1.0
		}
	}

	return &Transition{
		Initial:  initial,
		Final:    final,
		Env1:     env1,
		Env2:     env2,
		Interval: interval,
		Expected: exp,
		registry: registry,
		closure:  closure,
	}, nil
}

// Prob computes P(final | initial, params, targetInterval), rescaling
// each rate from its per-targetInterval value to this transition's own
// observation interval before evaluating the registered closure.
func (t *Transition) Prob(params map[string]float64, targetInterval int) float64 {
	rawRates := t.registry.LogitRates(params, t.Env1, t.Env2)
	rescaled := make(map[string]float64, len(rawRates))
	for name, logit := range rawRates {
		annual := invLogit(logit)
		rescaled[name] = rescaleInterval(annual, t.Interval, targetInterval)
	}
	return t.closure(rescaled, t.Expected)
}

// invLogit computes 1/(1+exp(-x)) using the sign-split form that avoids
// overflow in exp for large |x|.
func invLogit(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// rescaleInterval converts a rate r, expressed per `targetInterval`
// years, to the equivalent rate over `interval` years.
func rescaleInterval(r float64, interval, targetInterval int) float64 {
	if targetInterval <= 0 {
		targetInterval = 1
	}
	ratio := float64(interval) / float64(targetInterval)
	return 1 - math.Pow(1-r, ratio)
}
