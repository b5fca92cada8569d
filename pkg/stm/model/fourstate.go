package model

import "github.com/quiccfor/stmmcmc/pkg/stm/state"

type fourStateRegistry struct {
	closures map[pairKey]ClosureFunc
}

func newFourState() *fourStateRegistry {
	r := &fourStateRegistry{}

	toM := func(rates map[string]float64, expected map[state.Tag]float64) float64 {
		return rates["beta_b"] * (expected[state.B] + expected[state.M]) * (1 - rates["epsilon"])
	}
	toBFromB := func(rates map[string]float64, expected map[state.Tag]float64) float64 {
		return rates["beta_t"] * (expected[state.T] + expected[state.M]) * (1 - rates["epsilon"])
	}
	mToT := func(rates map[string]float64, _ map[state.Tag]float64) float64 {
		return rates["theta"] * rates["theta_t"] * (1 - rates["epsilon"])
	}
	mToB := func(rates map[string]float64, _ map[state.Tag]float64) float64 {
		return rates["theta"] * (1 - rates["theta_t"]) * (1 - rates["epsilon"])
	}
	rToT := func(rates map[string]float64, expected map[state.Tag]float64) float64 {
		return rates["alpha_t"] * (expected[state.M] + expected[state.T]) * (1 - rates["alpha_b"]*(expected[state.B]+expected[state.M]))
	}
	rToB := func(rates map[string]float64, expected map[state.Tag]float64) float64 {
		return rates["alpha_b"] * (expected[state.M] + expected[state.B]) * (1 - rates["alpha_t"]*(expected[state.T]+expected[state.M]))
	}
	rToM := func(rates map[string]float64, expected map[state.Tag]float64) float64 {
		return rates["alpha_b"] * (expected[state.M] + expected[state.B]) * rates["alpha_t"] * (expected[state.M] + expected[state.T])
	}

	r.closures = map[pairKey]ClosureFunc{
		{state.T, state.R}: func(rates map[string]float64, _ map[state.Tag]float64) float64 { return rates["epsilon"] },
		{state.B, state.R}: func(rates map[string]float64, _ map[state.Tag]float64) float64 { return rates["epsilon"] },
		{state.M, state.R}: func(rates map[string]float64, _ map[state.Tag]float64) float64 { return rates["epsilon"] },

		{state.T, state.M}: toM,
		{state.T, state.T}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return 1 - rates["epsilon"] - toM(rates, expected)
		},

		{state.B, state.M}: toBFromB,
		{state.B, state.B}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return 1 - rates["epsilon"] - toBFromB(rates, expected)
		},

		{state.M, state.T}: mToT,
		{state.M, state.B}: mToB,
		{state.M, state.M}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return 1 - mToT(rates, expected) - mToB(rates, expected) - rates["epsilon"]
		},

		{state.R, state.T}: rToT,
		{state.R, state.B}: rToB,
		{state.R, state.M}: rToM,
		{state.R, state.R}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return 1 - rToT(rates, expected) - rToB(rates, expected) - rToM(rates, expected)
		},
	}
	return r
}

func (r *fourStateRegistry) Variant() state.Variant { return state.FourState }

func (r *fourStateRegistry) Alphabet() []state.Tag { return state.FourState.Alphabet() }

func (r *fourStateRegistry) RateNames() []string {
	return []string{"alpha_b", "alpha_t", "beta_b", "beta_t", "theta", "theta_t", "epsilon"}
}

func (r *fourStateRegistry) LogitRates(params map[string]float64, env1, env2 float64) map[string]float64 {
	return map[string]float64{
		"alpha_b": evalPoly(params, "ab", env1, env2, true),
		"alpha_t": evalPoly(params, "at", env1, env2, true),
		"beta_b":  evalPoly(params, "bb", env1, env2, true),
		"beta_t":  evalPoly(params, "bt", env1, env2, true),
		"theta":   evalPoly(params, "th", env1, env2, true),
		"theta_t": evalPoly(params, "tt", env1, env2, true),
		"epsilon": evalPoly(params, "e", env1, env2, true),
	}
}

func (r *fourStateRegistry) Closure(from, to state.Tag) (ClosureFunc, bool) {
	c, ok := r.closures[pairKey{from, to}]
	return c, ok
}
