package model

import "github.com/quiccfor/stmmcmc/pkg/stm/state"

type pairKey struct {
	from, to state.Tag
}

type twoStateRegistry struct {
	cubic    bool
	closures map[pairKey]ClosureFunc
}

func newTwoState(cubic bool) *twoStateRegistry {
	r := &twoStateRegistry{cubic: cubic}
	r.closures = map[pairKey]ClosureFunc{
		{state.Absent, state.Present}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return rates["gamma"] * expected[state.Present] // colonization
		},
		{state.Absent, state.Absent}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return 1 - rates["gamma"]*expected[state.Present]
		},
		{state.Present, state.Absent}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return rates["epsilon"] // extinction
		},
		{state.Present, state.Present}: func(rates map[string]float64, expected map[state.Tag]float64) float64 {
			return 1 - rates["epsilon"]
		},
	}
	return r
}

func (r *twoStateRegistry) Variant() state.Variant { return state.TwoState }

func (r *twoStateRegistry) Alphabet() []state.Tag { return state.TwoState.Alphabet() }

func (r *twoStateRegistry) RateNames() []string { return []string{"gamma", "epsilon"} }

func (r *twoStateRegistry) LogitRates(params map[string]float64, env1, env2 float64) map[string]float64 {
	return map[string]float64{
		"gamma":   evalPoly(params, "g", env1, env2, r.cubic),
		"epsilon": evalPoly(params, "e", env1, env2, r.cubic),
	}
}

func (r *twoStateRegistry) Closure(from, to state.Tag) (ClosureFunc, bool) {
	c, ok := r.closures[pairKey{from, to}]
	return c, ok
}
