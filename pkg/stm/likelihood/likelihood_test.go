package likelihood_test

import (
	"math"
	"testing"

	"github.com/quiccfor/stmmcmc/pkg/stm/likelihood"
	"github.com/quiccfor/stmmcmc/pkg/stm/model"
	"github.com/quiccfor/stmmcmc/pkg/stm/parameters"
	"github.com/quiccfor/stmmcmc/pkg/stm/state"
	"github.com/quiccfor/stmmcmc/pkg/stm/transition"
)

func oneTransition(t *testing.T) *transition.Transition {
	t.Helper()
	r := model.New(state.TwoState, false)
	expected := map[state.Tag]float64{state.Absent: 0.5, state.Present: 0.5}
	tr, err := transition.New(r, state.Absent, state.Present, 0, 0, 1, expected, transition.Empirical)
	if err != nil {
		t.Fatalf("transition.New: %v", err)
	}
	return tr
}

func TestLogLikelihoodMatchesSingleTransition(t *testing.T) {
	tr := oneTransition(t)
	priors := map[string]parameters.PriorDist{"g0": {Mean: 0, SD: 10, Family: parameters.Normal}}
	lik, err := likelihood.New([]*transition.Transition{tr}, priors, 2, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	params := map[string]float64{"g0": -0.5}
	got := lik.LogLikelihood(params)
	want := math.Log(tr.Prob(params, 1))
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected logLik=%v, got %v", want, got)
	}
}

func TestLogLikelihoodColonizationAtLogitZero(t *testing.T) {
	// One 0->1 observation with prevalence1=0.5 and every gamma
	// coefficient at zero: gamma = inv_logit(0) = 0.5, so the
	// transition probability is 0.5*0.5 and the log-likelihood is
	// ln(0.25).
	tr := oneTransition(t)
	priors := map[string]parameters.PriorDist{}
	lik, err := likelihood.New([]*transition.Transition{tr}, priors, 1, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	params := map[string]float64{
		"g0": 0, "g1": 0, "g2": 0, "g3": 0, "g4": 0,
		"e0": -5, "e1": 0, "e2": 0, "e3": 0, "e4": 0,
	}
	got := lik.LogLikelihood(params)
	want := math.Log(0.25)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected logLik=%v, got %v", want, got)
	}
}

func TestLogPriorNormal(t *testing.T) {
	tr := oneTransition(t)
	priors := map[string]parameters.PriorDist{"g0": {Mean: 0, SD: 1, Family: parameters.Normal}}
	lik, err := likelihood.New([]*transition.Transition{tr}, priors, 1, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lp, err := lik.LogPrior("g0", 0)
	if err != nil {
		t.Fatalf("LogPrior: %v", err)
	}
	want := -0.5 * math.Log(2*math.Pi)
	if math.Abs(lp-want) > 1e-9 {
		t.Fatalf("expected standard normal log-density at 0 = %v, got %v", want, lp)
	}

	lp1, err := lik.LogPrior("g0", 1)
	if err != nil {
		t.Fatalf("LogPrior: %v", err)
	}
	want1 := want - 0.5
	if math.Abs(lp1-want1) > 1e-9 {
		t.Fatalf("expected standard normal log-density at 1 = %v, got %v", want1, lp1)
	}
}

func TestLogPriorIntegratesToOne(t *testing.T) {
	tr := oneTransition(t)
	priors := map[string]parameters.PriorDist{
		"n": {Mean: 0.5, SD: 1.3, Family: parameters.Normal},
		"c": {Mean: -1, SD: 2, Family: parameters.Cauchy},
	}
	lik, err := likelihood.New([]*transition.Transition{tr}, priors, 1, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	integrate := func(name string, lo, hi, step float64) float64 {
		sum := 0.0
		prev := 0.0
		first := true
		for x := lo; x <= hi; x += step {
			lp, err := lik.LogPrior(name, x)
			if err != nil {
				t.Fatalf("LogPrior(%s, %v): %v", name, x, err)
			}
			d := math.Exp(lp)
			if d < 0 {
				t.Fatalf("density below zero at %v: %v", x, d)
			}
			if !first {
				sum += 0.5 * (prev + d) * step
			}
			prev = d
			first = false
		}
		return sum
	}

	if got := integrate("n", -20, 20, 1e-3); math.Abs(got-1) > 1e-6 {
		t.Fatalf("normal prior integrates to %v, want 1", got)
	}
	// The Cauchy tail beyond +-4000 still carries ~3e-4 of mass, so the
	// tolerance is looser.
	if got := integrate("c", -4000, 4000, 0.05); math.Abs(got-1) > 5e-3 {
		t.Fatalf("cauchy prior integrates to %v, want 1", got)
	}
}

func TestLogPriorCauchy(t *testing.T) {
	tr := oneTransition(t)
	priors := map[string]parameters.PriorDist{"g0": {Mean: 0, SD: 1, Family: parameters.Cauchy}}
	lik, err := likelihood.New([]*transition.Transition{tr}, priors, 1, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lp, err := lik.LogPrior("g0", 0)
	if err != nil {
		t.Fatalf("LogPrior: %v", err)
	}
	want := math.Log(1 / math.Pi)
	if math.Abs(lp-want) > 1e-9 {
		t.Fatalf("expected standard Cauchy log-density at 0 = %v, got %v", want, lp)
	}
}

func TestLogPriorUnknownParameter(t *testing.T) {
	tr := oneTransition(t)
	lik, err := likelihood.New([]*transition.Transition{tr}, map[string]parameters.PriorDist{}, 1, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := lik.LogPrior("missing", 0); err == nil {
		t.Fatal("expected error for a parameter with no configured prior")
	}
}

func TestNewRejectsEmptyTransitions(t *testing.T) {
	if _, err := likelihood.New(nil, map[string]parameters.PriorDist{}, 1, 1, "test.csv", nil); err == nil {
		t.Fatal("expected error constructing a likelihood with no transitions")
	}
}

func TestReduceIsDeterministicAcrossWorkerCounts(t *testing.T) {
	r := model.New(state.TwoState, false)
	expected := map[state.Tag]float64{state.Absent: 0.5, state.Present: 0.5}
	var transitions []*transition.Transition
	for i := 0; i < 20; i++ {
		tr, err := transition.New(r, state.Absent, state.Present, float64(i)*0.1, 0, 1, expected, transition.Empirical)
		if err != nil {
			t.Fatalf("transition.New: %v", err)
		}
		transitions = append(transitions, tr)
	}
	priors := map[string]parameters.PriorDist{"g0": {Mean: 0, SD: 10, Family: parameters.Normal}}
	params := map[string]float64{"g0": -0.3, "g1": 0.2}

	single, err := likelihood.New(transitions, priors, 1, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parallel, err := likelihood.New(transitions, priors, 8, 1, "test.csv", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := single.LogLikelihood(params)
	b := parallel.LogLikelihood(params)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected identical log-likelihood regardless of worker count, got %v and %v", a, b)
	}
}
