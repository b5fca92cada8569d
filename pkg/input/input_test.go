package input_test

import (
	"strings"
	"testing"

	"github.com/quiccfor/stmmcmc/pkg/input"
	"github.com/quiccfor/stmmcmc/pkg/stm/model"
	"github.com/quiccfor/stmmcmc/pkg/stm/state"
	"github.com/quiccfor/stmmcmc/pkg/stm/transition"
)

func TestParseParametersBasic(t *testing.T) {
	csv := "name,initialValue,priorMean,priorSD,priorDist,samplerVariance,isConstant\n" +
		"g0,0,0,10,Normal,1.0,0\n" +
		"e0,-5,0,10,Normal,,1\n"

	pf, err := input.ParseParameters(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseParameters: %v", err)
	}
	if len(pf.Settings) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(pf.Settings))
	}
	if pf.Settings[0].Name != "g0" || pf.Settings[0].Variance != 1.0 {
		t.Fatalf("unexpected first row: %+v", pf.Settings[0])
	}
	if !pf.Settings[1].IsConstant {
		t.Fatalf("expected e0 to be constant")
	}
	if pf.Settings[1].Variance != 1.0 {
		t.Fatalf("expected default variance 1.0 for missing samplerVariance, got %v", pf.Settings[1].Variance)
	}
	if pf.Priors["g0"].SD != 10 {
		t.Fatalf("unexpected prior: %+v", pf.Priors["g0"])
	}
}

func TestParseParametersMissingColumn(t *testing.T) {
	csv := "name,initialValue,priorMean,priorSD\ng0,0,0,10\n"
	_, err := input.ParseParameters(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected error for missing priorDist column")
	}
	if !strings.Contains(err.Error(), "priorDist") {
		t.Fatalf("expected schema hint naming priorDist, got: %v", err)
	}
}

func TestParseTransitionsInferredPrevalence(t *testing.T) {
	registry := model.New(state.TwoState, false)
	csv := "initial,final,env1,env2,interval,prevalence1\n0,1,0,0,1,0.5\n"

	ts, err := input.ParseTransitions(strings.NewReader(csv), registry, transition.Empirical)
	if err != nil {
		t.Fatalf("ParseTransitions: %v", err)
	}
	if len(ts) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(ts))
	}
	if got := ts[0].Expected[state.Absent]; got != 0.5 {
		t.Fatalf("expected inferred prevalence0=0.5, got %v", got)
	}
}

func TestParseTransitionsMissingPrevalenceColumns(t *testing.T) {
	registry := model.New(state.FourState, false)
	csv := "initial,final,env1,env2,interval\nT,R,0,0,1\n"
	_, err := input.ParseTransitions(strings.NewReader(csv), registry, transition.Empirical)
	if err == nil {
		t.Fatal("expected error: four-state needs at least 3 prevalence columns")
	}
}

func TestParseResumeRoundTrip(t *testing.T) {
	text := "Parameters {\n" +
		"parNames g0 e0\n" +
		"initialVals 0 -5\n" +
		"}\n" +
		"Metropolis {\n" +
		"version Metropolis1.5\n" +
		"}\n"

	blocks, err := input.ParseResume(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if got := blocks["Parameters"]["parNames"]; len(got) != 2 || got[0] != "g0" || got[1] != "e0" {
		t.Fatalf("unexpected parNames: %v", got)
	}
	if got := blocks["Metropolis"]["version"]; len(got) != 1 || got[0] != "Metropolis1.5" {
		t.Fatalf("unexpected version: %v", got)
	}
}

func TestParseResumeUnterminatedBlock(t *testing.T) {
	_, err := input.ParseResume(strings.NewReader("Parameters {\nparNames g0\n"))
	if err == nil {
		t.Fatal("expected error for unterminated block")
	}
}
