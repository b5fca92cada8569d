package main

import (
	"fmt"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stm/state"
	"github.com/quiccfor/stmmcmc/pkg/stm/transition"
)

// parseModelVariant maps the --model flag onto a state.Variant.
func parseModelVariant(s string) (state.Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "twostate", "two-state", "two_state":
		return state.TwoState, nil
	case "fourstate", "four-state", "four_state":
		return state.FourState, nil
	default:
		return 0, fmt.Errorf("unknown --model %q (want twostate|fourstate)", s)
	}
}

// parsePrevalenceModel maps the --prevalence-model flag onto a
// transition.PrevalenceModel.
func parsePrevalenceModel(s string) (transition.PrevalenceModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empirical", "":
		return transition.Empirical, nil
	case "stm":
		return transition.STM, nil
	case "global":
		return transition.Global, nil
	default:
		return 0, fmt.Errorf("unknown --prevalence-model %q (want empirical|stm|global)", s)
	}
}
