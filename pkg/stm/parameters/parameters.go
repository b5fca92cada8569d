// Package parameters holds the live parameter vector a sampling run
// proposes over: current values, per-parameter sampler variance and
// acceptance rate, the constant/active split, and the iteration counter.
// All state here is instance-owned, with no package-level statics, so
// that multiple runs (or tests) never share identity by accident.
package parameters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

const (
	varianceMin = 1e-3
	varianceMax = 1e3

	defaultOptimalAcceptanceRate = 0.234
)

var defaultTargetAcceptanceInterval = [2]float64{0.15, 0.5}

// PriorFamily names the prior density used for a parameter.
type PriorFamily int

const (
	Normal PriorFamily = iota
	Cauchy
)

func ParsePriorFamily(s string) (PriorFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal, nil
	case "cauchy":
		return Cauchy, nil
	default:
		return 0, stmerr.New(stmerr.ParameterError, "unknown prior family %q", s)
	}
}

func (f PriorFamily) String() string {
	if f == Cauchy {
		return "Cauchy"
	}
	return "Normal"
}

// PriorDist is the prior placed on one parameter.
type PriorDist struct {
	Mean   float64
	SD     float64
	Family PriorFamily
}

// Settings is the static configuration of one parameter as read from the
// parameter file: its name, initial value, starting sampler variance, and
// whether it is held constant (excluded from proposal and adaptation).
type Settings struct {
	Name       string
	Initial    float64
	Variance   float64
	Acceptance float64
	IsConstant bool
}

// State is the live, instance-owned parameter vector for one run.
type State struct {
	allNames    []string
	activeNames []string

	values     map[string]float64
	initial    map[string]float64
	variance   map[string]float64
	acceptance map[string]float64
	isConstant map[string]bool

	iteration int

	targetAcceptanceInterval [2]float64
	optimalAcceptanceRate    float64
}

// New builds a fresh State from an ordered settings list. Duplicate names
// are ignored (first occurrence wins), preserving insertion order for
// allNames. Current values start at each parameter's initial value.
func New(settings []Settings) (*State, error) {
	if len(settings) == 0 {
		return nil, stmerr.New(stmerr.ParameterError, "no parameter settings supplied")
	}

	s := &State{
		values:                   map[string]float64{},
		initial:                  map[string]float64{},
		variance:                 map[string]float64{},
		acceptance:               map[string]float64{},
		isConstant:               map[string]bool{},
		targetAcceptanceInterval: defaultTargetAcceptanceInterval,
		optimalAcceptanceRate:    defaultOptimalAcceptanceRate,
	}

	seen := map[string]bool{}
	for _, cfg := range settings {
		if seen[cfg.Name] {
			continue
		}
		seen[cfg.Name] = true

		s.allNames = append(s.allNames, cfg.Name)
		s.values[cfg.Name] = cfg.Initial
		s.initial[cfg.Name] = cfg.Initial
		s.variance[cfg.Name] = clampVariance(cfg.Variance)
		s.acceptance[cfg.Name] = cfg.Acceptance
		s.isConstant[cfg.Name] = cfg.IsConstant

		if !cfg.IsConstant {
			s.activeNames = append(s.activeNames, cfg.Name)
		}
	}

	return s, nil
}

func clampVariance(v float64) float64 {
	if v < varianceMin {
		return varianceMin
	}
	if v > varianceMax {
		return varianceMax
	}
	return v
}

// AllNames returns every configured parameter name in insertion order.
func (s *State) AllNames() []string { return append([]string(nil), s.allNames...) }

// ActiveNames returns the non-constant parameter names, in insertion
// order, subject to proposal and adaptation.
func (s *State) ActiveNames() []string { return append([]string(nil), s.activeNames...) }

// CurrentState returns a read-only copy of the current value map.
func (s *State) CurrentState() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *State) has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Update writes one parameter's current value.
func (s *State) Update(name string, value float64) error {
	if !s.has(name) {
		return stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	s.values[name] = value
	return nil
}

// At returns the current value of name.
func (s *State) At(name string) (float64, error) {
	v, ok := s.values[name]
	if !ok {
		return 0, stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	return v, nil
}

// SamplerVariance returns the current proposal variance for name, always
// within [1e-3, 1e3].
func (s *State) SamplerVariance(name string) (float64, error) {
	v, ok := s.variance[name]
	if !ok {
		return 0, stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	return v, nil
}

// SetSamplerVariance writes a new proposal variance for name, silently
// clamped to [1e-3, 1e3].
func (s *State) SetSamplerVariance(name string, v float64) error {
	if !s.has(name) {
		return stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	s.variance[name] = clampVariance(v)
	return nil
}

// SetAcceptanceRate records the observed acceptance rate for name.
func (s *State) SetAcceptanceRate(name string, r float64) error {
	if !s.has(name) {
		return stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	s.acceptance[name] = r
	return nil
}

// SetAcceptanceRates records observed acceptance rates in bulk.
func (s *State) SetAcceptanceRates(rates map[string]float64) error {
	for name, r := range rates {
		if err := s.SetAcceptanceRate(name, r); err != nil {
			return err
		}
	}
	return nil
}

// AcceptanceRate returns the last recorded acceptance rate for name.
func (s *State) AcceptanceRate(name string) (float64, error) {
	r, ok := s.acceptance[name]
	if !ok {
		return 0, stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	return r, nil
}

// IsConstant reports whether name is held fixed.
func (s *State) IsConstant(name string) bool { return s.isConstant[name] }

// Adapted reports whether every active parameter's acceptance rate falls
// within the target acceptance interval.
func (s *State) Adapted() bool {
	for _, name := range s.activeNames {
		if !s.AdaptedName(name) {
			return false
		}
	}
	return true
}

// AdaptedName reports the adaptation predicate for a single parameter.
// Constant parameters are always considered adapted.
func (s *State) AdaptedName(name string) bool {
	if s.isConstant[name] {
		return true
	}
	r := s.acceptance[name]
	return r >= s.targetAcceptanceInterval[0] && r <= s.targetAcceptanceInterval[1]
}

// AdaptationStatus returns -1 if the acceptance rate is below the optimal
// rate, +1 if above, 0 if equal.
func (s *State) AdaptationStatus(name string) (int, error) {
	r, ok := s.acceptance[name]
	if !ok {
		return 0, stmerr.New(stmerr.ParameterError, "unknown parameter %q", name)
	}
	switch {
	case r < s.optimalAcceptanceRate:
		return -1, nil
	case r > s.optimalAcceptanceRate:
		return 1, nil
	default:
		return 0, nil
	}
}

// OptimalAcceptanceRate returns the configured target rate (0.234).
func (s *State) OptimalAcceptanceRate() float64 { return s.optimalAcceptanceRate }

// TargetAcceptanceInterval returns the configured [lo, hi] band.
func (s *State) TargetAcceptanceInterval() (float64, float64) {
	return s.targetAcceptanceInterval[0], s.targetAcceptanceInterval[1]
}

// Reset restores current values to their initial values and zeroes the
// iteration counter. Variance and acceptance rates are left untouched.
func (s *State) Reset() {
	for name, v := range s.initial {
		s.values[name] = v
	}
	s.iteration = 0
}

// Increment advances the iteration counter by n (default 1 when n==0 is
// not meaningful here; callers pass an explicit count).
func (s *State) Increment(n int) { s.iteration += n }

// Iteration returns the current iteration count.
func (s *State) Iteration() int { return s.iteration }

// Clone returns a deep copy suitable for building a trial proposal state
// without disturbing the original.
func (s *State) Clone() *State {
	clone := &State{
		allNames:                 append([]string(nil), s.allNames...),
		activeNames:              append([]string(nil), s.activeNames...),
		values:                   make(map[string]float64, len(s.values)),
		initial:                  make(map[string]float64, len(s.initial)),
		variance:                 make(map[string]float64, len(s.variance)),
		acceptance:               make(map[string]float64, len(s.acceptance)),
		isConstant:               make(map[string]bool, len(s.isConstant)),
		iteration:                s.iteration,
		targetAcceptanceInterval: s.targetAcceptanceInterval,
		optimalAcceptanceRate:    s.optimalAcceptanceRate,
	}
	for k, v := range s.values {
		clone.values[k] = v
	}
	for k, v := range s.initial {
		clone.initial[k] = v
	}
	for k, v := range s.variance {
		clone.variance[k] = v
	}
	for k, v := range s.acceptance {
		clone.acceptance[k] = v
	}
	for k, v := range s.isConstant {
		clone.isConstant[k] = v
	}
	return clone
}

// Serialize renders the Parameters resume block's inner lines, in the
// field order: parNames, initialVals, samplerVariance, acceptanceRates,
// isConstant, targetAcceptanceInterval, optimalAcceptanceRate,
// iterationCount, parameterValues.
func (s *State) Serialize(sep byte) []string {
	sp := string(sep)
	joinFloats := func(get func(string) float64) string {
		parts := make([]string, len(s.allNames))
		for i, name := range s.allNames {
			parts[i] = strconv.FormatFloat(get(name), 'g', -1, 64)
		}
		return strings.Join(parts, sp)
	}
	joinBools := func(get func(string) bool) string {
		parts := make([]string, len(s.allNames))
		for i, name := range s.allNames {
			if get(name) {
				parts[i] = "1"
			} else {
				parts[i] = "0"
			}
		}
		return strings.Join(parts, sp)
	}

	lines := []string{
		"parNames" + sp + strings.Join(s.allNames, sp),
		"initialVals" + sp + joinFloats(func(n string) float64 { return s.initial[n] }),
		"samplerVariance" + sp + joinFloats(func(n string) float64 { return s.variance[n] }),
		"acceptanceRates" + sp + joinFloats(func(n string) float64 { return s.acceptance[n] }),
		"isConstant" + sp + joinBools(func(n string) bool { return s.isConstant[n] }),
		fmt.Sprintf("targetAcceptanceInterval%s%s%s%s", sp,
			strconv.FormatFloat(s.targetAcceptanceInterval[0], 'g', -1, 64), sp,
			strconv.FormatFloat(s.targetAcceptanceInterval[1], 'g', -1, 64)),
		"optimalAcceptanceRate" + sp + strconv.FormatFloat(s.optimalAcceptanceRate, 'g', -1, 64),
		fmt.Sprintf("iterationCount%s%d", sp, s.iteration),
		"parameterValues" + sp + joinFloats(func(n string) float64 { return s.values[n] }),
	}
	return lines
}

// FromResume rebuilds a State from a Parameters resume block already
// tokenized into key -> fields by the caller (pkg/input owns the braced
// file format itself).
func FromResume(block map[string][]string) (*State, error) {
	names, ok := block["parNames"]
	if !ok || len(names) == 0 {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "Parameters block missing parNames")
	}

	floats := func(key string) ([]float64, error) {
		fields, ok := block[key]
		if !ok {
			return nil, stmerr.New(stmerr.ResumeCorrupt, "Parameters block missing %s", key)
		}
		out := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, stmerr.Wrap(stmerr.ResumeCorrupt, err, "parsing %s", key)
			}
			out[i] = v
		}
		return out, nil
	}

	initialVals, err := floats("initialVals")
	if err != nil {
		return nil, err
	}
	variance, err := floats("samplerVariance")
	if err != nil {
		return nil, err
	}
	acceptance, err := floats("acceptanceRates")
	if err != nil {
		return nil, err
	}
	isConstant, err := floats("isConstant")
	if err != nil {
		return nil, err
	}
	paramValues, err := floats("parameterValues")
	if err != nil {
		return nil, err
	}
	if len(initialVals) != len(names) || len(variance) != len(names) || len(acceptance) != len(names) ||
		len(isConstant) != len(names) || len(paramValues) != len(names) {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "Parameters block field-length mismatch")
	}

	tai, err := floats("targetAcceptanceInterval")
	if err != nil {
		return nil, err
	}
	if len(tai) != 2 {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "targetAcceptanceInterval must have 2 values")
	}
	oar, err := floats("optimalAcceptanceRate")
	if err != nil {
		return nil, err
	}
	iterFields, ok := block["iterationCount"]
	if !ok || len(iterFields) != 1 {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "Parameters block missing iterationCount")
	}
	iteration, err := strconv.Atoi(iterFields[0])
	if err != nil {
		return nil, stmerr.Wrap(stmerr.ResumeCorrupt, err, "parsing iterationCount")
	}

	s := &State{
		values:                   map[string]float64{},
		initial:                  map[string]float64{},
		variance:                 map[string]float64{},
		acceptance:               map[string]float64{},
		isConstant:               map[string]bool{},
		targetAcceptanceInterval: [2]float64{tai[0], tai[1]},
		optimalAcceptanceRate:    oar[0],
		iteration:                iteration,
	}
	for i, name := range names {
		s.allNames = append(s.allNames, name)
		s.initial[name] = initialVals[i]
		s.variance[name] = clampVariance(variance[i])
		s.acceptance[name] = acceptance[i]
		s.isConstant[name] = isConstant[i] != 0
		s.values[name] = paramValues[i]
		if !s.isConstant[name] {
			s.activeNames = append(s.activeNames, name)
		}
	}
	return s, nil
}
