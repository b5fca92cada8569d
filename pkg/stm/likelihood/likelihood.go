// Package likelihood aggregates per-transition log-probabilities into a
// single log-likelihood via a bounded-concurrency parallel reduction, and
// evaluates the log-prior density for one parameter at a time.
package likelihood

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quiccfor/stmmcmc/pkg/stm/parameters"
	"github.com/quiccfor/stmmcmc/pkg/stm/transition"
	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

// Warner receives a one-line warning when a transition is removed during
// self-check. *reporting.Logger satisfies this structurally.
type Warner interface {
	Warn(msg string, fields ...interface{})
}

// Likelihood owns the transition list and the per-parameter priors for
// one run.
type Likelihood struct {
	transitions    []*transition.Transition
	priors         map[string]parameters.PriorDist
	threads        int
	targetInterval int
	sourceFile     string

	mu          sync.Mutex
	selfChecked bool
	warner      Warner
}

// New constructs a Likelihood. Construction fails with InvalidConfig if
// there are no transitions, priors is nil, or targetInterval < 1; a
// threads value below 1 falls back to 8 workers.
func New(transitions []*transition.Transition, priors map[string]parameters.PriorDist, threads int, targetInterval int, sourceFile string, warner Warner) (*Likelihood, error) {
	if len(transitions) == 0 {
		return nil, stmerr.New(stmerr.InvalidConfig, "likelihood requires at least one transition")
	}
	if priors == nil {
		return nil, stmerr.New(stmerr.InvalidConfig, "likelihood requires a non-nil prior map")
	}
	if threads < 1 {
		threads = 8
	}
	if targetInterval < 1 {
		return nil, stmerr.New(stmerr.InvalidConfig, "targetInterval must be >= 1")
	}

	cp := make([]*transition.Transition, len(transitions))
	copy(cp, transitions)

	return &Likelihood{
		transitions:    cp,
		priors:         priors,
		threads:        threads,
		targetInterval: targetInterval,
		sourceFile:     sourceFile,
		warner:         warner,
	}, nil
}

// LogLikelihood runs the parallel reduction ln(P(final|initial,params))
// over every surviving transition. The first call self-checks the full
// transition set and permanently removes any transition whose initial
// evaluation is non-finite.
func (l *Likelihood) LogLikelihood(params map[string]float64) float64 {
	l.mu.Lock()
	if !l.selfChecked {
		l.selfCheck(params)
		l.selfChecked = true
	}
	l.mu.Unlock()

	return l.reduce(params)
}

func (l *Likelihood) selfCheck(params map[string]float64) {
	kept := l.transitions[:0:0]
	for _, t := range l.transitions {
		p := t.Prob(params, l.targetInterval)
		if !isFiniteLog(p) {
			if l.warner != nil {
				l.warner.Warn("removing transition with non-finite log-likelihood",
					"initial", string(t.Initial), "final", string(t.Final))
			}
			continue
		}
		kept = append(kept, t)
	}
	l.transitions = kept
}

func isFiniteLog(p float64) bool {
	lp := math.Log(p)
	return !math.IsNaN(lp) && !math.IsInf(lp, 0)
}

// reduce sums ln(prob) over all surviving transitions using a worker pool
// of size l.threads and an index-addressed results slice. Each worker
// writes only to the index it was handed, so the final fold needs no
// lock and the summation order is deterministic (ascending index).
func (l *Likelihood) reduce(params map[string]float64) float64 {
	n := len(l.transitions)
	if n == 0 {
		return 0
	}

	results := make([]float64, n)
	jobs := make(chan int)

	workers := l.threads
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := l.transitions[i].Prob(params, l.targetInterval)
				results[i] = math.Log(p)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sum := 0.0
	for _, r := range results {
		sum += r
	}
	return sum
}

// LogPrior evaluates ln(pdf_family((value-mean)/sd) / sd) for the named
// parameter's configured prior.
func (l *Likelihood) LogPrior(name string, value float64) (float64, error) {
	prior, ok := l.priors[name]
	if !ok {
		return 0, stmerr.New(stmerr.ParameterError, "no prior configured for %q", name)
	}
	switch prior.Family {
	case parameters.Normal:
		n := distuv.Normal{Mu: prior.Mean, Sigma: prior.SD}
		return n.LogProb(value), nil
	case parameters.Cauchy:
		z := (value - prior.Mean) / prior.SD
		pdf := 1 / (math.Pi * prior.SD * (1 + z*z))
		return math.Log(pdf), nil
	default:
		return 0, stmerr.New(stmerr.ParameterError, "unsupported prior family for %q", name)
	}
}

// TransitionCount returns the number of transitions still participating
// in the reduction (post self-check).
func (l *Likelihood) TransitionCount() int { return len(l.transitions) }

// Threads returns the configured worker-pool size.
func (l *Likelihood) Threads() int { return l.threads }

// TargetInterval returns the configured rescaling target interval.
func (l *Likelihood) TargetInterval() int { return l.targetInterval }

// SourceFile returns the transition file name recorded for provenance.
func (l *Likelihood) SourceFile() string { return l.sourceFile }

// Serialize renders the Likelihood resume block's inner lines:
// transitionFileName, likelihoodThreads, targetInterval, prevalenceModel,
// then priorMeans/priorSD/priorFamily in parNames order.
func (l *Likelihood) Serialize(sep byte, parNames []string, prevalenceModel int) []string {
	sp := string(sep)
	means := make([]string, len(parNames))
	sds := make([]string, len(parNames))
	families := make([]string, len(parNames))
	for i, name := range parNames {
		prior, ok := l.priors[name]
		if !ok {
			continue
		}
		means[i] = fmtFloat(prior.Mean)
		sds[i] = fmtFloat(prior.SD)
		families[i] = fmtInt(int(prior.Family))
	}
	return []string{
		"transitionFileName" + sp + l.sourceFile,
		"likelihoodThreads" + sp + fmtInt(l.threads),
		"targetInterval" + sp + fmtInt(l.targetInterval),
		"prevalenceModel" + sp + fmtInt(prevalenceModel),
		"priorMeans" + sp + joinStrings(means, sp),
		"priorSD" + sp + joinStrings(sds, sp),
		"priorFamily" + sp + joinStrings(families, sp),
	}
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
func fmtInt(v int) string       { return strconv.Itoa(v) }
func joinStrings(parts []string, sep string) string { return strings.Join(parts, sep) }
