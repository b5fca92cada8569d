// Package engine implements the adaptive Metropolis-Hastings driver: the
// single piece that proposes one parameter at a time, calls the
// likelihood to accept or reject it, adapts proposal variance toward a
// target acceptance rate, and pushes burned-in, thinned posterior
// samples to a sink. A run walks a fixed sequence of phases (Adaptation
// -> Burnin -> Sampling -> DICFinalize) tracked by a Phase enum.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quiccfor/stmmcmc/pkg/input"
	"github.com/quiccfor/stmmcmc/pkg/mt19937"
	"github.com/quiccfor/stmmcmc/pkg/reporting"
	"github.com/quiccfor/stmmcmc/pkg/sink"
	"github.com/quiccfor/stmmcmc/pkg/stm/likelihood"
	"github.com/quiccfor/stmmcmc/pkg/stm/parameters"
	"github.com/quiccfor/stmmcmc/pkg/stmerr"
)

const resumeVersion = "Metropolis1.5"

const (
	defaultOutputBufferSize     = 500
	defaultAdaptationSampleSize = 500
	defaultMinAdaptationLoops   = 5
	defaultMaxAdaptationLoops   = 25

	regressionSteps    = 10
	regressionStepSize = 100

	// Gamma with mean 2.38, sd 2: shape = (mean/sd)^2, scale = sd^2/mean.
	gammaShape = 1.4161
	gammaScale = 1.681

	minAcceptanceFloor = 0.01
)

// Phase names one state of the run's state machine:
//
//	Init -> (resume? ResumeLoaded : FreshStart)
//	     -> (adapted()? Skip : Adaptation)
//	     -> Burnin -> Sampling -> (compute_DIC? DICFinalize) -> Done
type Phase int

const (
	PhaseInit Phase = iota
	PhaseResumeLoaded
	PhaseFreshStart
	PhaseAdaptation
	PhaseBurnin
	PhaseSampling
	PhaseDICFinalize
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseResumeLoaded:
		return "ResumeLoaded"
	case PhaseFreshStart:
		return "FreshStart"
	case PhaseAdaptation:
		return "Adaptation"
	case PhaseBurnin:
		return "Burnin"
	case PhaseSampling:
		return "Sampling"
	case PhaseDICFinalize:
		return "DICFinalize"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Config configures one sampling run. Tunables left at zero fall back to
// their defaults.
type Config struct {
	Thin                 int
	Burnin               int
	OutputBufferSize     int
	AdaptationSampleSize int
	MinAdaptationLoops   int
	MaxAdaptationLoops   int
	ComputeDIC           bool
	OutputLevel          reporting.OutputLevel

	RNGSetSeed bool
	RNGSeed    int64

	// SaveResumeData requests a final checkpoint push after run_sampler
	// completes, in addition to any checkpoint triggered by an interrupt.
	SaveResumeData bool
	// PrevalenceModel and Separator are carried only for serialization
	// (the Likelihood block's prevalenceModel field and the braced-block
	// field separator); the engine itself never interprets them.
	PrevalenceModel int
	Separator       byte

	// OutputDir and SinkKind are carried only for the OutputOptions
	// resume block; the engine never touches the filesystem itself.
	OutputDir string
	SinkKind  string
}

func (c *Config) applyDefaults() {
	if c.OutputBufferSize <= 0 {
		c.OutputBufferSize = defaultOutputBufferSize
	}
	if c.AdaptationSampleSize <= 0 {
		c.AdaptationSampleSize = defaultAdaptationSampleSize
	}
	if c.MinAdaptationLoops <= 0 {
		c.MinAdaptationLoops = defaultMinAdaptationLoops
	}
	if c.MaxAdaptationLoops <= 0 {
		c.MaxAdaptationLoops = defaultMaxAdaptationLoops
	}
	if c.Separator == 0 {
		c.Separator = ' '
	}
}

type deviancePoint struct {
	value float64
	count float64
}

// Engine is the single-chain, componentwise adaptive Metropolis-Hastings
// driver. It owns the live ParametersState, the RNG, and the scratch
// sample buffers; it borrows the Likelihood and the SampleSink.
type Engine struct {
	cfg      Config
	params   *parameters.State
	lik      *likelihood.Likelihood
	snk      *sink.Sink
	progress *reporting.ProgressReporter

	rng *rand.Rand
	src *mt19937.Source

	phase Phase

	currentLL        float64
	currentPosterior float64

	dBarSum float64
	dBarN   float64

	thetaBar  map[string]float64
	thetaBarN float64

	devianceBuf []deviancePoint

	burninCompleted int
}

// New constructs a fresh Engine. Construction fails with InvalidConfig if
// sink or likelihood is nil or thin < 1.
func New(cfg Config, params *parameters.State, lik *likelihood.Likelihood, snk *sink.Sink, progress *reporting.ProgressReporter) (*Engine, error) {
	if snk == nil {
		return nil, stmerr.New(stmerr.InvalidConfig, "engine requires a non-nil sample sink")
	}
	if lik == nil {
		return nil, stmerr.New(stmerr.InvalidConfig, "engine requires a non-nil likelihood")
	}
	if params == nil {
		return nil, stmerr.New(stmerr.InvalidConfig, "engine requires a non-nil parameters state")
	}
	if cfg.Thin < 1 {
		return nil, stmerr.New(stmerr.InvalidConfig, "thin must be >= 1, got %d", cfg.Thin)
	}
	cfg.applyDefaults()

	e := &Engine{
		cfg:      cfg,
		params:   params,
		lik:      lik,
		snk:      snk,
		progress: progress,
		thetaBar: map[string]float64{},
		phase:    PhaseInit,
	}
	e.seedRNG()
	return e, nil
}

func (e *Engine) seedRNG() {
	seed := e.cfg.RNGSeed
	if !e.cfg.RNGSetSeed {
		seed = time.Now().UnixNano()
	}
	e.src = mt19937.New(seed)
	e.rng = rand.New(e.src)
}

// Phase reports the engine's current run-state-machine phase.
func (e *Engine) Phase() Phase { return e.phase }

// CurrentLogLikelihood returns the cached log-likelihood of the current
// parameter state.
func (e *Engine) CurrentLogLikelihood() float64 { return e.currentLL }

// CurrentLogPosterior returns the cached log-posterior contribution from
// the most recently accepted proposal.
func (e *Engine) CurrentLogPosterior() float64 { return e.currentPosterior }

// Parameters exposes the engine's owned parameter state.
func (e *Engine) Parameters() *parameters.State { return e.params }

// RunSampler drives the full run: pre-adapt if needed, burn in, sample n
// post-burn-in draws (pushed to the sink in batches of at most
// OutputBufferSize), and finalize DIC if configured.
func (e *Engine) RunSampler(n int) error {
	e.currentLL = e.lik.LogLikelihood(e.params.CurrentState())
	e.currentPosterior = e.currentLL

	// A resumed run never re-enters adaptation: the chain's variance
	// tuning was settled before the checkpoint, and re-adapting would
	// reset parameters and fork the continuation off the original
	// stream.
	resumed := e.phase == PhaseResumeLoaded
	if !resumed {
		e.phase = PhaseFreshStart
	}

	if !resumed && !e.params.Adapted() {
		e.progress.Phase(e.phase.String(), PhaseAdaptation.String())
		e.phase = PhaseAdaptation
		e.adapt()
	}

	e.progress.Phase(e.phase.String(), PhaseBurnin.String())
	e.phase = PhaseBurnin
	for e.burninCompleted < e.cfg.Burnin {
		batchSize := e.cfg.OutputBufferSize
		if remaining := e.cfg.Burnin - e.burninCompleted; remaining < batchSize {
			batchSize = remaining
		}
		e.doSample(batchSize, false)
		e.burninCompleted += batchSize
	}

	e.progress.Phase(e.phase.String(), PhaseSampling.String())
	e.phase = PhaseSampling
	completed := 0
	for completed < n {
		batchSize := e.cfg.OutputBufferSize
		if remaining := n - completed; remaining < batchSize {
			batchSize = remaining
		}
		_, samples := e.doSample(batchSize, e.cfg.ComputeDIC)
		e.snk.Push(sink.Record{Kind: sink.Posterior, Names: e.params.AllNames(), Batch: samples})
		if e.cfg.ComputeDIC {
			e.prepareDeviance(samples)
		}
		completed += batchSize
		e.progress.Iteration(e.params.Iteration(), e.currentLL)
		e.progress.ParameterDump(e.params.CurrentState())
	}

	if e.cfg.ComputeDIC {
		e.phase = PhaseDICFinalize
		summary := e.finalizeDIC()
		e.progress.DIC(summary)
		e.snk.Push(sink.Record{Kind: sink.DIC, Payload: formatDICPayload(summary)})
	}

	if e.cfg.SaveResumeData {
		e.Checkpoint()
	}

	e.phase = PhaseDone
	return nil
}

// Checkpoint pushes a ResumeData record carrying the engine's full
// serialized state to the sink. It is safe to call from the emergency
// controller's OnStop callback as well as from RunSampler's own final
// checkpoint step.
func (e *Engine) Checkpoint() {
	e.snk.Push(sink.Record{Kind: sink.ResumeData, Payload: e.Serialize()})
}

// doSample runs m thinned sweeps over the shuffled active parameter
// order: the order is chosen once per call, every sweep proposes/accepts
// each active parameter thin times, and the resulting state is recorded
// once per sweep.
func (e *Engine) doSample(m int, saveDeviance bool) (map[string]float64, []map[string]float64) {
	active := e.params.ActiveNames()
	order := append([]string(nil), active...)
	e.shuffle(order)

	accepts := make(map[string]int, len(active))

	samples := make([]map[string]float64, 0, m)
	for i := 0; i < m; i++ {
		for t := 0; t < e.cfg.Thin; t++ {
			for _, name := range order {
				if e.proposeAndAccept(name) {
					accepts[name]++
				}
			}
		}
		e.params.Increment(1)
		samples = append(samples, e.params.CurrentState())
		if saveDeviance {
			e.devianceBuf = append(e.devianceBuf, deviancePoint{value: -2 * e.currentLL, count: 1})
		}
	}

	denom := float64(m * e.cfg.Thin)
	rates := make(map[string]float64, len(active))
	for _, name := range active {
		if denom > 0 {
			rates[name] = float64(accepts[name]) / denom
		}
	}
	e.params.SetAcceptanceRates(rates)
	return rates, samples
}

// proposeAndAccept draws a Gaussian-random-walk candidate for one
// parameter and accepts or rejects it via the Metropolis ratio. A NaN
// acceptance ratio degrades to rejection.
func (e *Engine) proposeAndAccept(name string) bool {
	variance, err := e.params.SamplerVariance(name)
	if err != nil {
		return false
	}
	current, err := e.params.At(name)
	if err != nil {
		return false
	}

	candidate := current + e.rng.NormFloat64()*math.Sqrt(variance)

	trial := e.params.Clone()
	if err := trial.Update(name, candidate); err != nil {
		return false
	}

	trialLL := e.lik.LogLikelihood(trial.CurrentState())
	trialPrior, err := e.lik.LogPrior(name, candidate)
	if err != nil {
		return false
	}
	trialLogPost := trialLL + trialPrior

	currentPrior, err := e.lik.LogPrior(name, current)
	if err != nil {
		return false
	}
	currentLogPost := e.currentLL + currentPrior

	a := math.Exp(trialLogPost - currentLogPost)
	if math.IsNaN(a) {
		a = 0
	}

	if e.rng.Float64() < a {
		_ = e.params.Update(name, candidate)
		e.currentLL = trialLL
		e.currentPosterior = trialLogPost
		return true
	}
	return false
}

// shuffle performs an in-place Fisher-Yates shuffle using the engine's
// RNG.
func (e *Engine) shuffle(s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := e.rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// prepareDeviance folds a sampling batch's per-iteration deviance points
// (plus the prior DBar, treated as one more weighted point) into a new
// DBar, then rolls the batch's parameter means into theta_bar.
func (e *Engine) prepareDeviance(batch []map[string]float64) {
	if e.dBarN > 0 {
		e.devianceBuf = append(e.devianceBuf, deviancePoint{value: e.dBarSum / e.dBarN, count: e.dBarN})
	}

	sum, n := 0.0, 0.0
	for _, p := range e.devianceBuf {
		sum += p.value * p.count
		n += p.count
	}
	e.dBarSum = sum
	e.dBarN = n
	e.devianceBuf = e.devianceBuf[:0]

	batchMean := meanOfBatch(batch)
	batchSize := float64(len(batch))
	newN := e.thetaBarN + batchSize
	if newN > 0 {
		for name, v := range batchMean {
			e.thetaBar[name] = (e.thetaBar[name]*e.thetaBarN + v*batchSize) / newN
		}
	}
	e.thetaBarN = newN
}

func meanOfBatch(batch []map[string]float64) map[string]float64 {
	sums := map[string]float64{}
	for _, row := range batch {
		for k, v := range row {
			sums[k] += v
		}
	}
	n := float64(len(batch))
	if n == 0 {
		return sums
	}
	for k := range sums {
		sums[k] /= n
	}
	return sums
}

// finalizeDIC computes D(theta-bar), pD = DBar - D(theta-bar), and
// DIC = D(theta-bar) + 2*pD from the accumulated mean deviance and
// theta_bar.
func (e *Engine) finalizeDIC() reporting.DICSummary {
	thetaBarState := e.params.Clone()
	for name, v := range e.thetaBar {
		_ = thetaBarState.Update(name, v)
	}
	dThetaBar := -2 * e.lik.LogLikelihood(thetaBarState.CurrentState())

	meanDeviance := 0.0
	if e.dBarN > 0 {
		meanDeviance = e.dBarSum / e.dBarN
	}
	pD := meanDeviance - dThetaBar
	dic := dThetaBar + 2*pD

	return reporting.DICSummary{
		PD:             pD,
		MeanDeviance:   meanDeviance,
		DevianceOfMean: dThetaBar,
		DIC:            dic,
	}
}

func formatDICPayload(d reporting.DICSummary) string {
	return reporting.FormatDIC(d)
}

// regressionRecord is one (variance, ln variance, acceptance) triple
// gathered during one regression-adaptation step for one parameter.
type regressionRecord struct {
	variance    float64
	logVariance float64
	acceptance  float64
}

// adapt runs the two-stage adaptation procedure: regression pre-adapt,
// then ratio adaptation until every active parameter's acceptance rate
// lands in the target interval (or the loop bound is reached).
func (e *Engine) adapt() {
	e.regressionAdapt()
	e.ratioAdapt()
}

func (e *Engine) regressionAdapt() {
	active := e.params.ActiveNames()
	if len(active) == 0 {
		return
	}
	history := make(map[string][]regressionRecord, len(active))
	gamma := distuv.Gamma{Alpha: gammaShape, Beta: 1 / gammaScale, Src: distSource{e.rng}}

	for step := 0; step < regressionSteps; step++ {
		rates, _ := e.doSample(regressionStepSize, false)
		for _, name := range active {
			v, _ := e.params.SamplerVariance(name)
			history[name] = append(history[name], regressionRecord{
				variance:    v,
				logVariance: math.Log(v),
				acceptance:  rates[name],
			})
			_ = e.params.SetSamplerVariance(name, gamma.Rand())
		}
	}

	optimal := e.params.OptimalAcceptanceRate()
	for _, name := range active {
		records := history[name]
		if len(records) < 2 {
			continue
		}
		variances := make([]float64, len(records))
		logVariances := make([]float64, len(records))
		acceptances := make([]float64, len(records))
		for i, r := range records {
			variances[i] = r.variance
			logVariances[i] = r.logVariance
			acceptances[i] = r.acceptance
		}

		corrLinear := safeCorrelation(acceptances, variances)
		corrLog := safeCorrelation(acceptances, logVariances)

		predictor, useLog := variances, false
		if math.Abs(corrLog) > math.Abs(corrLinear) {
			predictor, useLog = logVariances, true
		}

		alpha, beta := stat.LinearRegression(predictor, acceptances, nil, false)
		if beta == 0 {
			continue
		}
		x := (optimal - alpha) / beta
		if useLog {
			x = math.Exp(x)
		}
		_ = e.params.SetSamplerVariance(name, x)
	}
}

// distSource adapts the engine's *rand.Rand to the Uint64/Seed(uint64)
// source shape gonum's distuv samplers take, so Gamma draws come from the
// same Mersenne Twister stream as every other draw.
type distSource struct{ r *rand.Rand }

func (s distSource) Uint64() uint64 { return s.r.Uint64() }

func (s distSource) Seed(seed uint64) { s.r.Seed(int64(seed)) }

func safeCorrelation(a, b []float64) float64 {
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

func (e *Engine) ratioAdapt() {
	optimal := e.params.OptimalAcceptanceRate()
	savedThin := e.cfg.Thin
	e.cfg.Thin = 1
	defer func() { e.cfg.Thin = savedThin }()

	for loops := 0; loops < e.cfg.MinAdaptationLoops || (!e.params.Adapted() && loops < e.cfg.MaxAdaptationLoops); loops++ {
		rates, _ := e.doSample(e.cfg.AdaptationSampleSize, false)
		for name, rate := range rates {
			effective := rate
			if effective == 0 {
				effective = minAcceptanceFloor
			}
			v, _ := e.params.SamplerVariance(name)
			_ = e.params.SetSamplerVariance(name, v*(effective/optimal))
		}
		e.progress.AcceptanceTable(e.acceptanceRows())
	}

	e.params.Reset()
}

func (e *Engine) acceptanceRows() []reporting.AcceptanceRow {
	active := e.params.ActiveNames()
	rows := make([]reporting.AcceptanceRow, 0, len(active))
	for _, name := range active {
		v, _ := e.params.SamplerVariance(name)
		r, _ := e.params.AcceptanceRate(name)
		rows = append(rows, reporting.AcceptanceRow{
			Name:       name,
			Variance:   v,
			Acceptance: r,
			Adapted:    e.params.AdaptedName(name),
		})
	}
	return rows
}

// Serialize renders the full checkpoint: the Metropolis, Likelihood,
// Parameters, and OutputOptions braced blocks, in that order.
func (e *Engine) Serialize() string {
	var b strings.Builder
	writeBlock(&b, "Metropolis", e.metropolisLines())
	writeBlock(&b, "Likelihood", e.lik.Serialize(e.cfg.Separator, e.params.AllNames(), e.cfg.PrevalenceModel))
	writeBlock(&b, "Parameters", e.params.Serialize(e.cfg.Separator))
	writeBlock(&b, "OutputOptions", e.outputOptionsLines())
	return b.String()
}

func writeBlock(b *strings.Builder, name string, lines []string) {
	b.WriteString(name)
	b.WriteString(" {\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}

func (e *Engine) metropolisLines() []string {
	sp := string(e.cfg.Separator)
	lines := []string{
		"version" + sp + resumeVersion,
		"outputBufferSize" + sp + strconv.Itoa(e.cfg.OutputBufferSize),
		"thinSize" + sp + strconv.Itoa(e.cfg.Thin),
		"burnin" + sp + strconv.Itoa(e.cfg.Burnin),
		"burninCompleted" + sp + strconv.Itoa(e.burninCompleted),
		"adaptationSampleSize" + sp + strconv.Itoa(e.cfg.AdaptationSampleSize),
		"minAdaptationLoops" + sp + strconv.Itoa(e.cfg.MinAdaptationLoops),
		"maxAdaptationLoops" + sp + strconv.Itoa(e.cfg.MaxAdaptationLoops),
		"rngSetSeed" + sp + boolStr(e.cfg.RNGSetSeed),
		"rngSeed" + sp + strconv.FormatInt(e.cfg.RNGSeed, 10),
		"outputLevel" + sp + strconv.Itoa(int(e.cfg.OutputLevel)),
		"currentPosteriorProb" + sp + floatStr(e.currentPosterior),
		"currentLL" + sp + floatStr(e.currentLL),
		"computeDIC" + sp + boolStr(e.cfg.ComputeDIC),
		fmt.Sprintf("DBar%s%s%s%s", sp, floatStr(e.dBarSum), sp, floatStr(e.dBarN)),
	}
	for _, name := range e.params.AllNames() {
		lines = append(lines, "thetaBar_"+name+sp+floatStr(e.thetaBar[name]))
	}
	lines = append(lines, "thetaBar_sampSize"+sp+floatStr(e.thetaBarN))

	// The full Mersenne Twister word vector, so a resumed run continues
	// the stream from the interrupted position instead of reseeding.
	words, idx := e.src.ExportState()
	lines = append(lines, "rngStateIndex"+sp+strconv.Itoa(idx))
	stateFields := make([]string, len(words)+1)
	stateFields[0] = "rngState"
	for i, w := range words {
		stateFields[i+1] = strconv.FormatUint(uint64(w), 10)
	}
	lines = append(lines, strings.Join(stateFields, sp))
	return lines
}

func (e *Engine) outputOptionsLines() []string {
	sp := string(e.cfg.Separator)
	return []string{
		"outputDir" + sp + e.cfg.OutputDir,
		"sinkKind" + sp + e.cfg.SinkKind,
	}
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func floatStr(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// LoadResume rebuilds an Engine from a tokenized resume file. The
// Metropolis block's version field must exactly match the resume format
// version this engine writes, else load fails with
// ResumeVersionMismatch.
func LoadResume(blocks input.Blocks, lik *likelihood.Likelihood, snk *sink.Sink, progress *reporting.ProgressReporter) (*Engine, error) {
	metro, ok := blocks["Metropolis"]
	if !ok {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "resume file missing Metropolis block")
	}
	if version := firstField(metro, "version"); version != resumeVersion {
		return nil, stmerr.New(stmerr.ResumeVersionMismatch, "resume version %q does not match expected %q", version, resumeVersion)
	}

	paramsBlock, ok := blocks["Parameters"]
	if !ok {
		return nil, stmerr.New(stmerr.ResumeCorrupt, "resume file missing Parameters block")
	}
	params, err := parameters.FromResume(paramsBlock)
	if err != nil {
		return nil, err
	}

	cfg := Config{
		Thin:                 atoiField(metro, "thinSize"),
		Burnin:               atoiField(metro, "burnin"),
		OutputBufferSize:     atoiField(metro, "outputBufferSize"),
		AdaptationSampleSize: atoiField(metro, "adaptationSampleSize"),
		MinAdaptationLoops:   atoiField(metro, "minAdaptationLoops"),
		MaxAdaptationLoops:   atoiField(metro, "maxAdaptationLoops"),
		RNGSetSeed:           boolField(metro, "rngSetSeed"),
		RNGSeed:              int64(atoiField(metro, "rngSeed")),
		OutputLevel:          reporting.OutputLevel(atoiField(metro, "outputLevel")),
		ComputeDIC:           boolField(metro, "computeDIC"),
		Separator:            ' ',
	}
	if outOpts, ok := blocks["OutputOptions"]; ok {
		cfg.OutputDir = firstField(outOpts, "outputDir")
		cfg.SinkKind = firstField(outOpts, "sinkKind")
	}

	e, err := New(cfg, params, lik, snk, progress)
	if err != nil {
		return nil, err
	}
	e.phase = PhaseResumeLoaded
	e.currentPosterior = floatField(metro, "currentPosteriorProb")
	e.currentLL = floatField(metro, "currentLL")
	e.burninCompleted = atoiField(metro, "burninCompleted")

	if stateWords := metro["rngState"]; len(stateWords) > 0 {
		words := make([]uint32, len(stateWords))
		for i, w := range stateWords {
			v, err := strconv.ParseUint(w, 10, 32)
			if err != nil {
				return nil, stmerr.Wrap(stmerr.ResumeCorrupt, err, "parsing rngState word %d", i)
			}
			words[i] = uint32(v)
		}
		if err := e.src.RestoreState(words, atoiField(metro, "rngStateIndex")); err != nil {
			return nil, stmerr.Wrap(stmerr.ResumeCorrupt, err, "restoring rng state")
		}
	}

	if dbar := metro["DBar"]; len(dbar) == 2 {
		e.dBarSum = parseFloatOrZero(dbar[0])
		e.dBarN = parseFloatOrZero(dbar[1])
	}
	for _, name := range params.AllNames() {
		e.thetaBar[name] = floatField(metro, "thetaBar_"+name)
	}
	e.thetaBarN = floatField(metro, "thetaBar_sampSize")

	return e, nil
}

func firstField(block map[string][]string, key string) string {
	fields := block[key]
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func atoiField(block map[string][]string, key string) int {
	v, _ := strconv.Atoi(firstField(block, key))
	return v
}

func boolField(block map[string][]string, key string) bool {
	f := firstField(block, key)
	return f == "1" || strings.EqualFold(f, "true")
}

func floatField(block map[string][]string, key string) float64 {
	return parseFloatOrZero(firstField(block, key))
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
