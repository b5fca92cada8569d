package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quiccfor/stmmcmc/pkg/emergency"
	"github.com/quiccfor/stmmcmc/pkg/input"
	"github.com/quiccfor/stmmcmc/pkg/output"
	"github.com/quiccfor/stmmcmc/pkg/reporting"
	"github.com/quiccfor/stmmcmc/pkg/stm/engine"
	"github.com/quiccfor/stmmcmc/pkg/stm/likelihood"
	"github.com/quiccfor/stmmcmc/pkg/stm/model"
	"github.com/quiccfor/stmmcmc/pkg/stm/parameters"
	"github.com/quiccfor/stmmcmc/pkg/stm/transition"

	"github.com/quiccfor/stmmcmc/pkg/sink"
)

var runFlags struct {
	parameters     string
	transitions    string
	outputDir      string
	thin           int
	burnin         int
	iterations     int
	workers        int
	targetInterval int
	verbosity      string
	resume         string
	sinkKind       string
	modelVariant   string
	seed           int64
	seedSet        bool
	cubic          bool
	prevalence     string
	computeDIC     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the adaptive Metropolis-Hastings sampler to completion",
	RunE:  runSampler,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.parameters, "parameters", "", "path to the parameter CSV file (required)")
	f.StringVar(&runFlags.transitions, "transitions", "", "path to the transition CSV file (required)")
	f.StringVar(&runFlags.outputDir, "output-dir", "", "directory for posterior/checkpoint/DIC output (default: config output.dir)")
	f.IntVar(&runFlags.thin, "thin", 1, "record one draw every N sweeps (1 records every sweep)")
	f.IntVar(&runFlags.burnin, "burnin", 0, "number of post-adaptation draws to discard before sampling")
	f.IntVar(&runFlags.iterations, "iterations", 1000, "number of post-burn-in draws to record")
	f.IntVar(&runFlags.workers, "workers", 0, "likelihood worker pool size (default: config sampler.workers)")
	f.IntVar(&runFlags.targetInterval, "target-interval", 0, "rescaling target interval in years (default: config sampler.target_interval)")
	f.StringVar(&runFlags.verbosity, "verbosity", "normal", "progress verbosity: quiet|normal|talkative|verbose|extra-verbose")
	f.StringVar(&runFlags.resume, "resume", "", "path to a checkpoint file to resume from")
	f.StringVar(&runFlags.sinkKind, "sink", "", "posterior output sink: stdout|csv (default: config output.sink)")
	f.StringVar(&runFlags.modelVariant, "model", "twostate", "landscape model variant: twostate|fourstate")
	f.Int64Var(&runFlags.seed, "seed", 0, "RNG seed (only used if --seed-set is also given)")
	f.BoolVar(&runFlags.seedSet, "seed-set", false, "pin the RNG seed to --seed instead of seeding from the clock")
	f.BoolVar(&runFlags.cubic, "cubic", false, "use cubic gamma/epsilon polynomials for the two-state variant")
	f.StringVar(&runFlags.prevalence, "prevalence-model", "empirical", "expected-prevalence source: empirical|stm|global")
	f.BoolVar(&runFlags.computeDIC, "compute-dic", false, "compute and report the deviance information criterion")

	_ = runCmd.MarkFlagRequired("parameters")
	_ = runCmd.MarkFlagRequired("transitions")
}

func runSampler(cmd *cobra.Command, args []string) error {
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevel(globalCfg.Logging.Level),
		Format: reporting.LogFormat(globalCfg.Logging.Format),
	})

	level, err := reporting.ParseOutputLevel(runFlags.verbosity)
	if err != nil {
		return err
	}
	progress := reporting.NewProgressReporter(level, logger)

	outputDir := runFlags.outputDir
	if outputDir == "" {
		outputDir = globalCfg.Output.Dir
	}
	sinkKindFlag := runFlags.sinkKind
	if sinkKindFlag == "" {
		sinkKindFlag = globalCfg.Output.Sink
	}
	sinkKind, err := output.ParseKind(sinkKindFlag)
	if err != nil {
		return err
	}

	variant, err := parseModelVariant(runFlags.modelVariant)
	if err != nil {
		return err
	}
	registry := model.New(variant, runFlags.cubic)

	prevalence, err := parsePrevalenceModel(runFlags.prevalence)
	if err != nil {
		return err
	}
	if prevalence == transition.STM {
		progress.Warn("STM prevalence model is currently a no-op; falling back to Empirical")
	}

	pf, err := input.ParseParameterFile(runFlags.parameters)
	if err != nil {
		return fmt.Errorf("parsing parameter file: %w", err)
	}
	transitions, err := input.ParseTransitionFile(runFlags.transitions, registry, prevalence)
	if err != nil {
		return fmt.Errorf("parsing transition file: %w", err)
	}

	workers := runFlags.workers
	if workers <= 0 {
		workers = globalCfg.Sampler.Workers
	}
	targetInterval := runFlags.targetInterval
	if targetInterval <= 0 {
		targetInterval = globalCfg.Sampler.TargetInterval
	}

	lik, err := likelihood.New(transitions, pf.Priors, workers, targetInterval, runFlags.transitions, progress)
	if err != nil {
		return fmt.Errorf("building likelihood: %w", err)
	}

	snk := sink.New()
	writer, err := output.New(outputDir, sinkKind, logger)
	if err != nil {
		return fmt.Errorf("creating output writer: %w", err)
	}

	cfg := engine.Config{
		Thin:            runFlags.thin,
		Burnin:          runFlags.burnin,
		ComputeDIC:      runFlags.computeDIC,
		OutputLevel:     level,
		RNGSetSeed:      runFlags.seedSet,
		RNGSeed:         runFlags.seed,
		SaveResumeData:  true,
		PrevalenceModel: int(prevalence),
		Separator:       ' ',
		OutputDir:       outputDir,
		SinkKind:        sinkKindFlag,
	}

	var eng *engine.Engine
	if runFlags.resume != "" {
		blocks, err := input.ParseResumeFile(runFlags.resume)
		if err != nil {
			return fmt.Errorf("parsing resume file: %w", err)
		}
		eng, err = engine.LoadResume(blocks, lik, snk, progress)
		if err != nil {
			return fmt.Errorf("loading resume file: %w", err)
		}
	} else {
		params, err := parameters.New(pf.Settings)
		if err != nil {
			return fmt.Errorf("building parameter state: %w", err)
		}
		eng, err = engine.New(cfg, params, lik, snk, progress)
		if err != nil {
			return fmt.Errorf("constructing engine: %w", err)
		}
	}

	ctrl := emergency.New(emergency.Config{EnableSignalHandlers: true})
	ctrl.OnStop(func() {
		logger.Warn("interrupt received, writing final checkpoint")
		eng.Checkpoint()
		snk.Close()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	drainDone := make(chan error, 1)
	go func() { drainDone <- writer.Drain(snk) }()

	start := time.Now()
	runErr := eng.RunSampler(runFlags.iterations)
	if !ctrl.IsStopped() {
		snk.Close()
	}
	<-drainDone

	logger.Info("sampling run finished", "elapsed", time.Since(start).String(), "phase", eng.Phase().String())
	return runErr
}
