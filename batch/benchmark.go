package batch

import (
	"context"
	"time"
)

// BenchmarkConfig configures a prepare, run, validate cycle.
type BenchmarkConfig struct {
	Prepare   bool
	Synthetic SyntheticConfig
	Apriori   AprioriConfig
	Validate  bool
}

// BenchmarkResult captures stage durations.
type BenchmarkResult struct {
	Run              AprioriResult
	PrepareDuration  time.Duration
	PipelineDuration time.Duration
	ValidateDuration time.Duration
	TotalDuration    time.Duration
}

// RunBenchmark optionally generates the input, runs both phases and then
// checks the committed outputs against a sequential recount.
func RunBenchmark(ctx context.Context, cfg BenchmarkConfig) (BenchmarkResult, error) {
	var result BenchmarkResult
	startAll := time.Now()

	if cfg.Prepare {
		s := time.Now()
		if cfg.Synthetic.Path == "" && len(cfg.Apriori.Inputs) > 0 {
			cfg.Synthetic.Path = cfg.Apriori.Inputs[0]
		}
		if err := PrepareSyntheticTransactions(cfg.Synthetic); err != nil {
			return result, err
		}
		if len(cfg.Apriori.Inputs) == 0 {
			cfg.Apriori.Inputs = []string{cfg.Synthetic.Path}
		}
		result.PrepareDuration = time.Since(s)
	}

	s := time.Now()
	run, err := RunApriori(ctx, cfg.Apriori)
	if err != nil {
		return result, err
	}
	result.Run = run
	result.PipelineDuration = time.Since(s)

	if cfg.Validate {
		s = time.Now()
		if err := ValidateItemsets(cfg.Apriori.Inputs, cfg.Apriori.OutputRoot, cfg.Apriori.MinSupport); err != nil {
			return result, err
		}
		result.ValidateDuration = time.Since(s)
	}

	result.TotalDuration = time.Since(startAll)
	return result, nil
}
