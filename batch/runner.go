package batch

import (
	"context"

	mapreduce "github.com/emptyOVO/freqset-go"
)

// Runner abstracts the execution substrate of a single map-reduce job.
type Runner interface {
	Run(ctx context.Context, cfg mapreduce.JobConfig) (mapreduce.JobResult, error)
}

// InProcessRunner runs jobs on this machine with goroutine workers.
type InProcessRunner struct{}

func (InProcessRunner) Run(ctx context.Context, cfg mapreduce.JobConfig) (mapreduce.JobResult, error) {
	if err := ctx.Err(); err != nil {
		return mapreduce.JobResult{Name: cfg.Job.Name, Output: cfg.Output}, err
	}
	return mapreduce.StartSingleMachineJob(ctx, cfg)
}

var defaultRunner Runner = InProcessRunner{}

// SetDefaultRunner overrides the process-wide runtime strategy.
func SetDefaultRunner(r Runner) {
	if r == nil {
		return
	}
	defaultRunner = r
}

// DefaultRunner returns the current process-wide runtime strategy.
func DefaultRunner() Runner {
	return defaultRunner
}
