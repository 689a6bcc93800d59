package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mapreduce "github.com/emptyOVO/freqset-go"
	"github.com/emptyOVO/freqset-go/mrapps/apriori"
	"github.com/emptyOVO/freqset-go/mrapps/traffic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Phases are the itemset sizes counted by RunApriori, in run order.
var Phases = []int{1, 2}

// AprioriResult reports the committed phases of one run.
type AprioriResult struct {
	RunID         string
	Phases        []mapreduce.JobResult
	TotalDuration time.Duration
}

// RunApriori counts frequent 1-itemsets and then frequent 2-itemsets per
// country. Both phases scan the full input; the second does not use the
// first's result. Every phase output under OutputRoot is removed before the
// first phase starts, so a failed run never leaves a mix of old and new
// phases behind. A failed phase aborts the run, and sinks are only fed once
// both phases are committed.
func RunApriori(ctx context.Context, cfg AprioriConfig) (AprioriResult, error) {
	started := time.Now()
	res := AprioriResult{RunID: uuid.New().String()}

	cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return res, err
	}
	files, err := mapreduce.ExpandInputs(cfg.Inputs)
	if err != nil {
		return res, err
	}

	var health *HealthReporter
	if cfg.HealthAddr != "" {
		names := make([]string, 0, len(Phases))
		for _, k := range Phases {
			names = append(names, apriori.PhaseName(k))
		}
		health, err = StartHealthServer(cfg.HealthAddr, names...)
		if err != nil {
			return res, fmt.Errorf("start health server: %w", err)
		}
		defer health.Stop()
	}

	log.Infof("[Pipeline] run %s: %d input file(s), min support %d, %d shard(s)", res.RunID, len(files), cfg.MinSupport, cfg.Shards)
	for _, k := range Phases {
		if err := os.RemoveAll(filepath.Join(cfg.OutputRoot, apriori.PhaseName(k))); err != nil {
			return res, fmt.Errorf("clean output %s: %w", apriori.PhaseName(k), err)
		}
	}
	for _, k := range Phases {
		job := apriori.NewCountingJob(k, cfg.MinSupport, cfg.Shards)
		jr, err := cfg.Runner.Run(ctx, mapreduce.JobConfig{
			Job:        job,
			Inputs:     files,
			Output:     filepath.Join(cfg.OutputRoot, job.Name),
			Workers:    cfg.Workers,
			InRAM:      cfg.InRAM,
			SpillDir:   cfg.SpillDir,
			SplitLines: cfg.SplitLines,
			RunID:      res.RunID,
			Meta: map[string]interface{}{
				"k":           int64(k),
				"min_support": int64(cfg.MinSupport),
			},
		})
		if err != nil {
			health.NotServing(job.Name)
			return res, fmt.Errorf("phase %s: %w", job.Name, err)
		}
		health.Serving(job.Name)
		log.Infof("[Pipeline] phase %s committed %d frequent itemset(s)", job.Name, jr.Records)
		res.Phases = append(res.Phases, jr)
	}

	if err := exportSinks(ctx, cfg.Sinks, res.Phases); err != nil {
		return res, err
	}
	res.TotalDuration = time.Since(started)
	return res, nil
}

// RunTraffic sums volume per ip, download records into part-r-00000 and
// everything else into part-r-00001.
func RunTraffic(ctx context.Context, cfg TrafficConfig) (mapreduce.JobResult, error) {
	cfg.withDefaults()
	if len(cfg.Inputs) == 0 {
		return mapreduce.JobResult{}, fmt.Errorf("input path is required")
	}
	if cfg.Output == "" {
		return mapreduce.JobResult{}, fmt.Errorf("output path is required")
	}
	files, err := mapreduce.ExpandInputs(cfg.Inputs)
	if err != nil {
		return mapreduce.JobResult{}, err
	}
	return cfg.Runner.Run(ctx, mapreduce.JobConfig{
		Job:        traffic.NewJob(),
		Inputs:     files,
		Output:     cfg.Output,
		Workers:    cfg.Workers,
		InRAM:      cfg.InRAM,
		SpillDir:   cfg.SpillDir,
		SplitLines: cfg.SplitLines,
	})
}
