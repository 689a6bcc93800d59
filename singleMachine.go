package mapreduce

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/emptyOVO/freqset-go/worker"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// JobConfig describes one in-process map-reduce run.
type JobConfig struct {
	Job        worker.Job
	Inputs     []string
	Output     string
	Workers    int
	InRAM      bool
	SpillDir   string
	SplitLines int
	RunID      string
	// Meta is copied into the _SUCCESS manifest. Values must be accepted by
	// structpb.NewValue.
	Meta map[string]interface{}
}

func (c *JobConfig) withDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.SplitLines <= 0 {
		c.SplitLines = 10000
	}
	if c.RunID == "" {
		c.RunID = uuid.New().String()
	}
}

// JobResult summarises a committed job output.
type JobResult struct {
	Name     string
	Output   string
	Parts    []string
	Records  int
	Duration time.Duration
}

// StartSingleMachineJob runs cfg.Job over cfg.Inputs and commits one
// part-r-NNNNN file per reducer plus a _SUCCESS manifest into cfg.Output.
// Any previous output is removed first; on failure nothing is left behind.
func StartSingleMachineJob(ctx context.Context, cfg JobConfig) (JobResult, error) {
	cfg.withDefaults()
	res := JobResult{Name: cfg.Job.Name, Output: cfg.Output}
	if cfg.Output == "" {
		return res, fmt.Errorf("job %s: output path is required", cfg.Job.Name)
	}
	if len(cfg.Inputs) == 0 {
		return res, fmt.Errorf("job %s: no input files", cfg.Job.Name)
	}
	started := time.Now()
	log.Infof("[Job] %s start: %d input file(s) -> %s", cfg.Job.Name, len(cfg.Inputs), cfg.Output)

	if err := os.RemoveAll(cfg.Output); err != nil {
		return res, fmt.Errorf("job %s: clean output: %w", cfg.Job.Name, err)
	}

	shards, wr, err := runSingleMachineJob(ctx, cfg)
	if err != nil {
		log.Errorf("[Job] %s failed: %v", cfg.Job.Name, err)
		return res, err
	}

	parts, records, err := commitOutput(cfg, wr, shards, started)
	if err != nil {
		log.Errorf("[Job] %s commit failed: %v", cfg.Job.Name, err)
		return res, fmt.Errorf("job %s: commit output: %w", cfg.Job.Name, err)
	}
	res.Parts = parts
	res.Records = records
	res.Duration = time.Since(started)
	log.Infof("[Job] %s done: %d record(s) in %s", cfg.Job.Name, records, res.Duration)
	return res, nil
}

func runSingleMachineJob(ctx context.Context, cfg JobConfig) ([][]worker.KV, *worker.Worker, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	splits := make(chan worker.Split, cfg.Workers)
	feedErr := make(chan error, 1)
	go func() {
		err := feedSplits(ctx, cfg.Inputs, cfg.SplitLines, splits)
		if err != nil {
			cancel()
		}
		feedErr <- err
	}()

	wr := worker.New(cfg.Job, cfg.Workers, cfg.InRAM)
	if cfg.SpillDir != "" {
		wr.SpillDir = cfg.SpillDir
	}
	shards, runErr := wr.Run(ctx, splits)
	if runErr != nil {
		cancel()
	}
	if err := <-feedErr; err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", cfg.Job.Name, err)
	}
	if runErr != nil {
		return nil, nil, fmt.Errorf("job %s: %w", cfg.Job.Name, runErr)
	}
	return shards, wr, nil
}

func commitOutput(cfg JobConfig, wr *worker.Worker, shards [][]worker.KV, started time.Time) ([]string, int, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return nil, 0, err
	}
	tmpDir, err := os.MkdirTemp(filepath.Dir(cfg.Output), "."+filepath.Base(cfg.Output)+"._temporary-")
	if err != nil {
		return nil, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	parts := make([]string, 0, len(shards))
	partMeta := make([]interface{}, 0, len(shards))
	records := 0
	for r, kvs := range shards {
		name := PartName(r)
		if err := writePart(filepath.Join(tmpDir, name), kvs); err != nil {
			return nil, 0, err
		}
		parts = append(parts, filepath.Join(cfg.Output, name))
		partMeta = append(partMeta, map[string]interface{}{
			"name":    name,
			"records": int64(len(kvs)),
		})
		records += len(kvs)
	}

	inputs := make([]interface{}, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		inputs = append(inputs, in)
	}
	manifest := map[string]interface{}{
		"job":         cfg.Job.Name,
		"run_id":      cfg.RunID,
		"worker_uuid": wr.UUID,
		"inputs":      inputs,
		"reducers":    int64(cfg.Job.NReduce),
		"records":     int64(records),
		"parts":       partMeta,
		"started_at":  started.UTC().Format(time.RFC3339),
		"duration_ms": time.Since(started).Milliseconds(),
	}
	keys := make([]string, 0, len(cfg.Meta))
	for k := range cfg.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		manifest[k] = cfg.Meta[k]
	}
	if err := writeManifest(tmpDir, manifest); err != nil {
		return nil, 0, err
	}

	if err := os.Rename(tmpDir, cfg.Output); err != nil {
		return nil, 0, err
	}
	committed = true
	return parts, records, nil
}

// PartName returns the file name of reducer r's output.
func PartName(r int) string {
	return fmt.Sprintf("part-r-%05d", r)
}

func writePart(path string, kvs []worker.KV) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := worker.WriteKVs(f, kvs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadOutput reads every part file of a committed job output in part order.
// An output without a _SUCCESS manifest is treated as absent.
func ReadOutput(dir string) ([]worker.KV, error) {
	if _, err := os.Stat(filepath.Join(dir, SuccessFile)); err != nil {
		return nil, fmt.Errorf("output %s is not committed: %w", dir, err)
	}
	parts, err := filepath.Glob(filepath.Join(dir, "part-r-*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(parts)
	var out []worker.KV
	for _, p := range parts {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		kvs, err := worker.ReadKVs(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		out = append(out, kvs...)
	}
	return out, nil
}

// ReadOutputMap is ReadOutput keyed by record key.
func ReadOutputMap(dir string) (map[string]string, error) {
	kvs, err := ReadOutput(dir)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m, nil
}
