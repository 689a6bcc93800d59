package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MaxLineSize is the longest input or intermediate line any reader accepts.
const MaxLineSize = 16 * 1024 * 1024

type MapFormat func(filename string, contents string, ctx MrContext)
type ReduceFormat func(key string, values []string, ctx MrContext)

// Job is one map-then-reduce pass.
type Job struct {
	Name      string
	Map       MapFormat
	Reduce    ReduceFormat
	Partition Partitioner
	NReduce   int
}

func (j Job) validate() error {
	if j.Map == nil {
		return fmt.Errorf("job %s: map function is required", j.Name)
	}
	if j.Reduce == nil {
		return fmt.Errorf("job %s: reduce function is required", j.Name)
	}
	if j.NReduce <= 0 {
		return fmt.Errorf("job %s: reducers must be > 0", j.Name)
	}
	return nil
}

// Split is a chunk of whole input lines handed to one map call.
type Split struct {
	File     string
	Index    int
	Contents string
}

// PartitionError reports a partitioner that returned a shard outside [0, NReduce).
type PartitionError struct {
	Key     string
	Shard   int
	NReduce int
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partitioner returned shard %d for key %q, want [0, %d)", e.Shard, e.Key, e.NReduce)
}

type Worker struct {
	UUID       string
	SpillDir   string
	job        Job
	nWorker    int
	storeInRAM bool
}

// New returns a worker running job with nWorker map goroutines. When
// storeInRAM is false the shard buckets are spilled to SpillDir between the
// map and reduce stages.
func New(job Job, nWorker int, storeInRAM bool) *Worker {
	if nWorker <= 0 {
		nWorker = 1
	}
	return &Worker{
		UUID:       uuid.New().String(),
		SpillDir:   os.TempDir(),
		job:        job,
		nWorker:    nWorker,
		storeInRAM: storeInRAM,
	}
}

// Run consumes splits until the channel is closed, then reduces every shard.
// The returned slice is indexed by shard, each shard sorted by key.
func (wr *Worker) Run(ctx context.Context, splits <-chan Split) ([][]KV, error) {
	if err := wr.job.validate(); err != nil {
		return nil, err
	}
	log.Infof("[Worker] Start job %s (workers=%d reducers=%d)", wr.job.Name, wr.nWorker, wr.job.NReduce)

	imdKV, err := wr.Map(ctx, splits)
	if err != nil {
		return nil, err
	}

	if wr.storeInRAM {
		return wr.Reduce(ctx, func(r int) ([]KV, error) {
			kvs := imdKV[r]
			imdKV[r] = nil
			return kvs, nil
		})
	}

	log.Trace("[Worker] Write intermediate kv to file")
	filenames, err := writeIMDToLocalFile(imdKV, wr.UUID, wr.SpillDir)
	defer removeIMDFiles(filenames)
	if err != nil {
		return nil, err
	}
	imdKV = nil
	log.Trace("[Worker] End Write intermediate kv to file")

	return wr.Reduce(ctx, func(r int) ([]KV, error) {
		return readIMDFile(filenames[r])
	})
}

// Map fans splits out to the map goroutines and partitions everything they
// emit into one bucket per shard.
func (wr *Worker) Map(parent context.Context, splits <-chan Split) ([][]KV, error) {
	log.Trace("[Worker] Start Mapping")

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	mapChan := make(chan KV, 4096)
	errCh := make(chan error, wr.nWorker)
	var wg sync.WaitGroup
	for i := 0; i < wr.nWorker; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case split, ok := <-splits:
					if !ok {
						return
					}
					if err := wr.mapSplit(split, mapChan); err != nil {
						errCh <- err
						cancel()
						return
					}
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(mapChan)
	}()

	// Partition result into R piece
	log.Trace("[Worker] Start partition intermediate kv")
	imdKV := make([][]KV, wr.job.NReduce)
	var partErr error
	for kv := range mapChan {
		if partErr != nil {
			continue
		}
		id, err := reducerForKey(wr.job.Partition, kv.Key, wr.job.NReduce)
		if err != nil {
			partErr = err
			cancel()
			continue
		}
		imdKV[id] = append(imdKV[id], kv)
	}
	log.Trace("[Worker] End partition intermediate kv")

	close(errCh)
	for err := range errCh {
		return nil, err
	}
	if partErr != nil {
		return nil, partErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	log.Trace("[Worker] Finish Mapping")
	return imdKV, nil
}

func (wr *Worker) mapSplit(split Split, out chan<- KV) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s: map %s split %d: %v", wr.job.Name, split.File, split.Index, r)
		}
	}()
	wr.job.Map(split.File, split.Contents, chanContext{ch: out})
	return nil
}

// Reduce runs one goroutine per shard. Each goroutine loads and owns its
// bucket exclusively.
func (wr *Worker) Reduce(ctx context.Context, load func(shard int) ([]KV, error)) ([][]KV, error) {
	log.Trace("[Worker] Start Reducing")

	out := make([][]KV, wr.job.NReduce)
	errCh := make(chan error, wr.job.NReduce)
	var wg sync.WaitGroup
	for r := 0; r < wr.job.NReduce; r++ {
		wg.Add(1)
		go func(r0 int) {
			defer wg.Done()
			kvs, err := load(r0)
			if err != nil {
				errCh <- fmt.Errorf("job %s: load shard %d: %w", wr.job.Name, r0, err)
				return
			}
			res, err := wr.reduceShard(ctx, r0, kvs)
			if err != nil {
				errCh <- err
				return
			}
			out[r0] = res
		}(r)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		return nil, err
	}
	log.Trace("[Worker] End Reducing")
	return out, nil
}

func (wr *Worker) reduceShard(ctx context.Context, shard int, imdKVs []KV) (out []KV, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s: reduce shard %d: %v", wr.job.Name, shard, r)
		}
	}()

	sort.Sort(byKey(imdKVs))

	reduceCtx := &collector{}
	i := 0
	for i < len(imdKVs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j := i + 1
		for j < len(imdKVs) && imdKVs[j].Key == imdKVs[i].Key {
			j++
		}
		values := make([]string, 0, j-i)
		for k := i; k < j; k++ {
			values = append(values, imdKVs[k].Value)
		}
		wr.job.Reduce(imdKVs[i].Key, values, reduceCtx)
		i = j
	}
	log.Tracef("[Worker] Shard %d reduced %d kv into %d records", shard, len(imdKVs), len(reduceCtx.kvs))
	return reduceCtx.kvs, nil
}

func writeIMDToLocalFile(imdKV [][]KV, uuid string, dir string) ([]string, error) {
	// Filenames must stay aligned with reducer index.
	filenames := make([]string, len(imdKV))
	errs := make([]error, len(imdKV))
	var wg sync.WaitGroup
	for taskID, kvs := range imdKV {
		wg.Add(1)
		go func(t int, s []KV) {
			defer wg.Done()
			filenames[t], errs[t] = writeIMDToLocalFileParallel(t, s, uuid, dir)
		}(taskID, kvs)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return filenames, err
		}
	}
	return filenames, nil
}

func writeIMDToLocalFileParallel(taskID int, kvs []KV, uuid string, dir string) (string, error) {
	fname := filepath.Join(dir, fmt.Sprintf("imd-%v-%v.txt", uuid, taskID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	file, err := os.Create(fname)
	if err != nil {
		return "", err
	}
	if err := WriteKVs(file, kvs); err != nil {
		file.Close()
		return fname, err
	}
	return fname, file.Close()
}

func readIMDFile(fname string) ([]KV, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKVs(f)
}

func removeIMDFiles(filenames []string) {
	for _, f := range filenames {
		if f == "" {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			log.Warnf("[Worker] remove intermediate file %s: %v", f, err)
		}
	}
}
