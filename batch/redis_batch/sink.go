package redis_batch

import (
	"context"
	"net"
	"strconv"

	"github.com/emptyOVO/freqset-go/batch/itemsets"
	"github.com/redis/go-redis/v9"
)

const pipelineSize = 512

// HashKey is the hash holding every itemset of one phase and country.
func HashKey(cfg SinkConfig, phase string, country string) string {
	cfg.WithDefaults()
	return cfg.KeyPrefix + phase + ":" + country
}

func newClient(cfg ConnConfig) *redis.Client {
	cfg.WithDefaults()
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ImportItemsets stores each record as HSET <prefix><phase>:<country> <itemset> <support>.
// With Replace every existing key of the phase is deleted first.
func ImportItemsets(ctx context.Context, connCfg ConnConfig, cfg SinkConfig, phase string, recs []itemsets.Record) error {
	cfg.WithDefaults()
	rdb := newClient(connCfg)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	if cfg.Replace {
		if err := deleteMatching(ctx, rdb, cfg.KeyPrefix+phase+":*", cfg.ScanCount); err != nil {
			return err
		}
	}

	for start := 0; start < len(recs); start += pipelineSize {
		end := start + pipelineSize
		if end > len(recs) {
			end = len(recs)
		}
		pipe := rdb.Pipeline()
		for _, rec := range recs[start:end] {
			pipe.HSet(ctx, HashKey(cfg, phase, rec.GroupKey), rec.Itemset, rec.Support)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func deleteMatching(ctx context.Context, rdb *redis.Client, pattern string, count int) error {
	var keys []string
	iter := rdb.Scan(ctx, 0, pattern, int64(count)).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	for start := 0; start < len(keys); start += count {
		end := start + count
		if end > len(keys) {
			end = len(keys)
		}
		if err := rdb.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}
