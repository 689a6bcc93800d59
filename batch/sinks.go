package batch

import (
	"context"
	"fmt"

	mapreduce "github.com/emptyOVO/freqset-go"
	"github.com/emptyOVO/freqset-go/batch/amqp_batch"
	"github.com/emptyOVO/freqset-go/batch/itemsets"
	"github.com/emptyOVO/freqset-go/batch/mysql_batch"
	"github.com/emptyOVO/freqset-go/batch/redis_batch"
	log "github.com/sirupsen/logrus"
)

func exportSinks(ctx context.Context, cfg SinksConfig, phases []mapreduce.JobResult) error {
	if cfg.empty() {
		return nil
	}
	for _, jr := range phases {
		recs, err := itemsets.Load(jr.Name, jr.Output)
		if err != nil {
			return fmt.Errorf("load %s: %w", jr.Name, err)
		}
		if err := exportPhase(ctx, cfg, jr.Name, recs); err != nil {
			return err
		}
	}
	return nil
}

func exportPhase(ctx context.Context, cfg SinksConfig, phase string, recs []itemsets.Record) error {
	if cfg.MySQL != nil {
		log.Infof("[Sink] mysql: %s (%d record(s))", phase, len(recs))
		db, err := openDB(ctx, cfg.MySQL.DB)
		if err != nil {
			return fmt.Errorf("mysql sink: %w", err)
		}
		err = mysql_batch.ImportItemsets(ctx, db, cfg.MySQL.Config, phase, recs)
		db.Close()
		if err != nil {
			return fmt.Errorf("mysql sink %s: %w", phase, err)
		}
	}
	if cfg.Redis != nil {
		log.Infof("[Sink] redis: %s (%d record(s))", phase, len(recs))
		if err := redis_batch.ImportItemsets(ctx, cfg.Redis.Conn, cfg.Redis.Config, phase, recs); err != nil {
			return fmt.Errorf("redis sink %s: %w", phase, err)
		}
	}
	if cfg.AMQP != nil {
		log.Infof("[Sink] amqp: %s (%d record(s))", phase, len(recs))
		if err := amqp_batch.Publish(ctx, *cfg.AMQP, recs); err != nil {
			return fmt.Errorf("amqp sink %s: %w", phase, err)
		}
	}
	return nil
}
