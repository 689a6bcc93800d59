package mysql_batch

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/emptyOVO/freqset-go/batch/itemsets"
)

type tableSpec struct {
	table   string
	group   string
	itemset string
	support string
}

func newTableSpec(cfg SinkConfig, phase string) (tableSpec, error) {
	var spec tableSpec
	var err error
	if spec.table, err = quoteIdentifier(cfg.TablePrefix + phase); err != nil {
		return spec, err
	}
	if spec.group, err = quoteIdentifier(cfg.GroupColumn); err != nil {
		return spec, err
	}
	if spec.itemset, err = quoteIdentifier(cfg.ItemsetColumn); err != nil {
		return spec, err
	}
	if spec.support, err = quoteIdentifier(cfg.SupportColumn); err != nil {
		return spec, err
	}
	return spec, nil
}

func (s tableSpec) createSQL() string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  %s VARCHAR(128) NOT NULL,
  %s VARCHAR(512) NOT NULL,
  %s BIGINT NOT NULL,
  PRIMARY KEY (%s, %s)
)`, s.table, s.group, s.itemset, s.support, s.group, s.itemset)
}

func (s tableSpec) insertSQL(rows int) string {
	valueSQL := make([]string, rows)
	for i := range valueSQL {
		valueSQL[i] = "(?, ?, ?)"
	}
	return fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES %s ON DUPLICATE KEY UPDATE %s=VALUES(%s)",
		s.table, s.group, s.itemset, s.support, strings.Join(valueSQL, ","), s.support, s.support)
}

// ImportItemsets writes the records of one phase into TablePrefix+phase in a
// single transaction. With Replace the table is emptied first, otherwise
// existing rows are upserted.
func ImportItemsets(ctx context.Context, db *sql.DB, cfg SinkConfig, phase string, recs []itemsets.Record) error {
	cfg.WithDefaults()
	spec, err := newTableSpec(cfg, phase)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, spec.createSQL()); err != nil {
		return err
	}
	if cfg.Replace {
		// DELETE instead of TRUNCATE: TRUNCATE commits implicitly.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, spec.table)); err != nil {
			return err
		}
	}

	for start := 0; start < len(recs); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(recs) {
			end = len(recs)
		}
		args := make([]interface{}, 0, (end-start)*3)
		for _, rec := range recs[start:end] {
			args = append(args, rec.GroupKey, rec.Itemset, rec.Support)
		}
		if _, err := tx.ExecContext(ctx, spec.insertSQL(end-start), args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}
