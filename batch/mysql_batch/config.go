package mysql_batch

import (
	"fmt"
	"regexp"
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SinkConfig configures frequent itemset import into MySQL. Each phase is
// written to its own table named TablePrefix + phase.
type SinkConfig struct {
	TablePrefix   string `json:"table_prefix"`
	GroupColumn   string `json:"group_column"`
	ItemsetColumn string `json:"itemset_column"`
	SupportColumn string `json:"support_column"`
	Replace       bool   `json:"replace"`
	BatchSize     int    `json:"batchsize"`
}

func (c *SinkConfig) WithDefaults() {
	if c.GroupColumn == "" {
		c.GroupColumn = "group_key"
	}
	if c.ItemsetColumn == "" {
		c.ItemsetColumn = "itemset"
	}
	if c.SupportColumn == "" {
		c.SupportColumn = "support"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 2000
	}
}

func quoteIdentifier(s string) (string, error) {
	if !identifierRe.MatchString(s) {
		return "", fmt.Errorf("invalid identifier: %s", s)
	}
	return "`" + s + "`", nil
}
