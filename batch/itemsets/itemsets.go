// Package itemsets loads committed frequent-itemset outputs as typed records
// for the result sinks.
package itemsets

import (
	"fmt"
	"strconv"
	"strings"

	mapreduce "github.com/emptyOVO/freqset-go"
	"github.com/emptyOVO/freqset-go/mrapps/apriori"
	"github.com/emptyOVO/freqset-go/worker"
)

// Record is one frequent itemset of one phase.
type Record struct {
	Phase    string
	GroupKey string
	Itemset  string
	Support  int64
}

// Key renders the aggregation key the record was counted under.
func (r Record) Key() string {
	return r.GroupKey + apriori.KeySep + r.Itemset
}

// Items returns the itemset members.
func (r Record) Items() []string {
	return strings.Split(r.Itemset, apriori.ItemSep)
}

// FromKV converts one output line of a counting phase.
func FromKV(phase string, kv worker.KV) (Record, error) {
	country, set, ok := apriori.SplitKey(kv.Key)
	if !ok || country == "" || set == "" {
		return Record{}, fmt.Errorf("malformed aggregation key %q", kv.Key)
	}
	n, err := strconv.ParseInt(kv.Value, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("malformed support %q for key %q: %w", kv.Value, kv.Key, err)
	}
	return Record{Phase: phase, GroupKey: country, Itemset: set, Support: n}, nil
}

// Load reads the committed output directory of one phase.
func Load(phase string, dir string) ([]Record, error) {
	kvs, err := mapreduce.ReadOutput(dir)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(kvs))
	for _, kv := range kvs {
		rec, err := FromKV(phase, kv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
