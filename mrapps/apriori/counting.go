package apriori

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emptyOVO/freqset-go/worker"
)

const (
	// KeySep separates the country from the itemset in an aggregation key.
	KeySep = ":"

	DefaultMinSupport = 8
	DefaultShards     = 3
)

// PhaseName names the output of the phase counting k-itemsets.
func PhaseName(k int) string {
	return fmt.Sprintf("frequent%d", k)
}

// AggregationKey renders "<country>:<item1>,<item2>...".
func AggregationKey(country string, set Itemset) string {
	return country + KeySep + set.String()
}

// SplitKey splits an aggregation key at its first separator.
func SplitKey(key string) (country string, itemset string, ok bool) {
	i := strings.Index(key, KeySep)
	if i < 0 {
		return key, "", false
	}
	return key[:i], key[i+len(KeySep):], true
}

// CountryPartition routes an aggregation key by its country only, so every
// counter of one country lands on the same reducer.
func CountryPartition(key string, nReduce int) int {
	country, _, _ := SplitKey(key)
	return worker.HashPartition(country, nReduce)
}

// NewCountingJob builds the phase that counts k-itemsets per country and
// keeps those seen in at least minSupport transactions.
func NewCountingJob(k int, minSupport int, shards int) worker.Job {
	return worker.Job{
		Name:      PhaseName(k),
		Map:       Map(k),
		Reduce:    Reduce(minSupport),
		Partition: CountryPartition,
		NReduce:   shards,
	}
}

// Map emits ("<country>:<itemset>", "1") for every k-itemset of every
// accepted transaction in contents.
func Map(k int) worker.MapFormat {
	return func(filename string, contents string, ctx worker.MrContext) {
		for _, line := range strings.Split(contents, "\n") {
			rec, ok := ParseRecord(line)
			if !ok || len(rec.Items) < k {
				continue
			}
			for _, set := range Combinations(rec.Items, k) {
				ctx.EmitIntermediate(AggregationKey(rec.Country, set), "1")
			}
		}
	}
}

// Reduce sums the count-units of one key and emits the total only when it
// reaches minSupport.
func Reduce(minSupport int) worker.ReduceFormat {
	return func(key string, values []string, ctx worker.MrContext) {
		sum := 0
		for _, v := range values {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Sprintf("bad count %q for key %q", v, key))
			}
			sum += n
		}
		if sum >= minSupport {
			ctx.Emit(key, strconv.Itoa(sum))
		}
	}
}
