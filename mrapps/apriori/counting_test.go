package apriori

import (
	"strconv"
	"strings"
	"testing"

	"github.com/emptyOVO/freqset-go/worker"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	kvs []worker.KV
}

func (r *recorder) EmitIntermediate(key, value string) {
	r.kvs = append(r.kvs, worker.KV{Key: key, Value: value})
}

func (r *recorder) Emit(key, value string) {
	r.kvs = append(r.kvs, worker.KV{Key: key, Value: value})
}

func (r *recorder) keys() []string {
	out := make([]string, 0, len(r.kvs))
	for _, kv := range r.kvs {
		out = append(out, kv.Key)
	}
	return out
}

func TestMapSingles(t *testing.T) {
	rec := &recorder{}
	Map(1)("f", "BillNo;Itemname;;;;;Country\n;itemB,itemA,itemA;;;;;FR\n;x;y\n", rec)
	assert.Equal(t, []string{"FR:itemA", "FR:itemB"}, rec.keys())
	for _, kv := range rec.kvs {
		assert.Equal(t, "1", kv.Value)
	}
}

func TestMapPairs(t *testing.T) {
	rec := &recorder{}
	Map(2)("f", ";c,a,b;;;;;UK\n;solo;;;;;UK\n", rec)
	assert.Equal(t, []string{"UK:a,b", "UK:a,c", "UK:b,c"}, rec.keys())
}

func TestReduceThresholdBoundary(t *testing.T) {
	ones := func(n int) []string {
		return strings.Split(strings.Repeat("1,", n)[:2*n-1], ",")
	}

	rec := &recorder{}
	Reduce(8)("UK:A", ones(8), rec)
	assert.Equal(t, []worker.KV{{Key: "UK:A", Value: "8"}}, rec.kvs)

	rec = &recorder{}
	Reduce(8)("UK:A", ones(7), rec)
	assert.Empty(t, rec.kvs)
}

func TestReduceSumsPartialCounts(t *testing.T) {
	rec := &recorder{}
	Reduce(5)("FR:x", []string{"2", "3", "1"}, rec)
	assert.Equal(t, []worker.KV{{Key: "FR:x", Value: strconv.Itoa(6)}}, rec.kvs)
}

func TestReducePanicsOnBadCount(t *testing.T) {
	assert.Panics(t, func() {
		Reduce(1)("FR:x", []string{"one"}, &recorder{})
	})
}

func TestCountryPartitionIgnoresItemset(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		want := worker.HashPartition("United Kingdom", n)
		for _, key := range []string{"United Kingdom:a", "United Kingdom:a,b", "United Kingdom:zz,zzz"} {
			assert.Equal(t, want, CountryPartition(key, n), key)
		}
	}
	assert.Equal(t, 0, CountryPartition("FR:a", 1))
}

func TestSplitKey(t *testing.T) {
	country, set, ok := SplitKey("FR:itemA,itemB")
	assert.True(t, ok)
	assert.Equal(t, "FR", country)
	assert.Equal(t, "itemA,itemB", set)

	country, set, ok = SplitKey("FR:item:with:colons")
	assert.True(t, ok)
	assert.Equal(t, "FR", country)
	assert.Equal(t, "item:with:colons", set)

	_, _, ok = SplitKey("nocolon")
	assert.False(t, ok)
}

func TestMapKeysSplitBackToCountry(t *testing.T) {
	rec := &recorder{}
	Map(2)("f", ";a,b;;;;;Korea: South\n;x:1,y;;;;;U.S.A.\n", rec)
	assert.Equal(t, []string{"U.S.A.:x:1,y"}, rec.keys())
	for _, kv := range rec.kvs {
		country, set, ok := SplitKey(kv.Key)
		assert.True(t, ok)
		assert.Equal(t, "U.S.A.", country)
		assert.Equal(t, "x:1,y", set)
	}
}

func TestNewCountingJob(t *testing.T) {
	job := NewCountingJob(2, 8, 3)
	assert.Equal(t, "frequent2", job.Name)
	assert.Equal(t, 3, job.NReduce)
	assert.NotNil(t, job.Map)
	assert.NotNil(t, job.Reduce)
	assert.NotNil(t, job.Partition)
}
