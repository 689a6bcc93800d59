package itemsets

import (
	"os"
	"path/filepath"
	"testing"

	mapreduce "github.com/emptyOVO/freqset-go"
	"github.com/emptyOVO/freqset-go/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromKV(t *testing.T) {
	rec, err := FromKV("frequent2", worker.KV{Key: "FR:itemA,itemB", Value: "9"})
	require.NoError(t, err)
	assert.Equal(t, Record{Phase: "frequent2", GroupKey: "FR", Itemset: "itemA,itemB", Support: 9}, rec)
	assert.Equal(t, "FR:itemA,itemB", rec.Key())
	assert.Equal(t, []string{"itemA", "itemB"}, rec.Items())

	// only the first separator splits the key
	rec, err = FromKV("frequent1", worker.KV{Key: "FR:a:b", Value: "3"})
	require.NoError(t, err)
	assert.Equal(t, "a:b", rec.Itemset)

	for _, kv := range []worker.KV{
		{Key: "noseparator", Value: "1"},
		{Key: ":item", Value: "1"},
		{Key: "FR:", Value: "1"},
		{Key: "FR:item", Value: "many"},
	} {
		_, err := FromKV("frequent1", kv)
		assert.Error(t, err, kv.Key)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, mapreduce.PartName(0)), []byte("DE:x\t12\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, mapreduce.PartName(1)), []byte("FR:itemA\t10\nFR:itemB\t9\n"), 0o644))

	_, err := Load("frequent1", dir)
	assert.Error(t, err, "uncommitted output must not load")

	require.NoError(t, os.WriteFile(filepath.Join(dir, mapreduce.SuccessFile), []byte("{}"), 0o644))
	recs, err := Load("frequent1", dir)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Phase: "frequent1", GroupKey: "DE", Itemset: "x", Support: 12},
		{Phase: "frequent1", GroupKey: "FR", Itemset: "itemA", Support: 10},
		{Phase: "frequent1", GroupKey: "FR", Itemset: "itemB", Support: 9},
	}, recs)
}
