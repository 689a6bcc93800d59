package worker

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVCodecKeepsSpacesInKeys(t *testing.T) {
	kvs := []KV{
		{Key: "United Kingdom:WHITE HANGING HEART T-LIGHT HOLDER", Value: "12"},
		{Key: "France:A,B", Value: "9"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteKVs(&buf, kvs))
	assert.Equal(t, "United Kingdom:WHITE HANGING HEART T-LIGHT HOLDER\t12\nFrance:A,B\t9\n", buf.String())

	got, err := ReadKVs(&buf)
	require.NoError(t, err)
	assert.Equal(t, kvs, got)
}

func TestReadKVsSkipsMalformedLines(t *testing.T) {
	got, err := ReadKVs(strings.NewReader("no tab here\n\nk\tv\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []KV{{Key: "k", Value: "v"}}, got)
}

func TestWriteKVsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteKVs(&buf, nil))
	assert.Empty(t, buf.String())
}
