package worker

import (
	"bufio"
	"io"
	"strings"
)

func encodeIMDKVs(kvs []KV) string {
	if len(kvs) == 0 {
		return ""
	}
	var b strings.Builder
	// Rough pre-size to reduce reallocations for hot path.
	b.Grow(len(kvs) * 24)
	for i := range kvs {
		b.WriteString(kvs[i].Key)
		b.WriteByte('\t')
		b.WriteString(kvs[i].Value)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteKVs writes one "key<TAB>value" record per line.
func WriteKVs(w io.Writer, kvs []KV) error {
	_, err := io.WriteString(w, encodeIMDKVs(kvs))
	return err
}

// ReadKVs reads records written by WriteKVs. Lines without a tab are skipped.
// The key is everything before the last tab, so keys may contain spaces.
func ReadKVs(r io.Reader) ([]KV, error) {
	var out []KV
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		idx := strings.LastIndexByte(line, '\t')
		if idx < 0 {
			continue
		}
		out = append(out, KV{
			Key:   line[:idx],
			Value: line[idx+1:],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
