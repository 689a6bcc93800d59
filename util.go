package mapreduce

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emptyOVO/freqset-go/worker"
)

// ExpandInputs expands glob patterns into a sorted, de-duplicated file list.
// A directory contributes its regular files, skipping names that start with
// "_" or "." the way Hadoop input formats do.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, p := range patterns {
		// expand the file path
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input path does not exist: %s", p)
		}
		for _, m := range matches {
			expanded, err := expandPath(m)
			if err != nil {
				return nil, err
			}
			for _, f := range expanded {
				abs, err := filepath.Abs(f)
				if err != nil {
					return nil, err
				}
				if !seen[abs] {
					seen[abs] = true
					files = append(files, abs)
				}
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func expandPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, filepath.Join(path, name))
	}
	return out, nil
}

// feedSplits reads files line by line and sends chunks of splitLines lines.
// It closes out when done. Cancellation is not reported as an error.
func feedSplits(ctx context.Context, files []string, splitLines int, out chan<- worker.Split) error {
	defer close(out)
	index := 0
	for _, file := range files {
		ok, err := feedFile(ctx, file, splitLines, &index, out)
		if err != nil {
			return fmt.Errorf("read input %s: %w", file, err)
		}
		if !ok {
			return nil
		}
	}
	return nil
}

func feedFile(ctx context.Context, file string, splitLines int, index *int, out chan<- worker.Split) (bool, error) {
	f, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var b strings.Builder
	n := 0
	send := func() bool {
		if n == 0 {
			return true
		}
		split := worker.Split{File: file, Index: *index, Contents: b.String()}
		*index++
		b.Reset()
		n = 0
		select {
		case out <- split:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), worker.MaxLineSize)
	for scanner.Scan() {
		b.WriteString(strings.TrimSuffix(scanner.Text(), "\r"))
		b.WriteByte('\n')
		n++
		if n >= splitLines && !send() {
			return false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return send(), nil
}
