package batch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	mapreduce "github.com/emptyOVO/freqset-go"
	"github.com/emptyOVO/freqset-go/mrapps/apriori"
	"github.com/emptyOVO/freqset-go/worker"
	log "github.com/sirupsen/logrus"
)

// SyntheticConfig shapes a generated transaction log.
type SyntheticConfig struct {
	Path         string
	Transactions int
	Countries    int
	Items        int
	// BasketSize is the largest number of items in one transaction.
	BasketSize int
}

func (c *SyntheticConfig) withDefaults() {
	if c.Transactions <= 0 {
		c.Transactions = 10000
	}
	if c.Countries <= 0 {
		c.Countries = 5
	}
	if c.Items <= 0 {
		c.Items = 50
	}
	if c.BasketSize <= 0 {
		c.BasketSize = 4
	}
}

// PrepareSyntheticTransactions writes a deterministic transaction log with a
// header line. The same config always produces the same file.
func PrepareSyntheticTransactions(cfg SyntheticConfig) error {
	cfg.withDefaults()
	if cfg.Path == "" {
		return fmt.Errorf("synthetic output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	w.WriteString("BillNo;Itemname;Quantity;Date;Price;CustomerID;Country\n")
	for i := 0; i < cfg.Transactions; i++ {
		size := 1 + i%cfg.BasketSize
		items := make([]string, 0, size)
		for j := 0; j < size; j++ {
			items = append(items, fmt.Sprintf("item_%03d", (i*7+j*13)%cfg.Items))
		}
		fmt.Fprintf(w, "%d;%s;1;01.12.2010 08:26;1,00;%d;country_%02d\n",
			i+1, strings.Join(items, ","), 10000+i%97, i%cfg.Countries)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("[Pipeline] wrote %d synthetic transaction(s) to %s", cfg.Transactions, cfg.Path)
	return nil
}

// ValidateItemsets recounts every phase sequentially from the raw input and
// checks the committed outputs under outputRoot hold exactly those counts.
func ValidateItemsets(inputs []string, outputRoot string, minSupport int) error {
	if minSupport < 1 {
		return fmt.Errorf("min support must be >= 1, got %d", minSupport)
	}
	files, err := mapreduce.ExpandInputs(inputs)
	if err != nil {
		return err
	}
	for _, k := range Phases {
		expected, err := countSequential(files, k, minSupport)
		if err != nil {
			return err
		}
		phase := apriori.PhaseName(k)
		actual, err := mapreduce.ReadOutputMap(filepath.Join(outputRoot, phase))
		if err != nil {
			return err
		}
		if err := compareCounts(phase, expected, actual); err != nil {
			return err
		}
	}
	return nil
}

func countSequential(files []string, k int, minSupport int) (map[string]string, error) {
	counts := map[string]int{}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), worker.MaxLineSize)
		for scanner.Scan() {
			rec, ok := apriori.ParseRecord(strings.TrimSuffix(scanner.Text(), "\r"))
			if !ok {
				continue
			}
			for _, set := range apriori.Combinations(rec.Items, k) {
				counts[apriori.AggregationKey(rec.Country, set)]++
			}
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	}
	out := make(map[string]string, len(counts))
	for key, n := range counts {
		if n >= minSupport {
			out[key] = strconv.Itoa(n)
		}
	}
	return out, nil
}

func compareCounts(phase string, expected, actual map[string]string) error {
	keys := make([]string, 0, len(expected)+len(actual))
	for k := range expected {
		keys = append(keys, k)
	}
	for k := range actual {
		if _, ok := expected[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if expected[k] != actual[k] {
			return fmt.Errorf("validation mismatch in %s at %q: expected %q, actual %q", phase, k, expected[k], actual[k])
		}
	}
	return nil
}
