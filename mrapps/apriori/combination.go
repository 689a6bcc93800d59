package apriori

import (
	"sort"
	"strings"
)

// Itemset is a canonical itemset: distinct items in lexicographic order.
type Itemset []string

func (s Itemset) String() string {
	return strings.Join(s, ItemSep)
}

// Combinations returns every k-element subset of the distinct items, each
// sorted, in lexicographic order. Duplicate input items are collapsed first.
func Combinations(items []string, k int) []Itemset {
	if k <= 0 {
		return nil
	}
	distinct := distinctSorted(items)
	n := len(distinct)
	if n < k {
		return nil
	}

	// idx holds the chosen positions, always strictly increasing.
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	var out []Itemset
	for {
		set := make(Itemset, k)
		for i, p := range idx {
			set[i] = distinct[p]
		}
		out = append(out, set)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func distinctSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}
