package report

import (
	"slices"
	"strconv"
)

// counter tallies counted rows per key. Empty keys are dropped; a key whose
// rows are all uncounted is kept with a zero count.
type counter struct {
	counts map[string]int
	keys   []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string, counted bool) {
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
		c.counts[key] = 0
	}
	if counted {
		c.counts[key]++
	}
}

func (c *counter) get(key string) (int, bool) {
	n, ok := c.counts[key]
	return n, ok
}

// sorted returns the keys in group order
func (c *counter) sorted() []string {
	keys := slices.Clone(c.keys)
	sortKeys(keys)
	return keys
}

// pair is a two-column group key
type pair struct {
	group, category string
}

// sortKeys orders group keys numerically when every key is a number and
// lexically otherwise
func sortKeys(keys []string) {
	numeric := true
	values := make(map[string]float64, len(keys))
	for _, k := range keys {
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			numeric = false
			break
		}
		values[k] = v
	}

	if numeric {
		slices.SortStableFunc(keys, func(a, b string) int {
			switch {
			case values[a] < values[b]:
				return -1
			case values[a] > values[b]:
				return 1
			}
			return 0
		})
		return
	}
	slices.Sort(keys)
}

// relabel maps a raw code through a fixed dictionary; unmapped codes pass
// through unchanged
func relabel(labels map[string]string, code string) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return code
}
