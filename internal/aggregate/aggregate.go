// Package aggregate turns columns of canonical labels into ranked group counts.
package aggregate

import (
	"math"
	"sort"
)

// Entry is one label with its tally.
type Entry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GroupCount is one row of an aggregation result. Percentage is in [0,100]
// and rounded to one decimal place.
type GroupCount struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CountBy tallies occurrences of each label. Empty labels are dropped when
// excludeEmpty is set.
func CountBy(values []string, excludeEmpty bool) map[string]int {
	out := make(map[string]int)
	for _, v := range values {
		if v == "" && excludeEmpty {
			continue
		}
		out[v]++
	}
	return out
}

// RankDescending orders counts by count descending. Equal counts are ordered
// by label ascending so output does not depend on map iteration.
func RankDescending(counts map[string]int) []Entry {
	out := make([]Entry, 0, len(counts))
	for k, v := range counts {
		out = append(out, Entry{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Label < out[j].Label
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// TopNWithOther keeps the first n entries and folds the remainder into one
// trailing entry named otherLabel. The trailing entry is always present,
// even with a zero count. A negative n is treated as zero.
func TopNWithOther(ranked []Entry, n int, otherLabel string) []Entry {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Entry, 0, n+1)
	out = append(out, ranked[:n]...)
	rest := 0
	for _, e := range ranked[n:] {
		rest += e.Count
	}
	return append(out, Entry{Label: otherLabel, Count: rest})
}

// WithPercentages attaches each entry's share of the sum of counts in ranked.
func WithPercentages(ranked []Entry) []GroupCount {
	return PercentOf(ranked, Total(ranked))
}

// PercentOf attaches each entry's share of total. A non-positive total
// yields 0 for every entry.
func PercentOf(ranked []Entry, total int) []GroupCount {
	out := make([]GroupCount, len(ranked))
	for i, e := range ranked {
		out[i] = GroupCount{Label: e.Label, Count: e.Count, Percentage: Percent(e.Count, total)}
	}
	return out
}

// Percent returns 100*part/total rounded to one decimal, or 0 when total <= 0.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// Total sums the counts of ranked.
func Total(ranked []Entry) int {
	n := 0
	for _, e := range ranked {
		n += e.Count
	}
	return n
}

// Distinct returns the number of different non-empty labels.
func Distinct(values []string) int {
	return len(CountBy(values, true))
}

// Rank is CountBy followed by RankDescending with empty labels excluded.
func Rank(values []string) []Entry {
	return RankDescending(CountBy(values, true))
}

// Head returns at most n leading entries of ranked.
func Head(ranked []Entry, n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Entry, n)
	copy(out, ranked[:n])
	return out
}
