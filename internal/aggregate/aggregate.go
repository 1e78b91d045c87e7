package aggregate

import "sort"

// In-memory summary helpers for listing and admin endpoints. Pure functions:
// deterministic for a given input slice, no I/O.

type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func Total[T any](records []T) int {
	return len(records)
}

// CountBy groups records by keyFn and returns key→count. Records whose key
// is empty are skipped.
func CountBy[T any](records []T, keyFn func(T) string) map[string]int {
	out := make(map[string]int, len(records))
	for _, r := range records {
		k := keyFn(r)
		if k == "" {
			continue
		}
		out[k]++
	}
	return out
}

// TopN returns the n most frequent keys, sorted by count descending. Ties
// are broken by first occurrence order in the input slice.
func TopN[T any](records []T, keyFn func(T) string, n int) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}
	counts := make(map[string]int, len(records))
	firstSeen := make(map[string]int, len(records))
	order := 0
	for _, r := range records {
		k := keyFn(r)
		if k == "" {
			continue
		}
		if _, ok := counts[k]; !ok {
			firstSeen[k] = order
			order++
		}
		counts[k]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for k, c := range counts {
		buckets = append(buckets, Bucket{Key: k, Count: c})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return firstSeen[buckets[i].Key] < firstSeen[buckets[j].Key]
	})

	if len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}
