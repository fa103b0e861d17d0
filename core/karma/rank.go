// Package karma holds the karma leaderboard primitives shared by the dashboards.
package karma

import "sort"

// Score is the aggregated karma of a group (zone, district, user...).
// A null aggregate must be passed as 0.
type Score struct {
	Key   string `db:"key"`
	Karma int64  `db:"karma"`
}

// Ranks maps group keys to their 1-based leaderboard position.
type Ranks struct {
	order []string
	pos   map[string]int
}

// Rank sorts scores by karma descending and numbers them from 1.
// Ties keep the order in which the scores were given.
// A key given more than once keeps its first position and its last karma.
func Rank(scores []Score) Ranks {
	keys := make([]string, 0, len(scores))
	vals := make(map[string]int64, len(scores))
	for _, s := range scores {
		if _, seen := vals[s.Key]; !seen {
			keys = append(keys, s.Key)
		}
		vals[s.Key] = s.Karma
	}

	sort.SliceStable(keys, func(i, j int) bool { return vals[keys[i]] > vals[keys[j]] })

	pos := make(map[string]int, len(keys))
	for i, k := range keys {
		pos[k] = i + 1
	}
	return Ranks{order: keys, pos: pos}
}

// Of returns the rank of key; ok is false when key was not ranked.
func (r Ranks) Of(key string) (rank int, ok bool) {
	rank, ok = r.pos[key]
	return
}

// Ptr returns the rank of key, or nil when key was not ranked.
func (r Ranks) Ptr(key string) *int {
	if rank, ok := r.pos[key]; ok {
		return &rank
	}
	return nil
}

// Top returns the keys of the first n ranks.
func (r Ranks) Top(n int) []string {
	if n > len(r.order) {
		n = len(r.order)
	}
	if n < 0 {
		n = 0
	}
	top := make([]string, n)
	copy(top, r.order[:n])
	return top
}

func (r Ranks) Len() int {
	return len(r.order)
}
