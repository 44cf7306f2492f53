package search

import (
	"sort"

	"github.com/kailas-cloud/advsearch/internal/domain/search/result"
)

// BackendResults is one backend's result list, in the backend's own rank order.
type BackendResults struct {
	Backend string
	Items   []result.Result
}

// Merge tags every result with its backend, flattens the lists and returns the
// perPage best by score. Equal scores keep list order (backend registration
// order) and then backend-local rank. Scores are compared as-is even though
// backends do not share a scale.
func Merge(lists []BackendResults, perPage int) []result.Result {
	var n int
	for _, l := range lists {
		n += len(l.Items)
	}

	merged := make([]result.Result, 0, n)
	for _, l := range lists {
		for _, r := range l.Items {
			merged = append(merged, r.WithBackend(l.Backend))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	if perPage >= 0 && len(merged) > perPage {
		merged = merged[:perPage]
	}
	return merged
}
