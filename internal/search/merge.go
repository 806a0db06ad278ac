package search

import (
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

// mergeKey collapses a candidate to its normalized name so the same
// food surfaced by two providers dedupes to one row.
func mergeKey(item model.FoodItem) string {
	return query.Normalize(item.Name)
}

// Merge appends extra onto base with first-write-wins semantics: an
// item whose normalized name is already present is dropped, so earlier
// (faster, locally cached) results keep their position and later
// provider responses only fill gaps.
func Merge(base, extra []model.FoodItem) []model.FoodItem {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]model.FoodItem, 0, len(base)+len(extra))
	for _, item := range base {
		key := mergeKey(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	for _, item := range extra {
		key := mergeKey(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
