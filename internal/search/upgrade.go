package search

import (
	"context"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/nutrition"
	"github.com/helfiapp/foodresolve/internal/serving"
)

// upgradeServings opportunistically replaces generic "100 g" rows with
// the item's best named serving variant. Each swap happens in place so
// list order and unrelated rows are untouched, and every write is
// guarded by the sequence check so a superseded query never mutates
// newer results.
func (s *Session) upgradeServings(ctx context.Context, seq uint64, items []model.FoodItem) {
	if s.servings == nil {
		return
	}
	for i, item := range items {
		if !serving.IsGenericHundredGram(item.ServingSize) {
			continue
		}
		i, item := i, item
		go func() {
			options, err := s.servings.ServingOptions(ctx, item.Source, item.ID)
			if err != nil {
				s.logger.Debug("serving upgrade lookup failed",
					"source", item.Source, "id", item.ID, "error", err)
				return
			}
			best := serving.PickBest(options)
			if best == nil || serving.IsGenericHundredGram(best.Label) || best.Label == item.ServingSize {
				return
			}
			upgraded := nutrition.ScaleOption(item, *best)

			s.mu.Lock()
			defer s.mu.Unlock()
			if seq != s.seq {
				return
			}
			if i < len(s.snap.Results) && s.snap.Results[i].ID == item.ID {
				s.snap.Results[i] = upgraded
				s.notifyLocked()
			}
		}()
	}
}
