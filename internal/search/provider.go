// Package search coordinates debounced, multi-provider food lookups.
// A Session owns the per-(kind,source) result cache and the sequence
// counters that make overlapping responses safe to apply; providers,
// the serving-variant source, and the brand directory are collaborator
// contracts implemented elsewhere.
package search

import (
	"context"
	"errors"

	"github.com/helfiapp/foodresolve/internal/model"
)

// Request describes one provider search call.
type Request struct {
	Source    model.Source
	Query     string
	Kind      model.SearchKind
	Limit     int
	Country   string
	LocalOnly bool
}

// Provider is a food search backend. Source identifies which requests
// it answers; SourceAuto requests are fanned out to every provider.
type Provider interface {
	Source() model.Source
	Search(ctx context.Context, req Request) ([]model.FoodItem, error)
}

// ServingSource returns the full serving-variant list for one item,
// used to upgrade generic "100 g" rows after the fact.
type ServingSource interface {
	ServingOptions(ctx context.Context, source model.Source, id string) ([]model.ServingOption, error)
}

// BrandDirectory lists known brand names by prefix.
type BrandDirectory interface {
	Brands(ctx context.Context, startsWith string) ([]string, error)
}

// ErrAllProvidersFailed distinguishes a failed search from an empty
// one. An empty result set with a nil error means "no matches".
var ErrAllProvidersFailed = errors.New("search: all providers failed")

const (
	defaultLimit = 25
	maxLimit     = 50
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
