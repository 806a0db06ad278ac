package search

import (
	"context"
	"sort"
	"strings"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

// builtinBrands is the fallback directory used when the brand
// collaborator is unreachable.
var builtinBrands = []string{
	"Burger King",
	"Chipotle",
	"Costa Coffee",
	"Domino's",
	"Dunkin'",
	"Five Guys",
	"Greggs",
	"KFC",
	"Krispy Kreme",
	"McDonald's",
	"Nando's",
	"Papa John's",
	"Pizza Hut",
	"Pret a Manger",
	"Starbucks",
	"Subway",
	"Taco Bell",
	"Wendy's",
}

// genericFoodWords are tokens that describe the food rather than who
// makes it. They never seed a brand lookup.
var genericFoodWords = map[string]struct{}{
	"burger": {}, "cheeseburger": {}, "chicken": {}, "chip": {},
	"coffee": {}, "cookie": {}, "drink": {}, "fries": {}, "fry": {},
	"ice": {}, "cream": {}, "large": {}, "meal": {}, "medium": {},
	"milkshake": {}, "nugget": {}, "pizza": {}, "salad": {},
	"sandwich": {}, "shake": {}, "small": {}, "taco": {}, "wrap": {},
}

// brandTokens extracts the query tokens worth matching against the
// brand directory: singularized, at least three characters, and not a
// generic food word.
func brandTokens(q string) []string {
	var out []string
	for _, tok := range query.Tokens(q) {
		tok = query.Singularize(tok)
		if len(tok) < 3 {
			continue
		}
		if _, generic := genericFoodWords[tok]; generic {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// matchBrands returns the directory entries whose compacted form starts
// with any of the query's non-generic tokens, so "mcdonalds fries"
// still finds "McDonald's".
func matchBrands(directory []string, q string) []string {
	tokens := brandTokens(q)
	if len(tokens) == 0 {
		return nil
	}
	var out []string
	for _, brand := range directory {
		compact := query.Compact(brand)
		for _, tok := range tokens {
			if strings.HasPrefix(compact, query.Compact(tok)) {
				out = append(out, brand)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// brandSuggestions synthesizes lightweight suggestion items for the
// matched brands. They carry no nutrition; selecting one re-issues the
// search with the brand as the query instead of logging an entry.
func brandSuggestions(brands []string) []model.FoodItem {
	out := make([]model.FoodItem, 0, len(brands))
	for _, brand := range brands {
		out = append(out, model.FoodItem{
			Source: model.SourceCustom,
			ID:     "brand:" + query.Compact(brand),
			Name:   brand,
			Brand:  brand,
		})
	}
	return out
}

// lookupBrands queries the directory collaborator, falling back to the
// built-in list when it errors or is absent.
func lookupBrands(ctx context.Context, dir BrandDirectory, q string) []string {
	tokens := brandTokens(q)
	if len(tokens) == 0 {
		return nil
	}
	if dir != nil {
		listed, err := dir.Brands(ctx, tokens[0])
		if err == nil {
			return matchBrands(listed, q)
		}
	}
	return matchBrands(builtinBrands, q)
}
