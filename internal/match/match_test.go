package match_test

import (
	"testing"

	"github.com/helfiapp/foodresolve/internal/match"
	"github.com/helfiapp/foodresolve/internal/model"
)

func TestMatchesPrefix(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name, query string
		want        bool
	}{
		{"Chicken Breast", "chick", true},
		{"Chicken Breast", "breast", true},
		{"Chicken Breast", "chicken bre", true},
		{"Chicken Breast", "beef", false},
		{"Eggs, scrambled", "egg", true},
		{"Greek Yogurt", "yoghurt", false},
	}
	for _, tc := range cases {
		got := match.Matches(tc.name, tc.query, match.Options{AllowTypo: false})
		if got != tc.want {
			t.Fatalf("Matches(%q, %q) = %v, want %v", tc.name, tc.query, got, tc.want)
		}
	}
}

func TestMatchesSingularization(t *testing.T) {
	t.Parallel()
	if !match.Matches("Tomatoes, raw", "tomato", match.Options{}) {
		t.Fatalf("singularized name token should prefix-match")
	}
	if !match.Matches("Banana", "bananas", match.Options{}) {
		t.Fatalf("singularized query token should prefix-match")
	}
}

func TestMatchesOneEditTypo(t *testing.T) {
	t.Parallel()
	// Substitution.
	if !match.Matches("Chicken", "chizken", match.Options{AllowTypo: true}) {
		t.Fatalf("one substitution should match with typos allowed")
	}
	if match.Matches("Chicken", "chizken", match.Options{AllowTypo: false}) {
		t.Fatalf("typo must not match in the strict pass")
	}
	// Deletion in the query.
	if !match.Matches("Banana", "banna", match.Options{AllowTypo: true}) {
		t.Fatalf("one deletion should match with typos allowed")
	}
	// Insertion in the query.
	if !match.Matches("Salmon", "salmmon", match.Options{AllowTypo: true}) {
		t.Fatalf("one insertion should match with typos allowed")
	}
	// Two edits is out of budget.
	if match.Matches("Chicken", "czizken", match.Options{AllowTypo: true}) {
		t.Fatalf("two edits must not match")
	}
	// First character must agree.
	if match.Matches("Chicken", "dhicken", match.Options{AllowTypo: true}) {
		t.Fatalf("first-character pre-filter should reject")
	}
	// Below three characters typo tolerance is off.
	if match.Matches("Oats", "ot", match.Options{AllowTypo: true}) {
		t.Fatalf("short tokens must not use the typo path")
	}
}

func TestMatchesSingleCharacterQuery(t *testing.T) {
	t.Parallel()
	if !match.Matches("Chicken Breast", "b", match.Options{}) {
		t.Fatalf("single char should prefix-match any token")
	}
	if match.Matches("Chicken Breast", "b", match.Options{RequireFirstToken: true}) {
		t.Fatalf("single char with first-token rule should check only the first token")
	}
	if !match.Matches("Chicken Breast", "c", match.Options{RequireFirstToken: true}) {
		t.Fatalf("single char should match the first token prefix")
	}
}

func TestMatchesRequireFirstToken(t *testing.T) {
	t.Parallel()
	opts := match.Options{RequireFirstToken: true}
	if match.Matches("Scrambled Eggs", "egg", opts) {
		t.Fatalf("first-token rule should reject a second-token match")
	}
	if !match.Matches("Eggs, scrambled", "egg scrambled", opts) {
		t.Fatalf("first token plus remaining tokens should match")
	}
}

func TestMatchesParenthesesStripped(t *testing.T) {
	t.Parallel()
	if match.Matches("Aubergine (eggplant)", "eggplant", match.Options{}) {
		t.Fatalf("synonyms inside parentheses must not match")
	}
}

func TestMatchesBrandedCompactFallback(t *testing.T) {
	t.Parallel()
	if !match.MatchesBranded("Big Mac", "McDonald's", "mcdonalds", match.Options{}) {
		t.Fatalf("compacted query should substring-match compacted brand+name")
	}
	if !match.MatchesBranded("Whopper", "Burger King", "burger king whopper", match.Options{}) {
		t.Fatalf("brand+name concatenation should match")
	}
	if match.MatchesBranded("Whopper", "Burger King", "mcdonalds", match.Options{}) {
		t.Fatalf("unrelated brand must not match")
	}
}

func TestFilterTwoPassPolicy(t *testing.T) {
	t.Parallel()
	items := []model.FoodItem{
		{Name: "Chicken Breast"},
		{Name: "Chickpea Salad"},
		{Name: "Beef Mince"},
	}

	// Strict pass has hits: typo matches stay out.
	got := match.Filter(items, "chick", model.KindSingle)
	if len(got) != 2 {
		t.Fatalf("expected 2 strict matches, got %d", len(got))
	}

	// Strict pass empty: the typo pass runs.
	got = match.Filter(items, "chicen", model.KindSingle)
	if len(got) != 1 || got[0].Name != "Chicken Breast" {
		t.Fatalf("expected typo fallback to find Chicken Breast, got %v", got)
	}

	// No match under either pass.
	if got = match.Filter(items, "zucchini", model.KindSingle); got != nil {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestFilterStrictPassPrefersLeadingToken(t *testing.T) {
	t.Parallel()
	items := []model.FoodItem{
		{Name: "Scrambled Eggs"},
		{Name: "Eggs Benedict"},
	}

	// A leading-token hit exists, so mid-name matches stay out.
	got := match.Filter(items, "eggs", model.KindSingle)
	if len(got) != 1 || got[0].Name != "Eggs Benedict" {
		t.Fatalf("expected only the leading-token match, got %v", got)
	}

	// With no leading-token candidate the relaxed pass surfaces
	// mid-name matches instead of returning nothing.
	got = match.Filter([]model.FoodItem{{Name: "French Fries"}}, "fries", model.KindSingle)
	if len(got) != 1 {
		t.Fatalf("expected relaxed pass to match mid-name token, got %v", got)
	}

	// The strict-only filter never falls back.
	got = match.FilterStrict(items, "scrambled eggs", model.KindSingle)
	if len(got) != 1 || got[0].Name != "Scrambled Eggs" {
		t.Fatalf("FilterStrict = %v", got)
	}
	if got = match.FilterStrict([]model.FoodItem{{Name: "French Fries"}}, "fries", model.KindSingle); got != nil {
		t.Fatalf("FilterStrict must not relax the first-token rule, got %v", got)
	}
}
