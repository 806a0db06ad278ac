// Package match decides whether a candidate food item's name or brand
// matches a free-text query, with optional typo tolerance. The edit
// check is a bespoke bounded comparison over short prefixes rather than
// a generic distance table; see Options for the tuning knobs.
package match

import (
	"regexp"
	"strings"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

// minTypoQueryLen disables typo tolerance for very short query tokens,
// where a single edit would match nearly anything.
const minTypoQueryLen = 3

// Options control one matching pass.
type Options struct {
	// RequireFirstToken forces the first query token to match the
	// candidate's first name token, keeping single-word queries strict
	// ("eggs" should surface "Eggs, scrambled" before "Eggplant").
	RequireFirstToken bool
	// AllowTypo enables the one-edit comparison for query tokens of
	// length >= 3 whose first character matches the name token.
	AllowTypo bool
}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// stripParens removes parenthesized clauses so synonyms inside them
// ("Aubergine (eggplant)") cannot produce surprise matches.
func stripParens(s string) string {
	return strings.TrimSpace(parenthetical.ReplaceAllString(s, ""))
}

// Matches reports whether name matches q under opts.
func Matches(name, q string, opts Options) bool {
	normalizedQuery := query.Normalize(q)
	if normalizedQuery == "" {
		return false
	}

	nameTokens := query.Tokens(stripParens(name))
	if len(nameTokens) == 0 {
		return false
	}

	// Single-character query: prefix check only, no typo tolerance.
	if len(normalizedQuery) == 1 {
		if opts.RequireFirstToken {
			return strings.HasPrefix(nameTokens[0], normalizedQuery)
		}
		for _, tok := range nameTokens {
			if strings.HasPrefix(tok, normalizedQuery) {
				return true
			}
		}
		return false
	}

	queryTokens := usableTokens(query.Tokens(q))
	if len(queryTokens) == 0 {
		return false
	}

	if opts.RequireFirstToken {
		if !firstTokenMatches(nameTokens[0], queryTokens[0], opts.AllowTypo) {
			return false
		}
		queryTokens = queryTokens[1:]
	}

	for _, qt := range queryTokens {
		if !anyTokenMatches(nameTokens, qt, opts.AllowTypo) {
			return false
		}
	}
	return true
}

// MatchesBranded matches against both the bare name and the brand+name
// concatenation, additionally accepting the query when its compacted
// form is a substring of the compacted brand+name. That last path is
// what lets "mcdonalds" find "McDonald's Big Mac".
func MatchesBranded(name, brand, q string, opts Options) bool {
	if Matches(name, q, opts) {
		return true
	}
	if brand != "" {
		combined := brand + " " + name
		loose := opts
		loose.RequireFirstToken = false
		if Matches(combined, q, loose) {
			return true
		}
		compactTarget := query.Compact(combined)
		for _, qt := range usableTokens(query.Tokens(q)) {
			if !strings.Contains(compactTarget, query.Compact(qt)) {
				return false
			}
		}
		return len(usableTokens(query.Tokens(q))) > 0
	}
	return false
}

func usableTokens(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if len(t) >= 2 {
			out = append(out, t)
		}
	}
	return out
}

func firstTokenMatches(word, token string, allowTypo bool) bool {
	if word == token {
		return true
	}
	if query.Singularize(word) == query.Singularize(token) {
		return true
	}
	if strings.HasPrefix(word, token) {
		return true
	}
	if sw := query.Singularize(word); sw != word && strings.HasPrefix(sw, token) {
		return true
	}
	if st := query.Singularize(token); st != token && strings.HasPrefix(word, st) {
		return true
	}
	return allowTypo && typoMatches(word, token)
}

func anyTokenMatches(nameTokens []string, token string, allowTypo bool) bool {
	for _, word := range nameTokens {
		if tokenMatches(word, token, allowTypo) {
			return true
		}
	}
	return false
}

func tokenMatches(word, token string, allowTypo bool) bool {
	if word == "" || token == "" {
		return false
	}
	if strings.HasPrefix(word, token) {
		return true
	}
	if sw := query.Singularize(word); sw != word && strings.HasPrefix(sw, token) {
		return true
	}
	if st := query.Singularize(token); st != token {
		if strings.HasPrefix(word, st) {
			return true
		}
		if sw := query.Singularize(word); sw != word && strings.HasPrefix(sw, st) {
			return true
		}
	}
	return allowTypo && typoMatches(word, token)
}

// typoWindowSlack widens the prefix window by one character so an
// insertion typo at the end of the query still lines up. The exact
// width was tuned against real query logs; treat it as configurable,
// not algorithmic truth.
const typoWindowSlack = 1

// typoMatches reports whether token is within one edit (substitution,
// insertion, or deletion) of a same-length or one-longer prefix of
// word. The first characters must agree, which is a cheap pre-filter
// that rejects most candidates before the edit walk.
func typoMatches(word, token string) bool {
	if len(token) < minTypoQueryLen {
		return false
	}
	if word == "" || word[0] != token[0] {
		return false
	}
	end := len(token)
	if end > len(word) {
		end = len(word)
	}
	if oneEditAway(token, word[:end]) {
		return true
	}
	end = len(token) + typoWindowSlack
	if end > len(word) {
		end = len(word)
	}
	return oneEditAway(token, word[:end])
}

// oneEditAway is a direct bounded Levenshtein <= 1 check. Inputs are
// short tokens, so the two-pointer walk beats a DP table.
func oneEditAway(a, b string) bool {
	la, lb := len(a), len(b)
	if la-lb > 1 || lb-la > 1 {
		return false
	}
	if la == lb {
		mismatches := 0
		for i := 0; i < la; i++ {
			if a[i] != b[i] {
				mismatches++
				if mismatches > 1 {
					return false
				}
			}
		}
		return true
	}
	shorter, longer := a, b
	if la > lb {
		shorter, longer = b, a
	}
	i, j, edits := 0, 0, 0
	for i < len(shorter) && j < len(longer) {
		if shorter[i] == longer[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		j++
	}
	return true
}

// Filter applies the two-pass policy across a candidate set: a strict
// pass first, requiring the leading query token to open the name, and
// only when it yields nothing a relaxed typo-tolerant rerun. Leading
// prefix matches are therefore never starved out by noisier token or
// typo matches, and the common case stays cheap.
func Filter(items []model.FoodItem, q string, kind model.SearchKind) []model.FoodItem {
	strict := filterPass(items, q, kind, Options{RequireFirstToken: true})
	if len(strict) > 0 {
		return strict
	}
	return filterPass(items, q, kind, Options{AllowTypo: true})
}

// FilterStrict runs only the strict pass. Cached result sets are
// served through this so a stale cache never contributes typo or
// mid-name matches.
func FilterStrict(items []model.FoodItem, q string, kind model.SearchKind) []model.FoodItem {
	return filterPass(items, q, kind, Options{RequireFirstToken: true})
}

func filterPass(items []model.FoodItem, q string, kind model.SearchKind, opts Options) []model.FoodItem {
	var out []model.FoodItem
	for _, item := range items {
		ok := false
		if kind == model.KindPackaged {
			ok = MatchesBranded(item.Name, item.Brand, q, opts)
		} else {
			ok = Matches(item.Name, q, opts)
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}
