// Package serving parses free-text serving labels into typed base
// amounts and selects the most representative serving variant.
package serving

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

// Gram equivalents for legacy units that are normalized away at parse
// time, so only a small closed set of units ever reaches the converter
// as a base.
const (
	sliceGrams   = 30
	handfulGrams = 30
	servingGrams = 100
)

var unitWords = map[string]model.MeasurementUnit{
	"g": model.UnitGram, "gram": model.UnitGram, "grams": model.UnitGram,
	"ml": model.UnitMilliliter, "milliliter": model.UnitMilliliter,
	"milliliters": model.UnitMilliliter, "millilitre": model.UnitMilliliter,
	"millilitres": model.UnitMilliliter,
	"oz": model.UnitOunce, "ounce": model.UnitOunce, "ounces": model.UnitOunce,
	"tsp": model.UnitTeaspoon, "teaspoon": model.UnitTeaspoon, "teaspoons": model.UnitTeaspoon,
	"tbsp": model.UnitTablespoon, "tablespoon": model.UnitTablespoon, "tablespoons": model.UnitTablespoon,
	"cup": model.UnitCup, "cups": model.UnitCup,
	"pinch": model.UnitPinch, "pinches": model.UnitPinch,
	"handful": model.UnitHandful, "handfuls": model.UnitHandful,
	"piece": model.UnitPiece, "pieces": model.UnitPiece,
	"slice": model.UnitSlice, "slices": model.UnitSlice,
	"serving": model.UnitServing, "servings": model.UnitServing,
}

const unitWordPattern = `(g|grams?|ml|millilit(?:er|re)s?|oz|ounces?|tsp|teaspoons?|tbsp|tablespoons?|cups?|pinch(?:es)?|handfuls?|pieces?|slices?|servings?)`

// Quantity patterns are an ordered table rather than one monolithic
// regex: mixed numbers must be tried before simple fractions, and
// fractions before plain decimals, or "1 1/2" parses as "1".
var basePatterns = []struct {
	re    *regexp.Regexp
	value func(m []string) float64
}{
	{
		// Mixed number: "1 1/2 cups".
		re: regexp.MustCompile(`(?i)(\d+)\s+(\d+)\s*/\s*(\d+)\s*` + unitWordPattern + `\b`),
		value: func(m []string) float64 {
			whole, _ := strconv.ParseFloat(m[1], 64)
			num, _ := strconv.ParseFloat(m[2], 64)
			den, _ := strconv.ParseFloat(m[3], 64)
			if den == 0 {
				return 0
			}
			return whole + num/den
		},
	},
	{
		// Simple fraction: "3/4 cup".
		re: regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*` + unitWordPattern + `\b`),
		value: func(m []string) float64 {
			num, _ := strconv.ParseFloat(m[1], 64)
			den, _ := strconv.ParseFloat(m[2], 64)
			if den == 0 {
				return 0
			}
			return num / den
		},
	},
	{
		// Integer or decimal: "240 ml", "2.5 oz".
		re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*` + unitWordPattern + `\b`),
		value: func(m []string) float64 {
			v, _ := strconv.ParseFloat(m[1], 64)
			return v
		},
	},
}

var parenClause = regexp.MustCompile(`\(([^)]*)\)`)

// ParseBase extracts the quantity and unit a serving label declares.
// A parenthesized clarifying clause takes precedence over the rest of
// the label, since many providers put the authoritative gram/ml amount
// there ("1 cup (240 ml)"). Returns the zero BaseAmount when nothing
// parses; that is "unknown base", not an error.
func ParseBase(label string) model.BaseAmount {
	raw := strings.TrimSpace(query.ReplaceWordNumbers(label))
	if raw == "" {
		return model.BaseAmount{}
	}

	if paren := parenClause.FindStringSubmatch(raw); paren != nil {
		if base := parseBaseText(paren[1]); base.Known() {
			return base
		}
	}
	return parseBaseText(raw)
}

func parseBaseText(text string) model.BaseAmount {
	for _, p := range basePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount := p.value(m)
		if amount <= 0 {
			continue
		}
		unit, ok := unitWords[strings.ToLower(m[len(m)-1])]
		if !ok {
			continue
		}
		return normalizeLegacyBase(amount, unit)
	}
	return model.BaseAmount{}
}

// normalizeLegacyBase converts slice/handful/serving bases to their
// fixed gram equivalents so the converter's base input space stays
// small.
func normalizeLegacyBase(amount float64, unit model.MeasurementUnit) model.BaseAmount {
	switch unit {
	case model.UnitSlice:
		return model.BaseAmount{Amount: amount * sliceGrams, Unit: model.UnitGram}
	case model.UnitHandful:
		return model.BaseAmount{Amount: amount * handfulGrams, Unit: model.UnitGram}
	case model.UnitServing:
		return model.BaseAmount{Amount: amount * servingGrams, Unit: model.UnitGram}
	}
	return model.BaseAmount{Amount: amount, Unit: unit}
}

// Words that mark a food as counted in discrete pieces. Shared with the
// unit layer, which uses the same vocabulary to decide whether piece
// units should be offered at all.
var discreteWords = []string{
	"egg", "slice", "patty", "pattie", "nugget", "wing", "strip",
	"tender", "bite", "piece", "cookie", "cracker", "biscuit",
	"banana", "bun", "burger", "sandwich", "taco", "wrap",
}

// IsDiscreteFood reports whether the label's vocabulary suggests a food
// eaten in countable pieces.
func IsDiscreteFood(label string) bool {
	for _, tok := range query.Tokens(label) {
		s := query.Singularize(tok)
		for _, w := range discreteWords {
			if s == w {
				return true
			}
		}
	}
	return false
}

var gramAmount = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:g|grams?)\b`)
var countAmount = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ExtractPieceGrams detects discrete-food phrasing such as
// "2 eggs (100 g)" and derives the weight of a single piece by dividing
// the total grams by the count. Returns 0 when no piece weight can be
// inferred.
func ExtractPieceGrams(label string) float64 {
	raw := query.ReplaceWordNumbers(label)
	if !IsDiscreteFood(raw) {
		return 0
	}

	grams := 0.0
	if m := gramAmount.FindStringSubmatch(raw); m != nil {
		grams, _ = strconv.ParseFloat(m[1], 64)
	}
	if grams <= 0 {
		return 0
	}

	// The count is the first quantity that is not the gram amount
	// itself ("2 eggs (100 g)" -> 2, not 100).
	count := 0.0
	for _, m := range countAmount.FindAllStringSubmatch(gramAmount.ReplaceAllString(raw, " "), -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 {
			count = v
			break
		}
	}
	if count <= 0 {
		count = 1
	}
	return grams / count
}
