package units

import (
	"strings"
	"sync"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
)

// Egg sizes follow the usual retail grading.
var eggUnitGrams = FoodUnitGrams{
	model.UnitPieceSmall:      38,
	model.UnitPieceMedium:     44,
	model.UnitPieceLarge:      50,
	model.UnitPieceExtraLarge: 56,
}

// Foods whose names contain "egg" without being eggs.
var eggBlocklist = map[string]struct{}{
	"white": {}, "yolk": {}, "eggplant": {}, "nog": {}, "noodle": {},
	"pasta": {}, "salad": {}, "sandwich": {}, "wrap": {}, "burrito": {},
	"taco": {}, "pizza": {}, "burger": {}, "muffin": {}, "bagel": {},
	"roll": {}, "cake": {}, "cookie": {}, "pancake": {}, "waffle": {},
	"rice": {}, "protein": {}, "powder": {}, "substitute": {}, "mix": {},
}

func isEggFood(name string) bool {
	tokens := foodTokens(name)
	hasEgg := false
	for _, t := range tokens {
		if t == "egg" {
			hasEgg = true
			continue
		}
		if _, blocked := eggBlocklist[t]; blocked {
			return false
		}
	}
	return hasEgg
}

// Regional spelling variants folded into the US forms the tables use.
var foodVariantReplacements = [][2]string{
	{"yoghurt", "yogurt"},
	{"chilli", "chili"},
	{"aubergine", "eggplant"},
	{"courgette", "zucchini"},
	{"beetroot", "beet"},
	{"sweetcorn", "corn"},
	{"garbanzo", "chickpea"},
	{"rocket", "arugula"},
	{"coriander", "cilantro"},
	{"sultana", "raisin"},
}

func foodTokens(name string) []string {
	n := query.Normalize(name)
	for _, r := range foodVariantReplacements {
		n = strings.ReplaceAll(n, r[0], r[1])
	}
	tokens := strings.Fields(n)
	for i, t := range tokens {
		tokens[i] = query.Singularize(t)
	}
	return tokens
}

type foodTableEntry struct {
	food  string
	grams FoodUnitGrams
}

// Per-food gram overrides for kitchen and vague units, measured values
// for the foods people most often log by volume or by the handful.
var foodTable = []foodTableEntry{
	{"almond", FoodUnitGrams{
		model.UnitHandful: 30, model.UnitQuarterCup: 36,
		model.UnitHalfCup: 72, model.UnitCup: 143,
	}},
	{"spinach", FoodUnitGrams{
		model.UnitHandful: 10, model.UnitCup: 30,
	}},
	{"flour", FoodUnitGrams{
		model.UnitTeaspoon: 2.6, model.UnitTablespoon: 7.8,
		model.UnitQuarterCup: 31, model.UnitHalfCup: 62,
		model.UnitThreeQuarterCup: 94, model.UnitCup: 125,
	}},
	{"sugar", FoodUnitGrams{
		model.UnitTeaspoon: 4.2, model.UnitTablespoon: 12.5,
		model.UnitQuarterCup: 50, model.UnitHalfCup: 100,
		model.UnitThreeQuarterCup: 150, model.UnitCup: 200,
	}},
	{"rice cooked", FoodUnitGrams{
		model.UnitQuarterCup: 40, model.UnitHalfCup: 79,
		model.UnitThreeQuarterCup: 119, model.UnitCup: 158,
	}},
	{"oat", FoodUnitGrams{
		model.UnitTablespoon: 5.6, model.UnitQuarterCup: 22,
		model.UnitHalfCup: 45, model.UnitCup: 90,
	}},
	{"yogurt", FoodUnitGrams{
		model.UnitTeaspoon: 5.2, model.UnitTablespoon: 15.6,
		model.UnitQuarterCup: 61, model.UnitHalfCup: 122,
		model.UnitThreeQuarterCup: 184, model.UnitCup: 245,
	}},
	{"peanut butter", FoodUnitGrams{
		model.UnitTeaspoon: 5.4, model.UnitTablespoon: 16,
		model.UnitQuarterCup: 64, model.UnitHalfCup: 129,
	}},
	{"olive oil", FoodUnitGrams{
		model.UnitTeaspoon: 4.5, model.UnitTablespoon: 13.5,
		model.UnitQuarterCup: 54, model.UnitCup: 216,
	}},
	{"honey", FoodUnitGrams{
		model.UnitTeaspoon: 7, model.UnitTablespoon: 21,
		model.UnitQuarterCup: 85, model.UnitCup: 340,
	}},
	{"banana", FoodUnitGrams{
		model.UnitPieceSmall: 101, model.UnitPieceMedium: 118,
		model.UnitPieceLarge: 136,
	}},
	{"apple", FoodUnitGrams{
		model.UnitPieceSmall: 149, model.UnitPieceMedium: 182,
		model.UnitPieceLarge: 223,
	}},
	{"blueberry", FoodUnitGrams{
		model.UnitHandful: 38, model.UnitQuarterCup: 37,
		model.UnitHalfCup: 74, model.UnitCup: 148,
	}},
	{"cheese grated", FoodUnitGrams{
		model.UnitTablespoon: 6, model.UnitQuarterCup: 28,
		model.UnitHalfCup: 56, model.UnitCup: 113,
	}},
}

type foodAlias struct {
	tokens []string
	index  int
	score  int
}

var (
	foodAliasesOnce sync.Once
	foodAliases     []foodAlias

	tableCacheMu sync.Mutex
	tableCache   = map[string]FoodUnitGrams{}
)

func buildAliases() {
	for i, entry := range foodTable {
		tokens := foodTokens(entry.food)
		if len(tokens) == 0 {
			continue
		}
		foodAliases = append(foodAliases, foodAlias{tokens: tokens, index: i, score: len(tokens)})
	}
}

// lookupFoodTable finds the best table entry whose alias tokens are all
// present in the food name. More specific aliases (more tokens) win.
// Results are memoized per normalized name.
func lookupFoodTable(name string) FoodUnitGrams {
	foodAliasesOnce.Do(buildAliases)

	key := query.Normalize(name)
	if key == "" {
		return nil
	}
	tableCacheMu.Lock()
	if cached, ok := tableCache[key]; ok {
		tableCacheMu.Unlock()
		return cached
	}
	tableCacheMu.Unlock()

	tokens := map[string]struct{}{}
	for _, t := range foodTokens(name) {
		tokens[t] = struct{}{}
	}

	bestScore, bestIndex := 0, -1
	for _, alias := range foodAliases {
		all := true
		for _, t := range alias.tokens {
			if _, ok := tokens[t]; !ok {
				all = false
				break
			}
		}
		if all && alias.score > bestScore {
			bestScore = alias.score
			bestIndex = alias.index
		}
	}

	var result FoodUnitGrams
	if bestIndex >= 0 {
		result = foodTable[bestIndex].grams
	}
	tableCacheMu.Lock()
	tableCache[key] = result
	tableCacheMu.Unlock()
	return result
}
