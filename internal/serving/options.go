package serving

import (
	"regexp"
	"sort"
	"strings"

	"github.com/helfiapp/foodresolve/internal/model"
)

// Scoring weights for PickBest. Several providers default to "per
// 100 g" as a universal baseline, which is nutritionally correct but a
// poor diary default, so it is pushed hard to the bottom.
const (
	scoreServingWord   = 4
	scorePieceWord     = 3
	scorePlausibleMass = 3
	scoreExactHundred  = -6
	scoreHundredLabel  = -10

	plausibleMinGrams = 40
	plausibleMaxGrams = 400
)

var hundredGramLabel = regexp.MustCompile(`(?i)\b100\s*g\b`)

var pieceWords = []string{"piece", "burger", "sandwich", "slice"}

// IsGenericHundredGram reports whether a serving label textually
// denotes the generic per-100g default.
func IsGenericHundredGram(label string) bool {
	return hundredGramLabel.MatchString(label)
}

// PickBest scores the serving variants of one item and returns the
// most representative, or nil when none qualify. Options missing any
// core macro are discarded first, and "100 g" options are filtered out
// whenever at least one real alternative exists.
func PickBest(options []model.ServingOption) *model.ServingOption {
	pool := make([]model.ServingOption, 0, len(options))
	for _, o := range options {
		if o.Usable() {
			pool = append(pool, o)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	nonGeneric := make([]model.ServingOption, 0, len(pool))
	for _, o := range pool {
		if !IsGenericHundredGram(o.Label) {
			nonGeneric = append(nonGeneric, o)
		}
	}
	if len(nonGeneric) > 0 {
		pool = nonGeneric
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return scoreOption(pool[i]) > scoreOption(pool[j])
	})
	best := pool[0]
	return &best
}

func scoreOption(o model.ServingOption) int {
	label := strings.ToLower(o.Label)
	score := 0
	if strings.Contains(label, "serving") {
		score += scoreServingWord
	}
	for _, w := range pieceWords {
		if strings.Contains(label, w) {
			score += scorePieceWord
			break
		}
	}
	if o.Grams != nil {
		g := *o.Grams
		if g >= plausibleMinGrams && g <= plausibleMaxGrams {
			score += scorePlausibleMass
		}
		if g == 100 {
			score += scoreExactHundred
		}
	}
	if IsGenericHundredGram(o.Label) {
		score += scoreHundredLabel
	}
	return score
}
