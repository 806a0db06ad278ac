// Package units converts amounts between measurement units. Every
// conversion routes through grams as the pivot; a conversion with no
// pivot path returns the input amount unchanged, and callers treat that
// as "use amount as entered".
package units

import (
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/serving"
)

// FoodUnitGrams overrides the default gram weight of specific units for
// a specific food ("handful of almonds" weighs more than "handful of
// spinach").
type FoodUnitGrams map[model.MeasurementUnit]float64

// Default gram weights per unit. Cup weights assume a food-diary cup of
// 218 g; ml is treated 1:1 with g, which is the convention the rest of
// the tables are calibrated against.
var defaultUnitGrams = map[model.MeasurementUnit]float64{
	model.UnitGram:            1,
	model.UnitMilliliter:      1,
	model.UnitOunce:           28.3495,
	model.UnitTeaspoon:        5,
	model.UnitTablespoon:      14,
	model.UnitQuarterCup:      218.0 / 4,
	model.UnitHalfCup:         218.0 / 2,
	model.UnitThreeQuarterCup: 218.0 * 3 / 4,
	model.UnitCup:             218,
	model.UnitPinch:           0.3,
	model.UnitHandful:         30,
	model.UnitPiece:           100,
	model.UnitPieceSmall:      100,
	model.UnitPieceMedium:     100,
	model.UnitPieceLarge:      100,
	model.UnitPieceExtraLarge: 100,
	model.UnitSlice:           30,
	model.UnitServing:         100,
}

// resolveUnitGrams returns the gram weight of one unit for a food,
// preferring the food-specific table, then the inferred piece weight,
// then the declared base serving for base-relative units, then the
// defaults. Returns 0 when no pivot path exists.
func resolveUnitGrams(unit model.MeasurementUnit, base model.BaseAmount, pieceGrams float64, foodGrams FoodUnitGrams) float64 {
	if g, ok := foodGrams[unit]; ok && g > 0 {
		return g
	}
	switch unit {
	case model.UnitPiece, model.UnitPieceSmall, model.UnitPieceMedium,
		model.UnitPieceLarge, model.UnitPieceExtraLarge:
		if pieceGrams > 0 {
			return pieceGrams
		}
		return defaultUnitGrams[model.UnitPiece]
	case model.UnitServing, model.UnitSlice, model.UnitHandful:
		if base.Known() {
			if per, ok := defaultUnitGrams[base.Unit]; ok {
				return base.Amount * per
			}
		}
	}
	return defaultUnitGrams[unit]
}

// Convert converts amount from one unit to another. base is the food's
// declared serving, used as the pivot for base-relative units;
// pieceGrams is the inferred weight of one piece; foodGrams carries
// food-specific overrides. An unresolvable conversion returns amount
// unchanged rather than failing.
func Convert(amount float64, from, to model.MeasurementUnit, base model.BaseAmount, pieceGrams float64, foodGrams FoodUnitGrams) float64 {
	if from == to {
		return amount
	}
	fromGrams := resolveUnitGrams(from, base, pieceGrams, foodGrams)
	toGrams := resolveUnitGrams(to, base, pieceGrams, foodGrams)
	if fromGrams <= 0 || toGrams <= 0 {
		return amount
	}
	return amount * fromGrams / toGrams
}

// displayUnits is the ordered baseline offered for any food.
var displayUnits = []model.MeasurementUnit{
	model.UnitGram,
	model.UnitMilliliter,
	model.UnitOunce,
	model.UnitTeaspoon,
	model.UnitTablespoon,
	model.UnitQuarterCup,
	model.UnitHalfCup,
	model.UnitThreeQuarterCup,
	model.UnitCup,
	model.UnitPinch,
}

var pieceUnits = []model.MeasurementUnit{
	model.UnitPieceSmall,
	model.UnitPieceMedium,
	model.UnitPieceLarge,
	model.UnitPieceExtraLarge,
}

// AllowedUnits returns the ordered subset of units to offer for a food.
// Piece grades and slice appear only for discrete foods or when a piece
// weight was inferred; serving appears only when the item actually has
// serving variants. Egg-like foods drop the volume units entirely.
func AllowedUnits(name string, pieceGrams float64, hasServingOptions bool) []model.MeasurementUnit {
	var out []model.MeasurementUnit

	if isEggFood(name) {
		out = append(out, model.UnitGram, model.UnitOunce)
		out = append(out, pieceUnits...)
	} else {
		out = append(out, displayUnits...)
		if serving.IsDiscreteFood(name) || pieceGrams > 0 {
			out = append(out, pieceUnits...)
			out = append(out, model.UnitSlice)
		}
	}

	if hasServingOptions {
		out = append(out, model.UnitServing)
	}
	return out
}

// ForFood resolves the food-specific gram table for a named food, or
// nil when the food has no overrides.
func ForFood(name string) FoodUnitGrams {
	if isEggFood(name) {
		return eggUnitGrams
	}
	return lookupFoodTable(name)
}
