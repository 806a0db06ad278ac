// Package nutrition scales an item's per-serving macros into final
// logged totals.
package nutrition

import (
	"math"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/units"
)

// Multiplier computes how many base servings the user-entered amount
// represents: the amount converted into the base unit, divided by the
// base amount. Unknown bases default to 1 and negatives floor at 0, so
// a broken parse can never produce NaN or negative nutrition.
func Multiplier(amount float64, unit model.MeasurementUnit, base model.BaseAmount, pieceGrams float64, foodGrams units.FoodUnitGrams) float64 {
	if !base.Known() {
		return 1
	}
	inBase := units.Convert(amount, unit, base.Unit, base, pieceGrams, foodGrams)
	m := inBase / base.Amount
	if math.IsNaN(m) || m < 0 {
		return 0
	}
	return m
}

// Scale multiplies item's per-serving macros by multiplier. Calories
// round to whole kcal and gram fields to three decimals; the rounding
// is deterministic so repeated commits of the same input are
// idempotent.
func Scale(item model.FoodItem, multiplier float64) model.NutritionTotals {
	if multiplier < 0 {
		multiplier = 0
	}
	return model.NutritionTotals{
		Calories: int(math.Round(model.FloatValue(item.Calories) * multiplier)),
		ProteinG: Round3(model.FloatValue(item.ProteinG) * multiplier),
		CarbsG:   Round3(model.FloatValue(item.CarbsG) * multiplier),
		FatG:     Round3(model.FloatValue(item.FatG) * multiplier),
		FiberG:   Round3(model.FloatValue(item.FiberG) * multiplier),
		SugarG:   Round3(model.FloatValue(item.SugarG) * multiplier),
	}
}

// ScaleOption rebases an item's macros onto one of its serving
// variants, returning a copy whose macros and serving label describe
// the variant. Macros must be re-derived whenever the serving changes;
// this is the only place that rewrite happens.
func ScaleOption(item model.FoodItem, option model.ServingOption) model.FoodItem {
	out := item
	out.ServingSize = option.Label
	out.Calories = option.Calories
	out.ProteinG = option.ProteinG
	out.CarbsG = option.CarbsG
	out.FatG = option.FatG
	out.FiberG = option.FiberG
	out.SugarG = option.SugarG
	return out
}

// Round3 is the shared gram rounding: half away from zero at three
// decimals. Displayed amounts and logged totals use the same helper so
// the two can never drift.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
