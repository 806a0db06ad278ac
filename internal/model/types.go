package model

import "time"

// Source identifies which external food-data provider an item came from.
type Source string

const (
	SourceAuto          Source = "auto"
	SourceOpenFoodFacts Source = "openfoodfacts"
	SourceUSDA          Source = "usda"
	SourceMenu          Source = "menu"
	SourceCustom        Source = "custom"
)

// SearchKind selects between branded/packaged goods and single
// (generic) foods. Providers and the matcher treat the two differently.
type SearchKind string

const (
	KindPackaged SearchKind = "packaged"
	KindSingle   SearchKind = "single"
)

type MealCategory string

const (
	MealBreakfast     MealCategory = "breakfast"
	MealLunch         MealCategory = "lunch"
	MealDinner        MealCategory = "dinner"
	MealSnacks        MealCategory = "snacks"
	MealUncategorized MealCategory = "uncategorized"
)

// MeasurementUnit is the closed set of units the converter understands.
// Piece sizes are distinct units so the UI can offer graded choices for
// discrete foods (one small banana vs one large banana).
type MeasurementUnit string

const (
	UnitGram            MeasurementUnit = "g"
	UnitMilliliter      MeasurementUnit = "ml"
	UnitOunce           MeasurementUnit = "oz"
	UnitTeaspoon        MeasurementUnit = "tsp"
	UnitTablespoon      MeasurementUnit = "tbsp"
	UnitQuarterCup      MeasurementUnit = "quarter-cup"
	UnitHalfCup         MeasurementUnit = "half-cup"
	UnitThreeQuarterCup MeasurementUnit = "three-quarter-cup"
	UnitCup             MeasurementUnit = "cup"
	UnitPinch           MeasurementUnit = "pinch"
	UnitHandful         MeasurementUnit = "handful"
	UnitPiece           MeasurementUnit = "piece"
	UnitPieceSmall      MeasurementUnit = "piece-small"
	UnitPieceMedium     MeasurementUnit = "piece-medium"
	UnitPieceLarge      MeasurementUnit = "piece-large"
	UnitPieceExtraLarge MeasurementUnit = "piece-extra-large"
	UnitSlice           MeasurementUnit = "slice"
	UnitServing         MeasurementUnit = "serving"
)

// BaseAmount is the parsed foundation of a serving label: the quantity
// and unit the item's macro values are relative to. The zero value
// means the label could not be parsed; callers treat that as "unknown
// base", never as an error.
type BaseAmount struct {
	Amount float64
	Unit   MeasurementUnit
}

func (b BaseAmount) Known() bool {
	return b.Amount > 0 && b.Unit != ""
}

// FoodItem is a candidate or resolved food returned by a provider or
// synthesized locally. Macro fields are per one serving as described by
// ServingSize at capture time and are nil when the provider omitted
// them.
type FoodItem struct {
	Source         Source          `json:"source"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand,omitempty"`
	ServingSize    string          `json:"serving_size,omitempty"`
	ServingOptions []ServingOption `json:"serving_options,omitempty"`
	Calories       *float64        `json:"calories"`
	ProteinG       *float64        `json:"protein_g"`
	CarbsG         *float64        `json:"carbs_g"`
	FatG           *float64        `json:"fat_g"`
	FiberG         *float64        `json:"fiber_g"`
	SugarG         *float64        `json:"sugar_g"`
}

// Usable reports whether all four core macros are present. Items
// missing any of them are filtered out before display or commit so
// partial nutrition never corrupts downstream totals.
func (f FoodItem) Usable() bool {
	return f.Calories != nil && f.ProteinG != nil && f.CarbsG != nil && f.FatG != nil
}

// ServingOption is one named serving-size variant of a food (Small,
// Medium, Large) carrying its own macro values.
type ServingOption struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Grams    *float64        `json:"grams,omitempty"`
	ML       *float64        `json:"ml,omitempty"`
	Unit     MeasurementUnit `json:"unit,omitempty"`
	Calories *float64        `json:"calories"`
	ProteinG *float64        `json:"protein_g"`
	CarbsG   *float64        `json:"carbs_g"`
	FatG     *float64        `json:"fat_g"`
	FiberG   *float64        `json:"fiber_g"`
	SugarG   *float64        `json:"sugar_g"`
}

func (o ServingOption) Usable() bool {
	return o.Calories != nil && o.ProteinG != nil && o.CarbsG != nil && o.FatG != nil
}

// NutritionTotals is the final scaled nutrition for a logged entry.
// Calories are whole kcal, gram fields are rounded to three decimals so
// repeated commits of the same input are byte-identical.
type NutritionTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
}

// LogEntry is the finalized record handed to the food-log sink.
type LogEntry struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Nutrition    NutritionTotals `json:"nutrition"`
	Items        []FoodItem      `json:"items"`
	Date         string          `json:"date"`
	MealCategory MealCategory    `json:"meal_category"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Float returns a pointer to v, for building items with optional macros.
func Float(v float64) *float64 { return &v }

// FloatValue dereferences p, returning 0 when nil.
func FloatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
