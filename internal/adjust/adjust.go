// Package adjust holds the session-local state of one in-progress food
// selection: the chosen item, serving variant, free-typed amount, and
// unit. A State is created when a result is picked for logging and
// destroyed on commit or cancel; it is never persisted and never shared
// across concurrent edits.
package adjust

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/nutrition"
	"github.com/helfiapp/foodresolve/internal/serving"
	"github.com/helfiapp/foodresolve/internal/units"
)

// FoodLog is the external sink finalized entries are handed to.
type FoodLog interface {
	Append(ctx context.Context, entry model.LogEntry) (string, error)
}

// State is one active editing session.
type State struct {
	ID         string
	Item       model.FoodItem
	Option     *model.ServingOption
	AmountText string
	Unit       model.MeasurementUnit
	Base       model.BaseAmount
	PieceGrams float64

	foodGrams units.FoodUnitGrams
}

// NewState starts an editing session for item. The base amount is
// parsed from the serving label (preferring the best serving variant
// when the item has them), the piece weight is inferred from the name
// and label, and the default amount/unit mirror the base so the initial
// multiplier is exactly 1.
func NewState(item model.FoodItem) *State {
	s := &State{
		ID:   uuid.NewString(),
		Item: item,
	}

	if len(item.ServingOptions) > 0 {
		if best := serving.PickBest(item.ServingOptions); best != nil {
			s.Option = best
			s.Item = nutrition.ScaleOption(item, *best)
		}
	}

	s.Base = serving.ParseBase(s.Item.ServingSize)
	s.PieceGrams = serving.ExtractPieceGrams(s.Item.Name + " " + s.Item.ServingSize)
	s.foodGrams = units.ForFood(s.Item.Name)

	if s.Base.Known() {
		s.AmountText = strconv.FormatFloat(s.Base.Amount, 'f', -1, 64)
		s.Unit = s.Base.Unit
	} else {
		s.AmountText = "1"
		s.Unit = model.UnitServing
	}
	return s
}

// AllowedUnits returns the units this session's food may be entered in.
func (s *State) AllowedUnits() []model.MeasurementUnit {
	return units.AllowedUnits(s.Item.Name, s.PieceGrams, len(s.Item.ServingOptions) > 0)
}

// SetAmount records a free-typed amount. Anything that does not parse
// to a positive number contributes an amount of zero.
func (s *State) SetAmount(text string) {
	s.AmountText = text
}

// SetUnit switches the entry unit, converting the current amount so the
// quantity the user is describing stays the same.
func (s *State) SetUnit(unit model.MeasurementUnit) {
	if unit == s.Unit {
		return
	}
	converted := units.Convert(s.Amount(), s.Unit, unit, s.Base, s.PieceGrams, s.foodGrams)
	s.Unit = unit
	s.AmountText = strconv.FormatFloat(nutrition.Round3(converted), 'f', -1, 64)
}

// SelectOption switches to a different serving variant, rebasing the
// item's macros and re-deriving the base amount.
func (s *State) SelectOption(option model.ServingOption) {
	s.Option = &option
	s.Item = nutrition.ScaleOption(s.Item, option)
	s.Base = serving.ParseBase(s.Item.ServingSize)
	if !s.Base.Known() && option.Grams != nil && *option.Grams > 0 {
		s.Base = model.BaseAmount{Amount: *option.Grams, Unit: model.UnitGram}
	}
}

// Amount parses the free-typed amount, returning 0 for malformed or
// negative input.
func (s *State) Amount() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.AmountText), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Multiplier is the number of base servings the current amount/unit
// selection represents.
func (s *State) Multiplier() float64 {
	return nutrition.Multiplier(s.Amount(), s.Unit, s.Base, s.PieceGrams, s.foodGrams)
}

// Totals is the scaled nutrition for the current selection.
func (s *State) Totals() model.NutritionTotals {
	return nutrition.Scale(s.Item, s.Multiplier())
}

// Commit finalizes the session into a log entry and hands it to the
// sink. The item must carry complete core macros; incomplete items were
// filtered upstream, so reaching this with one is a caller bug surfaced
// as ErrIncompleteItem.
func (s *State) Commit(ctx context.Context, log FoodLog, date string, category model.MealCategory) (string, error) {
	if !s.Item.Usable() {
		return "", ErrIncompleteItem
	}
	entry := model.LogEntry{
		ID:           uuid.NewString(),
		Description:  describe(s.Item),
		Nutrition:    s.Totals(),
		Items:        []model.FoodItem{s.Item},
		Date:         date,
		MealCategory: category,
		Timestamp:    time.Now().UTC(),
	}
	return log.Append(ctx, entry)
}

func describe(item model.FoodItem) string {
	if item.Brand != "" {
		return item.Name + " - " + item.Brand
	}
	return item.Name
}
