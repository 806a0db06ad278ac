package adjust

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/nutrition"
)

type captureLog struct {
	entry model.LogEntry
	calls int
}

func (c *captureLog) Append(_ context.Context, entry model.LogEntry) (string, error) {
	c.entry = entry
	c.calls++
	return "entry-1", nil
}

func massItem() model.FoodItem {
	return model.FoodItem{
		Source:      model.SourceUSDA,
		ID:          "usda-1",
		Name:        "Chicken Breast",
		ServingSize: "100 g",
		Calories:    model.Float(165),
		ProteinG:    model.Float(31),
		CarbsG:      model.Float(0),
		FatG:        model.Float(3.6),
	}
}

func TestNewStateMirrorsBase(t *testing.T) {
	t.Parallel()

	s := NewState(massItem())
	if s.AmountText != "100" || s.Unit != model.UnitGram {
		t.Fatalf("initial selection = %q %q, want 100 g", s.AmountText, s.Unit)
	}
	if m := s.Multiplier(); m != 1 {
		t.Fatalf("initial multiplier = %v, want 1", m)
	}
	if got := s.Totals().Calories; got != 165 {
		t.Fatalf("initial calories = %d, want 165", got)
	}
}

func TestNewStateUnparsableLabelDefaultsToOneServing(t *testing.T) {
	t.Parallel()

	item := massItem()
	item.ServingSize = "family pack"
	s := NewState(item)
	if s.AmountText != "1" || s.Unit != model.UnitServing {
		t.Fatalf("default selection = %q %q, want 1 serving", s.AmountText, s.Unit)
	}
	if m := s.Multiplier(); m != 1 {
		t.Fatalf("multiplier with unknown base = %v, want 1", m)
	}
}

func TestNewStatePicksBestServingOption(t *testing.T) {
	t.Parallel()

	item := massItem()
	item.Name = "French Fries"
	item.ServingSize = "100 g"
	item.ServingOptions = []model.ServingOption{
		{ID: "std", Label: "100 g", Grams: model.Float(100), Calories: model.Float(312), ProteinG: model.Float(3.4), CarbsG: model.Float(41), FatG: model.Float(15)},
		{ID: "med", Label: "Medium (111 g)", Grams: model.Float(111), Calories: model.Float(346), ProteinG: model.Float(3.8), CarbsG: model.Float(46), FatG: model.Float(16)},
	}

	s := NewState(item)
	if s.Option == nil || s.Option.ID != "med" {
		t.Fatalf("picked option = %+v, want med", s.Option)
	}
	if s.Item.ServingSize != "Medium (111 g)" {
		t.Fatalf("serving size = %q, want Medium (111 g)", s.Item.ServingSize)
	}
	if got := model.FloatValue(s.Item.Calories); got != 346 {
		t.Fatalf("rebased calories = %v, want 346", got)
	}
	if s.Base != (model.BaseAmount{Amount: 111, Unit: model.UnitGram}) {
		t.Fatalf("base = %+v, want 111 g", s.Base)
	}
}

func TestSetAmountMalformedScalesToZero(t *testing.T) {
	t.Parallel()

	s := NewState(massItem())
	s.SetAmount("lots")
	if got := s.Totals(); got.Calories != 0 || got.ProteinG != 0 {
		t.Fatalf("totals for malformed amount = %+v, want zero", got)
	}
	s.SetAmount("-5")
	if m := s.Multiplier(); m != 0 {
		t.Fatalf("multiplier for negative amount = %v, want 0", m)
	}
}

func TestSetUnitKeepsQuantity(t *testing.T) {
	t.Parallel()

	s := NewState(massItem())
	s.SetAmount("200")
	s.SetUnit(model.UnitOunce)
	if s.Unit != model.UnitOunce {
		t.Fatalf("unit = %q, want oz", s.Unit)
	}
	// 200 g is 7.0548 oz; the multiplier should stay ~2 after the
	// round trip through the displayed amount.
	if m := s.Multiplier(); math.Abs(m-2) > 0.001 {
		t.Fatalf("multiplier after unit switch = %v, want ~2", m)
	}
}

func TestSetUnitDisplaysSharedRounding(t *testing.T) {
	t.Parallel()

	s := NewState(massItem())
	s.SetAmount("50")
	s.SetUnit(model.UnitOunce)
	// 50 g is 1.76369... oz; the displayed amount carries the same
	// three-decimal rounding the nutrition totals use.
	if want := strconv.FormatFloat(nutrition.Round3(50/28.3495), 'f', -1, 64); s.AmountText != want {
		t.Fatalf("displayed amount = %q, want %q", s.AmountText, want)
	}
	if s.AmountText != "1.764" {
		t.Fatalf("displayed amount = %q, want 1.764", s.AmountText)
	}
}

func TestSelectOptionRebases(t *testing.T) {
	t.Parallel()

	item := massItem()
	s := NewState(item)
	s.SelectOption(model.ServingOption{
		ID: "lg", Label: "Large", Grams: model.Float(154),
		Calories: model.Float(480), ProteinG: model.Float(5.3), CarbsG: model.Float(64), FatG: model.Float(23),
	})
	if s.Base != (model.BaseAmount{Amount: 154, Unit: model.UnitGram}) {
		t.Fatalf("base after option = %+v, want 154 g", s.Base)
	}
	if got := model.FloatValue(s.Item.Calories); got != 480 {
		t.Fatalf("calories after option = %v, want 480", got)
	}
}

func TestCommit(t *testing.T) {
	t.Parallel()

	item := massItem()
	item.Brand = "Tyson"
	s := NewState(item)
	s.SetAmount("200")

	sink := &captureLog{}
	id, err := s.Commit(context.Background(), sink, "2026-08-28", model.MealLunch)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if id != "entry-1" || sink.calls != 1 {
		t.Fatalf("id = %q calls = %d, want entry-1 and one append", id, sink.calls)
	}
	e := sink.entry
	if e.ID == "" {
		t.Fatal("entry ID not assigned")
	}
	if e.Description != "Chicken Breast - Tyson" {
		t.Fatalf("description = %q", e.Description)
	}
	if e.Nutrition.Calories != 330 {
		t.Fatalf("calories = %d, want 330", e.Nutrition.Calories)
	}
	if e.Date != "2026-08-28" || e.MealCategory != model.MealLunch {
		t.Fatalf("date/category = %q %q", e.Date, e.MealCategory)
	}
	if len(e.Items) != 1 || e.Items[0].ID != "usda-1" {
		t.Fatalf("items = %+v", e.Items)
	}
}

func TestCommitRejectsIncompleteItem(t *testing.T) {
	t.Parallel()

	item := massItem()
	item.FatG = nil
	s := NewState(item)
	if _, err := s.Commit(context.Background(), &captureLog{}, "2026-08-28", model.MealSnacks); err != ErrIncompleteItem {
		t.Fatalf("err = %v, want ErrIncompleteItem", err)
	}
}
