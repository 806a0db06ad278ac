package serving_test

import (
	"math"
	"testing"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/serving"
)

func TestParseBaseParenthesesTakePrecedence(t *testing.T) {
	t.Parallel()
	base := serving.ParseBase("1 1/2 cups (360 ml)")
	if base.Amount != 360 || base.Unit != model.UnitMilliliter {
		t.Fatalf("expected 360 ml, got %+v", base)
	}
}

func TestParseBaseMixedNumber(t *testing.T) {
	t.Parallel()
	base := serving.ParseBase("1 1/2 cups")
	if math.Abs(base.Amount-1.5) > 1e-9 || base.Unit != model.UnitCup {
		t.Fatalf("expected 1.5 cup, got %+v", base)
	}
}

func TestParseBaseFraction(t *testing.T) {
	t.Parallel()
	base := serving.ParseBase("3/4 cup")
	if math.Abs(base.Amount-0.75) > 1e-9 || base.Unit != model.UnitCup {
		t.Fatalf("expected 0.75 cup, got %+v", base)
	}
}

func TestParseBasePlainQuantities(t *testing.T) {
	t.Parallel()
	cases := []struct {
		label  string
		amount float64
		unit   model.MeasurementUnit
	}{
		{"240 ml", 240, model.UnitMilliliter},
		{"1 cup (240ml)", 240, model.UnitMilliliter},
		{"2.5 oz", 2.5, model.UnitOunce},
		{"100 grams", 100, model.UnitGram},
		{"1 breast (187 g)", 187, model.UnitGram},
		{"2 tbsp", 2, model.UnitTablespoon},
	}
	for _, tc := range cases {
		base := serving.ParseBase(tc.label)
		if math.Abs(base.Amount-tc.amount) > 1e-9 || base.Unit != tc.unit {
			t.Fatalf("ParseBase(%q) = %+v, want %v %v", tc.label, base, tc.amount, tc.unit)
		}
	}
}

func TestParseBaseLegacyUnitsNormalizedToGrams(t *testing.T) {
	t.Parallel()
	cases := []struct {
		label string
		grams float64
	}{
		{"2 slices", 60},
		{"1 handful", 30},
		{"1 serving", 100},
	}
	for _, tc := range cases {
		base := serving.ParseBase(tc.label)
		if base.Unit != model.UnitGram || math.Abs(base.Amount-tc.grams) > 1e-9 {
			t.Fatalf("ParseBase(%q) = %+v, want %v g", tc.label, base, tc.grams)
		}
	}
}

func TestParseBaseWordNumbers(t *testing.T) {
	t.Parallel()
	base := serving.ParseBase("two slices")
	if base.Unit != model.UnitGram || base.Amount != 60 {
		t.Fatalf("expected word numbers to parse, got %+v", base)
	}
}

func TestParseBaseUnknown(t *testing.T) {
	t.Parallel()
	for _, label := range []string{"", "a bowl", "some rice", "large"} {
		if base := serving.ParseBase(label); base.Known() {
			t.Fatalf("ParseBase(%q) should be unknown, got %+v", label, base)
		}
	}
}

func TestExtractPieceGrams(t *testing.T) {
	t.Parallel()
	if got := serving.ExtractPieceGrams("2 eggs (100 g)"); got != 50 {
		t.Fatalf("expected 50 g per egg, got %v", got)
	}
	if got := serving.ExtractPieceGrams("4 nuggets (72 g)"); got != 18 {
		t.Fatalf("expected 18 g per nugget, got %v", got)
	}
	if got := serving.ExtractPieceGrams("1 slice (30g)"); got != 30 {
		t.Fatalf("expected 30 g per slice, got %v", got)
	}
	// Not discrete phrasing.
	if got := serving.ExtractPieceGrams("250 ml"); got != 0 {
		t.Fatalf("expected 0 for non-discrete label, got %v", got)
	}
	// Discrete word without a gram amount.
	if got := serving.ExtractPieceGrams("3 cookies"); got != 0 {
		t.Fatalf("expected 0 without grams, got %v", got)
	}
}

func TestIsDiscreteFood(t *testing.T) {
	t.Parallel()
	if !serving.IsDiscreteFood("Chicken Nuggets") {
		t.Fatalf("nuggets are discrete")
	}
	if !serving.IsDiscreteFood("2 eggs") {
		t.Fatalf("eggs are discrete")
	}
	if serving.IsDiscreteFood("olive oil") {
		t.Fatalf("olive oil is not discrete")
	}
}
