package foodlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/helfiapp/foodresolve/internal/db"
	"github.com/helfiapp/foodresolve/internal/foodlog"
	"github.com/helfiapp/foodresolve/internal/model"
)

func openStore(t *testing.T) *foodlog.Store {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "foodresolve.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return foodlog.NewStore(sqldb)
}

func TestAppendAndListByDate(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	entry := model.LogEntry{
		ID:          "e1",
		Description: "Chicken Breast",
		Nutrition:   model.NutritionTotals{Calories: 330, ProteinG: 62, FatG: 7.2},
		Items: []model.FoodItem{{
			Source: model.SourceUSDA, ID: "usda-1", Name: "Chicken Breast",
			Calories: model.Float(165), ProteinG: model.Float(31),
			CarbsG: model.Float(0), FatG: model.Float(3.6),
		}},
		Date:         "2026-08-28",
		MealCategory: model.MealLunch,
		Timestamp:    time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC),
	}
	id, err := store.Append(ctx, entry)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id != "e1" {
		t.Fatalf("id = %q, want e1", id)
	}

	listed, err := store.ListByDate(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d entries, want 1", len(listed))
	}
	got := listed[0]
	if got.Description != "Chicken Breast" || got.Nutrition.Calories != 330 {
		t.Fatalf("entry = %+v", got)
	}
	if got.MealCategory != model.MealLunch {
		t.Fatalf("category = %q, want lunch", got.MealCategory)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "usda-1" {
		t.Fatalf("items = %+v", got.Items)
	}
	if !got.Timestamp.Equal(entry.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, entry.Timestamp)
	}
}

func TestAppendRejectsMissingFields(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, model.LogEntry{Description: "no id"}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := store.Append(ctx, model.LogEntry{ID: "e2"}); err == nil {
		t.Fatal("expected error for missing description")
	}
}

func TestTotalsForDate(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	for i, cal := range []int{200, 300} {
		entry := model.LogEntry{
			ID:          string(rune('a' + i)),
			Description: "Meal",
			Nutrition:   model.NutritionTotals{Calories: cal, ProteinG: 10},
			Date:        "2026-08-28",
		}
		if _, err := store.Append(ctx, entry); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	totals, err := store.TotalsForDate(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Calories != 500 || totals.ProteinG != 20 {
		t.Fatalf("totals = %+v, want 500 kcal / 20 g protein", totals)
	}

	empty, err := store.TotalsForDate(ctx, "2026-08-29")
	if err != nil {
		t.Fatalf("empty totals: %v", err)
	}
	if empty.Calories != 0 {
		t.Fatalf("empty totals = %+v, want zero", empty)
	}
}
