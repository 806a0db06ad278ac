package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/helfiapp/foodresolve/internal/app"
	"github.com/helfiapp/foodresolve/internal/db"
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/provider/menu"
	"github.com/helfiapp/foodresolve/internal/provider/openfoodfacts"
	"github.com/helfiapp/foodresolve/internal/provider/usda"
	"github.com/helfiapp/foodresolve/internal/search"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// buildStack assembles providers, cache, and menu directory for one
// command invocation. The menu provider doubles as the serving-option
// source and the brand directory.
func buildStack(sqldb *sql.DB, apiKey, country string) ([]search.Provider, *menu.Provider, *search.Store, error) {
	menuProvider, err := menu.Default()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load menu directory: %w", err)
	}
	providers := []search.Provider{
		menuProvider,
		&openfoodfacts.Client{Country: country},
		&usda.Client{APIKey: apiKey},
	}
	return providers, menuProvider, search.NewStore(sqldb), nil
}

func resolveAPIKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("USDA_API_KEY")
}

func parseSource(raw string) (model.Source, error) {
	switch model.Source(strings.ToLower(strings.TrimSpace(raw))) {
	case "", model.SourceAuto:
		return model.SourceAuto, nil
	case model.SourceUSDA:
		return model.SourceUSDA, nil
	case model.SourceOpenFoodFacts:
		return model.SourceOpenFoodFacts, nil
	case model.SourceMenu:
		return model.SourceMenu, nil
	default:
		return "", fmt.Errorf("unknown source %q (expected auto, usda, openfoodfacts, or menu)", raw)
	}
}

func parseKind(raw string) (model.SearchKind, error) {
	switch model.SearchKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", model.KindPackaged:
		return model.KindPackaged, nil
	case model.KindSingle:
		return model.KindSingle, nil
	default:
		return "", fmt.Errorf("unknown kind %q (expected packaged or single)", raw)
	}
}

func parseCategory(raw string) (model.MealCategory, error) {
	switch model.MealCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return model.MealUncategorized, nil
	case model.MealBreakfast:
		return model.MealBreakfast, nil
	case model.MealLunch:
		return model.MealLunch, nil
	case model.MealDinner:
		return model.MealDinner, nil
	case model.MealSnacks:
		return model.MealSnacks, nil
	case model.MealUncategorized:
		return model.MealUncategorized, nil
	default:
		return "", fmt.Errorf("unknown category %q", raw)
	}
}

func printItems(w io.Writer, items []model.FoodItem) {
	for i, item := range items {
		name := item.Name
		if item.Brand != "" && item.Brand != item.Name {
			name = fmt.Sprintf("%s (%s)", item.Name, item.Brand)
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, name)
		fmt.Fprintf(w, "    %s | %s", item.Source, item.ServingSize)
		if item.Usable() {
			fmt.Fprintf(w, " | %.0f kcal  P %.1fg  C %.1fg  F %.1fg",
				*item.Calories, *item.ProteinG, *item.CarbsG, *item.FatG)
		}
		fmt.Fprintln(w)
		for _, o := range item.ServingOptions {
			fmt.Fprintf(w, "      - %s", o.Label)
			if o.Calories != nil {
				fmt.Fprintf(w, " (%.0f kcal)", *o.Calories)
			}
			fmt.Fprintln(w)
		}
	}
}

func printTotals(w io.Writer, totals model.NutritionTotals) {
	fmt.Fprintf(w, "Calories: %d\nProtein: %.1fg\nCarbs: %.1fg\nFat: %.1fg\nFiber: %.1fg\nSugar: %.1fg\n",
		totals.Calories, totals.ProteinG, totals.CarbsG, totals.FatG, totals.FiberG, totals.SugarG)
}
