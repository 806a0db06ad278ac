package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/search"
)

func TestSearchPrefersPerServingValues(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {
      "code": "5000159484695",
      "product_name": "Yogurt Cup",
      "brands": "Brand Co",
      "serving_size": "170 g",
      "nutriments": {
        "energy-kcal_serving": 120,
        "proteins_serving": 10,
        "carbohydrates_serving": 15,
        "fat_serving": 2,
        "energy-kcal_100g": 70,
        "proteins_100g": 5.9,
        "sugars_100g": 8.2
      }
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), search.Request{
		Query: "yogurt", Kind: model.KindPackaged, Limit: 5,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("parsed %d items, want 1", len(items))
	}
	item := items[0]
	if item.ID != "5000159484695" || item.Source != model.SourceOpenFoodFacts {
		t.Fatalf("identity = %q/%q", item.Source, item.ID)
	}
	if item.ServingSize != "170 g" {
		t.Fatalf("serving size = %q, want 170 g", item.ServingSize)
	}
	if model.FloatValue(item.Calories) != 120 || model.FloatValue(item.ProteinG) != 10 {
		t.Fatalf("per-serving macros not preferred: %+v", item)
	}
	// Missing per-serving sugar backfills from the 100g value.
	if model.FloatValue(item.SugarG) != 8.2 {
		t.Fatalf("sugar = %v, want 8.2 backfill", model.FloatValue(item.SugarG))
	}
}

func TestSearchFallsBackToPerHundredGrams(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {
      "code": "123",
      "product_name": "Rolled Oats",
      "nutriments": {
        "energy_100g": 1569,
        "proteins_100g": 13.2,
        "carbohydrates_100g": 68,
        "fat_100g": 6.5
      }
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), search.Request{
		Query: "oats", Kind: model.KindSingle, Limit: 5,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("parsed %d items, want 1", len(items))
	}
	item := items[0]
	if item.ServingSize != "100 g" {
		t.Fatalf("serving size = %q, want 100 g default", item.ServingSize)
	}
	// energy_100g is kilojoules; 1569 kJ is ~375 kcal.
	got := model.FloatValue(item.Calories)
	if got < 374 || got > 376 {
		t.Fatalf("calories = %v, want ~375", got)
	}
}

func TestSearchRebasesPerHundredGramsOntoDeclaredServing(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {
      "code": "30",
      "product_name": "Granola Bar",
      "serving_size": "30 g",
      "nutriments": {
        "energy-kcal_100g": 400,
        "proteins_100g": 10,
        "carbohydrates_100g": 60,
        "fat_100g": 14
      }
    },
    {
      "code": "31",
      "product_name": "Trail Mix",
      "serving_size": "1 pouch",
      "nutriments": {
        "energy-kcal_100g": 500,
        "proteins_100g": 18,
        "carbohydrates_100g": 40,
        "fat_100g": 30
      }
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), search.Request{
		Query: "granola", Kind: model.KindPackaged, Limit: 5,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("parsed %d items, want 2", len(items))
	}
	// A gram-denominated label keeps its text but the per-100g macros
	// are rescaled to that serving.
	bar := items[0]
	if bar.ServingSize != "30 g" {
		t.Fatalf("serving size = %q, want 30 g", bar.ServingSize)
	}
	if got := model.FloatValue(bar.Calories); got != 120 {
		t.Fatalf("calories = %v, want 120 rebased from 400/100g", got)
	}
	if got := model.FloatValue(bar.ProteinG); got != 3 {
		t.Fatalf("protein = %v, want 3", got)
	}
	// A label with no gram quantity cannot be rebased, so it is
	// replaced with the quantity the values describe.
	mix := items[1]
	if mix.ServingSize != "100 g" {
		t.Fatalf("serving size = %q, want 100 g", mix.ServingSize)
	}
	if got := model.FloatValue(mix.Calories); got != 500 {
		t.Fatalf("calories = %v, want unscaled 500", got)
	}
}

func TestSearchAcceptsStringServingQuantity(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {
      "code": "25",
      "product_name": "Cheese Portion",
      "serving_quantity": "25",
      "serving_quantity_unit": "g",
      "nutriments": {
        "energy-kcal_serving": 80,
        "proteins_serving": 5,
        "carbohydrates_serving": 0.5,
        "fat_serving": 6.5
      }
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), search.Request{
		Query: "cheese", Kind: model.KindPackaged, Limit: 5,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("parsed %d items, want 1", len(items))
	}
	if items[0].ServingSize != "25 g" {
		t.Fatalf("serving size = %q, want 25 g from string quantity", items[0].ServingSize)
	}
	if model.FloatValue(items[0].Calories) != 80 {
		t.Fatalf("calories = %v", model.FloatValue(items[0].Calories))
	}
}

func TestSearchDropsNamelessProductsAndSendsCountryFilter(t *testing.T) {
	t.Parallel()

	var gotTag string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTag = r.URL.Query().Get("tag_0")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {"code": "1", "nutriments": {}},
    {"code": "2", "product_name": "Crisps", "nutriments": {"energy-kcal_100g": 530}}
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.Search(context.Background(), search.Request{
		Query: "crisps", Kind: model.KindPackaged, Limit: 5, Country: "united-kingdom",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotTag != "united-kingdom" {
		t.Fatalf("country tag sent = %q", gotTag)
	}
	// The nameless product still carries a code, which is used as a
	// last-resort name, so both rows survive normalization.
	if len(items) != 2 {
		t.Fatalf("parsed %d items, want 2", len(items))
	}
	if items[0].Name != "1" {
		t.Fatalf("fallback name = %q, want code", items[0].Name)
	}
	if items[1].Name != "Crisps" {
		t.Fatalf("name = %q", items[1].Name)
	}
}
