// Package usda searches USDA FoodData Central.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/search"
)

const defaultBaseURL = "https://api.nal.usda.gov"

const kjPerKcal = 4.184

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) Source() model.Source { return model.SourceUSDA }

// Search queries the foods/search endpoint. Packaged searches are
// restricted to the Branded data type; single-food searches use the
// survey and reference datasets instead, which carry generic foods.
func (c *Client) Search(ctx context.Context, req search.Request) ([]model.FoodItem, error) {
	if req.LocalOnly {
		return nil, nil
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("missing USDA API key")
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	dataTypes := "Survey (FNDDS),SR Legacy,Foundation"
	if req.Kind == model.KindPackaged {
		dataTypes = "Branded"
	}
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(req.Limit))
	params.Set("dataType", dataTypes)

	endpoint := fmt.Sprintf("%s/fdc/v1/foods/search?%s", baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create USDA request: %w", err)
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode USDA response: %w", err)
	}

	out := make([]model.FoodItem, 0, len(parsed.Foods))
	for _, food := range parsed.Foods {
		if item, ok := normalizeFood(food); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	BrandName     string         `json:"brandName"`
	BrandOwner    string         `json:"brandOwner"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// normalizeFood maps one USDA food onto the common item shape. USDA
// nutrient values are always per 100 g, so the serving label is fixed;
// the serving-upgrade path swaps in something friendlier later.
func normalizeFood(food usdaFood) (model.FoodItem, bool) {
	name := strings.TrimSpace(food.Description)
	if name == "" {
		return model.FoodItem{}, false
	}
	brand := strings.TrimSpace(food.BrandName)
	if brand == "" {
		brand = strings.TrimSpace(food.BrandOwner)
	}

	item := model.FoodItem{
		Source:      model.SourceUSDA,
		ID:          strconv.FormatInt(food.FDCID, 10),
		Name:        name,
		Brand:       brand,
		ServingSize: "100 g",
	}

	var energyKJ *float64
	for _, n := range food.FoodNutrients {
		nutrient := strings.ToLower(strings.TrimSpace(n.NutrientName))
		unit := strings.ToLower(strings.TrimSpace(n.UnitName))
		value := n.Value
		switch nutrient {
		case "energy":
			switch unit {
			case "kcal":
				item.Calories = model.Float(value)
			case "kj":
				energyKJ = model.Float(value)
			}
		case "protein":
			if unit == "g" {
				item.ProteinG = model.Float(value)
			}
		case "carbohydrate, by difference":
			if unit == "g" {
				item.CarbsG = model.Float(value)
			}
		case "total lipid (fat)":
			if unit == "g" {
				item.FatG = model.Float(value)
			}
		case "fiber, total dietary":
			if unit == "g" {
				item.FiberG = model.Float(value)
			}
		case "sugars, total including nlea", "sugars, total":
			if unit == "g" {
				item.SugarG = model.Float(value)
			}
		}
	}
	if item.Calories == nil && energyKJ != nil {
		item.Calories = model.Float(*energyKJ / kjPerKcal)
	}
	return item, true
}
