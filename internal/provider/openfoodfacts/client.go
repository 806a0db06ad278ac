// Package openfoodfacts searches the Open Food Facts product
// directory.
package openfoodfacts

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
	"github.com/helfiapp/foodresolve/internal/serving"
)

const defaultBaseURL = "https://world.openfoodfacts.org"

const userAgent = "foodresolve/1.0 (+https://github.com/helfiapp/foodresolve)"

const kjPerKcal = 4.184

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Country    string
}

func (c *Client) Source() model.Source { return model.SourceOpenFoodFacts }

// Search queries the legacy cgi search endpoint, which tolerates free
// text better than the v2 API. Local-only requests return nothing
// rather than going to the network.
func (c *Client) Search(ctx context.Context, req search.Request) ([]model.FoodItem, error) {
	if req.LocalOnly {
		return nil, nil
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	params := url.Values{}
	params.Set("action", "process")
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(req.Limit))
	country := req.Country
	if country == "" {
		country = c.Country
	}
	if country != "" {
		params.Set("tagtype_0", "countries")
		params.Set("tag_contains_0", "contains")
		params.Set("tag_0", country)
	}

	endpoint := fmt.Sprintf("%s/cgi/search.pl?%s", base, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts search request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts search request failed with status %d", resp.StatusCode)
	}

	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}

	out := make([]model.FoodItem, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if item, ok := normalizeProduct(p); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// normalizeProduct maps an Open Food Facts product onto the common
// item shape. Per-serving nutriment values are preferred; when none
// exist the per-100g values are used as the serving and the label
// falls back accordingly.
func normalizeProduct(p offProduct) (model.FoodItem, bool) {
	name := firstNonEmpty(p.ProductName, p.GenericName, p.Brands, p.Code)
	if name == "" {
		return model.FoodItem{}, false
	}

	item := model.FoodItem{
		Source:      model.SourceOpenFoodFacts,
		ID:          firstNonEmpty(p.Code, p.ID, name),
		Name:        name,
		Brand:       strings.TrimSpace(p.Brands),
		ServingSize: servingLabel(p),
	}

	n := p.Nutriments
	perServing := hasAny(n, "energy-kcal_serving", "energy_serving", "proteins_serving", "carbohydrates_serving", "fat_serving")
	if perServing {
		item.Calories = energyValue(n, "_serving")
		item.ProteinG = floatPtr(n, "proteins_serving")
		item.CarbsG = floatPtr(n, "carbohydrates_serving")
		item.FatG = floatPtr(n, "fat_serving")
		item.FiberG = floatPtr(n, "fiber_serving")
		item.SugarG = floatPtr(n, "sugars_serving")
		// Gaps in the per-serving data fall back to per-100g values.
		if item.Calories == nil {
			item.Calories = energyValue(n, "_100g")
		}
		if item.ProteinG == nil {
			item.ProteinG = floatPtr(n, "proteins_100g")
		}
		if item.CarbsG == nil {
			item.CarbsG = floatPtr(n, "carbohydrates_100g")
		}
		if item.FatG == nil {
			item.FatG = floatPtr(n, "fat_100g")
		}
		if item.FiberG == nil {
			item.FiberG = floatPtr(n, "fiber_100g")
		}
		if item.SugarG == nil {
			item.SugarG = floatPtr(n, "sugars_100g")
		}
	} else {
		item.Calories = energyValue(n, "_100g")
		item.ProteinG = floatPtr(n, "proteins_100g")
		item.CarbsG = floatPtr(n, "carbohydrates_100g")
		item.FatG = floatPtr(n, "fat_100g")
		item.FiberG = floatPtr(n, "fiber_100g")
		item.SugarG = floatPtr(n, "sugars_100g")
		// Per-100g values must not be presented under a smaller serving
		// label. When the label resolves to a gram or ml quantity the
		// macros are rebased onto that serving; otherwise the label is
		// replaced with the quantity the values actually describe.
		base := serving.ParseBase(item.ServingSize)
		if base.Known() && (base.Unit == model.UnitGram || base.Unit == model.UnitMilliliter) {
			item = rebasePerHundred(item, base.Amount)
		} else {
			item.ServingSize = "100 g"
		}
	}
	return item, true
}

func rebasePerHundred(item model.FoodItem, amount float64) model.FoodItem {
	factor := amount / 100
	item.Calories = scalePtr(item.Calories, factor)
	item.ProteinG = scalePtr(item.ProteinG, factor)
	item.CarbsG = scalePtr(item.CarbsG, factor)
	item.FatG = scalePtr(item.FatG, factor)
	item.FiberG = scalePtr(item.FiberG, factor)
	item.SugarG = scalePtr(item.SugarG, factor)
	return item
}

func scalePtr(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float(*v * factor)
}

// energyValue prefers the kcal nutriment and converts the raw energy
// field, which Open Food Facts reports in kilojoules, when kcal is
// absent.
func energyValue(n map[string]any, suffix string) *float64 {
	if v := floatPtr(n, "energy-kcal"+suffix); v != nil {
		return v
	}
	if v := floatPtr(n, "energy"+suffix); v != nil {
		return model.Float(*v / kjPerKcal)
	}
	return nil
}

func servingLabel(p offProduct) string {
	if label := strings.TrimSpace(p.ServingSize); label != "" {
		return label
	}
	// serving_quantity arrives as either a number or a string.
	if qty, ok := parseFloatAny(p.ServingQuantity); ok && qty > 0 {
		unit := strings.TrimSpace(p.ServingQuantityUnit)
		if unit == "" {
			unit = "g"
		}
		return fmt.Sprintf("%s %s", strconv.FormatFloat(qty, 'f', -1, 64), unit)
	}
	return ""
}

func hasAny(n map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := parseFloatAny(n[key]); ok {
			return true
		}
	}
	return false
}

func floatPtr(n map[string]any, key string) *float64 {
	if v, ok := parseFloatAny(n[key]); ok {
		return model.Float(v)
	}
	return nil
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

type offProduct struct {
	ID                  string         `json:"_id"`
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	GenericName         string         `json:"generic_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
