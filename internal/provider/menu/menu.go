// Package menu serves curated fast-food menu items from a CSV
// dataset. It backs three collaborator roles at once: a search
// provider, the serving-variant source for its own items, and a brand
// directory built from its chains.
package menu

import (
	"context"
	"encoding/csv"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/helfiapp/foodresolve/internal/match"
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/query"
	"github.com/helfiapp/foodresolve/internal/search"
	"github.com/helfiapp/foodresolve/internal/serving"
)

//go:embed fast_food_menus.csv
var defaultCSV string

type item struct {
	country string
	chain   string
	name    string
	food    model.FoodItem
}

type Provider struct {
	items  []item
	chains []string
}

func (p *Provider) Source() model.Source { return model.SourceMenu }

// Default loads the embedded dataset.
func Default() (*Provider, error) {
	return parse(strings.NewReader(defaultCSV))
}

// Load reads a dataset from disk, for overriding the embedded menus.
func Load(path string) (*Provider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu dataset: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Provider, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read menu dataset header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(record []string, key string) string {
		idx, ok := col[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	grouped := make(map[string]*item)
	var order []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read menu dataset row: %w", err)
		}

		chain := get(record, "chain")
		name := get(record, "item")
		sizeLabel := get(record, "size_label")
		if sizeLabel == "" {
			sizeLabel = get(record, "size")
		}
		if chain == "" || name == "" || sizeLabel == "" {
			continue
		}
		calories := toNumber(get(record, "calories"))
		protein := toNumber(get(record, "protein_g"))
		carbs := toNumber(get(record, "carbs_g"))
		fat := toNumber(get(record, "fat_g"))
		// Rows missing any core macro are dropped outright.
		if calories == nil || protein == nil || carbs == nil || fat == nil {
			continue
		}
		country := strings.ToUpper(get(record, "country"))
		grams := toNumber(get(record, "grams"))
		ml := toNumber(get(record, "ml"))

		label := servingLabel(sizeLabel, grams, ml)
		option := model.ServingOption{
			ID:       "serving-" + query.Compact(chain+" "+name+" "+sizeLabel),
			Label:    label,
			Grams:    grams,
			ML:       ml,
			Calories: calories,
			ProteinG: protein,
			CarbsG:   carbs,
			FatG:     fat,
			FiberG:   toNumber(get(record, "fiber_g")),
			SugarG:   toNumber(get(record, "sugar_g")),
		}

		id := query.Compact(chain + " " + name)
		key := country + "|" + id
		existing, ok := grouped[key]
		if !ok {
			existing = &item{
				country: country,
				chain:   chain,
				name:    name,
				food: model.FoodItem{
					Source: model.SourceMenu,
					ID:     id,
					Name:   name,
					Brand:  chain,
				},
			}
			grouped[key] = existing
			order = append(order, key)
		}
		existing.food.ServingOptions = append(existing.food.ServingOptions, option)
	}

	p := &Provider{}
	chainSet := make(map[string]struct{})
	for _, key := range order {
		it := grouped[key]
		sort.SliceStable(it.food.ServingOptions, func(a, b int) bool {
			return optionSize(it.food.ServingOptions[a]) < optionSize(it.food.ServingOptions[b])
		})
		// Top-level macros mirror the best serving variant so the row
		// is meaningful before any variant is chosen.
		display := serving.PickBest(it.food.ServingOptions)
		if display == nil {
			display = &it.food.ServingOptions[0]
		}
		it.food.ServingSize = display.Label
		it.food.Calories = display.Calories
		it.food.ProteinG = display.ProteinG
		it.food.CarbsG = display.CarbsG
		it.food.FatG = display.FatG
		it.food.FiberG = display.FiberG
		it.food.SugarG = display.SugarG

		p.items = append(p.items, *it)
		if _, seen := chainSet[it.chain]; !seen {
			chainSet[it.chain] = struct{}{}
			p.chains = append(p.chains, it.chain)
		}
	}
	sort.Strings(p.chains)
	return p, nil
}

// Search matches the query against the dataset. The full matcher runs
// here, brand-aware, so "mcdonalds fries" finds the chain's items.
// The dataset is embedded, so local-only requests are answered like
// any other.
func (p *Provider) Search(_ context.Context, req search.Request) ([]model.FoodItem, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, fmt.Errorf("search query is required")
	}
	candidates := make([]model.FoodItem, 0)
	for _, it := range p.items {
		if req.Country != "" && it.country != "" && !strings.EqualFold(req.Country, it.country) {
			continue
		}
		candidates = append(candidates, it.food)
	}
	out := match.Filter(candidates, q, model.KindPackaged)
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

// ServingOptions returns the variant list for one of this provider's
// items.
func (p *Provider) ServingOptions(_ context.Context, source model.Source, id string) ([]model.ServingOption, error) {
	if source != model.SourceMenu {
		return nil, fmt.Errorf("menu provider cannot serve source %q", source)
	}
	for _, it := range p.items {
		if it.food.ID == id {
			return append([]model.ServingOption(nil), it.food.ServingOptions...), nil
		}
	}
	return nil, fmt.Errorf("no menu item %q", id)
}

// Brands lists the dataset's chains whose compacted name starts with
// the prefix; an empty prefix lists every chain.
func (p *Provider) Brands(_ context.Context, startsWith string) ([]string, error) {
	prefix := query.Compact(startsWith)
	if prefix == "" {
		return append([]string(nil), p.chains...), nil
	}
	out := make([]string, 0)
	for _, chain := range p.chains {
		if strings.HasPrefix(query.Compact(chain), prefix) {
			out = append(out, chain)
		}
	}
	return out, nil
}

func servingLabel(sizeLabel string, grams, ml *float64) string {
	label := strings.TrimSpace(sizeLabel)
	if grams != nil && *grams > 0 {
		return fmt.Sprintf("%s (%s g)", label, strconv.FormatFloat(*grams, 'f', -1, 64))
	}
	if ml != nil && *ml > 0 {
		return fmt.Sprintf("%s (%s ml)", label, strconv.FormatFloat(*ml, 'f', -1, 64))
	}
	if label == "" {
		return "1 serving"
	}
	return label
}

func optionSize(o model.ServingOption) float64 {
	if o.Grams != nil && *o.Grams > 0 {
		return *o.Grams
	}
	if o.ML != nil && *o.ML > 0 {
		return *o.ML
	}
	return 0
}

func toNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return model.Float(v)
}
