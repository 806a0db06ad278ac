package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helfiapp/foodresolve/internal/adjust"
	"github.com/helfiapp/foodresolve/internal/foodlog"
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/search"
)

var (
	resolveKind     string
	resolveSource   string
	resolveCountry  string
	resolveKeyFlag  string
	resolvePick     int
	resolveOption   string
	resolveAmount   string
	resolveUnit     string
	resolveDate     string
	resolveCategory string
	resolveDryRun   bool
	resolveJSON     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Search, scale, and log a food in one step",
	Long:  "resolve searches the providers, picks a result, applies the requested amount and unit, and appends the scaled entry to the local food log.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(resolveKind)
		if err != nil {
			return err
		}
		source, err := parseSource(resolveSource)
		if err != nil {
			return err
		}
		category, err := parseCategory(resolveCategory)
		if err != nil {
			return err
		}
		q := strings.TrimSpace(strings.Join(args, " "))

		return withDB(func(sqldb *sql.DB) error {
			providers, menuProvider, store, err := buildStack(sqldb, resolveAPIKey(resolveKeyFlag), resolveCountry)
			if err != nil {
				return err
			}
			session := search.NewSession(search.Config{
				Providers: providers,
				Servings:  menuProvider,
				Brands:    menuProvider,
				Store:     store,
				Logger:    slog.Default(),
			})
			defer session.Close()

			items, err := session.Search(cmd.Context(), search.Request{
				Source:  source,
				Query:   q,
				Kind:    kind,
				Country: resolveCountry,
			})
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no matches for %q", q)
			}
			if resolvePick < 1 || resolvePick > len(items) {
				return fmt.Errorf("--pick %d out of range (1-%d)", resolvePick, len(items))
			}
			item := items[resolvePick-1]

			state := adjust.NewState(item)
			if resolveOption != "" {
				option, ok := findServingOption(item.ServingOptions, resolveOption)
				if !ok {
					return fmt.Errorf("item has no serving option %q", resolveOption)
				}
				state.SelectOption(option)
			}
			if resolveUnit != "" {
				state.Unit = model.MeasurementUnit(resolveUnit)
			}
			if resolveAmount != "" {
				state.SetAmount(resolveAmount)
			}

			out := cmd.OutOrStdout()
			if resolveDryRun {
				return printResolved(out, state, "")
			}
			id, err := state.Commit(cmd.Context(), foodlog.NewStore(sqldb), resolveDate, category)
			if err != nil {
				return err
			}
			return printResolved(out, state, id)
		})
	},
}

func findServingOption(options []model.ServingOption, want string) (model.ServingOption, bool) {
	for _, o := range options {
		if o.ID == want || strings.EqualFold(o.Label, want) {
			return o, true
		}
	}
	return model.ServingOption{}, false
}

func printResolved(w io.Writer, state *adjust.State, id string) error {
	if resolveJSON {
		payload := map[string]any{
			"item":       state.Item,
			"amount":     state.AmountText,
			"unit":       state.Unit,
			"multiplier": state.Multiplier(),
			"nutrition":  state.Totals(),
		}
		if id != "" {
			payload["id"] = id
		}
		b, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal resolve json: %w", err)
		}
		fmt.Fprintln(w, string(b))
		return nil
	}
	fmt.Fprintf(w, "Food: %s\n", state.Item.Name)
	if state.Item.Brand != "" {
		fmt.Fprintf(w, "Brand: %s\n", state.Item.Brand)
	}
	fmt.Fprintf(w, "Amount: %s %s (x%.3f of %s)\n", state.AmountText, state.Unit, state.Multiplier(), state.Item.ServingSize)
	printTotals(w, state.Totals())
	if id != "" {
		fmt.Fprintf(w, "Logged entry %s\n", id)
	}
	return nil
}

func init() {
	resolveCmd.Flags().StringVar(&resolveKind, "kind", "packaged", "Search kind: packaged or single")
	resolveCmd.Flags().StringVar(&resolveSource, "source", "auto", "Provider: auto, usda, openfoodfacts, or menu")
	resolveCmd.Flags().StringVar(&resolveCountry, "country", "", "Country filter for menu and Open Food Facts results")
	resolveCmd.Flags().StringVar(&resolveKeyFlag, "api-key", "", "USDA FoodData Central API key (or USDA_API_KEY env)")
	resolveCmd.Flags().IntVar(&resolvePick, "pick", 1, "1-based index of the search result to use")
	resolveCmd.Flags().StringVar(&resolveOption, "option", "", "Serving option id or label to apply")
	resolveCmd.Flags().StringVar(&resolveAmount, "amount", "", "Amount to log (defaults to one serving)")
	resolveCmd.Flags().StringVar(&resolveUnit, "unit", "", "Unit for --amount (g, ml, oz, cup, piece, serving, ...)")
	resolveCmd.Flags().StringVar(&resolveDate, "date", "", "Log date YYYY-MM-DD (defaults to today)")
	resolveCmd.Flags().StringVar(&resolveCategory, "category", "", "Meal category: breakfast, lunch, dinner, or snacks")
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "Preview scaled nutrition without logging")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(resolveCmd)
}
