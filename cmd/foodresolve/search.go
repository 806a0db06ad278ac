package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helfiapp/foodresolve/internal/search"
)

var (
	searchKind    string
	searchSource  string
	searchLimit   int
	searchCountry string
	searchAPIKey  string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search food providers for matching items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(searchKind)
		if err != nil {
			return err
		}
		source, err := parseSource(searchSource)
		if err != nil {
			return err
		}
		q := strings.TrimSpace(strings.Join(args, " "))

		return withDB(func(sqldb *sql.DB) error {
			providers, menuProvider, store, err := buildStack(sqldb, resolveAPIKey(searchAPIKey), searchCountry)
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
				Limit:   searchLimit,
				Country: searchCountry,
			})
			if err != nil {
				return err
			}
			if searchJSON {
				b, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal search json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			if len(items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No matches for %q\n", q)
				return nil
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "packaged", "Search kind: packaged or single")
	searchCmd.Flags().StringVar(&searchSource, "source", "auto", "Provider: auto, usda, openfoodfacts, or menu")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default 25, capped at 50)")
	searchCmd.Flags().StringVar(&searchCountry, "country", "", "Country filter for menu and Open Food Facts results")
	searchCmd.Flags().StringVar(&searchAPIKey, "api-key", "", "USDA FoodData Central API key (or USDA_API_KEY env)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(searchCmd)
}
