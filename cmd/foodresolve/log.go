package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helfiapp/foodresolve/internal/foodlog"
)

var (
	logDate string
	logJSON bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show logged entries and daily totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := logDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		return withDB(func(sqldb *sql.DB) error {
			store := foodlog.NewStore(sqldb)
			entries, err := store.ListByDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			totals, err := store.TotalsForDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			if logJSON {
				b, err := json.MarshalIndent(map[string]any{
					"date":    date,
					"entries": entries,
					"totals":  totals,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal log json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No entries for %s\n", date)
				return nil
			}
			fmt.Fprintf(out, "Entries for %s:\n", date)
			for _, e := range entries {
				fmt.Fprintf(out, "  [%s] %s: %d kcal  P %.1fg  C %.1fg  F %.1fg\n",
					e.MealCategory, e.Description,
					e.Nutrition.Calories, e.Nutrition.ProteinG, e.Nutrition.CarbsG, e.Nutrition.FatG)
			}
			fmt.Fprintln(out, "Totals:")
			printTotals(out, totals)
			return nil
		})
	},
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (defaults to today)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(logCmd)
}
