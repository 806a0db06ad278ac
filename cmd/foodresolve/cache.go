package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helfiapp/foodresolve/internal/search"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and purge the provider search cache",
}

var (
	cacheSource string
	cacheQuery  string
	cacheLimit  int
	cacheJSON   bool
	cacheAll    bool
)

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached provider responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			entries, err := search.NewStore(sqldb).List(cacheSource, cacheQuery, cacheLimit)
			if err != nil {
				return err
			}
			if cacheJSON {
				b, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal cache list json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PROVIDER\tKIND\tQUERY\tLIMIT\tFETCHED\tEXPIRES")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%s\t%s\n",
					e.Provider, e.Kind, e.Query, e.LimitRequested,
					e.FetchedAt.Format(time.RFC3339), e.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached provider responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := search.NewStore(sqldb).Purge(cacheSource, cacheQuery, cacheAll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache entr%s\n", n, pluralYIes(n))
			return nil
		})
	},
}

func pluralYIes(n int64) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func init() {
	cacheListCmd.Flags().StringVar(&cacheSource, "source", "", "Filter by provider")
	cacheListCmd.Flags().StringVar(&cacheQuery, "query", "", "Filter by query substring")
	cacheListCmd.Flags().IntVar(&cacheLimit, "limit", 50, "Maximum entries to list")
	cacheListCmd.Flags().BoolVar(&cacheJSON, "json", false, "Output JSON")
	cachePurgeCmd.Flags().StringVar(&cacheSource, "source", "", "Purge entries for one provider")
	cachePurgeCmd.Flags().StringVar(&cacheQuery, "query", "", "Purge entries matching a query")
	cachePurgeCmd.Flags().BoolVar(&cacheAll, "all", false, "Purge everything")
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
