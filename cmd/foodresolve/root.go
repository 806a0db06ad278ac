package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helfiapp/foodresolve/internal/app"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "foodresolve",
	Short: "foodresolve matches foods to nutrition data from your terminal",
	Long:  "foodresolve is a food-item resolution engine: fuzzy search across USDA, Open Food Facts, and a fast-food menu directory, serving-size aware scaling, and a local food log.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}
