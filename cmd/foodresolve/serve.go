package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/helfiapp/foodresolve/internal/api"
	"github.com/helfiapp/foodresolve/internal/foodlog"
	"github.com/helfiapp/foodresolve/internal/logging"
	"github.com/helfiapp/foodresolve/internal/search"
)

var (
	serveAddr    string
	serveCountry string
	serveKeyFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolution engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup()

		addr := serveAddr
		if addr == "" {
			if port := os.Getenv("PORT"); port != "" {
				addr = fmt.Sprintf(":%s", port)
			} else {
				addr = ":8080"
			}
		}

		return withDB(func(sqldb *sql.DB) error {
			providers, menuProvider, store, err := buildStack(sqldb, resolveAPIKey(serveKeyFlag), serveCountry)
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

			handler := api.NewRouter(&api.Server{
				Search:   session,
				Servings: menuProvider,
				Brands:   menuProvider,
				Log:      foodlog.NewStore(sqldb),
			})

			slog.Info("foodresolve listening", "addr", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to :$PORT or :8080)")
	serveCmd.Flags().StringVar(&serveCountry, "country", "", "Default country filter for providers")
	serveCmd.Flags().StringVar(&serveKeyFlag, "api-key", "", "USDA FoodData Central API key (or USDA_API_KEY env)")
	rootCmd.AddCommand(serveCmd)
}
