// Package api exposes the resolution engine over HTTP for UI layers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/helfiapp/foodresolve/internal/adjust"
	"github.com/helfiapp/foodresolve/internal/logging"
	"github.com/helfiapp/foodresolve/internal/model"
	"github.com/helfiapp/foodresolve/internal/search"
)

// Searcher is the slice of search.Session the API consumes.
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]model.FoodItem, error)
}

// Server bundles the collaborators the handlers need. Servings,
// Brands, and Log may be nil; their endpoints then report unavailable.
type Server struct {
	Search   Searcher
	Servings search.ServingSource
	Brands   search.BrandDirectory
	Log      adjust.FoodLog
}

// NewRouter wires up all routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)

	r.Get("/api/food-data", s.handleFoodData)
	r.Get("/api/serving-options", s.handleServingOptions)
	r.Get("/api/brands", s.handleBrands)
	r.Post("/api/resolve", s.handleResolve)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// --- search ---

func (s *Server) handleFoodData(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q is required", http.StatusBadRequest)
		return
	}
	kind := model.SearchKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = model.KindPackaged
	}
	if kind != model.KindPackaged && kind != model.KindSingle {
		jsonError(w, "kind must be packaged or single", http.StatusBadRequest)
		return
	}
	source := model.Source(r.URL.Query().Get("source"))
	if source == "" {
		source = model.SourceAuto
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}

	items, err := s.Search.Search(r.Context(), search.Request{
		Source:  source,
		Query:   q,
		Kind:    kind,
		Limit:   limit,
		Country: r.URL.Query().Get("country"),
	})
	if err != nil {
		if errors.Is(err, search.ErrAllProvidersFailed) {
			jsonError(w, "search failed", http.StatusBadGateway, err)
			return
		}
		jsonError(w, "search failed", http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []model.FoodItem{}
	}
	jsonOK(w, map[string]any{"items": items})
}

// --- serving options ---

func (s *Server) handleServingOptions(w http.ResponseWriter, r *http.Request) {
	if s.Servings == nil {
		jsonError(w, "serving options unavailable", http.StatusNotImplemented)
		return
	}
	source := model.Source(r.URL.Query().Get("source"))
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if source == "" || id == "" {
		jsonError(w, "source and id are required", http.StatusBadRequest)
		return
	}
	options, err := s.Servings.ServingOptions(r.Context(), source, id)
	if err != nil {
		jsonError(w, "serving options not found", http.StatusNotFound)
		return
	}
	jsonOK(w, map[string]any{"options": options})
}

// --- brands ---

func (s *Server) handleBrands(w http.ResponseWriter, r *http.Request) {
	if s.Brands == nil {
		jsonError(w, "brand directory unavailable", http.StatusNotImplemented)
		return
	}
	brands, err := s.Brands.Brands(r.Context(), r.URL.Query().Get("startsWith"))
	if err != nil {
		jsonError(w, "brand lookup failed", http.StatusBadGateway, err)
		return
	}
	if brands == nil {
		brands = []string{}
	}
	jsonOK(w, map[string]any{"items": brands})
}

// --- resolve ---

type resolveRequest struct {
	Item         model.FoodItem `json:"item"`
	OptionID     string         `json:"option_id"`
	Amount       string         `json:"amount"`
	Unit         string         `json:"unit"`
	Date         string         `json:"date"`
	MealCategory string         `json:"meal_category"`
}

type resolveResponse struct {
	ID         string                `json:"id"`
	Multiplier float64               `json:"multiplier"`
	Nutrition  model.NutritionTotals `json:"nutrition"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if s.Log == nil {
		jsonError(w, "food log unavailable", http.StatusNotImplemented)
		return
	}
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Item.Name) == "" {
		jsonError(w, "item name is required", http.StatusBadRequest)
		return
	}

	state := adjust.NewState(req.Item)
	if req.OptionID != "" {
		option, ok := findOption(req.Item.ServingOptions, req.OptionID)
		if !ok {
			jsonError(w, "unknown option_id", http.StatusBadRequest)
			return
		}
		state.SelectOption(option)
	}
	if req.Unit != "" {
		state.Unit = model.MeasurementUnit(req.Unit)
	}
	if req.Amount != "" {
		state.SetAmount(req.Amount)
	}

	id, err := state.Commit(r.Context(), s.Log, req.Date, model.MealCategory(req.MealCategory))
	if err != nil {
		if errors.Is(err, adjust.ErrIncompleteItem) {
			jsonError(w, "item is missing core macros", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "commit failed", http.StatusInternalServerError, err)
		return
	}
	jsonOK(w, resolveResponse{
		ID:         id,
		Multiplier: state.Multiplier(),
		Nutrition:  state.Totals(),
	})
}

func findOption(options []model.ServingOption, id string) (model.ServingOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return model.ServingOption{}, false
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, msg string, status int, errs ...error) {
	if status >= 500 && len(errs) > 0 {
		slog.Error(msg, "status", status, "error", errs[0])
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
