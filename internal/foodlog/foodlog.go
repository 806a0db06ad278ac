// Package foodlog persists finalized diary entries to sqlite. Store
// satisfies the adjust package's FoodLog sink contract.
package foodlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/helfiapp/foodresolve/internal/model"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts the entry and returns its identifier.
func (s *Store) Append(ctx context.Context, entry model.LogEntry) (string, error) {
	if strings.TrimSpace(entry.ID) == "" {
		return "", fmt.Errorf("log entry id is required")
	}
	if strings.TrimSpace(entry.Description) == "" {
		return "", fmt.Errorf("log entry description is required")
	}
	if entry.Date == "" {
		entry.Date = time.Now().Format("2006-01-02")
	}
	if entry.MealCategory == "" {
		entry.MealCategory = model.MealUncategorized
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	items, err := json.Marshal(entry.Items)
	if err != nil {
		return "", fmt.Errorf("marshal log entry items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO food_log(id, description, calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, log_date, meal_category, items_json, logged_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, entry.ID, strings.TrimSpace(entry.Description),
		entry.Nutrition.Calories, entry.Nutrition.ProteinG, entry.Nutrition.CarbsG,
		entry.Nutrition.FatG, entry.Nutrition.FiberG, entry.Nutrition.SugarG,
		entry.Date, string(entry.MealCategory), string(items),
		entry.Timestamp.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert food log entry: %w", err)
	}
	return entry.ID, nil
}

// ListByDate returns the entries logged for one calendar date, oldest
// first.
func (s *Store) ListByDate(ctx context.Context, date string) ([]model.LogEntry, error) {
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("date is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, description, calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, log_date, meal_category, items_json, logged_at
FROM food_log
WHERE log_date = ?
ORDER BY logged_at ASC
`, date)
	if err != nil {
		return nil, fmt.Errorf("list food log entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.LogEntry, 0)
	for rows.Next() {
		var entry model.LogEntry
		var category, itemsRaw, loggedAt string
		if err := rows.Scan(&entry.ID, &entry.Description,
			&entry.Nutrition.Calories, &entry.Nutrition.ProteinG, &entry.Nutrition.CarbsG,
			&entry.Nutrition.FatG, &entry.Nutrition.FiberG, &entry.Nutrition.SugarG,
			&entry.Date, &category, &itemsRaw, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan food log entry: %w", err)
		}
		entry.MealCategory = model.MealCategory(category)
		if err := json.Unmarshal([]byte(itemsRaw), &entry.Items); err != nil {
			return nil, fmt.Errorf("decode food log items: %w", err)
		}
		entry.Timestamp, _ = time.Parse(time.RFC3339, loggedAt)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food log entries: %w", err)
	}
	return out, nil
}

// TotalsForDate sums the nutrition of everything logged on one date.
func (s *Store) TotalsForDate(ctx context.Context, date string) (model.NutritionTotals, error) {
	var totals model.NutritionTotals
	err := s.db.QueryRowContext(ctx, `
SELECT IFNULL(SUM(calories), 0), IFNULL(SUM(protein_g), 0), IFNULL(SUM(carbs_g), 0),
       IFNULL(SUM(fat_g), 0), IFNULL(SUM(fiber_g), 0), IFNULL(SUM(sugar_g), 0)
FROM food_log
WHERE log_date = ?
`, date).Scan(&totals.Calories, &totals.ProteinG, &totals.CarbsG,
		&totals.FatG, &totals.FiberG, &totals.SugarG)
	if err != nil {
		return model.NutritionTotals{}, fmt.Errorf("sum food log totals: %w", err)
	}
	return totals, nil
}
