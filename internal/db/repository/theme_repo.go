package repository

import (
	"context"
	"fmt"

	"github.com/rootyapp/rooty/internal/quiz"
)

// ThemeRepository reads the themes table. Themes are reference data: the
// API surface never mutates them.
type ThemeRepository struct {
	db DBTX
}

func NewThemeRepository(db DBTX) *ThemeRepository {
	return &ThemeRepository{db: db}
}

// List returns all themes ordered by week start.
func (r *ThemeRepository) List(ctx context.Context) ([]quiz.Theme, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, week_start, COALESCE(description, '')
		FROM themes
		ORDER BY week_start, id`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []quiz.Theme
	for rows.Next() {
		var t quiz.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.WeekStart, &t.Description); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}
