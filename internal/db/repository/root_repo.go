package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rootyapp/rooty/internal/quiz"
)

// RootRepository serves quiz item batches from the roots and word_roots
// tables. Random ordering lives in SQL so concurrent sessions draw
// independent batches.
type RootRepository struct {
	db DBTX
}

func NewRootRepository(db DBTX) *RootRepository {
	return &RootRepository{db: db}
}

// RandomBatch selects up to limit roots, scoped to a theme when themeID
// is non-nil and drawn from the whole pool otherwise.
func (r *RootRepository) RandomBatch(ctx context.Context, themeID *int64, limit int) ([]quiz.Root, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if themeID != nil {
		rows, err = r.db.Query(ctx, `
			SELECT r.id, r.root_text, r.origin_lang, r.meaning, r.examples, r.source_title, r.source_url
			FROM roots r
			JOIN theme_roots tr ON tr.root_id = r.id
			WHERE tr.theme_id = $1
			ORDER BY random()
			LIMIT $2`, *themeID, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, root_text, origin_lang, meaning, examples, source_title, source_url
			FROM roots
			ORDER BY random()
			LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("random root batch: %w", err)
	}
	defer rows.Close()

	var roots []quiz.Root
	for rows.Next() {
		var root quiz.Root
		if err := rows.Scan(&root.ID, &root.RootText, &root.OriginLang, &root.Meaning,
			&root.Examples, &root.SourceTitle, &root.SourceURL); err != nil {
			return nil, fmt.Errorf("scan root: %w", err)
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

// RandomWordBatch selects up to limit word items, analogous to RandomBatch.
func (r *RootRepository) RandomWordBatch(ctx context.Context, themeID *int64, limit int) ([]quiz.Word, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if themeID != nil {
		rows, err = r.db.Query(ctx, `
			SELECT id, word, root_breakdown, meaning, options, origin_lang,
			       COALESCE(source_title, ''), COALESCE(source_url, '')
			FROM word_roots
			WHERE theme_id = $1
			ORDER BY random()
			LIMIT $2`, *themeID, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, word, root_breakdown, meaning, options, origin_lang,
			       COALESCE(source_title, ''), COALESCE(source_url, '')
			FROM word_roots
			ORDER BY random()
			LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("random word batch: %w", err)
	}
	defer rows.Close()

	var words []quiz.Word
	for rows.Next() {
		var w quiz.Word
		if err := rows.Scan(&w.ID, &w.Word, &w.RootBreakdown, &w.Meaning,
			&w.Options, &w.OriginLang, &w.SourceTitle, &w.SourceURL); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
