package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rootyapp/rooty/internal/quiz"
)

// AttemptRepository persists answers and maintains the per-user wrong
// queue and stats inputs.
type AttemptRepository struct {
	db DBTX
}

func NewAttemptRepository(db DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Insert stores one attempt and returns its id.
func (r *AttemptRepository) Insert(ctx context.Context, rec AttemptRecord) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO attempts (user_id, root_id, word_root_id, theme_id, is_correct, user_answer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		rec.UserID, rec.RootID, rec.WordRootID, rec.ThemeID, rec.IsCorrect, rec.UserAnswer).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	return id, nil
}

// PushWrong queues a missed root, bumping the miss count when it is
// already queued.
func (r *AttemptRepository) PushWrong(ctx context.Context, userID uuid.UUID, rootID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wrong_queue (user_id, root_id, queued_at, last_seen_at, times_incorrect)
		VALUES ($1, $2, now(), now(), 1)
		ON CONFLICT (user_id, root_id)
		DO UPDATE SET times_incorrect = wrong_queue.times_incorrect + 1, last_seen_at = now()`,
		userID, rootID)
	if err != nil {
		return fmt.Errorf("push wrong queue: %w", err)
	}
	return nil
}

// ResolveWrong removes a root from the queue after a correct answer.
// Removing an unqueued root is a no-op.
func (r *AttemptRepository) ResolveWrong(ctx context.Context, userID uuid.UUID, rootID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM wrong_queue WHERE user_id = $1 AND root_id = $2`, userID, rootID)
	if err != nil {
		return fmt.Errorf("resolve wrong queue: %w", err)
	}
	return nil
}

// Review returns the user's queued roots, oldest first, enriched with
// queue metadata.
func (r *AttemptRepository) Review(ctx context.Context, userID uuid.UUID, limit int) ([]quiz.ReviewRoot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.root_text, r.origin_lang, r.meaning, r.examples, r.source_title, r.source_url,
		       w.times_incorrect, w.queued_at
		FROM wrong_queue w
		JOIN roots r ON r.id = w.root_id
		WHERE w.user_id = $1
		ORDER BY w.queued_at
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("review queue: %w", err)
	}
	defer rows.Close()

	var out []quiz.ReviewRoot
	for rows.Next() {
		var rr quiz.ReviewRoot
		if err := rows.Scan(&rr.ID, &rr.RootText, &rr.OriginLang, &rr.Meaning, &rr.Examples,
			&rr.SourceTitle, &rr.SourceURL, &rr.TimesIncorrect, &rr.QueuedAt); err != nil {
			return nil, fmt.Errorf("scan review root: %w", err)
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// Totals holds the raw counters behind the stats overview.
type Totals struct {
	TotalAttempts   int64
	CorrectAttempts int64
	RootsLearned    int64
}

// Overview aggregates the user's attempt counters in one query.
func (r *AttemptRepository) Overview(ctx context.Context, userID uuid.UUID) (Totals, error) {
	var t Totals
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_correct),
		       COUNT(DISTINCT root_id) FILTER (WHERE is_correct AND root_id IS NOT NULL)
		FROM attempts
		WHERE user_id = $1`, userID).Scan(&t.TotalAttempts, &t.CorrectAttempts, &t.RootsLearned)
	if err != nil {
		return Totals{}, fmt.Errorf("stats overview: %w", err)
	}
	return t, nil
}

// ActiveDays returns the distinct calendar days with at least one
// attempt, most recent first. The streak itself is computed in the
// service so it can be unit tested.
func (r *AttemptRepository) ActiveDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT created_at::date AS day
		FROM attempts
		WHERE user_id = $1
		ORDER BY day DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("active days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
