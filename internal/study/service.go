// Package study implements the remote procedures behind the quiz client:
// theme listing, session batches, attempt recording with wrong-queue
// maintenance, the review queue, and the stats overview.
package study

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rootyapp/rooty/internal/db/repository"
	"github.com/rootyapp/rooty/internal/quiz"
)

type themeStore interface {
	List(ctx context.Context) ([]quiz.Theme, error)
}

type batchStore interface {
	RandomBatch(ctx context.Context, themeID *int64, limit int) ([]quiz.Root, error)
	RandomWordBatch(ctx context.Context, themeID *int64, limit int) ([]quiz.Word, error)
}

type attemptStore interface {
	Insert(ctx context.Context, rec repository.AttemptRecord) (int64, error)
	PushWrong(ctx context.Context, userID uuid.UUID, rootID int64) error
	ResolveWrong(ctx context.Context, userID uuid.UUID, rootID int64) error
	Review(ctx context.Context, userID uuid.UUID, limit int) ([]quiz.ReviewRoot, error)
	Overview(ctx context.Context, userID uuid.UUID) (repository.Totals, error)
	ActiveDays(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

// ThemeCache is the optional read-through cache for the theme list
// (implemented by the Redis-backed Cache).
type ThemeCache interface {
	Get(ctx context.Context) ([]quiz.Theme, error)
	Set(ctx context.Context, themes []quiz.Theme) error
}

// ServiceOptions tune batch limits.
type ServiceOptions struct {
	// SessionLimit caps the batch size and doubles as the default when a
	// request omits the limit.
	SessionLimit int
}

// Service orchestrates repositories and the theme cache.
type Service struct {
	themes   themeStore
	batches  batchStore
	attempts attemptStore
	cache    ThemeCache
	limit    int
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(themes themeStore, batches batchStore, attempts attemptStore, cache ThemeCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	limit := opts.SessionLimit
	if limit <= 0 {
		limit = 10
	}
	return &Service{
		themes:   themes,
		batches:  batches,
		attempts: attempts,
		cache:    cache,
		limit:    limit,
		logger:   logger,
		now:      time.Now,
	}
}

// Themes returns all themes in backend order, reading through the cache
// when one is configured. Cache failures degrade to the database.
func (s *Service) Themes(ctx context.Context) ([]quiz.Theme, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Msg("theme cache read failed")
		}
	}

	themes, err := s.themes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	if themes == nil {
		themes = []quiz.Theme{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, themes); err != nil {
			s.logger.Warn().Err(err).Msg("theme cache write failed")
		}
	}
	return themes, nil
}

func (s *Service) clamp(limit int) int {
	if limit <= 0 || limit > s.limit {
		return s.limit
	}
	return limit
}

// Session returns a random root batch, theme-scoped when themeID is set.
// An empty pool yields an empty batch; emptiness policy is the client's.
func (s *Service) Session(ctx context.Context, themeID *int64, limit int) ([]quiz.Root, error) {
	roots, err := s.batches.RandomBatch(ctx, themeID, s.clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("root session: %w", err)
	}
	if roots == nil {
		roots = []quiz.Root{}
	}
	sessionsServed.WithLabelValues("roots").Inc()
	return roots, nil
}

// WordSession returns a random word-item batch. Rows violating the
// option invariant are skipped and logged rather than served.
func (s *Service) WordSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Word, error) {
	words, err := s.batches.RandomWordBatch(ctx, themeID, s.clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("word session: %w", err)
	}

	valid := make([]quiz.Word, 0, len(words))
	for _, w := range words {
		if !quiz.ValidWord(w) {
			s.logger.Error().Int64("word_root_id", w.ID).Msg("word item violates option invariant, skipped")
			continue
		}
		valid = append(valid, w)
	}
	sessionsServed.WithLabelValues("words").Inc()
	return valid, nil
}

// AttemptRequest is the decoded submit_attempt payload.
type AttemptRequest struct {
	RootID     *int64 `json:"root_id"`
	WordRootID *int64 `json:"word_root_id"`
	ThemeID    *int64 `json:"theme_id"`
	IsCorrect  bool   `json:"is_correct"`
	UserAnswer string `json:"user_answer"`
}

// SubmitAttempt records one answer. Root attempts also maintain the
// wrong queue: a miss queues the root (or bumps its miss count), a hit
// removes it.
func (s *Service) SubmitAttempt(ctx context.Context, userID uuid.UUID, req AttemptRequest) (int64, error) {
	if (req.RootID == nil) == (req.WordRootID == nil) {
		return 0, fmt.Errorf("exactly one of root_id and word_root_id must be set")
	}

	id, err := s.attempts.Insert(ctx, repository.AttemptRecord{
		UserID:     userID,
		RootID:     req.RootID,
		WordRootID: req.WordRootID,
		ThemeID:    req.ThemeID,
		IsCorrect:  req.IsCorrect,
		UserAnswer: req.UserAnswer,
	})
	if err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}

	if req.RootID != nil {
		if req.IsCorrect {
			err = s.attempts.ResolveWrong(ctx, userID, *req.RootID)
		} else {
			err = s.attempts.PushWrong(ctx, userID, *req.RootID)
		}
		if err != nil {
			return 0, fmt.Errorf("maintain wrong queue: %w", err)
		}
	}

	result := "incorrect"
	if req.IsCorrect {
		result = "correct"
	}
	attemptsRecorded.WithLabelValues(result).Inc()
	return id, nil
}

// Review returns the user's queued roots, oldest first. Empty is a valid
// result.
func (s *Service) Review(ctx context.Context, userID uuid.UUID, limit int) ([]quiz.ReviewRoot, error) {
	queued, err := s.attempts.Review(ctx, userID, s.clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("review queue: %w", err)
	}
	if queued == nil {
		queued = []quiz.ReviewRoot{}
	}
	return queued, nil
}

// Stats assembles the overview counters plus the daily streak.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (quiz.Stats, error) {
	totals, err := s.attempts.Overview(ctx, userID)
	if err != nil {
		return quiz.Stats{}, fmt.Errorf("stats totals: %w", err)
	}
	days, err := s.attempts.ActiveDays(ctx, userID)
	if err != nil {
		return quiz.Stats{}, fmt.Errorf("stats days: %w", err)
	}

	accuracy := 0
	if totals.TotalAttempts > 0 {
		accuracy = int(float64(totals.CorrectAttempts)/float64(totals.TotalAttempts)*100 + 0.5)
	}

	return quiz.Stats{
		TotalAttempts:   totals.TotalAttempts,
		CorrectAttempts: totals.CorrectAttempts,
		AccuracyPercent: accuracy,
		RootsLearned:    totals.RootsLearned,
		CurrentStreak:   streak(days, s.now()),
	}, nil
}

// streak counts consecutive active calendar days ending today or, when
// today has no attempt yet, ending yesterday. days is distinct dates,
// most recent first.
func streak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	expect := day(now)
	if !day(days[0]).Equal(expect) {
		expect = expect.AddDate(0, 0, -1)
		if !day(days[0]).Equal(expect) {
			return 0
		}
	}

	count := 0
	for _, d := range days {
		if !day(d).Equal(expect) {
			break
		}
		count++
		expect = expect.AddDate(0, 0, -1)
	}
	return count
}
