// Package session orchestrates one quiz run: batch acquisition, per-item
// grading, score tracking, attempt persistence, and the completion
// transition.
package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rootyapp/rooty/internal/gateway"
	"github.com/rootyapp/rooty/internal/progress"
	"github.com/rootyapp/rooty/internal/quiz"
)

// State is the controller's lifecycle position.
type State int

const (
	StateLoading State = iota
	StateReady
	StateComplete
	// StateEmpty is the "all caught up" terminal state of a review run:
	// the fetch succeeded and the queue is empty. Quiz runs never enter
	// it; for them an empty batch is StateError.
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateComplete:
		return "complete"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Mode selects which procedure supplies the batch.
type Mode int

const (
	ModeRoots Mode = iota
	ModeWords
	ModeReview
)

// Route is a logical navigation destination.
type Route string

const (
	RouteHome   Route = "/"
	RouteAuth   Route = "/auth"
	RouteLearn  Route = "/learn"
	RouteReview Route = "/review"
)

var (
	ErrUnauthenticated  = errors.New("sign in required")
	ErrTimeout          = errors.New("session load timed out")
	ErrEmptyBatch       = errors.New("no items available for this session")
	ErrNotAnswering     = errors.New("no question is awaiting an answer")
	ErrAlreadyAnswered  = errors.New("answer already submitted for this question")
	ErrClosed           = errors.New("controller closed")
	errNothingToRetry   = errors.New("retry is only valid from the error state")
)

// Gateway is the slice of the remote data gateway the controller uses.
// *gateway.Client satisfies it.
type Gateway interface {
	GetSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Root, error)
	GetWordSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Word, error)
	GetReview(ctx context.Context, limit int) ([]quiz.ReviewRoot, error)
	SubmitAttempt(ctx context.Context, rootID int64, isCorrect bool, userAnswer string, themeID *int64) (gateway.AttemptAck, error)
	SubmitWordAttempt(ctx context.Context, wordRootID int64, selectedOption string, isCorrect bool, themeID *int64) (gateway.AttemptAck, error)
	Authenticated() bool
}

// ProgressMarker records challenge completion; *progress.Store satisfies it.
type ProgressMarker interface {
	MarkComplete(n int)
}

// Navigator receives the controller's navigation requests.
type Navigator interface {
	Navigate(route Route)
}

// Options tune one controller instance.
type Options struct {
	Mode    Mode
	ThemeID *int64
	// Challenge is the daily-challenge ordinal, or 0 for a normal run.
	// Completion is only recorded when it falls in [1, ChallengeTotal].
	Challenge      int
	ChallengeTotal int
	BatchSize      int
	FetchTimeout   time.Duration
	AdvanceDelay   time.Duration
	SubmitTimeout  time.Duration
}

func (o *Options) applyDefaults() {
	if o.ChallengeTotal <= 0 {
		o.ChallengeTotal = progress.DefaultChallengeCount
	}
	if o.BatchSize <= 0 {
		o.BatchSize = gateway.DefaultSessionLimit
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 10 * time.Second
	}
	if o.AdvanceDelay <= 0 {
		o.AdvanceDelay = 2 * time.Second
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = o.FetchTimeout
	}
}

// Controller walks one batch of quiz items from load to completion.
//
// Attempt persistence is fire-and-forget: the advance timer runs
// independently of the submission call, so a slow or failed submission
// never stalls the quiz.
type Controller struct {
	gw     Gateway
	prog   ProgressMarker
	nav    Navigator
	logger zerolog.Logger
	opts   Options

	mu       sync.Mutex
	state    State
	err      error
	items    []quiz.Item
	review   []quiz.ReviewRoot
	idx      int
	score    int
	answered int
	locked   bool

	advanceTimer *time.Timer
	navTimer     *time.Timer
	closed       bool
}

// New builds a controller. All collaborators are explicit; nothing is
// read from package-level state.
func New(gw Gateway, prog ProgressMarker, nav Navigator, logger zerolog.Logger, opts Options) *Controller {
	opts.applyDefaults()
	return &Controller{
		gw:     gw,
		prog:   prog,
		nav:    nav,
		logger: logger,
		opts:   opts,
		state:  StateLoading,
	}
}

// Start checks identity and loads the batch. An unauthenticated user is
// redirected to the auth view before any backend call is issued.
func (c *Controller) Start(ctx context.Context) error {
	if !c.gw.Authenticated() {
		c.setError(ErrUnauthenticated)
		c.nav.Navigate(RouteAuth)
		return ErrUnauthenticated
	}
	return c.load(ctx)
}

// Retry re-enters loading after a failed load.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateError {
		c.mu.Unlock()
		return errNothingToRetry
	}
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()
	return c.load(ctx)
}

type fetched struct {
	items  []quiz.Item
	review []quiz.ReviewRoot
	err    error
}

func (c *Controller) load(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	// Race the fetch against a fixed timeout. The loser is not cancelled;
	// its eventual result is simply discarded.
	ch := make(chan fetched, 1)
	go func() { ch <- c.fetch(ctx) }()

	var res fetched
	select {
	case res = <-ch:
	case <-time.After(c.opts.FetchTimeout):
		c.setError(ErrTimeout)
		return ErrTimeout
	case <-ctx.Done():
		c.setError(ctx.Err())
		return ctx.Err()
	}

	if res.err != nil {
		c.setError(res.err)
		return res.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(res.items) == 0 {
		if c.opts.Mode == ModeReview {
			c.state = StateEmpty
			return nil
		}
		c.state = StateError
		c.err = ErrEmptyBatch
		return ErrEmptyBatch
	}

	c.items = res.items
	c.review = res.review
	c.idx = 0
	c.score = 0
	c.answered = 0
	c.locked = false
	c.state = StateReady
	return nil
}

func (c *Controller) fetch(ctx context.Context) fetched {
	switch c.opts.Mode {
	case ModeWords:
		words, err := c.gw.GetWordSession(ctx, c.opts.ThemeID, c.opts.BatchSize)
		if err != nil {
			return fetched{err: err}
		}
		items := make([]quiz.Item, 0, len(words))
		for _, w := range words {
			items = append(items, quiz.WordItem(w))
		}
		return fetched{items: items}
	case ModeReview:
		queued, err := c.gw.GetReview(ctx, c.opts.BatchSize)
		if err != nil {
			return fetched{err: err}
		}
		items := make([]quiz.Item, 0, len(queued))
		for _, r := range queued {
			items = append(items, quiz.RootItem(r.Root))
		}
		return fetched{items: items, review: queued}
	default:
		roots, err := c.gw.GetSession(ctx, c.opts.ThemeID, c.opts.BatchSize)
		if err != nil {
			return fetched{err: err}
		}
		items := make([]quiz.Item, 0, len(roots))
		for _, r := range roots {
			items = append(items, quiz.RootItem(r))
		}
		return fetched{items: items}
	}
}

// Submit grades the current item. Each item accepts exactly one
// submission; afterwards the item is locked and the advance timer takes
// over. The attempt is persisted asynchronously and its failure is
// logged, never surfaced.
func (c *Controller) Submit(answer string) (quiz.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return quiz.Verdict{}, ErrClosed
	}
	if c.state != StateReady {
		return quiz.Verdict{}, ErrNotAnswering
	}
	if c.locked {
		return quiz.Verdict{}, ErrAlreadyAnswered
	}

	item := c.items[c.idx]
	verdict, err := quiz.Grade(item, answer)
	if err != nil {
		return quiz.Verdict{}, err
	}

	c.locked = true
	c.answered++
	if verdict.Correct {
		c.score++
	}

	go c.dispatch(item, verdict)
	c.advanceTimer = time.AfterFunc(c.opts.AdvanceDelay, c.advance)

	return verdict, nil
}

func (c *Controller) dispatch(item quiz.Item, v quiz.Verdict) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.SubmitTimeout)
	defer cancel()

	var err error
	switch item.Kind {
	case quiz.KindWord:
		_, err = c.gw.SubmitWordAttempt(ctx, item.Word.ID, v.Answer, v.Correct, c.opts.ThemeID)
	default:
		_, err = c.gw.SubmitAttempt(ctx, item.Root.ID, v.Correct, v.Answer, c.opts.ThemeID)
	}
	if err != nil {
		c.logger.Warn().Err(err).Int64("item_id", item.ID()).Msg("attempt submission failed")
	}
}

func (c *Controller) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateReady {
		return
	}

	c.locked = false
	c.idx++
	if c.idx < len(c.items) {
		return
	}

	c.state = StateComplete
	if c.challengeActive() {
		c.prog.MarkComplete(c.opts.Challenge)
		c.navTimer = time.AfterFunc(c.opts.AdvanceDelay, func() {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.nav.Navigate(RouteHome)
			}
		})
	}
}

func (c *Controller) challengeActive() bool {
	return c.opts.Challenge >= 1 && c.opts.Challenge <= c.opts.ChallengeTotal
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateError
	c.err = err
}

// Close tears the controller down, stopping any pending advance or
// navigation timer so nothing fires after the caller has moved on.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
	}
	if c.navTimer != nil {
		c.navTimer.Stop()
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the terminal error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Current returns the item awaiting an answer.
func (c *Controller) Current() (quiz.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady || c.idx >= len(c.items) {
		return quiz.Item{}, false
	}
	return c.items[c.idx], true
}

// CurrentReview returns queue metadata for the current item in review mode.
func (c *Controller) CurrentReview() (quiz.ReviewRoot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Mode != ModeReview || c.idx >= len(c.review) {
		return quiz.ReviewRoot{}, false
	}
	return c.review[c.idx], true
}

// Index returns the zero-based position within the batch.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

// Total returns the batch size.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Score returns (correct, answered) for the active batch.
func (c *Controller) Score() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score, c.answered
}

// Submitted reports whether the current item is locked awaiting advance.
func (c *Controller) Submitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Percentage returns the final score as a rounded percentage of the
// batch size.
func (c *Controller) Percentage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return 0
	}
	return int(math.Round(float64(c.score) / float64(len(c.items)) * 100))
}
