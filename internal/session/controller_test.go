package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootyapp/rooty/internal/gateway"
	"github.com/rootyapp/rooty/internal/quiz"
)

type fakeGateway struct {
	roots     []quiz.Root
	words     []quiz.Word
	review    []quiz.ReviewRoot
	fetchErr  error
	fetchWait time.Duration
	authed    bool

	calls    atomic.Int64
	mu       sync.Mutex
	attempts []gateway.Attempt
}

func (f *fakeGateway) GetSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Root, error) {
	f.calls.Add(1)
	if f.fetchWait > 0 {
		time.Sleep(f.fetchWait)
	}
	return f.roots, f.fetchErr
}

func (f *fakeGateway) GetWordSession(ctx context.Context, themeID *int64, limit int) ([]quiz.Word, error) {
	f.calls.Add(1)
	return f.words, f.fetchErr
}

func (f *fakeGateway) GetReview(ctx context.Context, limit int) ([]quiz.ReviewRoot, error) {
	f.calls.Add(1)
	return f.review, f.fetchErr
}

func (f *fakeGateway) SubmitAttempt(ctx context.Context, rootID int64, isCorrect bool, userAnswer string, themeID *int64) (gateway.AttemptAck, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, gateway.Attempt{RootID: &rootID, IsCorrect: isCorrect, UserAnswer: userAnswer, ThemeID: themeID})
	return gateway.AttemptAck{Success: true}, nil
}

func (f *fakeGateway) SubmitWordAttempt(ctx context.Context, wordRootID int64, selectedOption string, isCorrect bool, themeID *int64) (gateway.AttemptAck, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, gateway.Attempt{WordRootID: &wordRootID, IsCorrect: isCorrect, UserAnswer: selectedOption, ThemeID: themeID})
	return gateway.AttemptAck{Success: true}, nil
}

func (f *fakeGateway) Authenticated() bool { return f.authed }

func (f *fakeGateway) recorded() []gateway.Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gateway.Attempt, len(f.attempts))
	copy(out, f.attempts)
	return out
}

type fakeProgress struct {
	mu     sync.Mutex
	marked []int
}

func (p *fakeProgress) MarkComplete(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marked = append(p.marked, n)
}

func (p *fakeProgress) completed() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.marked...)
}

type fakeNav struct {
	mu     sync.Mutex
	routes []Route
}

func (n *fakeNav) Navigate(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, r)
}

func (n *fakeNav) visited() []Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Route(nil), n.routes...)
}

func fastOpts(mode Mode) Options {
	return Options{
		Mode:          mode,
		FetchTimeout:  200 * time.Millisecond,
		AdvanceDelay:  5 * time.Millisecond,
		SubmitTimeout: 100 * time.Millisecond,
	}
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want },
		time.Second, time.Millisecond, "expected state %s, still %s", want, c.State())
}

func waitIndex(t *testing.T, c *Controller, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Index() == want },
		time.Second, time.Millisecond)
}

func TestTwoRootSessionEndToEnd(t *testing.T) {
	gw := &fakeGateway{
		authed: true,
		roots: []quiz.Root{
			{ID: 1, RootText: "aqua", Meaning: "water"},
			{ID: 2, RootText: "terra", Meaning: "earth"},
		},
	}
	nav := &fakeNav{}
	c := New(gw, &fakeProgress{}, nav, zerolog.Nop(), fastOpts(ModeRoots))
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, StateReady, c.State())
	assert.Equal(t, 2, c.Total())

	v, err := c.Submit("water")
	require.NoError(t, err)
	assert.True(t, v.Correct)
	assert.True(t, c.Submitted())

	waitIndex(t, c, 1)

	item, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "terra", item.Prompt())

	v, err = c.Submit("fire")
	require.NoError(t, err)
	assert.False(t, v.Correct)
	assert.Equal(t, "earth", v.Meaning, "feedback must reveal the canonical meaning")

	waitState(t, c, StateComplete)

	correct, answered := c.Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, answered)
	assert.Equal(t, 50, c.Percentage())
	assert.Empty(t, nav.visited(), "non-challenge completion does not auto-navigate")

	require.Eventually(t, func() bool { return len(gw.recorded()) == 2 },
		time.Second, time.Millisecond, "both attempts should be dispatched")
	rec := gw.recorded()
	assert.True(t, rec[0].IsCorrect)
	assert.False(t, rec[1].IsCorrect)
}

func TestSingleShotSubmission(t *testing.T) {
	gw := &fakeGateway{authed: true, roots: []quiz.Root{{ID: 1, Meaning: "water"}}}
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), Options{
		Mode:         ModeRoots,
		FetchTimeout: 200 * time.Millisecond,
		AdvanceDelay: time.Minute, // hold the lock open
	})
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	_, err := c.Submit("water")
	require.NoError(t, err)

	_, err = c.Submit("water")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestFetchTimeoutLandsInError(t *testing.T) {
	gw := &fakeGateway{authed: true, fetchWait: 300 * time.Millisecond, roots: []quiz.Root{{ID: 1}}}
	opts := fastOpts(ModeRoots)
	opts.FetchTimeout = 10 * time.Millisecond
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), opts)
	defer c.Close()

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, StateError, c.State())
}

func TestEmptyQuizBatchIsError(t *testing.T) {
	gw := &fakeGateway{authed: true, roots: []quiz.Root{}}
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), fastOpts(ModeRoots))
	defer c.Close()

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Equal(t, StateError, c.State())
}

func TestEmptyReviewQueueIsAllCaughtUp(t *testing.T) {
	gw := &fakeGateway{authed: true, review: []quiz.ReviewRoot{}}
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), fastOpts(ModeReview))
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, StateEmpty, c.State())
}

func TestRetryAfterError(t *testing.T) {
	gw := &fakeGateway{authed: true, roots: []quiz.Root{}}
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), fastOpts(ModeRoots))
	defer c.Close()

	require.Error(t, c.Start(context.Background()))

	gw.roots = []quiz.Root{{ID: 1, Meaning: "water"}}
	require.NoError(t, c.Retry(context.Background()))
	assert.Equal(t, StateReady, c.State())

	// Retry from a healthy state is rejected.
	assert.Error(t, c.Retry(context.Background()))
}

func TestChallengeCompletionMarksAndNavigates(t *testing.T) {
	gw := &fakeGateway{authed: true, roots: []quiz.Root{{ID: 1, Meaning: "water"}}}
	prog := &fakeProgress{}
	nav := &fakeNav{}
	opts := fastOpts(ModeRoots)
	opts.Challenge = 2
	c := New(gw, prog, nav, zerolog.Nop(), opts)
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	_, err := c.Submit("wrong answer entirely")
	require.NoError(t, err, "any score completes a challenge")

	waitState(t, c, StateComplete)
	assert.Equal(t, []int{2}, prog.completed())

	require.Eventually(t, func() bool {
		v := nav.visited()
		return len(v) == 1 && v[0] == RouteHome
	}, time.Second, time.Millisecond, "challenge completion auto-navigates home")
}

func TestChallengeOrdinalOutOfRangeNotMarked(t *testing.T) {
	gw := &fakeGateway{authed: true, roots: []quiz.Root{{ID: 1, Meaning: "water"}}}
	prog := &fakeProgress{}
	nav := &fakeNav{}
	opts := fastOpts(ModeRoots)
	opts.Challenge = 9
	opts.ChallengeTotal = 4
	c := New(gw, prog, nav, zerolog.Nop(), opts)
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	_, err := c.Submit("water")
	require.NoError(t, err)

	waitState(t, c, StateComplete)
	assert.Empty(t, prog.completed())
	assert.Empty(t, nav.visited())
}

func TestUnauthenticatedRedirectsWithoutBackendCalls(t *testing.T) {
	gw := &fakeGateway{authed: false, roots: []quiz.Root{{ID: 1}}}
	nav := &fakeNav{}
	c := New(gw, &fakeProgress{}, nav, zerolog.Nop(), fastOpts(ModeRoots))
	defer c.Close()

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, []Route{RouteAuth}, nav.visited())
	assert.EqualValues(t, 0, gw.calls.Load(), "no backend calls before the auth redirect")
}

func TestWordSessionGrading(t *testing.T) {
	gw := &fakeGateway{authed: true, words: []quiz.Word{{
		ID:      5,
		Word:    "aquarium",
		Meaning: "water",
		Options: []string{"water", "fire", "earth", "air"},
	}}}
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), fastOpts(ModeWords))
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))

	v, err := c.Submit("water")
	require.NoError(t, err)
	assert.True(t, v.Correct)

	waitState(t, c, StateComplete)
	require.Eventually(t, func() bool { return len(gw.recorded()) == 1 },
		time.Second, time.Millisecond)
	rec := gw.recorded()[0]
	require.NotNil(t, rec.WordRootID)
	assert.EqualValues(t, 5, *rec.WordRootID)
	assert.Nil(t, rec.RootID)
}

func TestReviewSessionExposesQueueMetadata(t *testing.T) {
	gw := &fakeGateway{authed: true, review: []quiz.ReviewRoot{{
		Root:           quiz.Root{ID: 3, RootText: "hydro", Meaning: "water"},
		TimesIncorrect: 2,
	}}}
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), fastOpts(ModeReview))
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	meta, ok := c.CurrentReview()
	require.True(t, ok)
	assert.Equal(t, 2, meta.TimesIncorrect)
}

func TestCloseStopsPendingAdvance(t *testing.T) {
	gw := &fakeGateway{authed: true, roots: []quiz.Root{
		{ID: 1, Meaning: "water"},
		{ID: 2, Meaning: "earth"},
	}}
	opts := fastOpts(ModeRoots)
	opts.AdvanceDelay = 20 * time.Millisecond
	c := New(gw, &fakeProgress{}, &fakeNav{}, zerolog.Nop(), opts)

	require.NoError(t, c.Start(context.Background()))
	_, err := c.Submit("water")
	require.NoError(t, err)

	c.Close()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, c.Index(), "advance must not fire after teardown")
}
