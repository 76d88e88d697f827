// Command rooty is a terminal client for the Rooty backend: sign in,
// run quiz sessions, work the review queue, and track daily challenges.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rootyapp/rooty/internal/gateway"
	"github.com/rootyapp/rooty/internal/logging"
	"github.com/rootyapp/rooty/internal/progress"
	"github.com/rootyapp/rooty/internal/quiz"
	"github.com/rootyapp/rooty/internal/session"
)

const usage = `Usage: rooty [flags] <command>

Commands:
  login              sign in with email and password
  themes             list available themes
  quiz               run a root quiz session
  words              run a multiple-choice word session
  review             replay previously missed roots
  challenge <n>      run daily challenge n (1-4)
  stats              show your overall statistics
  reset-challenges   clear local challenge progress

Flags:
  -server URL        backend base URL (default $ROOTY_SERVER or http://localhost:8080)
  -theme ID          restrict quiz/words to one theme
  -limit N           batch size (default 10)
`

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	var (
		server  string
		themeID int64
		limit   int
	)
	defaultServer := os.Getenv("ROOTY_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	fs := flagSet(&server, defaultServer, &themeID, &limit)
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := logging.New("rooty", envOr("APP_ENV", "development")).Level(zerolog.WarnLevel)

	cli := &client{
		server: strings.TrimRight(server, "/"),
		logger: logger,
	}
	cli.gw = gateway.New(cli.server,
		gateway.WithTokenSource(cli.tokenSource),
		gateway.WithLogger(logger),
	)

	var theme *int64
	if themeID > 0 {
		theme = &themeID
	}

	ctx := context.Background()
	var err error
	switch cmd := fs.Arg(0); cmd {
	case "login":
		err = cli.login(ctx)
	case "themes":
		err = cli.listThemes(ctx)
	case "quiz":
		err = cli.runSession(ctx, session.Options{Mode: session.ModeRoots, ThemeID: theme, BatchSize: limit})
	case "words":
		err = cli.runSession(ctx, session.Options{Mode: session.ModeWords, ThemeID: theme, BatchSize: limit})
	case "review":
		err = cli.runSession(ctx, session.Options{Mode: session.ModeReview, BatchSize: limit})
	case "challenge":
		err = cli.runChallenge(ctx, fs.Arg(1), limit)
	case "stats":
		err = cli.showStats(ctx)
	case "reset-challenges":
		cli.progressStore().Reset()
		fmt.Println("Challenge progress cleared.")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func flagSet(server *string, defaultServer string, themeID *int64, limit *int) *flag.FlagSet {
	fs := flag.NewFlagSet("rooty", flag.ExitOnError)
	fs.StringVar(server, "server", defaultServer, "backend base URL")
	fs.Int64Var(themeID, "theme", 0, "restrict the session to one theme")
	fs.IntVar(limit, "limit", gateway.DefaultSessionLimit, "batch size")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	return fs
}

type client struct {
	server string
	gw     *gateway.Client
	logger zerolog.Logger
}

// tokenSource prefers the environment and falls back to the token saved
// by a previous login.
func (c *client) tokenSource() string {
	if tok := os.Getenv("ROOTY_TOKEN"); tok != "" {
		return tok
	}
	raw, err := os.ReadFile(filepath.Join(configDir(), "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (c *client) login(ctx context.Context) error {
	in := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, _ := in.ReadString('\n')
	fmt.Print("Password: ")
	password, _ := in.ReadString('\n')

	body, err := json.Marshal(map[string]string{
		"email":    strings.TrimSpace(email),
		"password": strings.TrimSpace(password),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+"/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach %s: %w", c.server, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Message == "" {
			payload.Message = resp.Status
		}
		return fmt.Errorf("login failed: %s", payload.Message)
	}

	var out struct {
		DisplayName string `json:"display_name"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	dir := configDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte(out.AccessToken), 0o600); err != nil {
		return err
	}

	fmt.Printf("Signed in as %s.\n", out.DisplayName)
	return nil
}

func (c *client) listThemes(ctx context.Context) error {
	themes, err := c.gw.GetThemes(ctx)
	if err != nil {
		return err
	}
	if len(themes) == 0 {
		fmt.Println("No themes available yet.")
		return nil
	}
	for _, t := range themes {
		fmt.Printf("%4d  %-20s week of %s", t.ID, t.Name, t.WeekStart.Format("2006-01-02"))
		if t.Description != "" {
			fmt.Printf("  %s", t.Description)
		}
		fmt.Println()
	}
	return nil
}

func (c *client) showStats(ctx context.Context) error {
	stats, err := c.gw.GetStatsOverview(ctx)
	if err != nil {
		if gateway.KindOf(err) == gateway.KindNoData {
			fmt.Println("No attempts recorded yet. Run a quiz first!")
			return nil
		}
		return err
	}
	fmt.Printf("Attempts:  %d (%d correct, %d%% accuracy)\n", stats.TotalAttempts, stats.CorrectAttempts, stats.AccuracyPercent)
	fmt.Printf("Roots learned: %d\n", stats.RootsLearned)
	fmt.Printf("Current streak: %d day(s)\n", stats.CurrentStreak)

	store := c.progressStore()
	done := store.Completed()
	fmt.Printf("Daily challenges: %d/%d complete\n", len(done), progress.DefaultChallengeCount)
	return nil
}

func (c *client) runChallenge(ctx context.Context, arg string, limit int) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > progress.DefaultChallengeCount {
		return fmt.Errorf("challenge number must be 1-%d", progress.DefaultChallengeCount)
	}

	themes := progress.NewThemeCache(c.gw, progress.ChallengeThemeName)
	theme, err := themes.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve challenge theme: %w", err)
	}
	if theme == nil {
		return fmt.Errorf("the %q theme is not available on this server", progress.ChallengeThemeName)
	}

	return c.runSession(ctx, session.Options{
		Mode:      session.ModeRoots,
		ThemeID:   theme,
		Challenge: n,
		BatchSize: limit,
	})
}

func (c *client) progressStore() *progress.Store {
	return progress.NewStore(filepath.Join(configDir(), "challenges.json"), c.logger)
}

// runSession drives one controller from load to completion on the
// terminal.
func (c *client) runSession(ctx context.Context, opts session.Options) error {
	nav := &printNavigator{home: make(chan struct{}, 1)}
	ctrl := session.New(c.gw, c.progressStore(), nav, c.logger, opts)
	defer ctrl.Close()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	for {
		switch ctrl.State() {
		case session.StateReady:
			if err := c.askCurrent(ctrl, in); err != nil {
				return err
			}

		case session.StateComplete:
			correct, _ := ctrl.Score()
			fmt.Printf("\nSession complete: %d/%d (%d%%)\n", correct, ctrl.Total(), ctrl.Percentage())
			if opts.Challenge > 0 {
				// The home redirect fires shortly after completion.
				select {
				case <-nav.home:
				case <-time.After(3 * time.Second):
				}
			}
			return nil

		case session.StateEmpty:
			fmt.Println("Nothing to review. You're all caught up!")
			return nil

		case session.StateError:
			return ctrl.Err()

		default:
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (c *client) askCurrent(ctrl *session.Controller, in *bufio.Reader) error {
	item, ok := ctrl.Current()
	if !ok {
		time.Sleep(50 * time.Millisecond)
		return nil
	}

	fmt.Printf("\n[%d/%d] ", ctrl.Index()+1, ctrl.Total())

	var answer string
	switch item.Kind {
	case quiz.KindRoot:
		fmt.Printf("What does the %s root %q mean?\n", item.Root.OriginLang, item.Root.RootText)
		if rr, ok := ctrl.CurrentReview(); ok {
			fmt.Printf("(missed %d time(s) before)\n", rr.TimesIncorrect)
		}
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(line)

	case quiz.KindWord:
		fmt.Printf("%q comes from %s. What does it mean?\n", item.Word.Word, item.Word.RootBreakdown)
		options := quiz.ShuffledOptions(item.Word)
		for i, opt := range options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return err
		}
		pick, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || pick < 1 || pick > len(options) {
			fmt.Println("Enter a number from the list.")
			return nil
		}
		answer = options[pick-1]
	}

	verdict, err := ctrl.Submit(answer)
	if err != nil {
		return err
	}
	fmt.Println(verdict.Feedback())

	// Wait for the controller to move on.
	idx := ctrl.Index()
	for ctrl.Index() == idx && ctrl.State() == session.StateReady {
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

// printNavigator renders navigation requests as terminal messages.
type printNavigator struct {
	home chan struct{}
}

func (n *printNavigator) Navigate(route session.Route) {
	switch route {
	case session.RouteAuth:
		fmt.Println("Sign in required. Run `rooty login` first.")
	case session.RouteHome:
		fmt.Println("Challenge complete! Back to the home screen.")
		select {
		case n.home <- struct{}{}:
		default:
		}
	}
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "rooty")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
