//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// Exercises the full learner loop against a seeded server: fetch a
// session, answer wrong, find the root in the review queue, answer
// right, and watch the queue drain and the stats move.
func TestStudyFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	email := fmt.Sprintf("study-%d@example.com", time.Now().UnixNano())
	user := createRegisteredUser(t, baseURL, email, "testpassword123")

	var roots []struct {
		ID      int64  `json:"id"`
		Meaning string `json:"meaning"`
	}
	status := rpcPost(t, baseURL, user.AccessToken, "/v1/rpc/get_session", map[string]any{"limit": 3}, &roots)
	if status != http.StatusOK {
		t.Fatalf("get_session status: %d", status)
	}
	if len(roots) == 0 {
		t.Skip("server has no seeded roots")
	}
	root := roots[0]

	// Miss it.
	var ack struct {
		Success   bool  `json:"success"`
		AttemptID int64 `json:"attempt_id"`
	}
	status = rpcPost(t, baseURL, user.AccessToken, "/v1/rpc/submit_attempt", map[string]any{
		"root_id":     root.ID,
		"is_correct":  false,
		"user_answer": "definitely wrong",
	}, &ack)
	if status != http.StatusOK || !ack.Success {
		t.Fatalf("submit_attempt (miss) status=%d success=%v", status, ack.Success)
	}

	var queued []struct {
		ID             int64 `json:"id"`
		TimesIncorrect int   `json:"times_incorrect"`
	}
	status = rpcPost(t, baseURL, user.AccessToken, "/v1/rpc/get_review", map[string]any{"limit": 10}, &queued)
	if status != http.StatusOK {
		t.Fatalf("get_review status: %d", status)
	}
	if len(queued) != 1 || queued[0].ID != root.ID {
		t.Fatalf("expected root %d queued for review, got %+v", root.ID, queued)
	}

	// Redeem it.
	status = rpcPost(t, baseURL, user.AccessToken, "/v1/rpc/submit_attempt", map[string]any{
		"root_id":     root.ID,
		"is_correct":  true,
		"user_answer": root.Meaning,
	}, &ack)
	if status != http.StatusOK {
		t.Fatalf("submit_attempt (hit) status: %d", status)
	}

	status = rpcPost(t, baseURL, user.AccessToken, "/v1/rpc/get_review", map[string]any{"limit": 10}, &queued)
	if status != http.StatusOK {
		t.Fatalf("get_review status: %d", status)
	}
	if len(queued) != 0 {
		t.Fatalf("review queue should be empty, got %+v", queued)
	}

	var stats struct {
		TotalAttempts   int64 `json:"total_attempts"`
		CorrectAttempts int64 `json:"correct_attempts"`
		CurrentStreak   int   `json:"current_streak"`
	}
	status = rpcGet(t, baseURL, user.AccessToken, "/v1/rpc/stats_overview", &stats)
	if status != http.StatusOK {
		t.Fatalf("stats_overview status: %d", status)
	}
	if stats.TotalAttempts != 2 || stats.CorrectAttempts != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.CurrentStreak != 1 {
		t.Fatalf("expected a one-day streak, got %d", stats.CurrentStreak)
	}
}

func TestRPCRequiresAuth(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	status := rpcGet(t, baseURL, "", "/v1/rpc/get_themes", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestThemesListed(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	email := fmt.Sprintf("themes-%d@example.com", time.Now().UnixNano())
	user := createRegisteredUser(t, baseURL, email, "testpassword123")

	var themes []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	status := rpcGet(t, baseURL, user.AccessToken, "/v1/rpc/get_themes", &themes)
	if status != http.StatusOK {
		t.Fatalf("get_themes status: %d", status)
	}
}
