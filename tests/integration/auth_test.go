//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRegisterFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	email := fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
	password := "testpassword123"

	user := createRegisteredUser(t, baseURL, email, password)

	if user.ID == "" {
		t.Fatal("user ID is empty")
	}
	if user.RefreshToken == "" {
		t.Fatal("refresh token is empty")
	}
}

func TestLoginFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	email := fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
	password := "testpassword123"

	_ = createRegisteredUser(t, baseURL, email, password)
	user := loginUser(t, baseURL, email, password)

	if user.ID == "" {
		t.Fatal("user ID is empty")
	}
	if user.AccessToken == "" {
		t.Fatal("access token is empty")
	}
}

func TestRefreshFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	email := fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
	user := createRegisteredUser(t, baseURL, email, "testpassword123")

	body, _ := json.Marshal(map[string]string{"refresh_token": user.RefreshToken})
	resp, err := http.Post(fmt.Sprintf("%s/v1/auth/refresh", baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("refresh request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected refresh status: %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("refreshed access token is empty")
	}
}

func TestGetMeRequiresToken(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	status := rpcGet(t, baseURL, "", "/v1/users/me", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	email := fmt.Sprintf("test-%d@example.com", time.Now().UnixNano())
	user := createRegisteredUser(t, baseURL, email, "testpassword123")

	var me struct {
		UserID string `json:"user_id"`
	}
	status = rpcGet(t, baseURL, user.AccessToken, "/v1/users/me", &me)
	if status != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", status)
	}
	if me.UserID != user.ID {
		t.Fatalf("me returned wrong user: %s != %s", me.UserID, user.ID)
	}
}
