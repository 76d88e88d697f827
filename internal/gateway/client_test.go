package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootyapp/rooty/internal/quiz"
)

func TestGetThemes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rpc/get_themes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]quiz.Theme{{ID: 1, Name: "Christmas Special"}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(func() string { return "tok" }))
	themes, err := c.GetThemes(context.Background())
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "Christmas Special", themes[0].Name)
}

func TestGetSessionEmptyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ThemeID *int64 `json:"theme_id"`
			Limit   int    `json:"limit"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.ThemeID)
		assert.Equal(t, DefaultSessionLimit, req.Limit)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	roots, err := c.GetSession(context.Background(), nil, 0)
	require.NoError(t, err, "empty batch is a success at the gateway; callers decide")
	assert.Empty(t, roots)
	assert.NotNil(t, roots)
}

func TestBackendErrorIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream_error","message":"database unreachable"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetSession(context.Background(), nil, 5)
	require.Error(t, err)
	assert.Equal(t, KindBackend, KindOf(err))
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestTransportErrorIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL)
	_, err := c.GetThemes(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestSubmitAttemptPayload(t *testing.T) {
	var got Attempt
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(AttemptAck{Success: true, AttemptID: 42})
	}))
	defer srv.Close()

	themeID := int64(3)
	c := New(srv.URL)
	ack, err := c.SubmitAttempt(context.Background(), 7, true, "water", &themeID)
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.EqualValues(t, 42, ack.AttemptID)

	require.NotNil(t, got.RootID)
	assert.EqualValues(t, 7, *got.RootID)
	assert.Nil(t, got.WordRootID)
	require.NotNil(t, got.ThemeID)
	assert.EqualValues(t, 3, *got.ThemeID)
	assert.True(t, got.IsCorrect)
	assert.Equal(t, "water", got.UserAnswer)
}

func TestSubmitWordAttemptSetsWordID(t *testing.T) {
	var got Attempt
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(AttemptAck{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SubmitWordAttempt(context.Background(), 11, "water", false, nil)
	require.NoError(t, err)
	assert.Nil(t, got.RootID)
	require.NotNil(t, got.WordRootID)
	assert.EqualValues(t, 11, *got.WordRootID)
}

func TestGetReviewEmptyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	items, err := c.GetReview(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetStatsOverviewNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetStatsOverview(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNoData, KindOf(err))
}

func TestAuthenticated(t *testing.T) {
	c := New("http://x")
	assert.False(t, c.Authenticated())

	c = New("http://x", WithTokenSource(func() string { return "tok" }))
	assert.True(t, c.Authenticated())
}
