// Package server wires HTTP routes for the API service.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rootyapp/rooty/internal/auth"
	"github.com/rootyapp/rooty/internal/config"
	"github.com/rootyapp/rooty/internal/study"
)

// NewHTTPServer wires base routes (health, metrics), auth endpoints, and
// the study procedures for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, authSvc *auth.Service, authHandlers *auth.HTTPHandlers, studyHandlers *study.HTTPHandlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Auth endpoints
	if authHandlers != nil {
		mux.HandleFunc("/v1/auth/register", authHandlers.Register)
		mux.HandleFunc("/v1/auth/login", authHandlers.Login)
		mux.HandleFunc("/v1/auth/refresh", authHandlers.RefreshToken)
		mux.HandleFunc("/v1/oauth/google/start", authHandlers.OAuthStart)
		mux.HandleFunc("/v1/oauth/google/callback", authHandlers.OAuthCallback)
		mux.Handle("/v1/users/me", requireAuth(authSvc, logger, http.HandlerFunc(authHandlers.GetMe)))
	}

	// Study procedures. Every /v1/rpc route requires a bearer token.
	if studyHandlers != nil {
		rpc := func(h http.HandlerFunc) http.Handler {
			return requireAuth(authSvc, logger, h)
		}
		mux.Handle("/v1/rpc/get_themes", rpc(studyHandlers.GetThemes))
		mux.Handle("/v1/rpc/get_session", rpc(studyHandlers.GetSession))
		mux.Handle("/v1/rpc/get_word_session", rpc(studyHandlers.GetWordSession))
		mux.Handle("/v1/rpc/submit_attempt", rpc(studyHandlers.SubmitAttempt))
		mux.Handle("/v1/rpc/get_review", rpc(studyHandlers.GetReview))
		mux.Handle("/v1/rpc/stats_overview", rpc(studyHandlers.StatsOverview))
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS, mux),
	}
}

func requireAuth(authSvc *auth.Service, logger zerolog.Logger, next http.Handler) http.Handler {
	return auth.Middleware(authSvc, logger)(auth.RequireAuth(next))
}

// corsMiddleware answers preflight requests and stamps CORS headers for
// allowed browser origins.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
