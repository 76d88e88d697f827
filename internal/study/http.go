package study

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rootyapp/rooty/internal/auth"
	httperrors "github.com/rootyapp/rooty/pkg/http/errors"
)

// HTTPHandlers exposes the study procedures under /v1/rpc.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger}
}

type sessionRequest struct {
	ThemeID *int64 `json:"theme_id"`
	Limit   int    `json:"limit"`
}

type reviewRequest struct {
	Limit int `json:"limit"`
}

// GetThemes handles GET /v1/rpc/get_themes
func (h *HTTPHandlers) GetThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	themes, err := h.svc.Themes(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("get_themes failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeThemesFetchFailed, "Could not load themes")
		return
	}
	h.respondJSON(w, http.StatusOK, themes)
}

// GetSession handles POST /v1/rpc/get_session
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	roots, err := h.svc.Session(r.Context(), req.ThemeID, req.Limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("get_session failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionFetchFailed, "Could not load session")
		return
	}
	h.respondJSON(w, http.StatusOK, roots)
}

// GetWordSession handles POST /v1/rpc/get_word_session
func (h *HTTPHandlers) GetWordSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	words, err := h.svc.WordSession(r.Context(), req.ThemeID, req.Limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("get_word_session failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSessionFetchFailed, "Could not load word session")
		return
	}
	h.respondJSON(w, http.StatusOK, words)
}

// SubmitAttempt handles POST /v1/rpc/submit_attempt
func (h *HTTPHandlers) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if (req.RootID == nil) == (req.WordRootID == nil) {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Exactly one of root_id and word_root_id must be set", "root_id")
		return
	}

	id, err := h.svc.SubmitAttempt(r.Context(), claims.UserID, req)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("submit_attempt failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSubmitFailed, "Could not record attempt")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"attempt_id": id,
	})
}

// GetReview handles POST /v1/rpc/get_review
func (h *HTTPHandlers) GetReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	queued, err := h.svc.Review(r.Context(), claims.UserID, req.Limit)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("get_review failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeReviewFetchFailed, "Could not load review queue")
		return
	}
	h.respondJSON(w, http.StatusOK, queued)
}

// StatsOverview handles GET /v1/rpc/stats_overview
func (h *HTTPHandlers) StatsOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	stats, err := h.svc.Stats(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("stats_overview failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStatsFetchFailed, "Could not load statistics")
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
