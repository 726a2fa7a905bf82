package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler exposes the token exchange endpoint: a configured admin API key is
// traded for a short-lived JWT used by dashboards and the live alert feed.
type Handler struct {
	tokens       *TokenService
	adminKeyHash string // bcrypt
	logger       *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(tokens *TokenService, adminKeyHash string, logger *zap.Logger) *Handler {
	return &Handler{
		tokens:       tokens,
		adminKeyHash: adminKeyHash,
		logger:       logger,
	}
}

// RegisterRoutes registers auth routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/token", h.handleToken)
}

// Middleware returns the JWT validation middleware for API routes.
func (h *Handler) Middleware() func(http.Handler) http.Handler {
	return Middleware(h.tokens)
}

// tokenRequest is the token exchange body.
type tokenRequest struct {
	APIKey string `json:"api_key"`
}

// tokenResponse is the token exchange result.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// handleToken exchanges an admin API key for a JWT access token.
//
//	@Summary		Issue token
//	@Description	Exchanges an admin API key for a JWT access token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request body tokenRequest true "API key"
//	@Success		200 {object} tokenResponse
//	@Failure		401 {object} map[string]any
//	@Router			/auth/token [post]
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if h.adminKeyHash == "" || !CheckKey(h.adminKeyHash, req.APIKey) {
		h.logger.Warn("rejected token exchange", zap.String("remote", r.RemoteAddr))
		writeAuthError(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	token, err := h.tokens.IssueAccessToken("admin", "admin")
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.AccessTokenTTL().Seconds()),
	})
}
