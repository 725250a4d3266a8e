package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"chirper/internal/httputil"
	"chirper/internal/model"
	"chirper/internal/service"
	"chirper/internal/transport/http/middleware"
)

type accountService interface {
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type sessionService interface {
	IssueToken(userID string) (string, error)
	TokenTTL() time.Duration
	Revoke(ctx context.Context, claims *service.Claims) error
}

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	users        accountService
	sessions     sessionService
	cookieSecure bool
	log          *zap.Logger
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(users accountService, sessions sessionService, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		cookieSecure: cookieSecure,
		log:          log.Named("auth_handler"),
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Signup(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	h.startSession(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	h.startSession(w, http.StatusOK, user)
}

// startSession issues a token, sets it as the session cookie and returns it
// in the body as well for non-browser clients.
func (h *AuthHandler) startSession(w http.ResponseWriter, status int, user *model.User) {
	token, err := h.sessions.IssueToken(user.ID)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	ttl := h.sessions.TokenTTL()
	h.setCookie(w, token, int(ttl.Seconds()))

	httputil.WriteJSON(w, status, model.AuthResponse{
		User:      *user,
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
	})
}

// Logout handles POST /api/auth/logout
// The cookie is always cleared; a presented valid token is also revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "", -1)

	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
		if err := h.sessions.Revoke(r.Context(), claims); err != nil {
			httputil.WriteServiceError(w, h.log, err)
			return
		}
	}

	httputil.WriteMessage(w, "Logged out successfully")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// setCookie writes the session cookie. maxAge < 0 deletes it.
func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     model.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
