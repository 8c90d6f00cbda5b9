package controllers

import (
	"errors"
	"net/http"
	"time"

	"svyasa/app/auth"
	"svyasa/app/logger"
	"svyasa/app/middleware"
	"svyasa/app/services"

	"go.uber.org/zap"
)

// AdminController serves the hidden admin surface.
type AdminController struct {
	authService  *auth.Service
	postService  *services.PostService
	secureCookie bool
	now          func() time.Time
}

// NewAdminController creates a new AdminController. secureCookie marks the
// session cookie Secure and should be set behind TLS.
func NewAdminController(authService *auth.Service, postService *services.PostService, secureCookie bool) *AdminController {
	return &AdminController{
		authService:  authService,
		postService:  postService,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token,omitempty"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionResponse(session *auth.Session, withToken bool) sessionResponse {
	resp := sessionResponse{
		Email:     session.Email,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}
	if withToken {
		resp.Token = session.Token
	}
	return resp
}

// SignIn exchanges the admin credentials for a session.
func (ac *AdminController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := ac.authService.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logger.FromContext(r.Context()).Warn("Admin sign-in failed")
		sendError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		handleServiceError(w, r, err, "")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   ac.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	logger.FromContext(r.Context()).Info("Admin signed in", zap.String("admin", session.Email))
	sendJSON(w, http.StatusCreated, newSessionResponse(session, true))
}

// SignOut revokes the current session.
func (ac *AdminController) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := ac.authService.SignOut(r.Context(), auth.FromContext(r.Context())); err != nil {
		handleServiceError(w, r, err, "")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ac.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Current describes the session the request was made with.
func (ac *AdminController) Current(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	if session == nil {
		sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	sendJSON(w, http.StatusOK, newSessionResponse(session, false))
}

// Dashboard lists every post, expired ones included, with totals.
func (ac *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := ac.postService.AdminDashboard(r.Context(), auth.FromContext(r.Context()), ac.now())
	if err != nil {
		handleServiceError(w, r, err, "")
		return
	}
	sendJSON(w, http.StatusOK, dashboard)
}
