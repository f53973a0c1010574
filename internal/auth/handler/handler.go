package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"frontdesk/internal/auth/models"
	"frontdesk/pkg/platform/httputil"
)

// Service defines the authentication operations exposed over HTTP.
type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
	VerifyEmail(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshResult, error)
	ListSessions(ctx context.Context) ([]models.SessionSummary, error)
}

type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register mounts /auth. Credential-bearing endpoints run behind limit;
// logout and session listing run behind requireAuth.
func (h *Handler) Register(r chi.Router, requireAuth, limit func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/login", h.handleLogin)
			r.Post("/register", h.handleRegister)
			r.Post("/forgot-password", h.handleForgotPassword)
			r.Post("/reset-password", h.handleResetPassword)
			r.Post("/refresh-token", h.handleRefreshToken)
		})
		r.Get("/verify-email/{token}", h.handleVerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Post("/logout-all", h.handleLogoutAll)
			r.Get("/sessions", h.handleListSessions)
		})
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.auth.Login(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.auth.Register(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.LogoutAll(r.Context()); err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Logged out from all devices successfully")
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ForgotPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	msg, err := h.auth.ForgotPassword(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, msg)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.auth.ResetPassword(ctx, req); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Password has been reset successfully")
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.VerifyEmail(ctx, chi.URLParam(r, "token")); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Email verified successfully")
}

func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.RefreshTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.auth.RefreshToken(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.auth.ListSessions(r.Context())
	if err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}
