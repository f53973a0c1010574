package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"frontdesk/internal/user/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/httputil"
	authmw "frontdesk/pkg/platform/middleware/auth"
)

// Service defines the user operations exposed over HTTP.
type Service interface {
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
	ListByDepartment(ctx context.Context, department string) ([]*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	UpdateNotificationPreferences(ctx context.Context, patch models.NotificationPreferencesPatch) (models.NotificationPreferences, error)
}

// Handler serves /users. Routes are expected to be mounted behind RequireAuth.
type Handler struct {
	users  Service
	logger *slog.Logger
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Register mounts the user routes on r.
func (h *Handler) Register(r chi.Router) {
	adminOnly := authmw.RequireRole(h.logger, domain.RoleAdmin)

	r.Route("/users", func(r chi.Router) {
		r.With(adminOnly).Get("/", h.handleList)
		r.With(adminOnly).Post("/", h.handleCreate)

		r.Get("/me/profile", h.handleGetMe)
		r.Put("/me/profile", h.handleUpdateMe)
		r.Put("/me/password", h.handleChangePassword)
		r.Put("/me/notifications", h.handleNotifications)

		r.With(adminOnly).Get("/role/{role}", h.handleListByRole)
		r.With(adminOnly).Get("/department/{department}", h.handleListByDepartment)

		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.With(adminOnly).Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleListByRole(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListByRole(r.Context(), chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleListByDepartment(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListByDepartment(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "user id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.users.Get(ctx, id)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.users.Create(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "user id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.UpdateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.users.Update(ctx, id, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "user id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.users.Delete(ctx, id); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "User deleted successfully")
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context())
	if err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ProfileUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.users.UpdateMe(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.users.ChangePassword(ctx, req); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Password updated successfully")
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch models.NotificationPreferencesPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		httputil.WriteError(w, err)
		return
	}
	prefs, err := h.users.UpdateNotificationPreferences(ctx, patch)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prefs)
}
