package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"frontdesk/internal/keys/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/httputil"
)

type Service interface {
	List(ctx context.Context) ([]*models.Key, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Key, error)
	ListByAccessLevel(ctx context.Context, level string) ([]*models.Key, error)
	ListByAssignee(ctx context.Context, assignee uuid.UUID) ([]*models.Key, error)
	ListOverdue(ctx context.Context) ([]*models.Key, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Key, error)
	Create(ctx context.Context, req models.CreateKeyRequest) (*models.Key, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateKeyRequest) (*models.Key, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Checkout(ctx context.Context, id uuid.UUID, req models.CheckoutRequest) (*models.Key, error)
	Return(ctx context.Context, id uuid.UUID) (*models.Key, error)
}

// Handler serves /keys behind RequireAuth. Role checks live in the service.
type Handler struct {
	keys   Service
	logger *slog.Logger
}

func New(keys Service, logger *slog.Logger) *Handler {
	return &Handler{keys: keys, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/keys", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/overdue", h.handleListOverdue)
		r.Get("/status/{status}", h.handleListByStatus)
		r.Get("/assigned/{userID}", h.handleListByAssignee)
		r.Get("/access-level/{level}", h.handleListByAccessLevel)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/checkout", h.handleCheckout)
		r.Post("/{id}/return", h.handleReturn)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)(h.keys.List(r.Context()))
}

func (h *Handler) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)(h.keys.ListOverdue(r.Context()))
}

func (h *Handler) handleListByStatus(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)(h.keys.ListByStatus(r.Context(), chi.URLParam(r, "status")))
}

func (h *Handler) handleListByAccessLevel(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)(h.keys.ListByAccessLevel(r.Context(), chi.URLParam(r, "level")))
}

func (h *Handler) handleListByAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "userID"), "user id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeList(w, r)(h.keys.ListByAssignee(r.Context(), id))
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request) func([]*models.Key, error) {
	return func(keys []*models.Key, err error) {
		if err != nil {
			httputil.WriteServiceError(r.Context(), h.logger, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, keys)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyID(w, r)
	if !ok {
		return
	}
	h.writeKey(w, r, http.StatusOK)(h.keys.Get(r.Context(), id))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateKeyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeKey(w, r, http.StatusCreated)(h.keys.Create(r.Context(), req))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyID(w, r)
	if !ok {
		return
	}
	var req models.UpdateKeyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeKey(w, r, http.StatusOK)(h.keys.Update(r.Context(), id, req))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.keyID(w, r)
	if !ok {
		return
	}
	if err := h.keys.Delete(ctx, id); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Key deleted successfully")
}

// handleCheckout accepts an empty body.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyID(w, r)
	if !ok {
		return
	}
	var req models.CheckoutRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	h.writeKey(w, r, http.StatusOK)(h.keys.Checkout(r.Context(), id, req))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.keyID(w, r)
	if !ok {
		return
	}
	h.writeKey(w, r, http.StatusOK)(h.keys.Return(r.Context(), id))
}

func (h *Handler) keyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := domain.ParseID(chi.URLParam(r, "id"), "key id")
	if err != nil {
		httputil.WriteError(w, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeKey(w http.ResponseWriter, r *http.Request, status int) func(*models.Key, error) {
	return func(k *models.Key, err error) {
		if err != nil {
			httputil.WriteServiceError(r.Context(), h.logger, w, err)
			return
		}
		httputil.WriteJSON(w, status, k)
	}
}
