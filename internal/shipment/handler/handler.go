package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"frontdesk/internal/shipment/models"
	"frontdesk/pkg/domain"
	"frontdesk/pkg/platform/httputil"
)

type Service interface {
	List(ctx context.Context) ([]*models.Shipment, error)
	ListByRecipient(ctx context.Context, recipient uuid.UUID) ([]*models.Shipment, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Shipment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	Create(ctx context.Context, req models.CreateShipmentRequest) (*models.Shipment, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateShipmentRequest) (*models.Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	MarkInTransit(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, req models.MarkDeliveredRequest) (*models.Shipment, error)
}

// Handler serves /shipments behind RequireAuth.
type Handler struct {
	shipments Service
	logger    *slog.Logger
}

func New(shipments Service, logger *slog.Logger) *Handler {
	return &Handler{shipments: shipments, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/shipments", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/recipient/{recipientID}", h.handleListByRecipient)
		r.Get("/status/{status}", h.handleListByStatus)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/in-transit", h.handleInTransit)
		r.Post("/{id}/delivered", h.handleDelivered)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)(h.shipments.List(r.Context()))
}

func (h *Handler) handleListByRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "recipientID"), "recipient id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeList(w, r)(h.shipments.ListByRecipient(r.Context(), id))
}

func (h *Handler) handleListByStatus(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r)(h.shipments.ListByStatus(r.Context(), chi.URLParam(r, "status")))
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request) func([]*models.Shipment, error) {
	return func(shipments []*models.Shipment, err error) {
		if err != nil {
			httputil.WriteServiceError(r.Context(), h.logger, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, shipments)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "shipment id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.shipments.Get(ctx, id)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateShipmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.shipments.Create(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sh)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "shipment id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.UpdateShipmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.shipments.Update(ctx, id, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "shipment id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.shipments.Delete(ctx, id); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Shipment deleted successfully")
}

func (h *Handler) handleInTransit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "shipment id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sh, err := h.shipments.MarkInTransit(ctx, id)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}

// handleDelivered accepts an empty body; the signature is optional.
func (h *Handler) handleDelivered(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "shipment id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.MarkDeliveredRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	sh, err := h.shipments.MarkDelivered(ctx, id, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sh)
}
