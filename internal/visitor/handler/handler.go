package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"frontdesk/internal/screening"
	"frontdesk/internal/visitor/models"
	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
	"frontdesk/pkg/platform/httputil"
)

const (
	maxPhotoBytes = 5 << 20
	photoField    = "photo"
)

type Service interface {
	List(ctx context.Context) ([]*models.Visitor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	Create(ctx context.Context, req models.CreateVisitorRequest) (*models.Visitor, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateVisitorRequest) (*models.Visitor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckIn(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
	AnalyzePhoto(ctx context.Context, image []byte) (*screening.FaceAnalysis, error)
	CheckWatchlist(ctx context.Context, image []byte) (*screening.WatchlistResult, error)
}

// Handler serves /visitors behind RequireAuth.
type Handler struct {
	visitors Service
	logger   *slog.Logger
}

func New(visitors Service, logger *slog.Logger) *Handler {
	return &Handler{visitors: visitors, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/visitors", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/analyze-photo", h.handleAnalyzePhoto)
		r.Post("/check-watchlist", h.handleCheckWatchlist)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/check-in", h.handleCheckIn)
		r.Post("/{id}/check-out", h.handleCheckOut)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.visitors.List(r.Context())
	if err != nil {
		httputil.WriteServiceError(r.Context(), h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visitors)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "visitor id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.visitors.Get(ctx, id)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateVisitorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.visitors.Create(ctx, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "visitor id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.UpdateVisitorRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.visitors.Update(ctx, id, req)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "visitor id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.visitors.Delete(ctx, id); err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Visitor deleted successfully")
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.visitors.CheckIn)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.visitors.CheckOut)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*models.Visitor, error)) {
	ctx := r.Context()
	id, err := domain.ParseID(chi.URLParam(r, "id"), "visitor id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := apply(ctx, id)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleAnalyzePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	image, err := readPhoto(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.visitors.AnalyzePhoto(ctx, image)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCheckWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	image, err := readPhoto(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.visitors.CheckWatchlist(ctx, image)
	if err != nil {
		httputil.WriteServiceError(ctx, h.logger, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// readPhoto pulls the "photo" part out of a multipart upload, enforcing the
// size limit.
func readPhoto(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+(1<<20))
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Photo exceeds the 5MB limit")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "No photo provided")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	file, header, err := r.FormFile(photoField)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "No photo provided")
	}
	defer file.Close()
	if header.Size > maxPhotoBytes {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Photo exceeds the 5MB limit")
	}
	image, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read photo")
	}
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "No photo provided")
	}
	return image, nil
}
