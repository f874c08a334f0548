package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crm/internal/contact/models"
	"crm/internal/platform/metrics"
	"crm/pkg/platform/httputil"
	request "crm/pkg/platform/middleware/request"
	"crm/pkg/platform/middleware/requesttime"
)

// Service defines the interface for contact operations.
type Service interface {
	Create(ctx context.Context, req *models.CreateContactRequest) (*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	Get(ctx context.Context, rawID string) (*models.Contact, error)
	Update(ctx context.Context, rawID string, req *models.UpdateContactRequest) (*models.Contact, error)
	Delete(ctx context.Context, rawID string) error
}

// Handler serves the /contact routes.
type Handler struct {
	contacts       Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
	requestTimeout time.Duration
}

// New creates a contact Handler. metrics may be nil.
func New(contacts Service, logger *slog.Logger, metrics *metrics.Metrics, requestTimeout time.Duration) *Handler {
	return &Handler{
		contacts:       contacts,
		logger:         logger,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// Register mounts the contact routes under /contact with the standard
// middleware chain.
func (h *Handler) Register(r chi.Router) {
	r.Route("/contact", func(cr chi.Router) {
		cr.Use(request.Recovery(h.logger))
		cr.Use(request.RequestID)
		cr.Use(request.Logger(h.logger))
		cr.Use(request.Timeout(h.requestTimeout))
		cr.Use(request.ContentTypeJSON)
		cr.Use(requesttime.Middleware)
		cr.Use(h.metrics.LatencyMiddleware)

		cr.Post("/", h.handleCreate)
		cr.Get("/", h.handleList)
		cr.Get("/{contactId}", h.handleGet)
		cr.Put("/{contactId}", h.handleUpdate)
		cr.Delete("/{contactId}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[models.CreateContactRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.contacts.Create(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.contacts.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, all)
}

// handleGet writes JSON null for a well-formed id with no record.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.contacts.Get(r.Context(), chi.URLParam(r, "contactId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[models.UpdateContactRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.contacts.Update(ctx, chi.URLParam(r, "contactId"), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "contactId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: models.DeletedMessage})
}
