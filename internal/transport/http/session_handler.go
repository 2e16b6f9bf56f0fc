package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "churnmail/internal/errors"
	"churnmail/internal/middleware"
	api "churnmail/pkg/contracts/api/v1"
	"churnmail/pkg/contracts/domain"
)

// SessionHeader carries the session id in both directions. Requests without
// one (or with an expired one) get a fresh session; the response header
// always names the session that is actually live.
const SessionHeader = "X-Session-ID"

// SessionServiceInterface defines the session operations used by the handler
type SessionServiceInterface interface {
	Defaults() domain.CategoryList
	Categories(ctx context.Context, id string) (string, domain.CategoryList)
	Update(ctx context.Context, id string, categories []string) (string, domain.CategoryList, error)
	Restore(ctx context.Context, id string) (string, domain.CategoryList)
}

// SessionHandler handles the per-operator category allow-list endpoints
type SessionHandler struct {
	service      SessionServiceInterface
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service SessionServiceInterface, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SessionHandler {
	return &SessionHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "session_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the session routes
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/categories", h.GetCategories)
	r.With(middleware.ContentTypeValidator("application/json")).Put("/categories", h.UpdateCategories)
	r.Post("/categories/restore", h.RestoreCategories)

	return r
}

// GetCategories handles GET /api/session/categories
func (h *SessionHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	id, list := h.service.Categories(r.Context(), r.Header.Get(SessionHeader))

	w.Header().Set(SessionHeader, id)
	render.JSON(w, r, list)
}

// UpdateCategories handles PUT /api/session/categories
func (h *SessionHandler) UpdateCategories(w http.ResponseWriter, r *http.Request) {
	var req api.SessionCategoriesUpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode session update",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Request body must be a JSON object with a categories array",
		))
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	id, list, err := h.service.Update(r.Context(), r.Header.Get(SessionHeader), req.Categories)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "session categories replaced",
		slog.String("session_id", id),
		slog.Int("categories", len(list.Categories)))

	w.Header().Set(SessionHeader, id)
	render.JSON(w, r, list)
}

// RestoreCategories handles POST /api/session/categories/restore
func (h *SessionHandler) RestoreCategories(w http.ResponseWriter, r *http.Request) {
	id, list := h.service.Restore(r.Context(), r.Header.Get(SessionHeader))

	h.logger.InfoContext(r.Context(), "session categories restored",
		slog.String("session_id", id))

	w.Header().Set(SessionHeader, id)
	render.JSON(w, r, list)
}
