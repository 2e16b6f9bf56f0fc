package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CategoriesHandler serves the fixed built-in category list
type CategoriesHandler struct {
	service SessionServiceInterface
	logger  *slog.Logger
}

// NewCategoriesHandler creates a new categories handler
func NewCategoriesHandler(service SessionServiceInterface, logger *slog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		service: service,
		logger:  logger.With(slog.String("component", "categories_handler")),
	}
}

// Routes returns the category routes
func (h *CategoriesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/defaults", h.GetDefaults)

	return r
}

// GetDefaults handles GET /api/categories/defaults
func (h *CategoriesHandler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Defaults())
}
