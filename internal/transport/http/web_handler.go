package http

import (
	"io/fs"
	"log/slog"
	"net/http"
)

// WebHandler serves the embedded single-page UI
type WebHandler struct {
	content fs.FS
	logger  *slog.Logger
}

// NewWebHandler creates a web handler over the embedded static files
func NewWebHandler(content fs.FS, logger *slog.Logger) *WebHandler {
	return &WebHandler{
		content: content,
		logger:  logger.With(slog.String("component", "web_handler")),
	}
}

// ServeIndex handles GET /
func (h *WebHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	raw, err := fs.ReadFile(h.content, "index.html")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "embedded index not readable",
			slog.String("error", err.Error()))
		http.Error(w, "application page not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(raw)
}

// Static returns a file server over the embedded assets for everything
// the index references.
func (h *WebHandler) Static() http.Handler {
	return http.FileServer(http.FS(h.content))
}
