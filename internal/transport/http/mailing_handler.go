package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "churnmail/internal/errors"
	"churnmail/internal/exporter"
	"churnmail/internal/infrastructure"
	"churnmail/internal/middleware"
	"churnmail/internal/services"
	api "churnmail/pkg/contracts/api/v1"
	"churnmail/pkg/contracts/domain"
)

// maxMultipartMemory caps how much of a multipart body is buffered in
// memory; the rest spills to temp files.
const maxMultipartMemory = 10 << 20

// MailingServiceInterface defines the mailing operations used by the handler
type MailingServiceInterface interface {
	CreateMailing(ctx context.Context, req services.MailingRequest) (*domain.MailingResult, error)
	OpenArtifact(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error)
}

// MailingHandler handles mailing runs and artifact downloads with RFC 7807 compliance
type MailingHandler struct {
	service      MailingServiceInterface
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMailingHandler creates a new mailing handler with RFC 7807 error handling
func NewMailingHandler(service MailingServiceInterface, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MailingHandler {
	return &MailingHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "mailing_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the mailing routes
func (h *MailingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// The run gets its own named span so pipeline spans nest under it.
	r.With(middleware.TraceMiddleware("mailing.create")).Post("/", h.CreateMailing)
	r.Get("/artifacts/{id}", h.DownloadArtifact)

	return r
}

// CreateMailing handles POST /api/mailing: a multipart form with the
// spreadsheet under "file", the category allow-list under "categories"
// (one per line), excluded payers under "payers" (comma separated) and an
// optional "window_days" override.
func (h *MailingHandler) CreateMailing(w http.ResponseWriter, r *http.Request) {
	traceID := infrastructure.GetTraceID(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.WarnContext(r.Context(), "failed to parse multipart form",
			slog.String("error", err.Error()),
			slog.String("trace_id", traceID))
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"INVALID_MULTIPART",
			"Request body must be multipart/form-data with a file field",
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	form := api.MailingCreateRequest{
		Categories: r.FormValue("categories"),
		Payers:     r.FormValue("payers"),
	}
	if raw := strings.TrimSpace(r.FormValue("window_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"window_days", "window_days must be a whole number of days"))
			return
		}
		form.WindowDays = days
	}
	if err := h.validator.ValidateStruct(&form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	categories := splitLines(form.Categories)
	if len(categories) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrEmptyCategories)
		return
	}
	payers := splitComma(form.Payers)

	h.logger.InfoContext(r.Context(), "processing mailing request",
		slog.String("trace_id", traceID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Int("categories", len(categories)),
		slog.Int("excluded_payers", len(payers)),
		slog.Int("window_days", form.WindowDays))

	result, err := h.service.CreateMailing(r.Context(), services.MailingRequest{
		File:       file,
		Header:     header,
		Categories: categories,
		Payers:     payers,
		WindowDays: form.WindowDays,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "mailing run failed",
			slog.String("error", err.Error()),
			slog.String("trace_id", traceID),
			slog.String("filename", header.Filename))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// DownloadArtifact handles GET /api/mailing/artifacts/{id}. The xlsx file
// is served by default; ?format=csv picks the csv sibling of the same run.
func (h *MailingHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	req := api.ArtifactDownloadRequest{
		ArtifactID: chi.URLParam(r, "id"),
		Format:     r.URL.Query().Get("format"),
	}
	if req.Format == "" {
		req.Format = string(domain.ArtifactFormatXLSX)
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rc, artifact, err := h.service.OpenArtifact(r.Context(), req.ArtifactID, domain.ArtifactFormat(req.Format))
	if err != nil {
		if errors.Is(err, services.ErrArtifactNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.ArtifactNotFoundError(req.ArtifactID))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer rc.Close()

	h.logger.InfoContext(r.Context(), "serving artifact download",
		slog.String("artifact_id", artifact.ID),
		slog.String("format", string(artifact.Format)),
		slog.String("filename", artifact.Filename))

	w.Header().Set("Content-Type", exporter.ContentType(artifact.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(artifact.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.ErrorContext(r.Context(), "artifact download interrupted",
			slog.String("artifact_id", artifact.ID),
			slog.String("error", err.Error()))
	}
}

// splitLines parses the categories textarea: one entry per line, trimmed,
// blanks dropped, order preserved.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// splitComma parses the payer exclusion field. Tokens are not checked for
// integer-ness here: the payer step skips itself on bad tokens instead.
func splitComma(s string) []string {
	var out []string
	for _, token := range strings.Split(s, ",") {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}
