package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "churnmail/internal/errors"
	"churnmail/internal/middleware"
	"churnmail/internal/services"
	"churnmail/internal/shared/testutil"
	"churnmail/pkg/contracts/domain"
)

type stubMailingService struct {
	createFunc func(ctx context.Context, req services.MailingRequest) (*domain.MailingResult, error)
	openFunc   func(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error)
}

func (s *stubMailingService) CreateMailing(ctx context.Context, req services.MailingRequest) (*domain.MailingResult, error) {
	return s.createFunc(ctx, req)
}

func (s *stubMailingService) OpenArtifact(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error) {
	return s.openFunc(ctx, id, format)
}

func newMailingRouter(t *testing.T, service MailingServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidationMiddleware(logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api/mailing", NewMailingHandler(service, validator, logger, errorHandler).Routes())
	return r
}

// multipartBody builds a multipart form with an optional file part named
// "file" plus plain fields.
func multipartBody(t *testing.T, file []byte, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestMailingHandler_CreateMailing(t *testing.T) {
	var got services.MailingRequest
	service := &stubMailingService{
		createFunc: func(ctx context.Context, req services.MailingRequest) (*domain.MailingResult, error) {
			got = req
			return &domain.MailingResult{
				Cases:      3,
				MailtoLink: "mailto:?subject=x",
				Artifacts: []domain.Artifact{
					{ID: "run-1", Format: domain.ArtifactFormatXLSX},
					{ID: "run-1", Format: domain.ArtifactFormatCSV},
				},
			}, nil
		},
	}
	router := newMailingRouter(t, service)

	body, contentType := multipartBody(t, []byte("conteudo"), "planilha_churn.csv", map[string]string{
		"categories":  "QUEBRA CONSTANTE\n\n  FALTA DE PRODUTO  \n",
		"payers":      " 100, 200 ,,",
		"window_days": "30",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/mailing", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Form parsing: categories split per line and trimmed, payers split on
	// comma, blanks dropped, order preserved.
	assert.Equal(t, []string{"QUEBRA CONSTANTE", "FALTA DE PRODUTO"}, got.Categories)
	assert.Equal(t, []string{"100", "200"}, got.Payers)
	assert.Equal(t, 30, got.WindowDays)
	require.NotNil(t, got.Header)
	assert.Equal(t, "planilha_churn.csv", got.Header.Filename)

	var result domain.MailingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Cases)
	assert.Len(t, result.Artifacts, 2)
}

func TestMailingHandler_CreateMailing_MissingFile(t *testing.T) {
	router := newMailingRouter(t, &stubMailingService{})

	body, contentType := multipartBody(t, nil, "", map[string]string{
		"categories": "QUEBRA CONSTANTE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/mailing", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "MISSING_FILE", problem["error_code"])
}

func TestMailingHandler_CreateMailing_NotMultipart(t *testing.T) {
	router := newMailingRouter(t, &stubMailingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/mailing", bytes.NewBufferString(`{"categories":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "INVALID_MULTIPART", problem["error_code"])
}

func TestMailingHandler_CreateMailing_EmptyCategories(t *testing.T) {
	router := newMailingRouter(t, &stubMailingService{})

	body, contentType := multipartBody(t, []byte("conteudo"), "planilha_churn.csv", map[string]string{
		"categories": "\n  \n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/mailing", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "EMPTY_CATEGORIES", problem["error_code"])
	assert.Equal(t, "/errors/validation", problem["type"])
}

func TestMailingHandler_CreateMailing_WindowDays(t *testing.T) {
	tests := []struct {
		name       string
		windowDays string
	}{
		{name: "not a number", windowDays: "sessenta"},
		{name: "out of range", windowDays: "4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newMailingRouter(t, &stubMailingService{})

			body, contentType := multipartBody(t, []byte("conteudo"), "planilha_churn.csv", map[string]string{
				"categories":  "QUEBRA CONSTANTE",
				"window_days": tt.windowDays,
			})
			req := httptest.NewRequest(http.MethodPost, "/api/mailing", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
		})
	}
}

func TestMailingHandler_CreateMailing_PipelineError(t *testing.T) {
	service := &stubMailingService{
		createFunc: func(ctx context.Context, req services.MailingRequest) (*domain.MailingResult, error) {
			return nil, apierrors.NewColumnMissingError("Tipo de Churn")
		},
	}
	router := newMailingRouter(t, service)

	body, contentType := multipartBody(t, []byte("conteudo"), "planilha_churn.csv", map[string]string{
		"categories": "QUEBRA CONSTANTE",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/mailing", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "/errors/dataset/column-missing", problem["type"])
	assert.Equal(t, "Required Column Missing", problem["title"])
	assert.Equal(t, "Tipo de Churn", problem["column"])
}

func TestMailingHandler_DownloadArtifact(t *testing.T) {
	artifactID := uuid.New().String()
	artifact := domain.Artifact{
		ID:       artifactID,
		Filename: "Mailing RAF 25.08.2026.xlsx",
		Format:   domain.ArtifactFormatXLSX,
		Size:     8,
	}

	var gotFormat domain.ArtifactFormat
	service := &stubMailingService{
		openFunc: func(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error) {
			gotFormat = format
			return io.NopCloser(bytes.NewReader([]byte("zipbytes"))), artifact, nil
		},
	}
	router := newMailingRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/mailing/artifacts/"+artifactID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ArtifactFormatXLSX, gotFormat)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Mailing RAF 25.08.2026.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "zipbytes", rec.Body.String())
}

func TestMailingHandler_DownloadArtifact_CSVSibling(t *testing.T) {
	artifactID := uuid.New().String()

	var gotFormat domain.ArtifactFormat
	service := &stubMailingService{
		openFunc: func(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error) {
			gotFormat = format
			return io.NopCloser(bytes.NewReader(nil)), domain.Artifact{
				ID:       artifactID,
				Filename: "Mailing RAF 25.08.2026.csv",
				Format:   domain.ArtifactFormatCSV,
			}, nil
		},
	}
	router := newMailingRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/mailing/artifacts/"+artifactID+"?format=csv", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ArtifactFormatCSV, gotFormat)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestMailingHandler_DownloadArtifact_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "malformed id", target: "/api/mailing/artifacts/not-a-uuid"},
		{name: "unsupported format", target: "/api/mailing/artifacts/" + uuid.New().String() + "?format=pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newMailingRouter(t, &stubMailingService{})

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, "VALIDATION_FAILED", problem["error_code"])
		})
	}
}

func TestMailingHandler_DownloadArtifact_NotFound(t *testing.T) {
	service := &stubMailingService{
		openFunc: func(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error) {
			return nil, domain.Artifact{}, services.ErrArtifactNotFound
		},
	}
	router := newMailingRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/mailing/artifacts/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "ARTIFACT_NOT_FOUND", problem["error_code"])
	assert.Equal(t, "/errors/artifact/not-found", problem["type"])
}
