package middleware

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "churnmail/internal/errors"
	"churnmail/internal/shared/testutil"
	api "churnmail/pkg/contracts/api/v1"
)

func newValidationMiddleware(t *testing.T) *ValidationMiddleware {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidationMiddleware_ValidateStruct(t *testing.T) {
	m := newValidationMiddleware(t)

	tests := []struct {
		name    string
		input   interface{}
		wantErr string
	}{
		{
			name:  "valid session update",
			input: &api.SessionCategoriesUpdateRequest{Categories: []string{"PREÇO CARO CUSTO BENEFÍCIO"}},
		},
		{
			name:    "missing categories",
			input:   &api.SessionCategoriesUpdateRequest{},
			wantErr: "categories is required",
		},
		{
			name:    "blank category entry",
			input:   &api.SessionCategoriesUpdateRequest{Categories: []string{"OK", ""}},
			wantErr: "required",
		},
		{
			name:    "window too large",
			input:   &api.MailingCreateRequest{WindowDays: 4000},
			wantErr: "window_days must be at most 3650",
		},
		{
			name:  "window omitted",
			input: &api.MailingCreateRequest{},
		},
		{
			name:    "bad artifact id",
			input:   &api.ArtifactDownloadRequest{ArtifactID: "not-a-uuid"},
			wantErr: "artifact_id must be a valid UUID",
		},
		{
			name:    "bad artifact format",
			input:   &api.ArtifactDownloadRequest{ArtifactID: "7e57ed00-0000-4000-8000-000000000000", Format: "pdf"},
			wantErr: "format must be one of: xlsx, csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateStruct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Contains(t, err.Error(), "validation")
			assert.Contains(t, validationDetails(t, apiErr), tt.wantErr)
		})
	}
}

// validationDetails flattens the field messages carried in an APIError.
func validationDetails(t *testing.T, apiErr *apierrors.APIError) string {
	t.Helper()
	errs, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok, "details should carry validation errors, got %T", apiErr.Details)

	var b strings.Builder
	for _, ve := range errs.Errors {
		b.WriteString(ve.Message)
		b.WriteString("; ")
	}
	return b.String()
}

func TestValidationMiddleware_ValidateRequest(t *testing.T) {
	m := newValidationMiddleware(t)

	passthrough := func(called *bool) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("GET skipped", func(t *testing.T) {
		var called bool
		rec := httptest.NewRecorder()
		m.ValidateRequest(passthrough(&called)).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/api/categories/defaults", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("multipart skipped", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "planilha.xlsx")
		require.NoError(t, err)
		part.Write([]byte("PK\x03\x04 not json at all"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/mailing", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		var called bool
		rec := httptest.NewRecorder()
		m.ValidateRequest(passthrough(&called)).ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/session/categories",
			strings.NewReader(`{"categories": [`))
		req.Header.Set("Content-Type", "application/json")

		var called bool
		rec := httptest.NewRecorder()
		m.ValidateRequest(passthrough(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "INVALID_JSON")
	})

	t.Run("oversize body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/session/categories",
			strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = maxJSONBodySize + 1

		var called bool
		rec := httptest.NewRecorder()
		m.ValidateRequest(passthrough(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("valid JSON restored for handler", func(t *testing.T) {
		const payload = `{"categories": ["FALTA DE PRODUTO"]}`
		req := httptest.NewRequest(http.MethodPut, "/api/session/categories",
			strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		var seen string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(body)
		})

		rec := httptest.NewRecorder()
		m.ValidateRequest(handler).ServeHTTP(rec, req)

		assert.Equal(t, payload, seen)
	})
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("application/json")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	t.Run("matching type passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/session/categories", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing type rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/session/categories", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("wrong type rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/session/categories", strings.NewReader("<xml/>"))
		req.Header.Set("Content-Type", "text/xml")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("GET skipped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/categories", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
