package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnmail/internal/infrastructure"
	"churnmail/internal/shared/testutil"
)

func TestRecoveryMiddleware_PassThrough(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	mw := RecoveryMiddleware(handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"cases":42}`))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/mailing", nil)
	mw.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"cases":42}`, w.Body.String())
	assert.False(t, logHandler.ContainsMessage("panic recovered"))
}

func TestRecoveryMiddleware_Panic(t *testing.T) {
	tests := []struct {
		name      string
		panicWith interface{}
	}{
		{"string panic", "exporter exploded"},
		{"error panic", assert.AnError},
		{"nil map value", map[string]int(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			mw := RecoveryMiddleware(handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.panicWith)
			}))

			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/api/mailing", nil)
			mw.ServeHTTP(w, r)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var problem ProblemDetails
			require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
			assert.Equal(t, TypeInternal, problem.Type)
			assert.Equal(t, "Internal Server Error", problem.Title)
			assert.Equal(t, "/api/mailing", problem.Instance)

			assert.True(t, logHandler.ContainsMessage("panic recovered"))
		})
	}
}

// Trace ids survive the panic path so operators can line the problem
// document up with the log record.
func TestRecoveryMiddleware_TraceID(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	mw := RecoveryMiddleware(handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/mailing", nil)
	r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-1234"))
	mw.ServeHTTP(w, r)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, "trace-1234", decoded["trace_id"])
}

// Development mode attaches panic details to the problem document.
func TestRecoveryMiddleware_DevelopmentStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	mw := RecoveryMiddleware(handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/health", nil)
	mw.ServeHTTP(w, r)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, "boom", decoded["panic"])
	assert.NotEmpty(t, decoded["stack"])
}
