package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnmail/internal/services"
	"churnmail/internal/session"
	"churnmail/internal/shared/testutil"
)

func newHealthHandler(t *testing.T) *HealthHandler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	dir := t.TempDir()

	artifacts, err := services.NewArtifactStore(dir, time.Hour, logger)
	require.NoError(t, err)
	sessions := session.NewStore(time.Hour)

	service := services.NewHealthService(
		"1.2.0-test", "2026-08-25T10:00:00Z", "abc123",
		dir, artifacts, sessions, logger)
	return NewHealthHandler(service, logger)
}

func TestHealthHandler_Endpoints(t *testing.T) {
	handler := newHealthHandler(t)

	tests := []struct {
		name           string
		endpoint       string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:           "health check endpoint",
			endpoint:       "/api/health",
			handlerFunc:    handler.HealthCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "ok", response["status"])
				assert.Equal(t, "1.2.0-test", response["version"])
				assert.Contains(t, response, "timestamp")
			},
		},
		{
			name:           "readiness check endpoint",
			endpoint:       "/api/health/ready",
			handlerFunc:    handler.ReadinessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "ready", response["status"])
				services, ok := response["services"].(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, services, "artifacts")
				assert.Contains(t, services, "sessions")
			},
		},
		{
			name:           "liveness check endpoint",
			endpoint:       "/api/health/live",
			handlerFunc:    handler.LivenessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "alive", response["status"])
				assert.Contains(t, response, "runtime")
			},
		},
		{
			name:           "version endpoint",
			endpoint:       "/api/version",
			handlerFunc:    handler.Version,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body []byte) {
				var response map[string]interface{}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "1.2.0-test", response["version"])
				assert.Equal(t, "abc123", response["build_id"])
				assert.Contains(t, response, "go_version")
				assert.Contains(t, response, "os")
				assert.Contains(t, response, "arch")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.endpoint, nil)
			rec := httptest.NewRecorder()

			tt.handlerFunc(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec.Body.Bytes())
			}
		})
	}
}

func TestHealthHandler_ReadinessCheck_NotReady(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	service := services.NewHealthService(
		"1.2.0-test", "", "",
		"/nonexistent/artifacts/dir", nil, nil, logger)
	handler := NewHealthHandler(service, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/health/ready", nil)
	rec := httptest.NewRecorder()

	handler.ReadinessCheck(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "not_ready", response["status"])
}
