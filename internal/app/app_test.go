package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPort = 18981

// createMockFS creates a mock filesystem standing in for the embedded UI.
func createMockFS() fs.FS {
	return fstest.MapFS{
		"index.html": &fstest.MapFile{
			Data: []byte(`<!DOCTYPE html><html><head><title>Mailing RAF</title></head><body>Mailing RAF</body></html>`),
		},
	}
}

// setupTestEnvironment points the application at test-safe ports and
// directories through the environment.
func setupTestEnvironment(t *testing.T) {
	t.Helper()
	tempDir := t.TempDir()

	t.Setenv("CHURNMAIL_SERVER_PORT", fmt.Sprintf("%d", testPort))
	t.Setenv("CHURNMAIL_LOGGING_LEVEL", "error")
	t.Setenv("CHURNMAIL_ARTIFACTS_DIR", tempDir)
	t.Setenv("CHURNMAIL_SECURITY_ALLOWED_ORIGINS", "http://localhost:3000")
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("CHURNMAIL_SERVER_PORT", "-1")

	app, err := NewApplication(createMockFS())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
	assert.Nil(t, app)
}

// TestApplication builds one application and exercises it end to end. The
// prometheus exporter registers with the default registry, so the package
// initializes OpenTelemetry exactly once.
func TestApplication(t *testing.T) {
	setupTestEnvironment(t)

	app, err := NewApplication(createMockFS())
	require.NoError(t, err)
	require.NotNil(t, app)

	t.Run("container wiring", func(t *testing.T) {
		assert.NotNil(t, app.Config)
		assert.NotNil(t, app.Logger)
		assert.NotNil(t, app.Router)
		assert.NotNil(t, app.Server)
		assert.NotNil(t, app.MailingService)
		assert.NotNil(t, app.SessionService)
		assert.NotNil(t, app.HealthService)
		assert.NotNil(t, app.OTelProviders)
		assert.Equal(t, testPort, app.Config.Server.Port)
	})

	server := httptest.NewServer(app.Router)
	defer server.Close()

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("version endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/version")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "1.2.0", body["version"])
		assert.Contains(t, body, "build_id")
	})

	t.Run("default categories endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/categories/defaults")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		categories, ok := body["categories"].([]interface{})
		require.True(t, ok)
		assert.Len(t, categories, 19)
		assert.Equal(t, true, body["builtin"])
	})

	t.Run("session round trip", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/session/categories")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Session-ID"))
	})

	t.Run("embedded index", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("mailing rejects missing file", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/mailing", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	})

	t.Run("unknown route renders problem", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/unknown")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	})

	t.Run("cors headers on allowed origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/api/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:3000")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-Session-ID")
	})

	t.Run("start and stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, app.Start(ctx, cancel))

		healthURL := fmt.Sprintf("http://127.0.0.1:%d/api/health", testPort)
		var ready bool
		for i := 0; i < 20; i++ {
			resp, err := http.Get(healthURL)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					ready = true
					break
				}
			}
			time.Sleep(100 * time.Millisecond)
		}
		assert.True(t, ready, "server did not become ready on port %d", testPort)

		require.NoError(t, app.Stop(context.Background()))
	})
}

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	assert.Equal(t, id, generateBuildID())
}
