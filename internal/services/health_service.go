package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"churnmail/internal/infrastructure"
	"churnmail/internal/session"
	"churnmail/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version      string
	buildTime    string
	buildID      string
	artifactsDir string
	artifacts    *ArtifactStore
	sessions     *session.Store
	system       *infrastructure.SystemMetrics
	startTime    time.Time
	logger       *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime, buildID, artifactsDir string, artifacts *ArtifactStore, sessions *session.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:      version,
		buildTime:    buildTime,
		buildID:      buildID,
		artifactsDir: artifactsDir,
		artifacts:    artifacts,
		sessions:     sessions,
		startTime:    time.Now(),
		logger:       logger,
	}
}

// AttachSystemMetrics wires the runtime metrics recorder into liveness
// checks. Each probe then snapshots the runtime and records the gauges.
func (hs *HealthService) AttachSystemMetrics(system *infrastructure.SystemMetrics) {
	hs.system = system
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["artifacts"] = hs.checkArtifactsHealth()
	status.Services["sessions"] = hs.checkSessionsHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status. With a metrics recorder attached
// the probe doubles as the collection point for the runtime gauges.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	if hs.system != nil {
		stats := hs.system.Collect(ctx, hs.startTime)
		status.Runtime = stats.FormatStats()
		status.Runtime["go_version"] = runtime.Version()
		return status
	}

	status.Runtime = map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  contracts.APIVersion,
		"stable":       contracts.IsStable(),
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// checkArtifactsHealth checks that the artifact directory is writable
func (hs *HealthService) checkArtifactsHealth() ServiceHealth {
	if hs.artifacts == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "artifact store not initialized",
		}
	}

	if _, err := os.Stat(hs.artifactsDir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("artifacts directory not accessible: %v", err),
		}
	}

	probe := filepath.Join(hs.artifactsDir, ".health_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("artifacts directory not writable: %v", err),
		}
	}
	os.Remove(probe)

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d live artifact sets", hs.artifacts.Len()),
	}
}

// checkSessionsHealth checks the session store
func (hs *HealthService) checkSessionsHealth() ServiceHealth {
	if hs.sessions == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "session store not initialized",
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d live sessions", hs.sessions.Len()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}
