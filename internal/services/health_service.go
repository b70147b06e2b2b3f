package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"tankreport/internal/config"
	"tankreport/internal/files"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	discovery *files.Discovery
	startTime time.Time
	logger    *slog.Logger
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
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		discovery: files.NewDiscovery(paths),
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready when every input dataset and the maps
// directory can be found. Missing map images are reported but do not
// make the service unready.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	inv := hs.discovery.Scan()

	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"data": checkDataHealth(inv),
			"maps": hs.checkMapsHealth(inv),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"name":         config.AppName,
		"version":      hs.version,
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
	return result
}

// checkDataHealth checks that each input dataset exists
func checkDataHealth(inv files.Inventory) ServiceHealth {
	if missing := inv.MissingDatasets(); len(missing) > 0 {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Missing input datasets: %v", missing),
		}
	}
	return ServiceHealth{Status: "ready", Message: "All input datasets present"}
}

// checkMapsHealth checks the maps directory and counts absent images
func (hs *HealthService) checkMapsHealth(inv files.Inventory) ServiceHealth {
	if !inv.MapsDir {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Maps directory not found: %s", hs.paths.MapsDir),
		}
	}
	if missing := inv.MissingMaps(); len(missing) > 0 {
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("%d of %d map images missing", len(missing), len(inv.Maps)),
		}
	}
	return ServiceHealth{Status: "ready"}
}
