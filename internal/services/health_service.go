package services

import (
	"context"
	"log/slog"
	"time"

	"smbpulse/pkg/contracts/domain"
)

// DatasetStatusProvider is the part of the data service the health check
// needs.
type DatasetStatusProvider interface {
	Status(ctx context.Context) (*domain.DatasetStatus, error)
}

// HealthService reports process liveness and dataset readiness.
type HealthService struct {
	data    DatasetStatusProvider
	logger  *slog.Logger
	started time.Time
	version string
}

// NewHealthService creates a health service.
func NewHealthService(data DatasetStatusProvider, logger *slog.Logger, version string) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		data:    data,
		logger:  logger.With(slog.String("component", "health_service")),
		started: time.Now(),
		version: version,
	}
}

// Health is the liveness/readiness payload.
type Health struct {
	Status  string                `json:"status"`
	Version string                `json:"version"`
	Uptime  string                `json:"uptime"`
	Dataset *domain.DatasetStatus `json:"dataset,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// Check reports overall health. A dataset that cannot be loaded degrades
// the status but does not make the process unhealthy.
func (hs *HealthService) Check(ctx context.Context) *Health {
	h := &Health{
		Status:  "healthy",
		Version: hs.version,
		Uptime:  time.Since(hs.started).Round(time.Second).String(),
	}

	status, err := hs.data.Status(ctx)
	if err != nil {
		hs.logger.WarnContext(ctx, "dataset unavailable",
			slog.String("error", err.Error()))
		h.Status = "degraded"
		h.Error = err.Error()
		return h
	}
	h.Dataset = status
	return h
}
