package services

import (
	"context"
	"time"

	"lavishtravels/internal/config"
)

const healthServiceName = "lavish-travels-api"

// HealthResult is the body of GET /health
type HealthResult struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// InfoResult is the body of GET /
type InfoResult struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
}

// HealthService implements the health and root endpoints
type HealthService struct {
	app *config.AppConfig
	now func() time.Time
}

// NewHealthService creates a new health service
func NewHealthService(app *config.AppConfig) *HealthService {
	return &HealthService{app: app, now: time.Now}
}

// Check implements the health check method
func (s *HealthService) Check(ctx context.Context) (*HealthResult, error) {
	return &HealthResult{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Service:   healthServiceName,
	}, nil
}

// Info describes the API at its root path
func (s *HealthService) Info(ctx context.Context) (*InfoResult, error) {
	return &InfoResult{
		Message: "Welcome to Lavish Travels & Tours API",
		Version: s.app.Version,
		Health:  "/health",
	}, nil
}
