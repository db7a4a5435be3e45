package http

import (
	"context"

	"smbpulse/internal/dataprocessing"
	"smbpulse/internal/services"
	"smbpulse/pkg/contracts/domain"
)

// DataServiceInterface is the part of the data service the handlers use.
type DataServiceInterface interface {
	Categories(ctx context.Context) ([]string, error)
	ChartData(ctx context.Context, category string, hideSubtotal bool) (*domain.ChartData, error)
	TableData(ctx context.Context, category string, hideSubtotal bool) ([]map[string]interface{}, error)
	FilteredTable(ctx context.Context, category string, hideSubtotal bool) (*dataprocessing.Table, error)
	Status(ctx context.Context) (*domain.DatasetStatus, error)
	Reload(ctx context.Context) (*domain.DatasetStatus, error)
}

// HealthServiceInterface is the part of the health service the handlers
// use.
type HealthServiceInterface interface {
	Check(ctx context.Context) *services.Health
}
