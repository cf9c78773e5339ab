package service

import (
	"context"

	"github.com/alexivanou/cityweather/internal/model"
)

// ServiceInterface defines the catalog service interface for testing
type ServiceInterface interface {
	SuggestCities(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error)
	CatalogSize(ctx context.Context) (int64, error)
}
