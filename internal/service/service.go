package service

import (
	"context"

	"github.com/alexivanou/cityweather/internal/repository"
)

// Service provides city catalog lookups for the search field
type Service struct {
	cityRepo repository.CityRepository
}

var _ ServiceInterface = (*Service)(nil)

// NewService creates a new service instance
func NewService(cityRepo repository.CityRepository) *Service {
	return &Service{cityRepo: cityRepo}
}

// CatalogSize returns the number of cities available for suggestions
func (s *Service) CatalogSize(ctx context.Context) (int64, error) {
	return s.cityRepo.CountCities(ctx)
}
