package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/cityweather/internal/model"
)

const (
	defaultLimit   = 10
	maxLimit       = 50
	minQueryLength = 2
)

// SuggestCities returns catalog cities whose name starts with the query
func (s *Service) SuggestCities(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error) {
	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, fmt.Errorf("query must be at least %d characters", minQueryLength)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	cities, err := s.cityRepo.SearchCities(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}

	results := make([]model.CitySuggestion, 0, len(cities))
	for _, c := range cities {
		results = append(results, model.CitySuggestion{
			Name:        c.Name,
			CountryCode: c.CountryCode,
			Query:       c.Query(),
		})
	}
	return &model.SuggestResponse{Results: results}, nil
}
