package repository

import (
	"context"

	"github.com/alexivanou/cityweather/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) SearchCities(ctx context.Context, prefix string, limit int) ([]model.City, error) {
	q := `
		SELECT id, name, country_code, population
		FROM cities
		WHERE LOWER(name) LIKE LOWER($1) || '%' ESCAPE '\'
		ORDER BY population DESC, name ASC
		LIMIT $2
	`
	cities := []model.City{}
	if err := r.db.SelectContext(ctx, &cities, q, escapeLike(prefix), limit); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) CountCities(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// Chunking to avoid parameter limit issues even in PG (max 65535 parameters)
	chunkSize := 2000
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[i:end]

		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (id, name, country_code, population)
		VALUES (:id, :name, :country_code, :population)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			country_code = EXCLUDED.country_code,
			population = EXCLUDED.population`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
