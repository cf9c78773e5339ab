package repository

import (
	"context"

	"github.com/alexivanou/cityweather/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) SearchCities(ctx context.Context, prefix string, limit int) ([]model.City, error) {
	q := `
		SELECT id, name, country_code, population
		FROM cities
		WHERE LOWER(name) LIKE LOWER(?) || '%' ESCAPE '\'
		ORDER BY population DESC, name ASC
		LIMIT ?
	`
	cities := []model.City{}
	if err := r.db.SelectContext(ctx, &cities, q, escapeLike(prefix), limit); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) CountCities(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sqliteCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// 100 rows * 4 params stays well within SQLite's variable limit
	chunkSize := 100
	for i := 0; i < len(cities); i += chunkSize {
		end := i + chunkSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[i:end]

		_, err := r.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO cities (id, name, country_code, population)
		VALUES (:id, :name, :country_code, :population)`,
			batch)
		if err != nil {
			return err
		}
	}
	return nil
}
