package repository

import (
	"context"
	"strings"

	"github.com/alexivanou/cityweather/internal/config"
	"github.com/alexivanou/cityweather/internal/model"
	"github.com/jmoiron/sqlx"
)

// CityRepository defines read and seed operations for the city catalog
type CityRepository interface {
	SearchCities(ctx context.Context, prefix string, limit int) ([]model.City, error)
	CountCities(ctx context.Context) (int64, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// NewCityRepository creates the implementation matching the DB type
func NewCityRepository(db *sqlx.DB, dbType config.DBType) CityRepository {
	if dbType == config.DBTypePostgreSQL {
		return &pgCityRepository{db: db}
	}
	// Default to SQLite
	return &sqliteCityRepository{db: db}
}

// escapeLike makes user input literal inside a LIKE pattern using '\' as escape
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
