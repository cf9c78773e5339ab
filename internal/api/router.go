package api

import (
	"net/http"

	"github.com/alexivanou/cityweather/internal/service"
	"github.com/alexivanou/cityweather/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(lookup Lookup, svc service.ServiceInterface, statsCollector *stats.Collector, iconBaseURL string, logger *zap.Logger) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(lookup, svc, iconBaseURL, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// Screen
	router.HandleFunc("/", handler.Page).Methods(http.MethodGet)
	router.HandleFunc("/", handler.PageSubmit).Methods(http.MethodPost)

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/weather", handler.SubmitWeather).Methods(http.MethodPost)
	v1.HandleFunc("/weather/state", handler.GetState).Methods(http.MethodGet)
	v1.HandleFunc("/weather/stream", handler.StreamState).Methods(http.MethodGet)
	v1.HandleFunc("/suggest", handler.SuggestCities).Methods(http.MethodGet)
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)

	return router
}
