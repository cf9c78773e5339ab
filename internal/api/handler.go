package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/cityweather/internal/model"
	"github.com/alexivanou/cityweather/internal/service"
	"go.uber.org/zap"
)

// Lookup is the presenter surface the screen depends on
type Lookup interface {
	Submit(city string) bool
	State() model.State
	Subscribe() (<-chan model.State, func())
}

// Handler handles HTTP requests
type Handler struct {
	lookup      Lookup
	service     service.ServiceInterface
	iconBaseURL string
	logger      *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(lookup Lookup, service service.ServiceInterface, iconBaseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		lookup:      lookup,
		service:     service,
		iconBaseURL: iconBaseURL,
		logger:      logger,
	}
}

func (h *Handler) stateResponse(s model.State) model.StateResponse {
	resp := model.StateResponse{State: s}
	if s.Record != nil {
		resp.IconURL = s.Record.IconURL(h.iconBaseURL)
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

// SubmitWeather handles POST /api/v1/weather
func (h *Handler) SubmitWeather(w http.ResponseWriter, r *http.Request) {
	city, err := readCity(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(city) == "" {
		http.Error(w, "field 'city' is required", http.StatusBadRequest)
		return
	}

	if !h.lookup.Submit(city) {
		h.logger.Warn("Lookup rejected, presenter is not running", zap.String("city", city))
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, http.StatusAccepted, h.stateResponse(h.lookup.State()))
}

// readCity accepts either a JSON body or a form field
func readCity(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req model.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.City, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.FormValue("city"), nil
}

// GetState handles GET /api/v1/weather/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.stateResponse(h.lookup.State()))
}

// StreamState handles GET /api/v1/weather/stream
func (h *Handler) StreamState(w http.ResponseWriter, r *http.Request) {
	flusher := prepareSSE(w)
	states, cancel := h.lookup.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case s, ok := <-states:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, "state", h.stateResponse(s)); err != nil {
				h.logger.Debug("State stream closed", zap.Error(err))
				return
			}
		}
	}
}

// SuggestCities handles GET /api/v1/suggest
func (h *Handler) SuggestCities(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	if utf8.RuneCountInString(query) < 2 {
		http.Error(w, "query must be at least 2 characters", http.StatusBadRequest)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
	}

	response, err := h.service.SuggestCities(r.Context(), model.SuggestRequest{Query: query, Limit: limit})
	if err != nil {
		h.logger.Error("Error suggesting cities", zap.String("query", query), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
