package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexivanou/cityweather/internal/model"
	"github.com/alexivanou/cityweather/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const iconBase = "https://openweathermap.org/img/wn"

// MockLookup is a mock implementation of Lookup
type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) Submit(city string) bool {
	args := m.Called(city)
	return args.Bool(0)
}

func (m *MockLookup) State() model.State {
	args := m.Called()
	return args.Get(0).(model.State)
}

func (m *MockLookup) Subscribe() (<-chan model.State, func()) {
	args := m.Called()
	return args.Get(0).(<-chan model.State), args.Get(1).(func())
}

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) SuggestCities(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SuggestResponse), args.Error(1)
}

func (m *MockService) CatalogSize(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var boston = model.WeatherRecord{Name: "Boston", Temperature: 72.5, FeelsLike: 70.1, Humidity: 45, Description: "clear sky", Icon: "01d"}

func newRouter(lookup *MockLookup, svc *MockService) http.Handler {
	return NewRouter(lookup, svc, stats.NewCollector(nil, svc), iconBase, nil)
}

func TestHandler_SubmitWeather(t *testing.T) {
	tests := []struct {
		name           string
		contentType    string
		body           string
		mockSetup      func(*MockLookup)
		expectedStatus int
	}{
		{
			name:        "json body",
			contentType: "application/json",
			body:        `{"city":"Paris"}`,
			mockSetup: func(ml *MockLookup) {
				ml.On("Submit", "Paris").Return(true)
				ml.On("State").Return(model.LoadingState("Paris", 1))
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:        "form body",
			contentType: "application/x-www-form-urlencoded",
			body:        url.Values{"city": {"Boston"}}.Encode(),
			mockSetup: func(ml *MockLookup) {
				ml.On("Submit", "Boston").Return(true)
				ml.On("State").Return(model.LoadingState("Boston", 1))
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "empty city",
			contentType:    "application/json",
			body:           `{"city":"  "}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			contentType:    "application/json",
			body:           `{"city":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "presenter stopped",
			contentType: "application/json",
			body:        `{"city":"Paris"}`,
			mockSetup: func(ml *MockLookup) {
				ml.On("Submit", "Paris").Return(false)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(MockLookup)
			if tt.mockSetup != nil {
				tt.mockSetup(lookup)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/weather", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()
			newRouter(lookup, new(MockService)).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusAccepted {
				var resp model.StateResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, model.PhaseLoading, resp.State.Phase)
			}
			if tt.mockSetup == nil {
				lookup.AssertNotCalled(t, "Submit", mock.Anything)
			}
			lookup.AssertExpectations(t)
		})
	}
}

func TestHandler_GetState(t *testing.T) {
	lookup := new(MockLookup)
	lookup.On("State").Return(model.SuccessState("Boston", 3, boston))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/state", nil)
	rr := httptest.NewRecorder()
	newRouter(lookup, new(MockService)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp model.StateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, model.PhaseSuccess, resp.State.Phase)
	require.NotNil(t, resp.State.Record)
	assert.Equal(t, boston, *resp.State.Record)
	assert.Equal(t, uint64(3), resp.State.Generation)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d@2x.png", resp.IconURL)
}

func TestHandler_StreamState(t *testing.T) {
	states := make(chan model.State, 2)
	states <- model.LoadingState("Boston", 1)
	states <- model.SuccessState("Boston", 1, boston)
	close(states)

	var cancelled atomic.Bool
	lookup := new(MockLookup)
	lookup.On("Subscribe").Return((<-chan model.State)(states), func() { cancelled.Store(true) })

	srv := httptest.NewServer(newRouter(lookup, new(MockService)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/weather/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var phases []model.Phase
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var sr model.StateResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &sr))
		phases = append(phases, sr.State.Phase)
	}

	assert.Equal(t, []model.Phase{model.PhaseLoading, model.PhaseSuccess}, phases)
	assert.Eventually(t, cancelled.Load, time.Second, 10*time.Millisecond)
}

func TestHandler_SuggestCities(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		limit          string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name:  "successful request",
			query: "Bos",
			limit: "5",
			mockSetup: func(ms *MockService) {
				ms.On("SuggestCities", mock.Anything, model.SuggestRequest{Query: "Bos", Limit: 5}).Return(&model.SuggestResponse{
					Results: []model.CitySuggestion{{Name: "Boston", CountryCode: "US", Query: "Boston,US"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing query parameter",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "query too short",
			query:          "B",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid limit",
			query:          "Bos",
			limit:          "-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "service error",
			query: "Bos",
			mockSetup: func(ms *MockService) {
				ms.On("SuggestCities", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}

			q := url.Values{}
			if tt.query != "" {
				q.Add("q", tt.query)
			}
			if tt.limit != "" {
				q.Add("limit", tt.limit)
			}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/suggest?"+q.Encode(), nil)
			rr := httptest.NewRecorder()
			newRouter(new(MockLookup), svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Page(t *testing.T) {
	tests := []struct {
		name     string
		state    model.State
		contains []string
		excludes []string
	}{
		{
			name:     "idle shows only the form",
			state:    model.IdleState(),
			contains: []string{`name="city"`},
			excludes: []string{`class="spinner"`, `class="error"`, `class="card"`},
		},
		{
			name:     "loading shows spinner",
			state:    model.LoadingState("Paris", 1),
			contains: []string{`class="spinner"`, `value="Paris"`},
			excludes: []string{`class="error"`, `class="card"`},
		},
		{
			name:     "failure shows banner",
			state:    model.FailureState("Atlantis", 2, "Could not read weather data. Please try again."),
			contains: []string{`class="error"`, "Could not read weather data. Please try again."},
			excludes: []string{`class="spinner"`, `class="card"`},
		},
		{
			name:  "success shows card",
			state: model.SuccessState("Boston", 3, boston),
			contains: []string{
				`class="card"`, "<h2>Boston</h2>", "clear sky", "72.5°", "Humidity: 45%", "Feels like: 70.1°",
				"https://openweathermap.org/img/wn/01d@2x.png",
			},
			excludes: []string{`class="spinner"`, `class="error"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(MockLookup)
			lookup.On("State").Return(tt.state)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			newRouter(lookup, new(MockService)).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			body := rr.Body.String()
			region := body[strings.Index(body, `<div id="state">`):strings.Index(body, "<script>")]
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, region, s)
			}
		})
	}
}

func TestHandler_PageSubmit(t *testing.T) {
	t.Run("submits and redirects", func(t *testing.T) {
		lookup := new(MockLookup)
		lookup.On("Submit", "Paris").Return(true)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("city=Paris"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		newRouter(lookup, new(MockService)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		lookup.AssertExpectations(t)
	})

	t.Run("blank input is ignored", func(t *testing.T) {
		lookup := new(MockLookup)

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("city="))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		newRouter(lookup, new(MockService)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		lookup.AssertNotCalled(t, "Submit", mock.Anything)
	})
}

func TestHandler_Stats(t *testing.T) {
	svc := new(MockService)
	svc.On("CatalogSize", mock.Anything).Return(int64(50), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rr := httptest.NewRecorder()
	newRouter(new(MockLookup), svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var s stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s))
	assert.Equal(t, int64(50), s.Catalog.Cities)
}

func TestHandler_HealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	newRouter(new(MockLookup), new(MockService)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}
