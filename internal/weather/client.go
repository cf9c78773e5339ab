package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexivanou/cityweather/internal/config"
	"github.com/alexivanou/cityweather/internal/model"
	"go.uber.org/zap"
)

// Fetcher looks up current weather for a city
type Fetcher interface {
	Fetch(ctx context.Context, city string) (model.WeatherRecord, error)
}

// Client talks to the OpenWeatherMap current weather endpoint
type Client struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a client from provider configuration.
// A nil httpClient gets one built from cfg.HTTPTimeout.
func NewClient(cfg config.WeatherConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultWeatherBaseURL
	}
	units := cfg.Units
	if units == "" {
		units = config.DefaultUnits
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		units:      units,
		httpClient: httpClient,
		logger:     logger,
	}
}

// RequestURL builds the lookup URL for a city. Parameters keep the
// q, appid, units order.
func (c *Client) RequestURL(city string) (string, error) {
	if err := validateCity(city); err != nil {
		return "", newError(KindInvalidInput, err)
	}
	return fmt.Sprintf("%s/weather?q=%s&appid=%s&units=%s",
		c.baseURL,
		url.QueryEscape(city),
		url.QueryEscape(c.apiKey),
		url.QueryEscape(c.units),
	), nil
}

func validateCity(city string) error {
	if !utf8.ValidString(city) {
		return errors.New("city name is not valid UTF-8")
	}
	for _, r := range city {
		if unicode.IsControl(r) {
			return fmt.Errorf("city name contains control character %U", r)
		}
	}
	return nil
}

// Fetch issues a single GET for the city and decodes the response.
// Every error returned is a *FetchError.
func (c *Client) Fetch(ctx context.Context, city string) (model.WeatherRecord, error) {
	endpoint, err := c.RequestURL(city)
	if err != nil {
		return model.WeatherRecord{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.WeatherRecord{}, newError(KindInvalidInput, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting current weather", zap.String("city", city))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL including appid
		var ue *url.Error
		if errors.As(err, &ue) {
			err = fmt.Errorf("%s request failed: %w", ue.Op, ue.Err)
		}
		return model.WeatherRecord{}, newError(KindTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.WeatherRecord{}, newError(KindTransport, fmt.Errorf("failed to read response body: %w", err))
	}

	if len(body) == 0 {
		return model.WeatherRecord{}, newError(KindEmptyResponse, fmt.Errorf("status %d with no body", resp.StatusCode))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.WeatherRecord{}, newError(KindDecode, providerError(resp.StatusCode, body))
	}

	record, err := Decode(body)
	if err != nil {
		return model.WeatherRecord{}, newError(KindDecode, err)
	}
	return record, nil
}

// FetchAsync runs Fetch on its own goroutine and calls done exactly once.
// The client keeps no reference to the caller after done returns.
func (c *Client) FetchAsync(ctx context.Context, city string, done func(model.WeatherRecord, error)) {
	go func() {
		record, err := c.Fetch(ctx, city)
		done(record, err)
	}()
}

type apiResponse struct {
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	} `json:"weather"`
	Name *string `json:"name"`
}

type apiError struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

// Decode parses a current weather body into a record. Every field of the
// schema is required and the conditions array must not be empty.
func Decode(body []byte) (model.WeatherRecord, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.WeatherRecord{}, fmt.Errorf("failed to parse response: %w", err)
	}

	var missing []string
	if resp.Main == nil {
		missing = append(missing, "main")
	} else {
		if resp.Main.Temp == nil {
			missing = append(missing, "main.temp")
		}
		if resp.Main.FeelsLike == nil {
			missing = append(missing, "main.feels_like")
		}
		if resp.Main.Humidity == nil {
			missing = append(missing, "main.humidity")
		}
	}
	if len(resp.Weather) == 0 {
		missing = append(missing, "weather[0]")
	} else {
		if resp.Weather[0].Description == nil {
			missing = append(missing, "weather[0].description")
		}
		if resp.Weather[0].Icon == nil {
			missing = append(missing, "weather[0].icon")
		}
	}
	if resp.Name == nil {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return model.WeatherRecord{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	return model.WeatherRecord{
		Name:        *resp.Name,
		Temperature: *resp.Main.Temp,
		FeelsLike:   *resp.Main.FeelsLike,
		Humidity:    *resp.Main.Humidity,
		Description: *resp.Weather[0].Description,
		Icon:        *resp.Weather[0].Icon,
	}, nil
}

func providerError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("API error (status %d): %s", status, apiErr.Message)
	}
	return fmt.Errorf("API error (status %d)", status)
}
