package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/efritz/glock"

	"weathernow/models"
)

// OpenWeatherMapProvider fetches current weather from the OpenWeatherMap API.
// Transient failures (429, 5xx, per-attempt timeouts) are retried with
// backoff; everything else fails immediately.
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	config     FetchConfig
	httpClient *http.Client
	clock      glock.Clock
	logger     *log.Logger
}

// Ensure OpenWeatherMapProvider implements WeatherProvider
var _ WeatherProvider = (*OpenWeatherMapProvider)(nil)

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string, config FetchConfig, logger *log.Logger) *OpenWeatherMapProvider {
	return newOpenWeatherMapProvider(apiKey, config, logger, glock.NewRealClock())
}

func newOpenWeatherMapProvider(apiKey string, config FetchConfig, logger *log.Logger, clock glock.Clock) *OpenWeatherMapProvider {
	if logger == nil {
		logger = log.Default()
	}

	return &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		config:  config.withDefaults(),
		// Timeouts are enforced per attempt through the request context, so
		// the client itself carries none.
		httpClient: &http.Client{},
		clock:      clock,
		logger:     logger,
	}
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// CurrentWeather fetches current weather for a city, retrying transient
// failures up to the configured attempt budget. An empty city or a missing
// API key fails before any network call.
func (p *OpenWeatherMapProvider) CurrentWeather(ctx context.Context, city string) (models.Weather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.Weather{}, ErrInvalidInput
	}
	if p.apiKey == "" {
		return models.Weather{}, ErrMissingCredential
	}

	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		weather, err := p.fetchOnce(ctx, city)
		if err == nil {
			return weather, nil
		}

		var transient *transientStatusError
		switch {
		case errors.As(err, &transient):
			if attempt == p.config.MaxRetries {
				return models.Weather{}, &StatusError{Kind: ErrRetriesExhausted, Status: transient.status, Attempts: attempt}
			}
			delay := statusBackoff(attempt)
			p.logger.Info("retrying after transient API status",
				"city", city, "status", transient.status, "attempt", attempt, "wait", delay)
			if err := p.wait(ctx, delay); err != nil {
				return models.Weather{}, err
			}

		case errors.Is(err, context.DeadlineExceeded):
			if attempt == p.config.MaxRetries {
				return models.Weather{}, fmt.Errorf("%w after %d attempts", ErrTimeoutExhausted, p.config.MaxRetries)
			}
			delay := timeoutBackoff(attempt)
			p.logger.Info("retrying after timeout",
				"city", city, "attempt", attempt, "wait", delay)
			if err := p.wait(ctx, delay); err != nil {
				return models.Weather{}, err
			}

		default:
			return models.Weather{}, err
		}
	}

	// Unreachable: every branch above returns or continues the loop. Kept as
	// a terminal guard so a future branch can never fall through silently.
	return models.Weather{}, ErrRetryLogicExhausted
}

// fetchOnce performs a single attempt bound to the per-attempt timeout.
func (p *OpenWeatherMapProvider) fetchOnce(ctx context.Context, city string) (models.Weather, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	// Build URL
	endpoint := fmt.Sprintf("%s/weather", p.baseURL)
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", p.apiKey)
	params.Add("units", "metric") // Use metric units

	req, err := http.NewRequestWithContext(attemptCtx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return models.Weather{}, fmt.Errorf("%w: failed to create request: %v", ErrConnection, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Weather{}, err
		}
		return models.Weather{}, fmt.Errorf("%w: failed to execute request: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusNotFound:
		return models.Weather{}, &StatusError{Kind: ErrCityNotFound, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusUnauthorized:
		return models.Weather{}, &StatusError{Kind: ErrInvalidCredential, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return models.Weather{}, &transientStatusError{status: resp.StatusCode}
	default:
		return models.Weather{}, &StatusError{Kind: ErrUnexpectedStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Weather{}, err
		}
		return models.Weather{}, fmt.Errorf("%w: failed to read response body: %v", ErrConnection, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Weather{}, fmt.Errorf("%w: failed to parse response: %v", ErrConnection, err)
	}

	weather := Normalize(payload)
	weather.Provider = p.Name()
	weather.FetchedAt = time.Now()
	return weather, nil
}

// wait blocks for the given backoff delay or until the context is done.
func (p *OpenWeatherMapProvider) wait(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(delay):
		return nil
	}
}

// transientStatusError marks a 429/5xx response as eligible for the
// status-based backoff schedule.
type transientStatusError struct {
	status int
}

func (e *transientStatusError) Error() string {
	return fmt.Sprintf("transient API status %d", e.status)
}

// statusBackoff is the schedule for 429/5xx retries: attempt squared in
// seconds (1s, 4s, 9s, ...).
func statusBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * time.Second
}

// timeoutBackoff is the schedule for timed-out attempts: attempt in seconds
// (1s, 2s, 3s, ...). Intentionally distinct from statusBackoff.
func timeoutBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}
