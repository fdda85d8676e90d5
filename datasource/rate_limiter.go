package datasource

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"weathernow/models"
)

// RateLimitedProvider wraps a WeatherProvider with rate limiting
type RateLimitedProvider struct {
	provider WeatherProvider
	limiter  *rate.Limiter
	name     string
}

// Ensure RateLimitedProvider implements WeatherProvider
var _ WeatherProvider = (*RateLimitedProvider)(nil)

// NewRateLimitedProvider creates a new rate limited weather provider
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedProvider(provider WeatherProvider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// CurrentWeather fetches weather data, respecting rate limits
func (r *RateLimitedProvider) CurrentWeather(ctx context.Context, city string) (models.Weather, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.limiter.Wait(ctx); err != nil {
		return models.Weather{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	// Forward to the underlying provider
	return r.provider.CurrentWeather(ctx, city)
}

// Name returns the provider name
func (r *RateLimitedProvider) Name() string {
	return r.name
}
