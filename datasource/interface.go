package datasource

import (
	"context"

	"weathernow/models"
)

// WeatherProvider is an interface for services that can fetch current weather data
type WeatherProvider interface {
	// CurrentWeather fetches current weather for a city
	CurrentWeather(ctx context.Context, city string) (models.Weather, error)

	// Name returns the provider's name
	Name() string
}
