package models

import (
	"time"
)

// Weather represents normalized current-weather data for a single city.
// It is only ever constructed from a successful provider response and is
// not mutated afterwards.
type Weather struct {
	Provider           string    `json:"provider"`
	City               string    `json:"city"`
	TemperatureCelsius float64   `json:"temperatureCelsius"`
	Description        string    `json:"description"`
	FetchedAt          time.Time `json:"fetchedAt"`
}
