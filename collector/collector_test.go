package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"weathernow/models"
)

// scriptedProvider returns a result per city, or an error for unknown ones.
type scriptedProvider struct {
	results map[string]models.Weather
}

func (s *scriptedProvider) Name() string { return "Scripted" }

func (s *scriptedProvider) CurrentWeather(ctx context.Context, city string) (models.Weather, error) {
	if weather, ok := s.results[city]; ok {
		return weather, nil
	}
	return models.Weather{}, errors.New("unknown city")
}

func TestCollectorInitialFetch(t *testing.T) {
	provider := &scriptedProvider{results: map[string]models.Weather{
		"London": {City: "London", TemperatureCelsius: 21.5},
		"Oslo":   {City: "Oslo", TemperatureCelsius: -3},
	}}

	col := NewCollector(provider, []string{"London", "Oslo"}, time.Hour)
	stop := col.Start(context.Background())
	defer stop()

	seen := make(map[string]bool)
	timeout := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case weather := <-col.OutputChannel():
			seen[weather.City] = true
		case <-timeout:
			t.Fatalf("timed out waiting for initial results, saw %v", seen)
		}
	}

	if !seen["London"] || !seen["Oslo"] {
		t.Errorf("missing cities in output: %v", seen)
	}
}

func TestCollectorEmitsErrors(t *testing.T) {
	provider := &scriptedProvider{results: map[string]models.Weather{}}

	col := NewCollector(provider, []string{"Atlantis"}, time.Hour)
	stop := col.Start(context.Background())
	defer stop()

	select {
	case err := <-col.ErrorChannel():
		if err == nil {
			t.Fatal("expected a non-nil error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an error")
	}
}

func TestCollectorStopClosesChannels(t *testing.T) {
	provider := &scriptedProvider{results: map[string]models.Weather{
		"London": {City: "London"},
	}}

	col := NewCollector(provider, []string{"London"}, time.Hour)
	stop := col.Start(context.Background())
	stop()

	// Both channels drain and close once collection stops.
	for range col.OutputChannel() {
	}
	for range col.ErrorChannel() {
	}
}
