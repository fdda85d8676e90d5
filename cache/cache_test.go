package cache

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"weathernow/models"
)

// fakeProvider counts calls and returns a canned result or error.
type fakeProvider struct {
	calls   atomic.Int32
	weather models.Weather
	err     error
}

func (f *fakeProvider) Name() string { return "Fake" }

func (f *fakeProvider) CurrentWeather(ctx context.Context, city string) (models.Weather, error) {
	f.calls.Add(1)
	if f.err != nil {
		return models.Weather{}, f.err
	}
	return f.weather, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestCachedProviderHit(t *testing.T) {
	fake := &fakeProvider{weather: models.Weather{City: "London", TemperatureCelsius: 21.5}}
	cached := NewCachedProvider(fake, time.Hour, testLogger())

	first, err := cached.CurrentWeather(context.Background(), "London")
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	second, err := cached.CurrentWeather(context.Background(), "London")
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if first != second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
	if got := fake.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}

	hits, misses := cached.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("CacheStats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
}

func TestCachedProviderKeyNormalization(t *testing.T) {
	fake := &fakeProvider{weather: models.Weather{City: "London"}}
	cached := NewCachedProvider(fake, time.Hour, testLogger())

	if _, err := cached.CurrentWeather(context.Background(), "London"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if _, err := cached.CurrentWeather(context.Background(), "  lOnDoN "); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if got := fake.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1 (keys should normalize)", got)
	}
}

func TestCachedProviderExpiry(t *testing.T) {
	fake := &fakeProvider{weather: models.Weather{City: "London"}}
	cached := NewCachedProvider(fake, 10*time.Millisecond, testLogger())

	if _, err := cached.CurrentWeather(context.Background(), "London"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := cached.CurrentWeather(context.Background(), "London"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if got := fake.calls.Load(); got != 2 {
		t.Errorf("provider called %d times, want 2 after expiry", got)
	}
}

func TestCachedProviderErrorNotCached(t *testing.T) {
	fake := &fakeProvider{err: errors.New("boom")}
	cached := NewCachedProvider(fake, time.Hour, testLogger())

	for i := 0; i < 2; i++ {
		if _, err := cached.CurrentWeather(context.Background(), "London"); err == nil {
			t.Fatal("expected an error")
		}
	}

	if got := fake.calls.Load(); got != 2 {
		t.Errorf("provider called %d times, want 2 (errors must not be cached)", got)
	}
}

func TestCachedProviderName(t *testing.T) {
	cached := NewCachedProvider(&fakeProvider{}, time.Hour, testLogger())
	if got := cached.Name(); got != "Fake [Cached]" {
		t.Errorf("Name() = %q", got)
	}
}
