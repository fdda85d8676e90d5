package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weathernow/datasource"
	"weathernow/models"
)

// Collector periodically fetches current weather for a set of cities and
// emits the results on channels. Used by the CLI's watch mode.
type Collector struct {
	provider     datasource.WeatherProvider
	outputChan   chan models.Weather
	errorChan    chan error
	cities       []string
	interval     time.Duration
	fetchTimeout time.Duration
}

// NewCollector creates a collector for the given provider and cities,
// fetching every interval.
func NewCollector(provider datasource.WeatherProvider, cities []string, interval time.Duration) *Collector {
	return &Collector{
		provider:   provider,
		outputChan: make(chan models.Weather, 100), // Buffer size can be configured
		errorChan:  make(chan error, 100),          // Buffer for errors
		cities:     cities,
		interval:   interval,
		// Bounds a whole fetch including its retries and backoff waits, so
		// it is much larger than the provider's per-attempt timeout.
		fetchTimeout: 2 * time.Minute,
	}
}

// SetFetchTimeout changes the overall timeout for a single city fetch
func (c *Collector) SetFetchTimeout(timeout time.Duration) {
	c.fetchTimeout = timeout
}

// OutputChannel returns the channel that emits collected weather data
func (c *Collector) OutputChannel() <-chan models.Weather {
	return c.outputChan
}

// ErrorChannel returns the channel that emits errors
func (c *Collector) ErrorChannel() <-chan error {
	return c.errorChan
}

// Start begins collecting data for all cities
// The returned function can be called to stop collection
func (c *Collector) Start(ctx context.Context) func() {
	collectionCtx, cancelCollection := context.WithCancel(ctx)

	var wg sync.WaitGroup

	for _, city := range c.cities {
		wg.Add(1)
		go c.collectCity(collectionCtx, &wg, city)
	}

	// Close channels once all collectors are done
	go func() {
		wg.Wait()
		close(c.outputChan)
		close(c.errorChan)
	}()

	return func() {
		cancelCollection()
		wg.Wait()
	}
}

// collectCity continuously collects weather for a single city
func (c *Collector) collectCity(ctx context.Context, wg *sync.WaitGroup, city string) {
	defer wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately
	c.fetchOnce(ctx, city)

	for {
		select {
		case <-ticker.C:
			c.fetchOnce(ctx, city)
		case <-ctx.Done():
			return
		}
	}
}

// fetchOnce performs a single fetch for a city
func (c *Collector) fetchOnce(ctx context.Context, city string) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	data, err := c.provider.CurrentWeather(fetchCtx, city)
	if err != nil {
		select {
		case c.errorChan <- fmt.Errorf("error fetching weather for %s from %s: %w", city, c.provider.Name(), err):
		default:
			// Error channel full; drop rather than block collection
		}
		return
	}

	select {
	case c.outputChan <- data:
	case <-ctx.Done():
		return
	}
}
