package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"weathernow/cache"
	"weathernow/collector"
	"weathernow/datasource"
	"weathernow/models"
)

func main() {
	// Parse command line arguments
	configFile := flag.String("config", "config.json", "Path to configuration file")
	watchInterval := flag.Duration("watch", 0, "Re-fetch on this interval instead of exiting (0 disables)")
	cacheDuration := flag.Duration("cache", 5*time.Minute, "How long fetched weather stays fresh in watch mode")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable API rate limiting")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger := newLogger(*verbose)

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "err", err)
	}

	// Load configuration, falling back to defaults when no file is present
	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		logger.Debug("using default configuration", "file", *configFile, "err", err)
		config = datasource.DefaultConfig()
	}

	apiKey := os.Getenv("OPENWEATHERMAP_API_KEY")
	if apiKey == "" {
		logger.Fatal("OPENWEATHERMAP_API_KEY is not set")
	}

	// Cities from the command line, or the configured list
	cities := flag.Args()
	if len(cities) == 0 {
		cities = config.Cities
	}
	if len(cities) == 0 {
		logger.Fatal("no cities given on the command line or in configuration")
	}

	// Build the provider chain
	var provider datasource.WeatherProvider = datasource.NewOpenWeatherMapProvider(apiKey, config.Fetch, logger)

	if *enableRateLimiting {
		// OpenWeatherMap free tier allows 60 calls/minute = 1 call per second
		// Allow bursts of up to 5 requests
		provider = datasource.NewRateLimitedProvider(provider, 1.0, 5)
		logger.Debug("applied rate limiting", "provider", provider.Name())
	}

	if *watchInterval > 0 {
		// Watch mode re-fetches on a ticker; cache keeps refresh cycles from
		// re-hitting the API within the TTL.
		provider = cache.NewCachedProvider(provider, *cacheDuration, logger)
		watch(provider, cities, *watchInterval, logger)
		return
	}

	if !fetchAll(context.Background(), provider, cities, logger) {
		os.Exit(1)
	}
}

// newLogger creates a logger with timestamp formatting, filtering at debug
// level when verbose is set.
func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// fetchAll fetches every city concurrently and prints one line per result.
// Returns false if any city failed.
func fetchAll(ctx context.Context, provider datasource.WeatherProvider, cities []string, logger *log.Logger) bool {
	logger.Info("fetching current weather", "cities", len(cities), "provider", provider.Name())

	var (
		wg     sync.WaitGroup
		mutex  sync.Mutex
		failed bool
	)

	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			weather, err := provider.CurrentWeather(ctx, city)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				failed = true
				fmt.Printf("%s: %s\n", city, humanize(err))
				return
			}
			fmt.Println(render(weather))
		}(city)
	}

	wg.Wait()
	return !failed
}

// watch runs the collector until SIGINT/SIGTERM
func watch(provider datasource.WeatherProvider, cities []string, interval time.Duration, logger *log.Logger) {
	logger.Info("watching current weather", "cities", len(cities), "interval", interval)

	col := collector.NewCollector(provider, cities, interval)
	stop := col.Start(context.Background())

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for weather := range col.OutputChannel() {
			fmt.Println(render(weather))
		}
	}()
	go func() {
		for err := range col.ErrorChannel() {
			logger.Error("fetch failed", "err", err)
		}
	}()

	sig := <-shutdownChan
	logger.Info("shutting down", "signal", sig)
	stop()
}

// render formats a weather value as a single display line
func render(weather models.Weather) string {
	return fmt.Sprintf("%s: %.1f°C, %s", weather.City, weather.TemperatureCelsius, weather.Description)
}

// humanize maps the client's error taxonomy to a message fit for display
func humanize(err error) string {
	switch {
	case errors.Is(err, datasource.ErrInvalidInput):
		return "please enter a city name"
	case errors.Is(err, datasource.ErrMissingCredential):
		return "no API key configured"
	case errors.Is(err, datasource.ErrCityNotFound):
		return "city not found"
	case errors.Is(err, datasource.ErrInvalidCredential):
		return "the API key was rejected"
	case errors.Is(err, datasource.ErrRetriesExhausted),
		errors.Is(err, datasource.ErrTimeoutExhausted):
		return fmt.Sprintf("the weather service is unavailable right now (%v)", err)
	default:
		return err.Error()
	}
}
