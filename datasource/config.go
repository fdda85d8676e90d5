package datasource

import (
	"encoding/json"
	"os"
	"time"
)

// Defaults applied when a FetchConfig field is left at its zero value.
const (
	DefaultMaxRetries     = 3
	DefaultTimeoutSeconds = 8
)

// FetchConfig controls the retry behavior of a single provider. The zero
// value is usable; defaults are applied on every fetch.
type FetchConfig struct {
	// MaxRetries is the total number of attempts, including the first one.
	// Values below 1 fall back to DefaultMaxRetries.
	MaxRetries int `json:"maxRetries"`

	// TimeoutSeconds bounds each individual attempt, not the whole fetch.
	TimeoutSeconds int `json:"timeoutSeconds"`
}

// withDefaults returns a copy with zero/invalid fields replaced by defaults.
func (c FetchConfig) withDefaults() FetchConfig {
	if c.MaxRetries < 1 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return c
}

// timeout returns the per-attempt timeout as a duration.
func (c FetchConfig) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Config represents the application configuration
type Config struct {
	Fetch FetchConfig `json:"fetch"`

	// List of cities to fetch when none are given on the command line
	Cities []string `json:"cities"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			MaxRetries:     DefaultMaxRetries,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cities: []string{"London", "New York", "Tokyo"},
	}
}
