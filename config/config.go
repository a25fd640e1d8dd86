package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultAPIURL = "http://localhost:8080/api/v1"
	defaultWSURL  = "ws://localhost:8080/ws"
)

type Config struct {
	APIBaseURL     string
	WSURL          string
	Timeout        time.Duration
	ReconnectDelay time.Duration
	RateLimit      float64
	RateBurst      int
	LogLevel       string
	LogFormat      string
	Home           string
	Profile        string
}

// Load reads configuration from the environment. Callers load .env first.
func Load() Config {
	return Config{
		APIBaseURL:     getenvAny([]string{"RENTADM_API_URL", "VITE_API_BASE_URL"}, defaultAPIURL),
		WSURL:          getenvAny([]string{"RENTADM_WS_URL", "VITE_WS_URL"}, defaultWSURL),
		Timeout:        getenvDuration("RENTADM_TIMEOUT", 15*time.Second),
		ReconnectDelay: getenvDuration("RENTADM_RECONNECT_DELAY", 5*time.Second),
		RateLimit:      getenvFloat("RENTADM_RATE_LIMIT", 0),
		RateBurst:      getenvInt("RENTADM_RATE_BURST", 5),
		LogLevel:       getenv("RENTADM_LOG_LEVEL", "warn"),
		LogFormat:      getenv("RENTADM_LOG_FORMAT", "text"),
		Home:           getenv("RENTADM_HOME", defaultHome()),
		Profile:        getenv("RENTADM_PROFILE", ""),
	}
}

func (c Config) Validate() error {
	if err := checkURL(c.APIBaseURL, "http", "https"); err != nil {
		return fmt.Errorf("api url: %w", err)
	}
	if err := checkURL(c.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("ws url: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when a rate limit is set")
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme {
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme %q in %q", parsed.Scheme, raw)
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".rentadm")
	}
	return filepath.Join(home, ".config", "rentadm")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvAny(keys []string, fallback string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
