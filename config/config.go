package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	LogLevel   string

	NominatimURL       string
	NominatimUserAgent string
	GeocodeIntervalMs  int

	CianURL      string
	FetchTimeout time.Duration
	PageLoadWait time.Duration
	MaxRetries   int
	ChromeBin    string
	Headless     bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		// The public Nominatim instance allows one request per second.
		NominatimURL:       getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getEnv("NOMINATIM_USER_AGENT", "cian-radar/1.0"),
		GeocodeIntervalMs:  getEnvInt("GEOCODE_INTERVAL_MS", 1000),

		CianURL:      getEnv("CIAN_URL", "https://www.cian.ru"),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 90*time.Second),
		PageLoadWait: getEnvDuration("PAGE_LOAD_WAIT", 5*time.Second),
		MaxRetries:   getEnvInt("MAX_RETRIES", 3),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		Headless:     getEnvBool("HEADLESS", true),
	}
}

// GeocodeInterval is the minimum spacing between geocoder requests.
func (c *Config) GeocodeInterval() time.Duration {
	return time.Duration(c.GeocodeIntervalMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
