package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds settings read from the environment and an optional .env file.
type Config struct {
	EventsBaseURL string
	FetchTimeout  time.Duration
	Location      *time.Location
	LogLevel      string
	ProfileFile   string
	Google        GoogleConfig
	CalDAV        CalDAVConfig
}

// GoogleConfig holds OAuth client credentials and the calendar API endpoint.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	Endpoint     string // empty means the public Google endpoint
}

// CalDAVConfig holds credentials for a CalDAV export target.
type CalDAVConfig struct {
	Endpoint     string
	Username     string
	Password     string
	CalendarName string
}

// Enabled reports whether enough is configured to dial the server.
func (c CalDAVConfig) Enabled() bool {
	return c.Username != "" && c.Password != "" && c.CalendarName != ""
}

// Load reads configuration from the environment, loading .env first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	tzStr := getEnv("PRIMARY_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzStr)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", tzStr, err)
	}

	return &Config{
		EventsBaseURL: getEnv("EVENTS_BASE_URL", "http://localhost:8000"),
		FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT_SEC", 15)) * time.Second,
		Location:      loc,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ProfileFile:   getEnv("PROFILE_FILE", "profile.yaml"),
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			TokenFile:    getEnv("GOOGLE_TOKEN_FILE", "token-google.json"),
			Endpoint:     os.Getenv("GOOGLE_CALENDAR_ENDPOINT"),
		},
		CalDAV: CalDAVConfig{
			Endpoint:     os.Getenv("CALDAV_ENDPOINT"),
			Username:     os.Getenv("CALDAV_USERNAME"),
			Password:     os.Getenv("CALDAV_PASSWORD"),
			CalendarName: os.Getenv("CALDAV_CALENDAR_NAME"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
