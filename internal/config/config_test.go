package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"EVENTS_BASE_URL", "FETCH_TIMEOUT_SEC", "PRIMARY_TIMEZONE", "LOG_LEVEL", "GOOGLE_TOKEN_FILE", "CALDAV_USERNAME"} {
		t.Setenv(k, "")
	}
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.EventsBaseURL)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "token-google.json", cfg.Google.TokenFile)
	assert.False(t, cfg.CalDAV.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EVENTS_BASE_URL", "https://events.example.edu/api")
	t.Setenv("FETCH_TIMEOUT_SEC", "3")
	t.Setenv("PRIMARY_TIMEZONE", "America/New_York")
	t.Setenv("CALDAV_USERNAME", "u")
	t.Setenv("CALDAV_PASSWORD", "p")
	t.Setenv("CALDAV_CALENDAR_NAME", "Campus")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://events.example.edu/api", cfg.EventsBaseURL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	assert.True(t, cfg.CalDAV.Enabled())
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRIMARY_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
