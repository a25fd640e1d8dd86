package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"RENTADM_API_URL", "VITE_API_BASE_URL", "RENTADM_WS_URL", "VITE_WS_URL", "RENTADM_TIMEOUT", "RENTADM_RECONNECT_DELAY", "RENTADM_RECONNECT_DELAY_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, defaultAPIURL, cfg.APIBaseURL)
	assert.Equal(t, defaultWSURL, cfg.WSURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	require.NoError(t, cfg.Validate())
}

func TestLoadFallsBackToViteVariables(t *testing.T) {
	t.Setenv("RENTADM_API_URL", "")
	t.Setenv("VITE_API_BASE_URL", "https://rent.example.com/api")
	t.Setenv("RENTADM_WS_URL", "")
	t.Setenv("VITE_WS_URL", "wss://rent.example.com/ws")

	cfg := Load()
	assert.Equal(t, "https://rent.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "wss://rent.example.com/ws", cfg.WSURL)
}

func TestLoadDurationSeconds(t *testing.T) {
	t.Setenv("RENTADM_RECONNECT_DELAY", "")
	t.Setenv("RENTADM_RECONNECT_DELAY_SECONDS", "2")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay)
}

func TestValidateRejectsWrongSchemes(t *testing.T) {
	cfg := Load()
	cfg.APIBaseURL = "ws://localhost:8080"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.WSURL = "http://localhost:8080/ws"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.APIBaseURL = "http://"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroBurstWithRateLimit(t *testing.T) {
	cfg := Load()
	cfg.RateLimit = 2
	cfg.RateBurst = 0
	assert.ErrorContains(t, cfg.Validate(), "rate burst")

	cfg.RateBurst = 1
	assert.NoError(t, cfg.Validate())

	cfg.RateLimit = 0
	cfg.RateBurst = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoadHome(t *testing.T) {
	t.Setenv("RENTADM_HOME", "/tmp/rentadm-home")
	assert.Equal(t, "/tmp/rentadm-home", Load().Home)

	t.Setenv("RENTADM_HOME", "")
	assert.NotEmpty(t, Load().Home)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)
	logger.Info("hello", "k", "v")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.NotContains(t, out, "hidden")
}
