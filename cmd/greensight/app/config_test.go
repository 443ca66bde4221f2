package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Example(t *testing.T) {
	config, err := LoadConfig(filepath.Join("..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, config.Settings.LogLevel.Level())
	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, ByteSize(10_000_000), config.Server.BodyLimit)
	assert.Equal(t, Duration(2*time.Minute), config.Server.WriteTimeout)
	assert.Equal(t, "reference", config.Pipeline.Revision)
	assert.Equal(t, 600.0, config.Render.DownloadDPI)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "settings:\n  logLevel: debug\npipeline:\n  revision: Revised\n"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, config.Settings.LogLevel.Level())
	assert.Equal(t, DefaultAddress, config.Server.Address)
	assert.Equal(t, ByteSize(DefaultBodyLimit), config.Server.BodyLimit)
	assert.Equal(t, Duration(DefaultShutdownTimeout), config.Server.ShutdownTimeout)
	assert.Equal(t, 100.0, config.Render.PreviewDPI)

	policy, err := config.Pipeline.Policy()
	require.NoError(t, err)
	assert.Equal(t, "revised", policy.Name)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown revision", "pipeline:\n  revision: latest\n"},
		{"bad log level", "settings:\n  logLevel: loud\n"},
		{"bad body limit", "server:\n  bodyLimit: lots\n"},
		{"zero body limit", "server:\n  bodyLimit: 0B\n"},
		{"bad duration", "server:\n  readTimeout: soon\n"},
		{"sub-second duration", "server:\n  readTimeout: 10ms\n"},
		{"negative duration", "server:\n  writeTimeout: -5s\n"},
		{"dpi too high", "render:\n  downloadDPI: 5000\n"},
		{"empty address", "server:\n  address: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	config := DefaultConfig()
	config.Server.RequestLogging = false

	e, err := NewServer(config, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	for _, path := range []string{"/", "/api/health"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
