package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"gridcli"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func configFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridcli.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson_OverlaysDefaults(t *testing.T) {
	path := configFile(t, `{
		"server_endpoint_addr": "grid.internal:9000",
		"push_url": "wss://grid.internal/ws/comments",
		"redis_addr": "localhost:6379",
		"autosave_debounce": "500ms",
		"min_grid_size": 12
	}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "grid.internal:9000", cfg.ServerEndpointAddr)
	assert.Equal(t, "wss://grid.internal/ws/comments", cfg.PushURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDebounce)
	assert.Equal(t, 12, cfg.MinGridSize)

	// absent keys
	assert.Equal(t, "gridplanner.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestParseJson_ConfigFlagAfterSubcommand(t *testing.T) {
	path := configFile(t, `{"database_path": "/tmp/grid.db", "request_timeout": "3s"}`)
	withArgs(t, "grid", "show", "c1", "--config", path)

	cfg := &Config{}
	parseJson(cfg)

	assert.Equal(t, "/tmp/grid.db", cfg.DatabasePath)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestParseJson_ZeroValuesDoNotOverride(t *testing.T) {
	path := configFile(t, `{"min_grid_size": 0, "server_endpoint_addr": ""}`)
	withArgs(t, "-config", path)

	cfg := &Config{ServerEndpointAddr: "keep:1", MinGridSize: 9}
	parseJson(cfg)

	assert.Equal(t, "keep:1", cfg.ServerEndpointAddr)
	assert.Equal(t, 9, cfg.MinGridSize)
}

func TestParseJson_NoFile(t *testing.T) {
	withArgs(t, "containers", "list")

	cfg := &Config{AutosaveDebounce: time.Minute}
	parseJson(cfg)
	assert.Equal(t, time.Minute, cfg.AutosaveDebounce)
}

func TestParseJson_Panics(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"malformed", func(t *testing.T) string { return configFile(t, `{"min_grid_size": `) }},
		{"bad duration", func(t *testing.T) string { return configFile(t, `{"request_timeout": "soon"}`) }},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, "-c", tt.path(t))
			assert.Panics(t, func() { parseJson(&Config{}) })
		})
	}
}
