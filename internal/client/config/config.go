package config

import (
	"time"

	"github.com/dmitrijs2005/gridplanner/internal/common"
)

// Config holds runtime settings for the gridplanner CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - PushURL: websocket endpoint for live comment events.
//   - DatabasePath: local SQLite file holding tokens and the item mirror.
//   - RedisAddr: optional Redis used for whole-container backups; empty disables them.
//   - AutosaveDebounce: quiet period before a backup is written.
//   - MinGridSize: smallest number of cells a rendered grid shows.
//   - RequestTimeout: upper bound for a single command's remote calls.
//   - Verbose: log at debug level.
type Config struct {
	ServerEndpointAddr string
	PushURL            string
	DatabasePath       string
	RedisAddr          string
	AutosaveDebounce   time.Duration
	MinGridSize        int
	RequestTimeout     time.Duration
	Verbose            bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PushURL = "ws://127.0.0.1:8080/ws/comments"
	c.DatabasePath = "gridplanner.db"
	c.RedisAddr = ""
	c.AutosaveDebounce = 2 * time.Second
	c.MinGridSize = common.MinimumGridSize
	c.RequestTimeout = 10 * time.Second
	c.Verbose = false
}

// LoadConfig applies defaults and then the optional JSON file. Flags are
// applied later, when the root command parses them into the same Config.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	return cfg
}
