package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gridplanner/internal/flagx"
	"github.com/dmitrijs2005/gridplanner/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	PushURL            string         `json:"push_url"`
	DatabasePath       string         `json:"database_path"`
	RedisAddr          string         `json:"redis_addr"`
	AutosaveDebounce   timex.Duration `json:"autosave_debounce"`
	MinGridSize        int            `json:"min_grid_size"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from the file named by -c,
// -config or --config. Keys missing from the file keep their current
// value. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.PushURL, jc.PushURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	if jc.AutosaveDebounce.Duration > 0 {
		cfg.AutosaveDebounce = jc.AutosaveDebounce.Duration
	}
	if jc.MinGridSize > 0 {
		cfg.MinGridSize = jc.MinGridSize
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
