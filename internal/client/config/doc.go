// Package config loads runtime configuration for the gridplanner CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Command-line flags registered by BindFlags on the root command.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "2s" or
// integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "push_url": "ws://127.0.0.1:8080/ws/comments",
//	  "database_path": "~/.gridplanner/grid.db",
//	  "redis_addr": "127.0.0.1:6379",
//	  "autosave_debounce": "2s",
//	  "min_grid_size": 9,
//	  "request_timeout": "10s"
//	}
package config
