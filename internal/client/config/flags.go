package config

import "github.com/spf13/pflag"

// BindFlags registers the CLI flags on fs, using the current values of cfg
// as defaults so that flags override JSON and JSON overrides defaults.
//
//	-a, --server     address and port of the backend gRPC endpoint
//	-w, --push-url   websocket URL for comment events
//	-d, --db         path of the local SQLite database
//	-r, --redis      Redis address for container backups
//	-s, --autosave   backup quiet period
//	-n, --min-size   minimum rendered grid size
//	-t, --timeout    request timeout
//	-v, --verbose    debug logging
//	-c, --config     JSON config file (read before flags)
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ServerEndpointAddr, "server", "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVarP(&cfg.PushURL, "push-url", "w", cfg.PushURL, "websocket URL for comment events")
	fs.StringVarP(&cfg.DatabasePath, "db", "d", cfg.DatabasePath, "path of the local database")
	fs.StringVarP(&cfg.RedisAddr, "redis", "r", cfg.RedisAddr, "redis address for container backups (empty disables)")
	fs.DurationVarP(&cfg.AutosaveDebounce, "autosave", "s", cfg.AutosaveDebounce, "quiet period before a backup is written")
	fs.IntVarP(&cfg.MinGridSize, "min-size", "n", cfg.MinGridSize, "minimum number of cells shown")
	fs.DurationVarP(&cfg.RequestTimeout, "timeout", "t", cfg.RequestTimeout, "request timeout")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug logging")
	fs.StringP("config", "c", "", "path to JSON config file")
}
