package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gridplanner/internal/flagx"
	"github.com/dmitrijs2005/gridplanner/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept both "15m"
// strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	PresignTTL                   timex.Duration `json:"presign_ttl"`
	RedisAddr                    string         `json:"redis_addr"`
	MaxCommentLength             int            `json:"max_comment_length"`
	TokenPurgeInterval           timex.Duration `json:"token_purge_interval"`
	LogFormat                    string         `json:"log_format"`
	Debug                        *bool          `json:"debug"`
}

// parseJson overlays values from the file named by -c / -config. Keys
// missing from the file leave the current value untouched. An unreadable
// or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JSONConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.PresignTTL.Duration > 0 {
		config.PresignTTL = c.PresignTTL.Duration
	}
	if c.MaxCommentLength > 0 {
		config.MaxCommentLength = c.MaxCommentLength
	}
	if c.TokenPurgeInterval.Duration > 0 {
		config.TokenPurgeInterval = c.TokenPurgeInterval.Duration
	}
	setString(&config.LogFormat, c.LogFormat)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
