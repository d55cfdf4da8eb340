package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-w", ":8181", "-d", "db", "-s", "secret",
				"-t", "1", "-r", "3", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-x", "5", "-k", "localhost:6379", "-m", "500", "-i", "30", "-l", "text", "-v",
			},
			expected: &Config{
				EndpointAddrGRPC:             "127.0.0.1:9090",
				EndpointAddrHTTP:             ":8181",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				S3RootUser:                   "user",
				S3RootPassword:               "password",
				S3Bucket:                     "bucket",
				S3Region:                     "us-west-1",
				S3BaseEndpoint:               "http://endpoint",
				PresignTTL:                   5 * time.Minute,
				RedisAddr:                    "localhost:6379",
				MaxCommentLength:             500,
				TokenPurgeInterval:           30 * time.Minute,
				LogFormat:                    "text",
				Debug:                        true,
			},
		},
		{
			name:        "bad integer",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd", "-config", "x.json", "-a", ":1"}

	var c Config
	c.LoadDefaults()
	require.NotPanics(t, func() { parseFlags(&c) })
	assert.Equal(t, ":1", c.EndpointAddrGRPC)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
}
