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
				"-a", "http://api:8080", "-g", "api:50051", "-s", "redis", "-d", "dsn",
				"-t", "30s", "-f", "jwt", "-u", "users.json", "-l", "debug",
			},
			expected: &Config{
				APIURL:         "http://api:8080",
				GRPCAddr:       "api:50051",
				StoreBackend:   "redis",
				StoreDSN:       "dsn",
				RequestTimeout: 30 * time.Second,
				TokenFormat:    "jwt",
				UsersFile:      "users.json",
				LogLevel:       "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", "http://api"},
			expected: &Config{APIURL: "http://api"},
		},
		{name: "bad duration", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
