package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:8080", "-g", ":6000", "-b", "memory",
				"-m", "mongodb://m", "-d", "db", "-s", "secret", "-t", "60", "-i", "media"},
			expected: &Config{
				EndpointAddrHTTP:      "127.0.0.1:8080",
				EndpointAddrGRPC:      ":6000",
				StoreBackend:          "memory",
				MongoURI:              "mongodb://m",
				DatabaseDSN:           "db",
				SecretKey:             "secret",
				TokenValidityDuration: time.Hour,
				S3Bucket:              "media",
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"-c", "cfg.json", "-s", "secret", "-x", "1"},
			expected: &Config{
				SecretKey:             "secret",
				TokenValidityDuration: 0,
			},
		},
		{
			name:    "bad int",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
