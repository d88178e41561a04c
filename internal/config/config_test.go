package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://swachhsetu.in ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoding.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.AI.LinguisticTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://swachhsetu.in"}, cfg.CORSOrigins)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid development", mutate: func(c *Config) {}},
		{name: "missing dsn", mutate: func(c *Config) { c.MySQLDSN = "" }, wantErr: true},
		{name: "default secret in production", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "change-me"
		}, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.ProxyRateLimit = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Environment:    "development",
				MySQLDSN:       "dsn",
				JWTSecret:      "change-me",
				Timezone:       "UTC",
				ProxyRateLimit: 1,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
