package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8000",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBDriver:                 "postgres",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		DBConnMaxLifetimeMinutes: 5,
		StorageBackend:           "fs",
		PageCacheSeconds:         20,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite allowed outside production", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"unknown storage backend", func(c *Config) { c.StorageBackend = "s3" }, true},
		{"minio without bucket", func(c *Config) { c.StorageBackend = "minio"; c.MinioEndpoint = "m:9000" }, true},
		{"negative page cache", func(c *Config) { c.PageCacheSeconds = -1 }, true},
		{"zero conn lifetime", func(c *Config) { c.DBConnMaxLifetimeMinutes = 0 }, true},
		{"production valid", func(c *Config) { c.Env = "production" }, false},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"production weak db password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"production ssl disabled", func(c *Config) { c.Env = "production"; c.DBSSLMode = "disable" }, true},
		{"production sqlite", func(c *Config) { c.Env = "production"; c.DBDriver = "sqlite" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndDefaults(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("PAGE_CACHE_SECONDS", "30")
	t.Setenv("RATE_LIMIT_FAIL_CLOSED", "true")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 30, c.PageCacheSeconds)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.Equal(t, "fs", c.StorageBackend)
	assert.Equal(t, 5*1024*1024, c.MaxUploadBytes())
	assert.True(t, c.RateLimitEnabled)
	assert.True(t, c.RateLimitFailClosed)
}
