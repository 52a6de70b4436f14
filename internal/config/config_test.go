package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseValidConfig returns a fully-valid configuration object that callers
// can tweak inside table tests.
func baseValidConfig() Config {
	return Config{
		AppPort:               8080,
		BcryptCost:            12,
		LogLevel:              "info",
		LogFormat:             "json",
		MongoURI:              "mongodb://localhost:27017",
		MongoDBName:           "test",
		JWTSecret:             "this-is-a-super-secret-jwt-key-with-32-plus-chars",
		JWTAlgorithm:          "HS256",
		TokenTTLMinutes:       0,
		RequestLoggingEnabled: true,
		RouteMetricsEnabled:   true,
		CORSAllowOrigins:      "*",
	}
}

// clearConfigEnvVars removes every environment variable that the Config loader
// consumes so each test starts with a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"APP_PORT",
		"BCRYPT_COST",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"MONGO_URI",
		"MONGO_DB_NAME",
		"JWT_SECRET",
		"JWT_ALGORITHM",
		"TOKEN_TTL_MINUTES",
		"REQUEST_LOGGING_ENABLED",
		"ROUTE_METRICS_ENABLED",
		"CORS_ALLOW_ORIGINS",
		"PYROSCOPE_SERVER_ADDRESS",
		"DEV_MODE",
	} {
		if err := os.Unsetenv(k); err != nil {
			t.Logf("warning: failed to unset %s: %v", k, err)
		}
	}
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "userpulse", cfg.MongoDBName)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 0, cfg.TokenTTLMinutes)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.RequestLoggingEnabled)
	assert.True(t, cfg.RouteMetricsEnabled)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
	assert.Empty(t, cfg.PyroscopeServerAddress)
}

func TestConfigLoadWithOverride(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("APP_PORT", "9999")
	t.Setenv("JWT_SECRET", "an-override-secret-that-is-long-enough-for-hs256")
	t.Setenv("TOKEN_TTL_MINUTES", "60")
	t.Setenv("LOG_FORMAT", "TEXT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.AppPort)
	assert.Equal(t, "an-override-secret-that-is-long-enough-for-hs256", cfg.JWTSecret)
	assert.Equal(t, 60, cfg.TokenTTLMinutes)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.DevMode)
}

func TestConfigLoadRequiresSecret(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	_, err := Load()
	require.ErrorIs(t, err, ErrJWTSecretRequired)
}

func TestConfigCaching(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()
	t.Cleanup(ResetCache)

	t.Setenv("DEV_MODE", "true")

	cfg1, err := Load()
	require.NoError(t, err)

	// second call should hit the cache even though the env changed
	t.Setenv("APP_PORT", "7070")
	cfg2, err := Load()
	require.NoError(t, err)

	assert.Equal(t, cfg1, cfg2)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:    "invalid port - zero",
			modify:  func(c *Config) { c.AppPort = 0 },
			wantErr: ErrAppPortRange,
		},
		{
			name:    "invalid port - too high",
			modify:  func(c *Config) { c.AppPort = 70000 },
			wantErr: ErrAppPortRange,
		},
		{
			name:    "bcrypt cost too low",
			modify:  func(c *Config) { c.BcryptCost = 9 },
			wantErr: ErrBcryptCostRange,
		},
		{
			name:    "bcrypt cost too high",
			modify:  func(c *Config) { c.BcryptCost = 17 },
			wantErr: ErrBcryptCostRange,
		},
		{
			name:    "empty log level",
			modify:  func(c *Config) { c.LogLevel = "" },
			wantErr: ErrLogLevelEmpty,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrLogLevelInvalid,
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: ErrLogFormatInvalid,
		},
		{
			name:    "empty mongo uri",
			modify:  func(c *Config) { c.MongoURI = "" },
			wantErr: ErrMongoURIEmpty,
		},
		{
			name:    "empty mongo db name",
			modify:  func(c *Config) { c.MongoDBName = "" },
			wantErr: ErrMongoDBNameEmpty,
		},
		{
			name:    "empty JWT secret",
			modify:  func(c *Config) { c.JWTSecret = "" },
			wantErr: ErrJWTSecretRequired,
		},
		{
			name: "empty JWT secret in dev mode",
			modify: func(c *Config) {
				c.JWTSecret = ""
				c.DevMode = true
			},
		},
		{
			name:    "JWT secret too short",
			modify:  func(c *Config) { c.JWTSecret = "short" },
			wantErr: ErrJWTSecretTooShort,
		},
		{
			name:    "unsupported JWT algorithm",
			modify:  func(c *Config) { c.JWTAlgorithm = "RS256" },
			wantErr: ErrJWTAlgorithm,
		},
		{
			name:    "negative token ttl",
			modify:  func(c *Config) { c.TokenTTLMinutes = -1 },
			wantErr: ErrTokenTTLNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseValidConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
