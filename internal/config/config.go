package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// devJWTSecret is only substituted when DEV_MODE is on and no secret was given.
const devJWTSecret = "dev-mode-jwt-secret-not-for-production-use"

// Config holds all application configuration
type Config struct {
	AppPort                int    `mapstructure:"APP_PORT"`
	BcryptCost             int    `mapstructure:"BCRYPT_COST"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	MongoURI               string `mapstructure:"MONGO_URI"`
	MongoDBName            string `mapstructure:"MONGO_DB_NAME"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	JWTAlgorithm           string `mapstructure:"JWT_ALGORITHM"`
	TokenTTLMinutes        int    `mapstructure:"TOKEN_TTL_MINUTES"`
	RequestLoggingEnabled  bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	RouteMetricsEnabled    bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	CORSAllowOrigins       string `mapstructure:"CORS_ALLOW_ORIGINS"`
	PyroscopeServerAddress string `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
	DevMode                bool   `mapstructure:"DEV_MODE"`
}

// Validation errors returned by Validate.
var (
	ErrAppPortRange      = errors.New("APP_PORT must be between 1 and 65535")
	ErrBcryptCostRange   = errors.New("BCRYPT_COST must be between 10 and 16")
	ErrLogLevelEmpty     = errors.New("LOG_LEVEL cannot be empty")
	ErrLogLevelInvalid   = errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	ErrLogFormatInvalid  = errors.New("LOG_FORMAT must be either json or text")
	ErrMongoURIEmpty     = errors.New("MONGO_URI cannot be empty")
	ErrMongoDBNameEmpty  = errors.New("MONGO_DB_NAME cannot be empty")
	ErrJWTSecretRequired = errors.New("JWT_SECRET is required unless DEV_MODE is enabled")
	ErrJWTSecretTooShort = errors.New("JWT_SECRET must be at least 32 characters for HS256")
	ErrJWTAlgorithm      = errors.New("JWT_ALGORITHM must be HS256")
	ErrTokenTTLNegative  = errors.New("TOKEN_TTL_MINUTES cannot be negative")
)

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "userpulse")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("TOKEN_TTL_MINUTES", 0) // 0: token list membership alone decides
	v.SetDefault("REQUEST_LOGGING_ENABLED", true)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("PYROSCOPE_SERVER_ADDRESS", "")
	v.SetDefault("DEV_MODE", false)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// A missing .env is fine.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.JWTAlgorithm = strings.ToUpper(cfg.JWTAlgorithm)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" && cfg.DevMode {
		cfg.JWTSecret = devJWTSecret
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return ErrAppPortRange
	}
	if c.BcryptCost < 10 || c.BcryptCost > 16 {
		return ErrBcryptCostRange
	}
	if c.LogLevel == "" {
		return ErrLogLevelEmpty
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrLogLevelInvalid
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return ErrLogFormatInvalid
	}
	if c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	if c.MongoDBName == "" {
		return ErrMongoDBNameEmpty
	}
	if c.JWTAlgorithm != "HS256" {
		return ErrJWTAlgorithm
	}
	if c.JWTSecret == "" {
		if !c.DevMode {
			return ErrJWTSecretRequired
		}
	} else if len(c.JWTSecret) < 32 {
		return ErrJWTSecretTooShort
	}
	if c.TokenTTLMinutes < 0 {
		return ErrTokenTTLNegative
	}
	return nil
}
