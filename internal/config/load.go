package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load.
// For example, server.port is read from CONTACTS_SERVER_PORT.
const envPrefix = "CONTACTS"

// Load reads configuration from environment variables, applies defaults,
// and validates the result. Environment variables take precedence over
// defaults. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for settings that have sensible out-of-the-box values.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("auth.token_lifetime_minutes", 15)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 7*24*60)
	v.SetDefault("auth.email_token_lifetime_minutes", 7*24*60)
	v.SetDefault("redis.rate_limit_enabled", true)
	v.SetDefault("redis.rate_limit_per_minute", 60)
	v.SetDefault("redis.rate_limit_burst", 10)
	v.SetDefault("storage.max_avatar_bytes", 5<<20)

	// Read from environment variables with the CONTACTS_ prefix,
	// mapping nested keys (server.port -> CONTACTS_SERVER_PORT).
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind every known key explicitly.
	for _, key := range []string{
		"server.port", "server.log_level", "server.base_url",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes", "auth.email_token_lifetime_minutes",
		"smtp.host", "smtp.port", "smtp.username", "smtp.password", "smtp.from",
		"redis.url", "redis.rate_limit_enabled",
		"redis.rate_limit_per_minute", "redis.rate_limit_burst",
		"storage.endpoint", "storage.access_key", "storage.secret_key",
		"storage.bucket", "storage.public_base_url", "storage.max_avatar_bytes",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
