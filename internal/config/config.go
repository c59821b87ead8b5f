package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"     validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is the externally visible URL of this service, used when
	// building confirmation and password-reset links in outgoing email.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// TokenLifetimeMinutes is the lifetime of access tokens in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// RefreshTokenLifetimeMinutes is the lifetime of refresh tokens in minutes.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	// EmailTokenLifetimeMinutes is the lifetime of confirmation and
	// password-reset tokens in minutes.
	EmailTokenLifetimeMinutes int `mapstructure:"email_token_lifetime_minutes" validate:"required,gt=0"`
}

// SMTPConfig contains the outgoing mail settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int    `mapstructure:"port"     validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	From     string `mapstructure:"from"     validate:"required,email"`
}

// RedisConfig contains the rate-limiter backend settings.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required"`
	// RateLimitEnabled toggles request rate limiting globally.
	RateLimitEnabled bool `mapstructure:"rate_limit_enabled"`
	// RateLimitPerMinute is the sustained request rate allowed per client.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" validate:"required,gt=0"`
	// RateLimitBurst is the burst capacity allowed per client.
	RateLimitBurst int `mapstructure:"rate_limit_burst" validate:"required,gt=0"`
}

// StorageConfig contains the avatar object-storage settings.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"   validate:"required"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	Bucket    string `mapstructure:"bucket"     validate:"required"`
	// PublicBaseURL is the URL prefix under which uploaded objects are
	// publicly reachable.
	PublicBaseURL string `mapstructure:"public_base_url" validate:"required,url"`
	// MaxAvatarBytes caps the accepted avatar upload size.
	MaxAvatarBytes int64 `mapstructure:"max_avatar_bytes" validate:"required,gt=0"`
}
