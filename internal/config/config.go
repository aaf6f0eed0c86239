package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AuthModeDevelopment = "development"
	AuthModeJWT         = "jwt"
	AuthModeRemote      = "remote"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	AppName   string `mapstructure:"APP_NAME"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Vacío => storage in-memory.
	DatabaseDSN string `mapstructure:"DB_DSN"`

	AuthMode            string        `mapstructure:"AUTH_MODE"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTIssuer           string        `mapstructure:"JWT_ISSUER"`
	JWTTTL              time.Duration `mapstructure:"JWT_TTL"`
	RevocationCacheSize int           `mapstructure:"REVOCATION_CACHE_SIZE"`
	AuthRemoteURL       string        `mapstructure:"AUTH_REMOTE_URL"`
	AuthRemoteAPIKey    string        `mapstructure:"AUTH_REMOTE_API_KEY"`

	ClinicTimezone  string `mapstructure:"CLINIC_TIMEZONE"`
	ClinicOpenHour  int    `mapstructure:"CLINIC_OPEN_HOUR"`
	ClinicCloseHour int    `mapstructure:"CLINIC_CLOSE_HOUR"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	RabbitMQEnabled  bool   `mapstructure:"RABBITMQ_ENABLED"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`

	TracingEnabled    bool    `mapstructure:"TRACING_ENABLED"`
	OTLPEndpoint      string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRate float64 `mapstructure:"TRACING_SAMPLE_RATE"`
}

var keys = []string{
	"PORT", "ENV", "APP_NAME", "LOG_LEVEL", "LOG_FORMAT",
	"DB_DSN",
	"AUTH_MODE", "JWT_SECRET", "JWT_ISSUER", "JWT_TTL", "REVOCATION_CACHE_SIZE",
	"AUTH_REMOTE_URL", "AUTH_REMOTE_API_KEY",
	"CLINIC_TIMEZONE", "CLINIC_OPEN_HOUR", "CLINIC_CLOSE_HOUR",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"RABBITMQ_ENABLED", "RABBITMQ_URL", "RABBITMQ_EXCHANGE",
	"TRACING_ENABLED", "OTLP_ENDPOINT", "TRACING_SAMPLE_RATE",
}

// Load lee .env (si existe) y luego variables de entorno.
func Load() (*Config, error) {
	// .env es opcional; en contenedores todo viene por env.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_NAME", "vet-clinic-api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("AUTH_MODE", AuthModeDevelopment)
	v.SetDefault("JWT_ISSUER", "vet-clinic-api")
	v.SetDefault("JWT_TTL", "744h")
	v.SetDefault("REVOCATION_CACHE_SIZE", 10000)
	v.SetDefault("CLINIC_TIMEZONE", "UTC")
	v.SetDefault("CLINIC_OPEN_HOUR", 0)
	v.SetDefault("CLINIC_CLOSE_HOUR", 24)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("RABBITMQ_ENABLED", false)
	v.SetDefault("RABBITMQ_EXCHANGE", "vet-clinic.events")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_SAMPLE_RATE", 1.0)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Location devuelve la zona horaria del reloj de referencia de la clínica.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.ClinicTimezone)
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("CLINIC_TIMEZONE %q: %w", tz, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeDevelopment, "":
	case AuthModeJWT:
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is %q", AuthModeJWT)
		}
		if c.JWTTTL <= 0 {
			return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
		}
	case AuthModeRemote:
		if strings.TrimSpace(c.AuthRemoteURL) == "" {
			return fmt.Errorf("AUTH_REMOTE_URL is required when AUTH_MODE is %q", AuthModeRemote)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q, %q or %q, got %q",
			AuthModeDevelopment, AuthModeJWT, AuthModeRemote, c.AuthMode)
	}

	if c.ClinicOpenHour < 0 || c.ClinicOpenHour > 24 || c.ClinicCloseHour < 0 || c.ClinicCloseHour > 24 {
		return fmt.Errorf("clinic hours must be within 0..24, got %d..%d", c.ClinicOpenHour, c.ClinicCloseHour)
	}
	if c.ClinicOpenHour > c.ClinicCloseHour {
		return fmt.Errorf("CLINIC_OPEN_HOUR (%d) must not be after CLINIC_CLOSE_HOUR (%d)", c.ClinicOpenHour, c.ClinicCloseHour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.RabbitMQEnabled && strings.TrimSpace(c.RabbitMQURL) == "" {
		return fmt.Errorf("RABBITMQ_URL is required when RABBITMQ_ENABLED is true")
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within 0..1, got %v", c.TracingSampleRate)
	}
	return nil
}
