package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string
	CORSOrigins []string
	ResetDB     bool

	Geocoding GeocodingConfig
	AI        AIConfig
	AMQP      AMQPConfig

	Timezone       string
	ProxyRateLimit float64
	SeedSource     string
}

// GeocodingConfig points at the Nominatim instance used by the geocoding proxy.
type GeocodingConfig struct {
	BaseURL   string
	UserAgent string
}

// AIConfig points at the AI microservice.
type AIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	LinguisticTimeout time.Duration
}

// AMQPConfig configures the event bus. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
	AIQueue  string
}

// Load builds Config from environment (and an optional app.env file) with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)
	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		ServerPort:  v.GetString("SERVER_PORT"),
		MySQLDSN:    v.GetString("MYSQL_DSN"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisDB:     v.GetInt("REDIS_DB"),
		RedisPass:   v.GetString("REDIS_PASSWORD"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		SwaggerHost: v.GetString("SWAGGER_HOST"),
		CORSOrigins: parseList(v.GetString("CORS_ORIGINS")),
		ResetDB:     v.GetBool("RESET_DB"),
		Geocoding: GeocodingConfig{
			BaseURL:   strings.TrimRight(v.GetString("NOMINATIM_URL"), "/"),
			UserAgent: v.GetString("GEOCODING_USER_AGENT"),
		},
		AI: AIConfig{
			BaseURL:           strings.TrimRight(v.GetString("AI_SERVICE_URL"), "/"),
			Timeout:           v.GetDuration("AI_TIMEOUT"),
			LinguisticTimeout: v.GetDuration("AI_LINGUISTIC_TIMEOUT"),
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
			AIQueue:  v.GetString("AMQP_AI_QUEUE"),
		},
		Timezone:       v.GetString("TIMEZONE"),
		ProxyRateLimit: v.GetFloat64("PROXY_RATE_LIMIT"),
		SeedSource:     v.GetString("SEED_SCHEDULES_SOURCE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/swachhsetu?charset=utf8mb4&parseTime=True&loc=UTC")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODING_USER_AGENT", "SwachhSetu/1.0 (+https://swachhsetu.in)")
	v.SetDefault("AI_SERVICE_URL", "http://localhost:8000")
	v.SetDefault("AI_TIMEOUT", 30*time.Second)
	v.SetDefault("AI_LINGUISTIC_TIMEOUT", 60*time.Second)
	v.SetDefault("AMQP_EXCHANGE", "swachhsetu")
	v.SetDefault("AMQP_AI_QUEUE", "swachhsetu-ai-progress")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("PROXY_RATE_LIMIT", 2.0)
	v.SetDefault("SEED_SCHEDULES_SOURCE", "./seed/garbage_schedules.json")
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// Validate rejects configurations that cannot run outside development.
func (c *Config) Validate() error {
	if c.MySQLDSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !c.IsDevelopment() && c.JWTSecret == "change-me" {
		return fmt.Errorf("JWT_SECRET must be set in %s", c.Environment)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.ProxyRateLimit <= 0 {
		return fmt.Errorf("PROXY_RATE_LIMIT must be positive")
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
