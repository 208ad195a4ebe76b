package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devJWTSecret = "dev_jwt_secret_change_me"

// Config holds every runtime setting of the API.
type Config struct {
	AppPort       string
	AppEnv        string
	DBDriver      string
	DatabaseDSN   string
	JWTSecret     string
	JWTExpire     time.Duration
	RabbitMQURL   string
	RabbitMQQueue string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	UploadDir     string
	MaxUploadMB   int
	CORSOrigins   string
	AuthRateLimit int
	SeedData      bool
}

// IsProduction reports whether the API runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads configuration from the environment using v. A nil v uses a
// fresh viper instance.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "marketplace.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRE", "7d")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "marketplace_events")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_MB", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("SEED_DATA", false)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:       v.GetString("APP_PORT"),
		AppEnv:        strings.ToLower(v.GetString("APP_ENV")),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RabbitMQQueue: v.GetString("RABBITMQ_QUEUE"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		MaxUploadMB:   v.GetInt("MAX_UPLOAD_MB"),
		CORSOrigins:   v.GetString("CORS_ORIGINS"),
		AuthRateLimit: v.GetInt("AUTH_RATE_LIMIT"),
		SeedData:      v.GetBool("SEED_DATA"),
	}

	if !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	var err error
	if cfg.JWTExpire, err = ParseDuration(v.GetString("JWT_EXPIRE")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}
	if cfg.CacheTTL, err = ParseDuration(v.GetString("CACHE_TTL")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 5
	}
	return cfg, nil
}

// ParseDuration accepts Go duration strings plus a whole-day form such as "7d".
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("bad day count %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}

// Origins splits CORS_ORIGINS into its trimmed entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
