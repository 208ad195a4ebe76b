package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpire)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("APP_PORT", "8080")
	v.Set("JWT_EXPIRE", "12h")
	v.Set("DB_DRIVER", "POSTGRES")
	v.Set("JWT_SECRET", "s3cret")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, 12*time.Hour, cfg.JWTExpire)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"bad expiry", "JWT_EXPIRE", "soon"},
		{"bad cache ttl", "CACHE_TTL", "xd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	_, err := Load(v)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("3d")
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, d)

	d, err = ParseDuration("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = ParseDuration("-1h")
	assert.Error(t, err)
}
