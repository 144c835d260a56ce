package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, "aarogyam", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSOrigins)
	assert.NotEmpty(t, cfg.JWTSecret, "development gets a fallback secret")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:            "production",
			Store:          StoreMongo,
			MongoURI:       "mongodb://db",
			JWTSecret:      "0123456789abcdef0123456789abcdef",
			SessionTTL:     time.Hour,
			StorageBackend: StorageGridFS,
			MaxUploadBytes: 1,
			Timezone:       "UTC",
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"missing mongo uri":   func(c *Config) { c.MongoURI = "" },
		"unknown store":       func(c *Config) { c.Store = "postgres" },
		"gridfs needs mongo":  func(c *Config) { c.Store = StoreMemory },
		"unknown storage":     func(c *Config) { c.StorageBackend = "s3" },
		"short secret":        func(c *Config) { c.JWTSecret = "short" },
		"non positive ttl":    func(c *Config) { c.SessionTTL = 0 },
		"bad timezone":        func(c *Config) { c.Timezone = "Mars/Olympus" },
		"non positive upload": func(c *Config) { c.MaxUploadBytes = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	assert.True(t, c.IsDev())
	c.Env = "production"
	assert.False(t, c.IsDev())
	assert.True(t, c.IsProduction())
}
