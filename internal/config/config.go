package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	StorageLocal  = "local"
	StorageGridFS = "gridfs"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	Store          string        `mapstructure:"STORE"`
	MongoURI       string        `mapstructure:"MONGO_URI"`
	MongoDatabase  string        `mapstructure:"MONGO_DATABASE"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure   bool          `mapstructure:"COOKIE_SECURE"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST"`
	StorageBackend string        `mapstructure:"STORAGE_BACKEND"`
	UploadDir      string        `mapstructure:"UPLOAD_DIR"`
	MaxUploadBytes int64         `mapstructure:"MAX_UPLOAD_BYTES"`
	CertificateDir string        `mapstructure:"CERTIFICATE_DIR"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	TextbeltURL    string        `mapstructure:"TEXTBELT_URL"`
	TextbeltAPIKey string        `mapstructure:"TEXTBELT_API_KEY"`
}

var keys = []string{
	"PORT", "ENV", "STORE", "MONGO_URI", "MONGO_DATABASE", "JWT_SECRET", "SESSION_TTL",
	"COOKIE_SECURE", "BCRYPT_COST", "STORAGE_BACKEND", "UPLOAD_DIR", "MAX_UPLOAD_BYTES",
	"CERTIFICATE_DIR", "TIMEZONE", "CORS_ORIGINS", "TEXTBELT_URL", "TEXTBELT_API_KEY",
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("MONGO_DATABASE", "aarogyam")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("STORAGE_BACKEND", StorageLocal)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("CERTIFICATE_DIR", "certificates")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("CORS_ORIGINS", "http://localhost:8080")
	v.SetDefault("TEXTBELT_URL", "https://textbelt.com/text")

	// Bind explicitly so Unmarshal sees env-only keys.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.Store = strings.ToLower(cfg.Store)
	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)

	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = "aarogyam-development-secret"
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves TIMEZONE. Day boundaries and slot times are evaluated in it.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE is %q", StoreMongo)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store)
	}

	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for local storage")
		}
	case StorageGridFS:
		if c.Store != StoreMongo {
			return fmt.Errorf("STORAGE_BACKEND %q requires STORE %q", StorageGridFS, StoreMongo)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageLocal, StorageGridFS, c.StorageBackend)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}
