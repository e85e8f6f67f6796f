package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Clerk    ClerkConfig    `mapstructure:"clerk"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	StaticDir      string `mapstructure:"static_dir"`
	InternalSecret string `mapstructure:"internal_secret"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	MaxFetchBytes  int64  `mapstructure:"max_fetch_bytes"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// DatabaseConfig contains connection options for PostgreSQL.
// URL wins over the discrete fields when set (managed Postgres hands out a URL).
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig is optional; an empty Addr disables the daily quotas.
type RedisConfig struct {
	Addr           string `mapstructure:"addr"`
	UploadsPerDay  int    `mapstructure:"uploads_per_day"`
	AnalysesPerDay int    `mapstructure:"analyses_per_day"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Region           string `mapstructure:"region"`
	Bucket           string `mapstructure:"bucket"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
	// PublicBaseURL prefixes object keys to form the link stored on a resume.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// ClerkConfig holds the identity provider credentials.
type ClerkConfig struct {
	SecretKey         string   `mapstructure:"secret_key"`
	JWTKey            string   `mapstructure:"jwt_key"`
	AuthorizedParties []string `mapstructure:"authorized_parties"`
}

// GeminiConfig configures the completion service.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ClamdConfig is optional; an empty Addr disables upload scanning.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Clerk.AuthorizedParties = normalizeParties(cfg.Clerk.AuthorizedParties)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.static_dir", "client/dist")
	v.SetDefault("api.max_upload_bytes", 10<<20)
	v.SetDefault("api.max_fetch_bytes", 20<<20)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "require")
	v.SetDefault("minio.use_ssl", true)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("clerk.authorized_parties", []string{"https://example.com", "http://localhost", "http://127.0.0.1"})
	v.SetDefault("gemini.model", "gemini-2.0-flash")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                 "API_PORT",
		"api.static_dir":           "WEB_DIST_DIR",
		"api.internal_secret":      "INTERNAL_API_SECRET",
		"api.max_upload_bytes":     "UPLOAD_MAX_BYTES",
		"api.max_fetch_bytes":      "FETCH_MAX_BYTES",
		"log.json":                 "LOG_JSON",
		"log.debug":                "LOG_DEBUG",
		"database.url":             "DATABASE_URL",
		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.name":            "POSTGRES_DB",
		"database.user":            "POSTGRES_USER",
		"database.password":        "POSTGRES_PASSWORD",
		"database.sslmode":         "DATABASE_SSLMODE",
		"redis.addr":               "REDIS_ADDR",
		"redis.uploads_per_day":    "UPLOADS_PER_DAY",
		"redis.analyses_per_day":   "ANALYSES_PER_DAY",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.region":             "MINIO_REGION",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.bucket_lookup":      "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"minio.public_base_url":    "MINIO_PUBLIC_BASE_URL",
		"clerk.secret_key":         "CLERK_SECRET_KEY",
		"clerk.jwt_key":            "CLERK_JWT_KEY",
		"clerk.authorized_parties": "CLERK_AUTHORIZED_PARTIES",
		"gemini.api_key":           "GEMINI_API_KEY",
		"gemini.model":             "GEMINI_MODEL",
		"clamd.addr":               "CLAMD_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// normalizeParties accepts both a list and a single comma separated value.
func normalizeParties(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.MaxUploadBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	if cfg.Database.URL == "" {
		if cfg.Database.Host == "" {
			return errors.New("database url or host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.Password == "" {
			return errors.New("database password is required")
		}
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Clerk.SecretKey == "" {
		return errors.New("clerk secret key is required")
	}
	if cfg.Clerk.JWTKey == "" {
		return errors.New("clerk jwt key is required")
	}
	if len(cfg.Clerk.AuthorizedParties) == 0 {
		return errors.New("at least one authorized party is required")
	}
	if cfg.Gemini.APIKey == "" {
		return errors.New("gemini api key is required")
	}
	if cfg.Redis.UploadsPerDay < 0 || cfg.Redis.AnalysesPerDay < 0 {
		return errors.New("daily quotas must not be negative")
	}
	return nil
}
