package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

// MediaConfig holds the object storage (Cloudflare R2) settings.
// It is passed explicitly to the media service.
type MediaConfig struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicURL       string `yaml:"public_url"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
}

// Enabled reports whether every credential needed to reach the bucket is set.
func (m MediaConfig) Enabled() bool {
	return m.AccountID != "" && m.AccessKeyID != "" && m.SecretAccessKey != "" &&
		m.BucketName != "" && m.PublicURL != ""
}

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	ServerPort string `yaml:"server_port"`

	StoreDriver string `yaml:"store_driver"`

	MongoURI          string `yaml:"mongo_uri"`
	MongoDatabase     string `yaml:"mongo_database"`
	MongoTransactions bool   `yaml:"mongo_transactions"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	JWTSecret    string `yaml:"jwt_secret"`
	TokenMaxAge  int    `yaml:"token_max_age"` // seconds
	CookieSecure bool   `yaml:"cookie_secure"`

	RedisURL string `yaml:"redis_url"`

	Media MediaConfig `yaml:"media"`
}

// Default returns the configuration used before any file or environment
// value is applied.
func Default() *Config {
	return &Config{
		AppEnv:            "production",
		LogLevel:          "info",
		ServerPort:        "8080",
		StoreDriver:       StoreDriverMongo,
		MongoDatabase:     "chirper",
		MongoTransactions: true,
		DBPort:            "5432",
		DBSSLMode:         "require",
		TokenMaxAge:       15 * 24 * 60 * 60,
		CookieSecure:      true,
		Media: MediaConfig{
			MaxUploadBytes: 10 * 1024 * 1024,
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any) and the environment, in that order. A .env file in the
// working directory is loaded into the environment first.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields with every non-empty environment variable.
func (c *Config) applyEnv() error {
	setString(&c.AppEnv, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.ServerPort, "SERVER_PORT")
	setString(&c.StoreDriver, "STORE_DRIVER")

	setString(&c.MongoURI, "MONGO_URI")
	setString(&c.MongoDatabase, "MONGO_DATABASE")

	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.DBSSLMode, "DB_SSLMODE")

	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.RedisURL, "REDIS_URL")

	setString(&c.Media.AccountID, "R2_ACCOUNT_ID")
	setString(&c.Media.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&c.Media.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&c.Media.BucketName, "R2_BUCKET_NAME")
	setString(&c.Media.PublicURL, "R2_PUBLIC_URL")

	if err := setBool(&c.MongoTransactions, "MONGO_TRANSACTIONS"); err != nil {
		return err
	}
	if err := setBool(&c.CookieSecure, "COOKIE_SECURE"); err != nil {
		return err
	}
	if v := os.Getenv("TOKEN_MAX_AGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOKEN_MAX_AGE: %w", err)
		}
		c.TokenMaxAge = n
	}
	if v := os.Getenv("MEDIA_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MEDIA_MAX_UPLOAD_BYTES: %w", err)
		}
		c.Media.MaxUploadBytes = n
	}
	return nil
}

// Validate checks that the settings needed to start are present.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenMaxAge <= 0 {
		return errors.New("TOKEN_MAX_AGE must be positive")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return errors.New("MEDIA_MAX_UPLOAD_BYTES must be positive")
	}

	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo store")
		}
	case StoreDriverPostgres:
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return errors.New("DB_HOST, DB_USER and DB_NAME are required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// TokenTTL is the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenMaxAge) * time.Second
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
