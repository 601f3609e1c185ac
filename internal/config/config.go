package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application level configuration. Values come from an optional
// YAML file (CONFIG_PATH) and are overridden by environment variables.
type Config struct {
	ServerPort  string `yaml:"server_port"`
	SwaggerHost string `yaml:"swagger_host"`
	ResetDB     bool   `yaml:"reset_db"`

	Database DatabaseConfig `yaml:"database"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	RedisPass string `yaml:"redis_password"`

	JWTSecret         string `yaml:"jwt_secret"`
	SessionTokenHours int    `yaml:"session_token_hours"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
	AdminLogin        string `yaml:"admin_login"`
	AdminPassword     string `yaml:"admin_password"`

	Storage StorageConfig `yaml:"storage"`

	AMQPURL            string        `yaml:"amqp_url"`
	QueuePlayingPolicy string        `yaml:"queue_playing_policy"`
	CatalogCacheTTL    time.Duration `yaml:"catalog_cache_ttl"`

	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// StorageConfig selects where uploaded song files are written.
type StorageConfig struct {
	Provider        string `yaml:"provider"`
	Root            string `yaml:"root"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CDNBaseURL      string `yaml:"cdn_base_url"`
}

// Load builds Config from .env, an optional YAML file and the environment,
// with sensible defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		ServerPort: "8080",
		Database: DatabaseConfig{
			Driver:                 "mysql",
			DSN:                    "user:password@tcp(localhost:3306)/karaoke?charset=utf8mb4&parseTime=True&loc=UTC",
			MaxOpenConns:           25,
			MaxIdleConns:           25,
			ConnMaxLifetimeMinutes: 30,
		},
		RedisAddr:          "localhost:6379",
		JWTSecret:          "change-me",
		SessionTokenHours:  24,
		BcryptCost:         10,
		Storage:            StorageConfig{Provider: "local", Root: "./data", Bucket: "files"},
		QueuePlayingPolicy: "none",
		CatalogCacheTTL:    time.Minute,
		RateLimitPerSec:    5,
		RateLimitBurst:     10,
	}
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.ResetDB = getEnvBool("RESET_DB", cfg.ResetDB)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DB_DSN", getEnv("MYSQL_DSN", cfg.Database.DSN))
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MIN", cfg.Database.ConnMaxLifetimeMinutes)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SessionTokenHours = getEnvInt("SESSION_TOKEN_HOURS", cfg.SessionTokenHours)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.AdminLogin = getEnv("ADMIN_LOGIN", cfg.AdminLogin)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)

	cfg.Storage.Provider = getEnv("STORAGE_PROVIDER", cfg.Storage.Provider)
	cfg.Storage.Root = getEnv("STORAGE_ROOT", cfg.Storage.Root)
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.Region = getEnv("S3_REGION", cfg.Storage.Region)
	cfg.Storage.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", cfg.Storage.AccessKeyID)
	cfg.Storage.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", cfg.Storage.SecretAccessKey)
	cfg.Storage.CDNBaseURL = getEnv("CDN_BASE_URL", cfg.Storage.CDNBaseURL)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.QueuePlayingPolicy = getEnv("QUEUE_PLAYING_POLICY", cfg.QueuePlayingPolicy)
	cfg.CatalogCacheTTL = getEnvDuration("CATALOG_CACHE_TTL", cfg.CatalogCacheTTL)

	cfg.RateLimitPerSec = getEnvFloat("RATE_LIMIT_PER_SEC", cfg.RateLimitPerSec)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
}

// SessionTokenTTL is the lifetime of issued session tokens.
func (c *Config) SessionTokenTTL() time.Duration {
	if c.SessionTokenHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTokenHours) * time.Hour
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
