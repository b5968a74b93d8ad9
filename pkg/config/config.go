package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port               string        `yaml:"port"`
	DatabaseURL        string        `yaml:"database_url"`
	AppEnv             string        `yaml:"app_env"`
	BaseURL            string        `yaml:"base_url"`
	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	GoogleRedirectURL  string        `yaml:"google_redirect_url"`
	JWTSecret          string        `yaml:"jwt_secret"`
	JWTTTL             time.Duration `yaml:"jwt_ttl"`
	FrontendURL        string        `yaml:"frontend_url"`
	AllowedEmails      []string      `yaml:"allowed_emails"`
	LogLevel           string        `yaml:"log_level"`

	RedisURL string        `yaml:"redis_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	StorageDriver string `yaml:"storage_driver"` // sql or disk
	StorageDir    string `yaml:"storage_dir"`
	StorageBucket string `yaml:"storage_bucket"`

	GeoIPDatabase string        `yaml:"geoip_db_path"`
	GeoEndpoint   string        `yaml:"geo_endpoint"`
	GeoTimeout    time.Duration `yaml:"geo_timeout"`

	RecorderWorkers int `yaml:"recorder_workers"`
	RecorderBuffer  int `yaml:"recorder_buffer"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// TrustedProxies lists addresses or CIDRs whose forwarding headers are believed.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:              "8080",
		DatabaseURL:       "file:db.sqlite",
		AppEnv:            "local",
		BaseURL:           "http://localhost:8080",
		GoogleRedirectURL: "http://localhost:8080/auth/google/callback",
		JWTSecret:         "secret",
		JWTTTL:            24 * time.Hour,
		FrontendURL:       "http://localhost:8080/dashboard",
		LogLevel:          "info",
		CacheTTL:          time.Hour,
		StorageDriver:     "sql",
		StorageDir:        "data/storage",
		StorageBucket:     "qrs",
		GeoEndpoint:       "https://ipapi.co",
		GeoTimeout:        3 * time.Second,
		RecorderWorkers:   4,
		RecorderBuffer:    1024,
		RateLimitRPS:      30,
		RateLimitBurst:    60,
	}
}

// Load reads .env, then the YAML file named by TRIMLINK_CONFIG (if any),
// then applies environment variables on top.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := Default()
	if path := os.Getenv("TRIMLINK_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.BaseURL = strings.TrimRight(getEnv("BASE_URL", c.BaseURL), "/")
	c.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", c.GoogleClientID)
	c.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", c.GoogleClientSecret)
	c.GoogleRedirectURL = getEnv("GOOGLE_REDIRECT_URL", c.GoogleRedirectURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.FrontendURL = getEnv("FRONTEND_URL", c.FrontendURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.StorageDriver = getEnv("STORAGE_DRIVER", c.StorageDriver)
	c.StorageDir = getEnv("STORAGE_DIR", c.StorageDir)
	c.StorageBucket = getEnv("STORAGE_BUCKET", c.StorageBucket)
	c.GeoIPDatabase = getEnv("GEOIP_DB_PATH", c.GeoIPDatabase)
	c.GeoEndpoint = strings.TrimRight(getEnv("GEO_ENDPOINT", c.GeoEndpoint), "/")

	if v, ok := os.LookupEnv("ALLOWED_EMAILS"); ok {
		c.AllowedEmails = splitList(v)
	}
	if v, ok := os.LookupEnv("TRUSTED_PROXIES"); ok {
		c.TrustedProxies = splitList(v)
	}

	var err error
	if c.JWTTTL, err = getDuration("JWT_TTL", c.JWTTTL); err != nil {
		return err
	}
	if c.CacheTTL, err = getDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.GeoTimeout, err = getDuration("GEO_TIMEOUT", c.GeoTimeout); err != nil {
		return err
	}
	if c.RecorderWorkers, err = getInt("RECORDER_WORKERS", c.RecorderWorkers); err != nil {
		return err
	}
	if c.RecorderBuffer, err = getInt("RECORDER_BUFFER", c.RecorderBuffer); err != nil {
		return err
	}
	if c.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", c.RateLimitBurst); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		if c.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "sql", "disk":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.RecorderWorkers < 1 {
		return fmt.Errorf("recorder workers must be positive, got %d", c.RecorderWorkers)
	}
	if c.RecorderBuffer < 0 {
		return fmt.Errorf("recorder buffer must not be negative, got %d", c.RecorderBuffer)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
