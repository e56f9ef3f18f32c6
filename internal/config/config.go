// Package config loads sitepass settings from defaults, an optional YAML
// file, a .env file and SITEPASS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/sitepass/internal/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendXLSX     = "xlsx"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SITEPASS_"

// Config is the full application configuration.
type Config struct {
	Env   string      `yaml:"env"`
	Log   LogConfig   `yaml:"log"`
	HTTP  HTTPConfig  `yaml:"http"`
	Store StoreConfig `yaml:"store"`
	Lock  LockConfig  `yaml:"lock"`
	MCP   MCPConfig   `yaml:"mcp"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"required,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimit       float64       `yaml:"rate_limit" validate:"min=0"`
	RateBurst       int           `yaml:"rate_burst" validate:"min=0"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Backend     string `yaml:"backend" validate:"required,oneof=memory file xlsx redis postgres"`
	Dir         string `yaml:"dir"`
	RedisAddr   string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPass   string `yaml:"redis_password"`
	RedisDB     int    `yaml:"redis_db" validate:"min=0"`
	RedisPrefix string `yaml:"redis_prefix"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=Backend postgres"`
	Breaker     bool   `yaml:"breaker"`
}

// LockConfig controls distributed locking of conversation updates.
type LockConfig struct {
	Distributed bool          `yaml:"distributed"`
	TTL         time.Duration `yaml:"ttl"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	Transport string `yaml:"transport" validate:"omitempty,oneof=stdio sse"`
	BaseURL   string `yaml:"base_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env: "development",
		Log: LogConfig{Level: "info", Format: "text"},
		HTTP: HTTPConfig{
			Addr:            ":10000",
			CORSOrigins:     []string{"*"},
			RateLimit:       10,
			RateBurst:       20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:     BackendXLSX,
			Dir:         ".",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "sitepass:table:",
			Breaker:     true,
		},
		Lock: LockConfig{TTL: 30 * time.Second},
		MCP:  MCPConfig{Transport: "stdio", BaseURL: "http://localhost:8080"},
	}
}

// Load builds the configuration. path may be empty; otherwise the YAML file
// must exist. Variables from a .env file in the working directory never
// override variables already set in the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration rules.
func (c *Config) Validate() error {
	return validator.New().Check("load config", c, "")
}

func applyEnv(c *Config) error {
	c.Env = getEnv("ENV", c.Env)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	if v, ok := lookupEnv("CORS_ORIGINS"); ok {
		c.HTTP.CORSOrigins = splitCSV(v)
	}

	c.Store.Backend = getEnv("STORE", c.Store.Backend)
	c.Store.Dir = getEnv("STORE_DIR", c.Store.Dir)
	c.Store.RedisAddr = getEnv("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPass = getEnv("REDIS_PASSWORD", c.Store.RedisPass)
	c.Store.RedisPrefix = getEnv("REDIS_PREFIX", c.Store.RedisPrefix)
	c.Store.DatabaseURL = getEnv("DATABASE_URL", c.Store.DatabaseURL)

	c.MCP.Transport = getEnv("MCP_TRANSPORT", c.MCP.Transport)
	c.MCP.BaseURL = getEnv("MCP_BASE_URL", c.MCP.BaseURL)

	var err error
	if c.HTTP.RateLimit, err = envFloat("RATE_LIMIT", c.HTTP.RateLimit); err != nil {
		return err
	}
	if c.HTTP.RateBurst, err = envInt("RATE_BURST", c.HTTP.RateBurst); err != nil {
		return err
	}
	if c.Store.RedisDB, err = envInt("REDIS_DB", c.Store.RedisDB); err != nil {
		return err
	}
	if c.Store.Breaker, err = envBool("STORE_BREAKER", c.Store.Breaker); err != nil {
		return err
	}
	if c.Lock.Distributed, err = envBool("LOCK_DISTRIBUTED", c.Lock.Distributed); err != nil {
		return err
	}
	if c.Lock.TTL, err = envDuration("LOCK_TTL", c.Lock.TTL); err != nil {
		return err
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

func getEnv(key, fallback string) string {
	if val, ok := lookupEnv(key); ok {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
