package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/storefront/storefront/internal/model"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Shop     ShopConfig     `mapstructure:"shop"`
	Security SecurityConfig `mapstructure:"security"`
}

// StoreConfig selects where the session-scoped namespace lives
type StoreConfig struct {
	// Backend is one of "memory", "redis" or "postgres"
	Backend string `mapstructure:"backend"`
	// SessionTTL bounds the lifetime of a session namespace. Zero means no expiry.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// SessionID is the session the CLI operates on when no flag is given
	SessionID string `mapstructure:"session_id"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL returns the PostgreSQL connection URL used by the migration tool
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ShopConfig holds the pricing and cart policy
type ShopConfig struct {
	// ShippingThreshold is the subtotal from which shipping is free
	ShippingThreshold int64 `mapstructure:"shipping_threshold"`
	// FlatShippingFee is charged below the threshold
	FlatShippingFee int64 `mapstructure:"flat_shipping_fee"`
	// MaxQuantity caps a single cart line, at most model.MaxQuantity
	MaxQuantity int `mapstructure:"max_quantity"`
	// RejectInactiveLogin makes authentication refuse deactivated accounts
	RejectInactiveLogin bool `mapstructure:"reject_inactive_login"`
	// EnforceLimitOnReorder caps lines merged by reorder at MaxQuantity
	EnforceLimitOnReorder bool `mapstructure:"enforce_limit_on_reorder"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	Password PasswordConfig `mapstructure:"password"`
}

// PasswordConfig holds credential storage configuration
type PasswordConfig struct {
	// Hashing is "plaintext" (demo parity) or "argon2"
	Hashing           string `mapstructure:"hashing"`
	MinLength         int    `mapstructure:"min_length"`
	Argon2Memory      uint32 `mapstructure:"argon2_memory"`
	Argon2Iterations  uint32 `mapstructure:"argon2_iterations"`
	Argon2Parallelism uint8  `mapstructure:"argon2_parallelism"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults alone always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks values that would otherwise surface as confusing runtime errors
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Security.Password.Hashing {
	case "plaintext", "argon2":
	default:
		return fmt.Errorf("unknown password hashing %q", c.Security.Password.Hashing)
	}

	if c.Shop.MaxQuantity < model.MinQuantity || c.Shop.MaxQuantity > model.MaxQuantity {
		return fmt.Errorf("shop.max_quantity must be between %d and %d, got %d",
			model.MinQuantity, model.MaxQuantity, c.Shop.MaxQuantity)
	}
	if c.Shop.ShippingThreshold < 0 || c.Shop.FlatShippingFee < 0 {
		return fmt.Errorf("shipping amounts must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.session_ttl", "24h")
	v.SetDefault("store.session_id", "")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "storefront")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Shop defaults
	v.SetDefault("shop.shipping_threshold", 500000)
	v.SetDefault("shop.flat_shipping_fee", 30000)
	v.SetDefault("shop.max_quantity", 99)
	v.SetDefault("shop.reject_inactive_login", false)
	v.SetDefault("shop.enforce_limit_on_reorder", false)

	// Security defaults
	v.SetDefault("security.password.hashing", "plaintext")
	v.SetDefault("security.password.min_length", 8)
	v.SetDefault("security.password.argon2_memory", 65536)
	v.SetDefault("security.password.argon2_iterations", 3)
	v.SetDefault("security.password.argon2_parallelism", 4)
}
