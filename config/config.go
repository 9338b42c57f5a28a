package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	Browser    BrowserConfig
	Validation ValidationConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Upload     UploadConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level"`
}

// GeminiConfig holds generative model configuration
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	Temperature       float32 `mapstructure:"temperature"`
	TopP              float32 `mapstructure:"top_p"`
	TopK              float32 `mapstructure:"top_k"`
	MaxOutputTokens   int32   `mapstructure:"max_output_tokens"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
}

// BrowserConfig holds headless browser configuration
type BrowserConfig struct {
	BinPath        string        `mapstructure:"bin_path"` // empty downloads a managed Chromium
	Headless       bool          `mapstructure:"headless"`
	UserAgent      string        `mapstructure:"user_agent"`
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"`
	ImageTimeout   time.Duration `mapstructure:"image_timeout"`
}

// ValidationConfig holds alternative URL validation limits
type ValidationConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRedirects int           `mapstructure:"max_redirects"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// UploadConfig holds image upload limits
type UploadConfig struct {
	MaxBytes     int64    `mapstructure:"max_bytes"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// AIEnabled reports whether a model credential is configured
func (c *Config) AIEnabled() bool {
	return c.Gemini.APIKey != ""
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/smartshop/")

	// Environment variable settings
	v.SetEnvPrefix("SMARTSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Legacy variable name used by earlier deployments
	if config.Gemini.APIKey == "" {
		config.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.log_level", "info")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.top_k", 64)
	v.SetDefault("gemini.max_output_tokens", 8192)
	v.SetDefault("gemini.requests_per_minute", 60)

	// Browser defaults
	v.SetDefault("browser.bin_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("browser.extract_timeout", "15s")
	v.SetDefault("browser.image_timeout", "25s")

	// Validation defaults
	v.SetDefault("validation.timeout", "7s")
	v.SetDefault("validation.max_redirects", 5)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Upload defaults
	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/webp"})
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	if config.Browser.ExtractTimeout <= 0 || config.Browser.ImageTimeout <= 0 {
		return fmt.Errorf("browser timeouts must be positive")
	}

	if config.Validation.Timeout <= 0 {
		return fmt.Errorf("validation timeout must be positive, got: %s", config.Validation.Timeout)
	}

	if config.Validation.MaxRedirects < 0 {
		return fmt.Errorf("validation max redirects cannot be negative")
	}

	if config.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}

	return nil
}
