// Package config defines the pictext configuration, loadable from YAML
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete configuration for the pictext
// application. It covers all commands (serve, image, batch) and is
// loaded from configuration files, environment variables, and flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Recognition engines
	Engines EnginesConfig `mapstructure:"engines" yaml:"engines" json:"engines"`

	// Result cache
	Cache CacheConfig `mapstructure:"cache" yaml:"cache" json:"cache"`

	// Upload limits
	Upload UploadConfig `mapstructure:"upload" yaml:"upload" json:"upload"`

	// Image preprocessing
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`

	// Batch processing
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// EnginesConfig groups the two recognition backends.
type EnginesConfig struct {
	Vision    VisionConfig    `mapstructure:"vision" yaml:"vision" json:"vision"`
	Tesseract TesseractConfig `mapstructure:"tesseract" yaml:"tesseract" json:"tesseract"`
}

// VisionConfig contains Cloud Vision settings. With both credential
// fields empty, application default credentials are used.
type VisionConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file" json:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json" yaml:"credentials_json" json:"-"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// TesseractConfig contains local Tesseract settings.
type TesseractConfig struct {
	Language   string `mapstructure:"language" yaml:"language" json:"language"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// CacheConfig contains result cache settings. Backend selects between
// the in-process store ("memory") and Redis ("redis").
type CacheConfig struct {
	Enabled    bool        `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Backend    string      `mapstructure:"backend" yaml:"backend" json:"backend"`
	TTLSeconds int         `mapstructure:"ttl_seconds" yaml:"ttl_seconds" json:"ttl_seconds"`
	MaxEntries int         `mapstructure:"max_entries" yaml:"max_entries" json:"max_entries"`
	Namespace  string      `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
	Redis      RedisConfig `mapstructure:"redis" yaml:"redis" json:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string `mapstructure:"password" yaml:"password" json:"-"`
	DB       int    `mapstructure:"db" yaml:"db" json:"db"`
	TLS      bool   `mapstructure:"tls" yaml:"tls" json:"tls"`
}

// UploadConfig contains upload limit settings.
type UploadConfig struct {
	MaxFileSize  int64 `mapstructure:"max_file_size" yaml:"max_file_size" json:"max_file_size"`
	MinFileSize  int64 `mapstructure:"min_file_size" yaml:"min_file_size" json:"min_file_size"`
	MaxBatchSize int   `mapstructure:"max_batch_size" yaml:"max_batch_size" json:"max_batch_size"`
}

// PreprocessConfig contains image enhancement settings.
type PreprocessConfig struct {
	MinDimension int `mapstructure:"min_dimension" yaml:"min_dimension" json:"min_dimension"`
	MaxWidth     int `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string `mapstructure:"host" yaml:"host" json:"host"`
	Port               int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin         string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec         int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" json:"shutdown_timeout_sec"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Engines: EnginesConfig{
			Vision: VisionConfig{
				Enabled:    true,
				TimeoutSec: 25,
			},
			Tesseract: TesseractConfig{
				Language:   "eng",
				TimeoutSec: 20,
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    "memory",
			TTLSeconds: 3600,
			MaxEntries: 100,
			Namespace:  "pictext:ocr",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Upload: UploadConfig{
			MaxFileSize:  10 * 1024 * 1024,
			MinFileSize:  100,
			MaxBatchSize: 10,
		},
		Preprocess: PreprocessConfig{
			MinDimension: 300,
			MaxWidth:     2000,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Host:               "localhost",
			Port:               8080,
			CORSOrigin:         "*",
			TimeoutSec:         60,
			ShutdownTimeoutSec: 10,
		},
	}
}

// VisionTimeout returns the primary engine timeout as a duration.
func (c *Config) VisionTimeout() time.Duration {
	return time.Duration(c.Engines.Vision.TimeoutSec) * time.Second
}

// TesseractTimeout returns the secondary engine timeout as a duration.
func (c *Config) TesseractTimeout() time.Duration {
	return time.Duration(c.Engines.Tesseract.TimeoutSec) * time.Second
}

// CacheTTL returns the cache entry lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, c.Cache.Backend) {
		return fmt.Errorf("invalid cache backend: %s (must be one of: %s)", c.Cache.Backend, strings.Join(validBackends, ", "))
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache backend is redis but no redis address is configured")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("invalid cache ttl: %d (must be positive)", c.Cache.TTLSeconds)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("invalid cache max entries: %d (must be positive)", c.Cache.MaxEntries)
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("invalid max file size: %d (must be positive)", c.Upload.MaxFileSize)
	}
	if c.Upload.MinFileSize < 0 || c.Upload.MinFileSize >= c.Upload.MaxFileSize {
		return fmt.Errorf("invalid min file size: %d (must be non-negative and below max_file_size)", c.Upload.MinFileSize)
	}
	if c.Upload.MaxBatchSize <= 0 {
		return fmt.Errorf("invalid max batch size: %d (must be positive)", c.Upload.MaxBatchSize)
	}

	if c.Preprocess.MinDimension <= 0 {
		return fmt.Errorf("invalid preprocess min dimension: %d (must be positive)", c.Preprocess.MinDimension)
	}
	if c.Preprocess.MaxWidth < c.Preprocess.MinDimension {
		return fmt.Errorf("invalid preprocess max width: %d (must be at least min_dimension)", c.Preprocess.MaxWidth)
	}

	if c.Engines.Vision.TimeoutSec <= 0 {
		return fmt.Errorf("invalid vision timeout: %d (must be positive)", c.Engines.Vision.TimeoutSec)
	}
	if c.Engines.Tesseract.TimeoutSec <= 0 {
		return fmt.Errorf("invalid tesseract timeout: %d (must be positive)", c.Engines.Tesseract.TimeoutSec)
	}
	if c.Engines.Tesseract.Language == "" {
		return fmt.Errorf("tesseract language must not be empty")
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
