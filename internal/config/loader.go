package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "pictext"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "PICTEXT"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader on the global viper
// instance, so cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and
// defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/pictext")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "pictext"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "pictext"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("engines.vision.enabled", defaults.Engines.Vision.Enabled)
	l.v.SetDefault("engines.vision.credentials_file", defaults.Engines.Vision.CredentialsFile)
	l.v.SetDefault("engines.vision.credentials_json", defaults.Engines.Vision.CredentialsJSON)
	l.v.SetDefault("engines.vision.timeout_sec", defaults.Engines.Vision.TimeoutSec)
	l.v.SetDefault("engines.tesseract.language", defaults.Engines.Tesseract.Language)
	l.v.SetDefault("engines.tesseract.timeout_sec", defaults.Engines.Tesseract.TimeoutSec)

	l.v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	l.v.SetDefault("cache.backend", defaults.Cache.Backend)
	l.v.SetDefault("cache.ttl_seconds", defaults.Cache.TTLSeconds)
	l.v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)
	l.v.SetDefault("cache.namespace", defaults.Cache.Namespace)
	l.v.SetDefault("cache.redis.addr", defaults.Cache.Redis.Addr)
	l.v.SetDefault("cache.redis.password", defaults.Cache.Redis.Password)
	l.v.SetDefault("cache.redis.db", defaults.Cache.Redis.DB)
	l.v.SetDefault("cache.redis.tls", defaults.Cache.Redis.TLS)

	l.v.SetDefault("upload.max_file_size", defaults.Upload.MaxFileSize)
	l.v.SetDefault("upload.min_file_size", defaults.Upload.MinFileSize)
	l.v.SetDefault("upload.max_batch_size", defaults.Upload.MaxBatchSize)

	l.v.SetDefault("preprocess.min_dimension", defaults.Preprocess.MinDimension)
	l.v.SetDefault("preprocess.max_width", defaults.Preprocess.MaxWidth)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout_sec", defaults.Server.ShutdownTimeoutSec)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "pictext"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "pictext"))
	}

	paths = append(paths, "/etc/pictext")

	return paths
}
