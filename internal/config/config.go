// Package config provides configuration management for colframe operations
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for colframe operations
type Config struct {
	// Parallel Processing Configuration
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"` // Minimum rows to trigger parallel processing
	WorkerPoolSize    int `json:"worker_pool_size" yaml:"worker_pool_size"`     // Number of worker goroutines (0 = auto-detect)

	// Mutation Configuration
	VerifyMutations bool `json:"verify_mutations" yaml:"verify_mutations"` // Re-check frame invariants after every committed mutation

	// Debugging Configuration
	LogLevel          string `json:"log_level" yaml:"log_level"`                   // debug, info, warn, error
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // Enable metrics collection

	// CSV Defaults
	CSV CSVConfig `json:"csv" yaml:"csv"`
}

// CSVConfig holds the defaults applied to CSV readers and writers. Characters
// are single-rune strings so they survive YAML and environment round trips.
type CSVConfig struct {
	Separator string `json:"separator" yaml:"separator"`
	Quote     string `json:"quote" yaml:"quote"`
	Escape    string `json:"escape" yaml:"escape"`
	NoHeader  bool   `json:"no_header" yaml:"no_header"`
}

// SystemInfo contains system information for configuration validation
type SystemInfo struct {
	CPUCount     int
	Architecture string
	OSType       string
}

// ConfigValidator validates and provides recommendations for configuration
type ConfigValidator struct {
	systemInfo SystemInfo
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultParallelThreshold = 1000
	DefaultLogLevel          = "info"
	DefaultSeparator         = ","
	DefaultQuote             = `"`
	DefaultEscape            = `\`
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect

		VerifyMutations: false,

		LogLevel:          DefaultLogLevel,
		MetricsCollection: false,

		CSV: CSVConfig{
			Separator: DefaultSeparator,
			Quote:     DefaultQuote,
			Escape:    DefaultEscape,
		},
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.ParallelThreshold <= 0 {
		return fmt.Errorf("ParallelThreshold must be positive, got %d", c.ParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	if !logLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("LogLevel must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	for name, value := range map[string]string{
		"CSV.Separator": c.CSV.Separator,
		"CSV.Quote":     c.CSV.Quote,
		"CSV.Escape":    c.CSV.Escape,
	} {
		if utf8.RuneCountInString(value) != 1 {
			return fmt.Errorf("%s must be a single character, got %q", name, value)
		}
	}

	if c.CSV.Separator == c.CSV.Quote {
		return fmt.Errorf("CSV.Separator and CSV.Quote must differ, both are %q", c.CSV.Separator)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.CSV.Separator == "" {
		c.CSV.Separator = defaults.CSV.Separator
	}
	if c.CSV.Quote == "" {
		c.CSV.Quote = defaults.CSV.Quote
	}
	if c.CSV.Escape == "" {
		c.CSV.Escape = defaults.CSV.Escape
	}

	// Boolean fields keep their zero value; every boolean is phrased so that
	// false is the default.

	return c
}

// Workers returns the effective worker count, resolving 0 to the CPU count
func (c Config) Workers() int {
	if c.WorkerPoolSize > 0 {
		return c.WorkerPoolSize
	}
	return runtime.NumCPU()
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from COLFRAME_* environment variables on top of the defaults
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv("COLFRAME_PARALLEL_THRESHOLD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ParallelThreshold = parsed
		}
	}

	if val := os.Getenv("COLFRAME_WORKER_POOL_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.WorkerPoolSize = parsed
		}
	}

	if val := os.Getenv("COLFRAME_VERIFY_MUTATIONS"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerifyMutations = parsed
		}
	}

	if val := os.Getenv("COLFRAME_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	if val := os.Getenv("COLFRAME_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	if val := os.Getenv("COLFRAME_CSV_SEPARATOR"); val != "" {
		config.CSV.Separator = val
	}

	if val := os.Getenv("COLFRAME_CSV_QUOTE"); val != "" {
		config.CSV.Quote = val
	}

	if val := os.Getenv("COLFRAME_CSV_ESCAPE"); val != "" {
		config.CSV.Escape = val
	}

	if val := os.Getenv("COLFRAME_CSV_NO_HEADER"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.CSV.NoHeader = parsed
		}
	}

	return config
}

// GetSystemInfo returns system information for configuration validation
func GetSystemInfo() SystemInfo {
	return SystemInfo{
		CPUCount:     runtime.NumCPU(),
		Architecture: runtime.GOARCH,
		OSType:       runtime.GOOS,
	}
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		systemInfo: GetSystemInfo(),
	}
}

// Validate validates a configuration and provides recommendations
func (cv *ConfigValidator) Validate(config Config) (Config, []string, error) {
	var warnings []string
	validated := config

	if err := config.Validate(); err != nil {
		return Config{}, warnings, err
	}

	if config.WorkerPoolSize > cv.systemInfo.CPUCount*2 {
		warnings = append(warnings,
			fmt.Sprintf("Worker pool size (%d) exceeds 2x CPU count (%d), may cause contention",
				config.WorkerPoolSize, cv.systemInfo.CPUCount))
	}

	if config.CSV.Escape == config.CSV.Separator {
		warnings = append(warnings,
			fmt.Sprintf("CSV escape %q equals the separator, separators can never be escaped", config.CSV.Escape))
	}

	if config.WorkerPoolSize == 0 {
		validated.WorkerPoolSize = cv.systemInfo.CPUCount
		warnings = append(warnings,
			fmt.Sprintf("Auto-setting worker pool size to %d (CPU count)",
				validated.WorkerPoolSize))
	}

	return validated, warnings, nil
}
