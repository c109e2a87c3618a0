package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cinefeed/cinefeed/internal/logger"
)

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Seeding pipeline configuration
	Seed SeedConfig `yaml:"seed" json:"seed"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"CINEFEED_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" json:"port" env:"CINEFEED_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" env:"CINEFEED_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" env:"CINEFEED_WRITE_TIMEOUT" default:"30s"`
	EnableCORS   bool          `yaml:"enable_cors" json:"enable_cors" env:"CINEFEED_ENABLE_CORS" default:"true"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Type         string        `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	Host         string        `yaml:"host" json:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port         int           `yaml:"port" json:"port" env:"POSTGRES_PORT" default:"5432"`
	Username     string        `yaml:"username" json:"username" env:"POSTGRES_USER" default:"cinefeed"`
	Password     string        `yaml:"password" json:"-" env:"POSTGRES_PASSWORD"`
	Database     string        `yaml:"database" json:"database" env:"POSTGRES_DB" default:"cinefeed"`
	DataDir      string        `yaml:"data_dir" json:"data_dir" env:"CINEFEED_DATA_DIR" default:"./data"`
	DatabasePath string        `yaml:"database_path" json:"database_path" env:"CINEFEED_DATABASE_PATH"`
	MaxOpenConns int           `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLife  time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" default:"2h"`
	LogQueries   bool          `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES" default:"false"`
}

// SeedConfig holds dataset seeding configuration
type SeedConfig struct {
	MoviesCSV      string `yaml:"movies_csv" json:"movies_csv" env:"CINEFEED_MOVIES_CSV" default:"./data/tmdb_movies.csv"`
	CreditsCSV     string `yaml:"credits_csv" json:"credits_csv" env:"CINEFEED_CREDITS_CSV" default:"./data/tmdb_credits.csv"`
	TopN           int    `yaml:"top_n" json:"top_n" env:"CINEFEED_SEED_TOP_N" default:"1000"`
	MinRatings     int    `yaml:"min_ratings" json:"min_ratings" env:"CINEFEED_SEED_MIN_RATINGS" default:"1"`
	MaxRatings     int    `yaml:"max_ratings" json:"max_ratings" env:"CINEFEED_SEED_MAX_RATINGS" default:"40"`
	MinScore       int    `yaml:"min_score" json:"min_score" env:"CINEFEED_SEED_MIN_SCORE" default:"1"`
	MaxScore       int    `yaml:"max_score" json:"max_score" env:"CINEFEED_SEED_MAX_SCORE" default:"10"`
	RandomSeed     int64  `yaml:"random_seed" json:"random_seed" env:"CINEFEED_SEED_RANDOM_SEED" default:"0"`
	DefaultYear    int    `yaml:"default_year" json:"default_year" env:"CINEFEED_SEED_DEFAULT_YEAR" default:"2000"`
	CastSummaryLen int    `yaml:"cast_summary_len" json:"cast_summary_len" env:"CINEFEED_SEED_CAST_SUMMARY_LEN" default:"3"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"CINEFEED_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" json:"format" env:"CINEFEED_LOG_FORMAT" default:"text"`
}

// Manager manages application configuration with reload support
type Manager struct {
	config     *Config
	configPath string
	watchers   []Watcher
	mu         sync.RWMutex
}

// Watcher is called when configuration changes
type Watcher func(oldConfig, newConfig *Config)

var (
	globalManager *Manager
	configOnce    sync.Once
)

// GetManager returns the global configuration manager instance
func GetManager() *Manager {
	configOnce.Do(func() {
		globalManager = NewManager()
	})
	return globalManager
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config:   DefaultConfig(),
		watchers: make([]Watcher, 0),
	}
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   true,
		},
		Database: DatabaseConfig{
			Type:         "sqlite",
			Host:         "localhost",
			Port:         5432,
			Username:     "cinefeed",
			Database:     "cinefeed",
			DataDir:      "./data",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnMaxLife:  2 * time.Hour,
			LogQueries:   false,
		},
		Seed: SeedConfig{
			MoviesCSV:      "./data/tmdb_movies.csv",
			CreditsCSV:     "./data/tmdb_credits.csv",
			TopN:           1000,
			MinRatings:     1,
			MaxRatings:     40,
			MinScore:       1,
			MaxScore:       10,
			DefaultYear:    2000,
			CastSummaryLen: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func (m *Manager) LoadConfig(configPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := *m.config
	m.configPath = configPath

	// Start with default configuration
	newConfig := DefaultConfig()

	// Load from file if it exists
	if configPath != "" && fileExists(configPath) {
		if err := m.loadFromFile(configPath, newConfig); err != nil {
			return fmt.Errorf("failed to load config from file: %w", err)
		}
		logger.Info("Configuration loaded from file: %s", configPath)
	}

	// Override with environment variables
	if err := loadStructFromEnv(reflect.ValueOf(newConfig).Elem()); err != nil {
		return fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := validateConfig(newConfig); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDerivedConfig(newConfig)

	m.config = newConfig

	// Notify watchers of config change
	for _, watcher := range m.watchers {
		go watcher(&oldConfig, newConfig)
	}

	return nil
}

// GetConfig returns the current configuration (thread-safe)
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modifications
	configCopy := *m.config
	return &configCopy
}

// AddWatcher adds a configuration change watcher
func (m *Manager) AddWatcher(watcher Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, watcher)
}

// ConfigPath returns the path the configuration was loaded from
func (m *Manager) ConfigPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configPath
}

func (m *Manager) loadFromFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	case ".json":
		return json.Unmarshal(data, config)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
}

func loadStructFromEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		// Handle nested structs recursively
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := loadStructFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(duration))
		} else {
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(intVal)
		}
	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatVal)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolVal)
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Type != "sqlite" && config.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type: %s", config.Database.Type)
	}

	if config.Seed.TopN < 1 {
		return fmt.Errorf("invalid seed top_n: %d", config.Seed.TopN)
	}

	if config.Seed.MinRatings < 1 || config.Seed.MaxRatings < config.Seed.MinRatings {
		return fmt.Errorf("invalid rating count bounds: [%d,%d]", config.Seed.MinRatings, config.Seed.MaxRatings)
	}

	if config.Seed.MinScore < 1 || config.Seed.MaxScore < config.Seed.MinScore {
		return fmt.Errorf("invalid rating score bounds: [%d,%d]", config.Seed.MinScore, config.Seed.MaxScore)
	}

	if config.Seed.CastSummaryLen < 0 {
		return fmt.Errorf("invalid cast summary length: %d", config.Seed.CastSummaryLen)
	}

	return nil
}

func applyDerivedConfig(config *Config) {
	// Set derived database path if not explicitly set
	if config.Database.DatabasePath == "" && config.Database.Type == "sqlite" {
		config.Database.DatabasePath = filepath.Join(config.Database.DataDir, "cinefeed.db")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Global convenience functions

// Get returns the current global configuration
func Get() *Config {
	return GetManager().GetConfig()
}

// Load loads configuration from the specified path
func Load(configPath string) error {
	return GetManager().LoadConfig(configPath)
}

// AddWatcher adds a global configuration watcher
func AddWatcher(watcher Watcher) {
	GetManager().AddWatcher(watcher)
}
