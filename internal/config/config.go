package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Local model sources.
const (
	LocalModelNone       = "none"
	LocalModelNaiveBayes = "naive_bayes"
	LocalModelService    = "service"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" or "postgres"
		DSN    string `yaml:"dsn"`    // SQLite path or PostgreSQL URL
	} `yaml:"database"`

	Classifier struct {
		LexiconPath        string  `yaml:"lexicon_path"` // empty uses the built-in dictionaries
		ExtremistThreshold float64 `yaml:"extremist_threshold"`
	} `yaml:"classifier"`

	RemoteModel struct {
		Enabled           bool          `yaml:"enabled"`
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		Model             string        `yaml:"model"`
		MaxTokens         int           `yaml:"max_tokens"`
		Temperature       float64       `yaml:"temperature"`
		Timeout           time.Duration `yaml:"timeout"`
		MaxInputChars     int           `yaml:"max_input_chars"`
		RequestsPerMinute int           `yaml:"requests_per_minute"`
		MaxFailures       int           `yaml:"max_failures"`
		Cooldown          time.Duration `yaml:"cooldown"`
		CacheSize         int           `yaml:"cache_size"`
		CacheTTL          time.Duration `yaml:"cache_ttl"`
	} `yaml:"remote_model"`

	LocalModel struct {
		Source     string        `yaml:"source"`
		ModelPath  string        `yaml:"model_path"`
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"local_model"`

	Logging struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from YAML file. A .env file next to the
// working directory is loaded first so ${VAR} references can resolve.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := Default()

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	config.RemoteModel.APIKey = os.ExpandEnv(config.RemoteModel.APIKey)
	config.RemoteModel.BaseURL = os.ExpandEnv(config.RemoteModel.BaseURL)
	config.Database.DSN = os.ExpandEnv(config.Database.DSN)
	config.LocalModel.ServiceURL = os.ExpandEnv(config.LocalModel.ServiceURL)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8003"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "./data/analysis.db"
	}

	if c.Classifier.ExtremistThreshold == 0 {
		c.Classifier.ExtremistThreshold = 0.5
	}

	if c.RemoteModel.Model == "" {
		c.RemoteModel.Model = "Qwen/Qwen3-Coder-480B-A35B-Instruct"
	}
	if c.RemoteModel.MaxTokens == 0 {
		c.RemoteModel.MaxTokens = 500
	}
	if c.RemoteModel.Temperature == 0 {
		c.RemoteModel.Temperature = 0.3
	}
	if c.RemoteModel.Timeout == 0 {
		c.RemoteModel.Timeout = 15 * time.Second
	}
	if c.RemoteModel.MaxInputChars == 0 {
		c.RemoteModel.MaxInputChars = 1000
	}
	if c.RemoteModel.MaxFailures == 0 {
		c.RemoteModel.MaxFailures = 3
	}
	if c.RemoteModel.Cooldown == 0 {
		c.RemoteModel.Cooldown = time.Minute
	}
	if c.RemoteModel.CacheTTL == 0 {
		c.RemoteModel.CacheTTL = time.Hour
	}

	if c.LocalModel.Source == "" {
		c.LocalModel.Source = LocalModelNone
	}
	if c.LocalModel.ModelPath == "" {
		c.LocalModel.ModelPath = "./data/local_model.json"
	}
	if c.LocalModel.Timeout == 0 {
		c.LocalModel.Timeout = 5 * time.Second
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database dsn is required")
	}

	if t := c.Classifier.ExtremistThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config: extremist_threshold %v outside [0,1]", t)
	}

	if c.RemoteModel.Enabled && (c.RemoteModel.BaseURL == "" || c.RemoteModel.APIKey == "") {
		return errors.New("config: remote_model.base_url and api_key are required when remote_model is enabled")
	}
	if c.RemoteModel.Timeout < 0 || c.LocalModel.Timeout < 0 {
		return errors.New("config: timeouts must be positive")
	}

	switch c.LocalModel.Source {
	case LocalModelNone, LocalModelNaiveBayes:
	case LocalModelService:
		if c.LocalModel.ServiceURL == "" {
			return errors.New("config: local_model.service_url is required for source \"service\"")
		}
	default:
		return fmt.Errorf("config: unsupported local_model.source %q", c.LocalModel.Source)
	}
	return nil
}
