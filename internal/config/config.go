package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/docrag/config.yaml"

// Environment variables read on top of the YAML file. Credentials are only
// ever taken from the environment (or a .env file), never from YAML.
const (
	EnvAPIKey       = "DOCRAG_LLM_API_KEY"
	EnvJDPGUsername = "DOCRAG_JDPG_USERNAME"
	EnvJDPGPassword = "DOCRAG_JDPG_PASSWORD"
	EnvLogLevel     = "DOCRAG_LOG_LEVEL"
)

// Config holds all docrag configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	LLM        LLMConfig        `yaml:"llm"`
	Sources    SourcesConfig    `yaml:"sources"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	HTTP       HTTPConfig       `yaml:"http"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type LLMConfig struct {
	Provider   string `yaml:"provider"` // "azure" or "openai"
	BaseURL    string `yaml:"base_url"` // Azure endpoint or OpenAI-compatible base URL
	Model      string `yaml:"model"`    // model name, or deployment name for Azure
	APIVersion string `yaml:"api_version"`
	APIKey     string `yaml:"-"`
}

type SourcesConfig struct {
	ZaPF ListingConfig `yaml:"zapf"`
	JDPG ListingConfig `yaml:"jdpg"`
}

type ListingConfig struct {
	ListURL  string `yaml:"list_url"`
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

type RetrievalConfig struct {
	DefaultDocs     int  `yaml:"default_docs"`
	PerKeywordLimit int  `yaml:"per_keyword_limit"`
	TrimKeywords    bool `yaml:"trim_keywords"`
}

type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type HTTPConfig struct {
	TimeoutSec int    `yaml:"timeout_sec"`
	UserAgent  string `yaml:"user_agent"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"` // "development" or "production"
}

// DatabasePath returns the SQLite file location with ~ expanded.
func (c *Config) DatabasePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// Validate rejects configurations the tool cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Storage.SQLiteFile == "" {
		errs = append(errs, errors.New("storage.sqlite_file must not be empty"))
	}
	switch c.LLM.Provider {
	case "azure":
		if c.LLM.BaseURL == "" {
			errs = append(errs, errors.New("llm.base_url is required for the azure provider"))
		}
	case "openai":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of azure, openai", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model must not be empty"))
	}
	if c.Retrieval.DefaultDocs < 0 {
		errs = append(errs, errors.New("retrieval.default_docs must not be negative"))
	}
	if c.Retrieval.PerKeywordLimit <= 0 {
		errs = append(errs, errors.New("retrieval.per_keyword_limit must be positive"))
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 1 {
		errs = append(errs, errors.New("generation.temperature must be between 0 and 1"))
	}
	if c.Generation.MaxTokens <= 0 {
		errs = append(errs, errors.New("generation.max_tokens must be positive"))
	}
	if c.HTTP.TimeoutSec <= 0 {
		errs = append(errs, errors.New("http.timeout_sec must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads a YAML config file at path and merges it with defaults, then
// applies environment overrides.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// ApplyEnv copies secrets and overrides from the environment into cfg.
func ApplyEnv(cfg *Config) {
	cfg.LLM.APIKey = firstEnv(EnvAPIKey, "AZURE_OPENAI_API_KEY", "OPENAI_API_KEY")
	cfg.Sources.JDPG.Username = os.Getenv(EnvJDPGUsername)
	cfg.Sources.JDPG.Password = os.Getenv(EnvJDPGPassword)
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		ApplyEnv(cfg)
		return cfg, nil
	}

	return Load(path)
}
