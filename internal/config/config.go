package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Agent providers.
const (
	ProviderHTTP   = "http"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverGCS    = "gcs"
	DriverMemory = "memory"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Agent   AgentConfig   `yaml:"agent"`
	Storage StorageConfig `yaml:"storage"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Server  ServerConfig  `yaml:"server"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

type AgentConfig struct {
	Provider    string        `yaml:"provider"`
	ID          string        `yaml:"id"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	// HistoryTurns bounds the conversation replayed to local models.
	HistoryTurns int `yaml:"history_turns"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
	// Bucket and Prefix locate objects for the gcs driver.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// CredentialsFile is an optional service account key for gcs.
	CredentialsFile string `yaml:"credentials_file"`
	// WriteBehind queues writes on a background worker when > 0.
	WriteBehind int `yaml:"write_behind"`
}

type SpotifyConfig struct {
	Enabled           bool    `yaml:"enabled"`
	ClientID          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret"`
	Market            string  `yaml:"market"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MinScore          float64 `yaml:"min_score"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path, applies defaults and environment
// overrides. An empty path skips the file. A .env file in the working
// directory is loaded first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Agent.Provider == "" {
		c.Agent.Provider = ProviderOllama
	}
	if c.Agent.ID == "" {
		c.Agent.ID = "music-discovery"
	}
	if c.Agent.BaseURL == "" && c.Agent.Provider == ProviderOllama {
		c.Agent.BaseURL = "http://localhost:11434"
	}
	if c.Agent.Model == "" {
		switch c.Agent.Provider {
		case ProviderOllama:
			c.Agent.Model = "llama3"
		case ProviderGemini:
			c.Agent.Model = "gemini-2.0-flash"
		}
	}
	if c.Agent.Timeout == 0 {
		c.Agent.Timeout = 60 * time.Second
	}
	if c.Agent.MaxAttempts == 0 {
		c.Agent.MaxAttempts = 1
	}
	if c.Agent.HistoryTurns == 0 {
		c.Agent.HistoryTurns = 20
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "musicmate.db"
	}

	if c.Spotify.Market == "" {
		c.Spotify.Market = "US"
	}
	if c.Spotify.RequestsPerSecond == 0 {
		c.Spotify.RequestsPerSecond = 5
	}
	if c.Spotify.MinScore == 0 {
		c.Spotify.MinScore = 0.85
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// applyEnv lets the environment override file values. It runs before
// applyDefaults so provider-dependent defaults see the final provider.
func (c *Config) applyEnv() error {
	setString(&c.Log.Level, "MUSICMATE_LOG_LEVEL")
	setString(&c.Agent.Provider, "MUSICMATE_AGENT_PROVIDER")
	setString(&c.Agent.ID, "MUSICMATE_AGENT_ID")
	setString(&c.Agent.BaseURL, "MUSICMATE_AGENT_URL")
	setString(&c.Agent.Model, "MUSICMATE_AGENT_MODEL")
	setString(&c.Agent.APIKey, "AGENT_API_KEY")
	setString(&c.Storage.Driver, "MUSICMATE_STORAGE_DRIVER")
	setString(&c.Storage.Path, "MUSICMATE_DB_PATH")
	setString(&c.Storage.Bucket, "MUSICMATE_GCS_BUCKET")
	setString(&c.Server.Addr, "MUSICMATE_ADDR")
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")

	if c.Agent.Provider == ProviderOllama || c.Agent.Provider == "" {
		setString(&c.Agent.BaseURL, "OLLAMA_HOST")
	}
	if c.Agent.Provider == ProviderGemini {
		setString(&c.Agent.APIKey, "GEMINI_API_KEY")
	}

	if v := os.Getenv("MUSICMATE_AGENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: MUSICMATE_AGENT_TIMEOUT: %w", err)
		}
		c.Agent.Timeout = d
	}
	if v := os.Getenv("MUSICMATE_SPOTIFY_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: MUSICMATE_SPOTIFY_ENABLED: %w", err)
		}
		c.Spotify.Enabled = b
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	switch c.Agent.Provider {
	case ProviderHTTP:
		if c.Agent.BaseURL == "" {
			errs = append(errs, errors.New("agent.base_url is required for the http provider"))
		}
	case ProviderOllama:
	case ProviderGemini:
		if c.Agent.APIKey == "" {
			errs = append(errs, errors.New("agent.api_key (or GEMINI_API_KEY) is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("agent.provider %q is not one of http, ollama, gemini", c.Agent.Provider))
	}
	if c.Agent.MaxAttempts < 1 {
		errs = append(errs, errors.New("agent.max_attempts must be at least 1"))
	}
	if c.Agent.Timeout < 0 {
		errs = append(errs, errors.New("agent.timeout must not be negative"))
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	case DriverGCS:
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for the gcs driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of sqlite, gcs, memory", c.Storage.Driver))
	}
	if c.Storage.WriteBehind < 0 {
		errs = append(errs, errors.New("storage.write_behind must not be negative"))
	}

	if c.Spotify.Enabled && (c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "") {
		errs = append(errs, errors.New("spotify.client_id and spotify.client_secret are required when spotify is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
