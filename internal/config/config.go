// Package config loads process configuration from defaults, an optional
// YAML file and SELFASSESS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/selfassess/internal/cache"
	"github.com/abhisek/selfassess/internal/llm"
	"github.com/abhisek/selfassess/internal/logging"
	"github.com/abhisek/selfassess/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SELFASSESS"

// Config is the full process configuration.
type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Store   StoreConfig    `mapstructure:"store"`
	Cache   cache.Config   `mapstructure:"cache"`
	Storage storage.Config `mapstructure:"storage"`
	Log     logging.Config `mapstructure:"log"`
	LLM     llm.Config     `mapstructure:"llm"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	// Path is the database file. Empty means the default data directory.
	Path string `mapstructure:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache:   cache.Config{Dir: defaultCacheDir()},
		Storage: storage.Config{Backend: storage.BackendSQLite},
		Log:     logging.DefaultConfig(),
		LLM:     llm.DefaultConfig(),
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "selfassess", "badger")
	}
	return filepath.Join(os.TempDir(), "selfassess-cache")
}

// Load reads configuration. An empty path skips the config file. It
// returns the file actually used, if any.
func Load(path string) (Config, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())
	bindProviderEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, "", fmt.Errorf("failed to read configuration: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, v.ConfigFileUsed(), nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.in_memory", d.Cache.InMemory)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.credentials_file", d.Storage.CredentialsFile)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.openai.model", d.LLM.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", d.LLM.OpenAI.BaseURL)
	v.SetDefault("llm.anthropic.model", d.LLM.Anthropic.Model)
	v.SetDefault("llm.gemini.model", d.LLM.Gemini.Model)
	v.SetDefault("llm.openrouter.model", d.LLM.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", d.LLM.OpenRouter.BaseURL)
	v.SetDefault("llm.transcription.provider", d.LLM.Transcription.Provider)
	v.SetDefault("llm.transcription.api_key", d.LLM.Transcription.APIKey)
	v.SetDefault("llm.transcription.model", d.LLM.Transcription.Model)
	v.SetDefault("llm.transcription.timeout", d.LLM.Transcription.Timeout)
}

// bindProviderEnv also accepts the providers' conventional key variables.
func bindProviderEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.openai.api_key", EnvPrefix+"_LLM_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.anthropic.api_key", EnvPrefix+"_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.gemini.api_key", EnvPrefix+"_LLM_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.openrouter.api_key", EnvPrefix+"_LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
}

// Validate checks the sections needed to serve.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if !c.Cache.InMemory && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required unless cache.in_memory is set")
	}
	return c.LLM.Validate()
}
