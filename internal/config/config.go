// Package config loads the kernel's process-scoped configuration
// surface (spec.md §6): price scenario, per-agent and coordinator
// deadlines, LLM provider settings, and the forecaster/historical
// dataset locations.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	PriceScenario string `mapstructure:"price_scenario"`

	AgentDeadlineMS       int `mapstructure:"agent_deadline_ms"`
	CoordinatorDeadlineMS int `mapstructure:"coordinator_deadline_ms"`

	LLM LLMConfig `mapstructure:"llm"`

	Forecaster ForecasterConfig `mapstructure:"forecaster"`
	Historical HistoricalConfig `mapstructure:"historical"`
	Server     ServerConfig     `mapstructure:"server"`
}

// LLMConfig configures the LLM client the agents and coordinator use.
type LLMConfig struct {
	Provider       string  `mapstructure:"provider"`
	Model          string  `mapstructure:"model"`
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Temperature    float32 `mapstructure:"temperature"`
}

// ForecasterConfig locates the pre-trained inflow model artifact.
type ForecasterConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

// HistoricalConfig selects and configures the historical dataset backend.
type HistoricalConfig struct {
	Backend  string         `mapstructure:"backend"` // "arangodb" | "memory"
	ArangoDB ArangoDBConfig `mapstructure:"arangodb"`
}

// ArangoDBConfig is only consulted when Backend == "arangodb".
type ArangoDBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ServerConfig configures the optional HTTP wrapper (cmd/server).
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// AgentDeadline returns the per-agent deadline as a time.Duration.
func (c Config) AgentDeadline() time.Duration {
	return time.Duration(c.AgentDeadlineMS) * time.Millisecond
}

// CoordinatorDeadline returns the coordinator deadline as a time.Duration.
func (c Config) CoordinatorDeadline() time.Duration {
	return time.Duration(c.CoordinatorDeadlineMS) * time.Millisecond
}

// Load reads configuration from defaults, then an optional config file,
// then environment variables (prefix LSK_), in that priority order.
// With no key replacer or env bindings registered, an LSK_ variable
// only overrides a top-level key that the config file also sets;
// nested keys (llm.*, server.*, ...) are not read from the environment,
// except LSK_LLM_API_KEY, which is read explicitly.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		PriceScenario:         "normal",
		AgentDeadlineMS:       8000,
		CoordinatorDeadlineMS: 20000,
		LLM: LLMConfig{
			Provider:       "claude",
			TimeoutSeconds: 60,
		},
		Historical: HistoricalConfig{
			Backend: "memory",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		if filepath.IsAbs(configPath) {
			viper.SetConfigFile(configPath)
		} else {
			viper.AddConfigPath(filepath.Dir(configPath))
			ext := filepath.Ext(configPath)
			viper.SetConfigName(filepath.Base(configPath[:len(configPath)-len(ext)]))
		}
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/liftkernel")

	viper.SetEnvPrefix("LSK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if key := os.Getenv("LSK_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}

	return cfg, nil
}
