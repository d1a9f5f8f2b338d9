// Package config provides configuration management for the paper discovery service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// Environment constants.
const (
	// EnvDevelopment is the default environment.
	EnvDevelopment = "development"
	// EnvProduction enables production hardening (HSTS, quieter logs).
	EnvProduction = "production"
)

// LLM provider mode constants.
const (
	// ProviderModeOllama always selects the local Ollama provider.
	ProviderModeOllama = "ollama"
	// ProviderModeOpenAI selects OpenAI when a key is configured.
	ProviderModeOpenAI = "openai"
	// ProviderModeAuto probes Ollama first and falls back to OpenAI.
	ProviderModeAuto = "auto"
)

// Config holds all configuration for the paper discovery service.
// It is loaded once at startup and treated as immutable afterwards.
type Config struct {
	// Environment is "development" or "production".
	Environment string `mapstructure:"environment"`
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// CORS contains cross-origin settings.
	CORS CORSConfig `mapstructure:"cors"`
	// RateLimit contains per-route request rate limits.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// OpenAlex contains metadata provider settings.
	OpenAlex OpenAlexConfig `mapstructure:"openalex"`
	// Scopus contains citation-index lookup settings.
	Scopus ScopusConfig `mapstructure:"scopus"`
	// LLM contains summarization provider settings.
	LLM LLMConfig `mapstructure:"llm"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// Port is the HTTP server port (default: 8080).
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port" validate:"min=1,max=65535"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// CORSConfig holds cross-origin resource sharing settings.
type CORSConfig struct {
	// AllowedOrigins lists allowed origins ("*" allows all).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// MaxAge is the preflight cache duration in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// RateLimitConfig holds per-route request limits in requests per minute.
type RateLimitConfig struct {
	// Search limits /search, /cite and /trending.
	Search int `mapstructure:"search" validate:"min=1"`
	// Summarize limits /summarize.
	Summarize int `mapstructure:"summarize" validate:"min=1"`
	// Export limits /export and /cite/batch.
	Export int `mapstructure:"export" validate:"min=1"`
	// Scopus limits /scopus/check.
	Scopus int `mapstructure:"scopus" validate:"min=1"`
	// Health limits /health.
	Health int `mapstructure:"health" validate:"min=1"`
}

// OpenAlexConfig holds metadata provider settings.
type OpenAlexConfig struct {
	// BaseURL is the OpenAlex API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email is the contact email for the polite pool.
	Email string `mapstructure:"email"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum outbound requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum outbound request burst.
	BurstSize int `mapstructure:"burst_size"`
	// PageSize is the number of works fetched per provider page.
	PageSize int `mapstructure:"page_size" validate:"min=1,max=200"`
}

// ScopusConfig holds citation-index lookup settings.
type ScopusConfig struct {
	// BaseURL is the Scopus search API base URL.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is the Elsevier API key (loaded from SCHOLARAI_SCOPUS_API_KEY).
	APIKey string `mapstructure:"-"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum outbound requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum outbound request burst.
	BurstSize int `mapstructure:"burst_size"`
}

// LLMConfig holds summarization provider settings.
type LLMConfig struct {
	// Mode selects the provider: "ollama", "openai" or "auto".
	Mode string `mapstructure:"mode"`
	// Ollama contains local provider settings.
	Ollama OllamaConfig `mapstructure:"ollama"`
	// OpenAI contains remote provider settings.
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OllamaConfig holds local generation provider settings.
type OllamaConfig struct {
	// BaseURL is the Ollama server URL.
	BaseURL string `mapstructure:"base_url"`
	// Model is the chat model name, optionally with a tag suffix.
	Model string `mapstructure:"model"`
	// Timeout is the chat-completion timeout (local inference is slow).
	Timeout time.Duration `mapstructure:"timeout"`
	// ProbeTimeout bounds the model-listing liveness check.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// OpenAIConfig holds remote generation provider settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (loaded from SCHOLARAI_OPENAI_API_KEY).
	APIKey string `mapstructure:"-"`
	// Model is the chat model name.
	Model string `mapstructure:"model"`
	// BaseURL is the API base URL (for custom endpoints).
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the chat-completion timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SCHOLARAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scholarai-discovery")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.LLM.OpenAI.APIKey = os.Getenv("SCHOLARAI_OPENAI_API_KEY")
	cfg.Scopus.APIKey = os.Getenv("SCHOLARAI_SCOPUS_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.max_age", 3600)

	// Rate limit defaults (requests per minute)
	v.SetDefault("rate_limit.search", 30)
	v.SetDefault("rate_limit.summarize", 10)
	v.SetDefault("rate_limit.export", 5)
	v.SetDefault("rate_limit.scopus", 20)
	v.SetDefault("rate_limit.health", 60)

	// OpenAlex defaults
	v.SetDefault("openalex.base_url", "https://api.openalex.org")
	v.SetDefault("openalex.email", "")
	v.SetDefault("openalex.timeout", "15s")
	v.SetDefault("openalex.rate_limit", 10.0)
	v.SetDefault("openalex.burst_size", 10)
	v.SetDefault("openalex.page_size", 50)

	// Scopus defaults
	v.SetDefault("scopus.base_url", "https://api.elsevier.com/content/search/scopus")
	v.SetDefault("scopus.timeout", "10s")
	v.SetDefault("scopus.rate_limit", 5.0)
	v.SetDefault("scopus.burst_size", 5)

	// LLM defaults
	v.SetDefault("llm.mode", ProviderModeAuto)
	v.SetDefault("llm.ollama.base_url", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "llama3.2")
	v.SetDefault("llm.ollama.timeout", "60s")
	v.SetDefault("llm.ollama.probe_timeout", "3s")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai.timeout", "30s")
}

// Validate validates the configuration. Numeric ranges are enforced via
// struct tags; enum-like fields are checked explicitly for better error
// messages.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch strings.ToLower(c.LLM.Mode) {
	case ProviderModeOllama, ProviderModeOpenAI, ProviderModeAuto:
	default:
		return fmt.Errorf("invalid llm.mode: %q (want ollama, openai or auto)", c.LLM.Mode)
	}

	return nil
}
