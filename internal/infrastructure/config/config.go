// Package config resolves settings from defaults, an optional repro.yaml,
// REPRO_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Browser BrowserConfig `mapstructure:"browser"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
}

type RunConfig struct {
	MaxSteps     int           `mapstructure:"max_steps"`
	Timeout      time.Duration `mapstructure:"timeout"`
	StepDelay    time.Duration `mapstructure:"step_delay"`
	Headless     bool          `mapstructure:"headless"`
	ArtifactsDir string        `mapstructure:"artifacts_dir"`
	TraceDir     string        `mapstructure:"trace_dir"`
}

type LLMConfig struct {
	// Provider is openrouter, openai or ollama.
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	JSONMode    bool    `mapstructure:"json_mode"`
}

type BrowserConfig struct {
	// RemoteURL selects the browser service client instead of a local
	// browser.
	RemoteURL       string        `mapstructure:"remote_url"`
	ControlURL      string        `mapstructure:"control_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	NavTimeout      time.Duration `mapstructure:"nav_timeout"`
	SlowMotion      time.Duration `mapstructure:"slow_motion"`
	NoSandbox       bool          `mapstructure:"no_sandbox"`
	ScreenshotWidth int           `mapstructure:"screenshot_width"`
}

type StorageConfig struct {
	Type     string `mapstructure:"type"`
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	Console bool   `mapstructure:"console"`
}

type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	JSONLogs bool   `mapstructure:"json_logs"`
}

const EnvPrefix = "REPRO"

func SetDefaults(v *viper.Viper) {
	v.SetDefault("run.max_steps", 30)
	v.SetDefault("run.timeout", 10*time.Minute)
	v.SetDefault("run.step_delay", 2*time.Second)
	v.SetDefault("run.headless", true)
	v.SetDefault("run.artifacts_dir", "artifacts")
	v.SetDefault("run.trace_dir", "traces")

	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.model", "openai/gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.json_mode", true)

	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.control_url", "")
	v.SetDefault("browser.timeout", 10*time.Second)
	v.SetDefault("browser.nav_timeout", 30*time.Second)
	v.SetDefault("browser.slow_motion", time.Duration(0))
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.screenshot_width", 1024)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.endpoint", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "log")
	v.SetDefault("log.console", false)

	v.SetDefault("server.addr", ":8787")
	v.SetDefault("server.json_logs", false)
}

// Load reads configFile if given, otherwise an optional repro.yaml in the
// working directory, and decodes everything into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("repro")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Run.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("run.max_steps must be positive, got %d", c.Run.MaxSteps))
	}
	if c.Run.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("run.timeout must be positive, got %s", c.Run.Timeout))
	}
	switch c.LLM.Provider {
	case "openrouter", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of openrouter, openai, ollama", c.LLM.Provider))
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" || c.Storage.Region == "" {
			errs = append(errs, errors.New("storage.bucket and storage.region are required for s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type %q is not one of local, s3", c.Storage.Type))
	}
	return errors.Join(errs...)
}

// RequireAPIKey reports a missing key for providers that need one.
func (c *Config) RequireAPIKey() error {
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required for provider %s (set OPENROUTER_API_KEY or %s_LLM_API_KEY)", c.LLM.Provider, EnvPrefix)
	}
	return nil
}
