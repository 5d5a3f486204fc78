package di

import (
	"fmt"

	"bug-reproducer/internal/application/port/input"
	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/infrastructure/browser/remote"
	"bug-reproducer/internal/infrastructure/browser/rod"
	"bug-reproducer/internal/infrastructure/config"
	"bug-reproducer/internal/infrastructure/httpapi"
	"bug-reproducer/internal/infrastructure/llm/langchain"
	"bug-reproducer/internal/infrastructure/llm/openrouter"
	"bug-reproducer/internal/infrastructure/logger"
	"bug-reproducer/internal/infrastructure/prompts"
	"bug-reproducer/internal/infrastructure/storage"
	"bug-reproducer/internal/usecase/action"
	"bug-reproducer/internal/usecase/observation"
	"bug-reproducer/internal/usecase/policy"
	"bug-reproducer/internal/usecase/reproduce"
)

type Container struct {
	Config     *config.Config
	Logger     output.LoggerPort
	Browser    output.BrowserPort
	LLM        output.LLMPort
	Store      output.ArtifactStore
	Reproducer input.Reproducer
}

// NewContainer wires a reproduction run. logName names the run's log file.
func NewContainer(cfg *config.Config, logName string, progress output.ProgressPort) (*Container, error) {
	log, err := NewLogger(cfg.Log, logName)
	if err != nil {
		return nil, err
	}

	llm, err := NewLLM(cfg.LLM, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	store, err := storage.New(storage.Config{
		Type:     cfg.Storage.Type,
		BaseDir:  cfg.Run.ArtifactsDir,
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Prefix:   cfg.Storage.Prefix,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	browser := NewBrowser(cfg.Browser, log)

	decider := policy.New(llm, log, policy.Config{
		SystemPrompt: prompts.SystemPrompt,
		Temperature:  cfg.LLM.Temperature,
		JSONMode:     cfg.LLM.JSONMode,
	})

	reproduceCfg := reproduce.DefaultConfig()
	reproduceCfg.StepDelay = cfg.Run.StepDelay
	reproduceCfg.TraceDir = cfg.Run.TraceDir

	uc := reproduce.New(
		browser,
		observation.New(browser, log),
		action.New(browser, log, action.DefaultConfig()),
		decider,
		store,
		progress,
		log,
		reproduceCfg,
	)

	return &Container{
		Config:     cfg,
		Logger:     log,
		Browser:    browser,
		LLM:        llm,
		Store:      store,
		Reproducer: uc,
	}, nil
}

func NewLogger(cfg config.LogConfig, name string) (output.LoggerPort, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Level
	logCfg.Dir = cfg.Dir
	logCfg.Console = cfg.Console

	log, err := logger.NewLoggerAdapter(logCfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// NewBrowser returns the browser service client when a remote URL is set,
// otherwise a local rod session.
func NewBrowser(cfg config.BrowserConfig, log output.LoggerPort) output.BrowserPort {
	if cfg.RemoteURL != "" {
		return remote.NewClient(cfg.RemoteURL, 0, log)
	}
	return rod.NewBrowserAdapter(rodConfig(cfg), log)
}

func rodConfig(cfg config.BrowserConfig) rod.BrowserConfig {
	browserCfg := rod.DefaultConfig()
	browserCfg.ControlURL = cfg.ControlURL
	browserCfg.SlowMotion = cfg.SlowMotion
	browserCfg.NoSandbox = cfg.NoSandbox
	if cfg.Timeout > 0 {
		browserCfg.Timeout = cfg.Timeout
	}
	if cfg.NavTimeout > 0 {
		browserCfg.NavTimeout = cfg.NavTimeout
	}
	if cfg.ScreenshotWidth > 0 {
		browserCfg.ScreenshotWidth = cfg.ScreenshotWidth
	}
	return browserCfg
}

func NewLLM(cfg config.LLMConfig, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.Provider {
	case "openrouter", "":
		orCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			orCfg.BaseURL = cfg.BaseURL
		}
		orCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(orCfg), nil
	case "openai":
		llm, err := langchain.NewOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL, log)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "ollama":
		llm, err := langchain.NewOllama(cfg.Model, cfg.BaseURL, log)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// NewServer wires the browser service around a local rod session.
func NewServer(cfg *config.Config, log output.LoggerPort) *httpapi.Server {
	browser := rod.NewBrowserAdapter(rodConfig(cfg.Browser), log)
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Addr = cfg.Server.Addr
	serverCfg.JSONLogs = cfg.Server.JSONLogs
	return httpapi.NewServer(serverCfg, browser, log)
}

func (c *Container) Close() {
	if c.Browser != nil {
		if err := c.Browser.Close(); err != nil {
			c.Logger.Warn("Browser close failed", "error", err)
		}
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
