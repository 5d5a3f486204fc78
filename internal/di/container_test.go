package di

import (
	"testing"
	"time"

	"bug-reproducer/internal/infrastructure/browser/remote"
	"bug-reproducer/internal/infrastructure/browser/rod"
	"bug-reproducer/internal/infrastructure/config"
	"bug-reproducer/internal/infrastructure/llm/langchain"
	"bug-reproducer/internal/infrastructure/llm/openrouter"
	"bug-reproducer/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Run: config.RunConfig{
			MaxSteps:     5,
			Timeout:      time.Minute,
			StepDelay:    time.Second,
			ArtifactsDir: t.TempDir(),
			TraceDir:     t.TempDir(),
		},
		LLM:     config.LLMConfig{Provider: "openrouter", Model: "m", APIKey: "k"},
		Storage: config.StorageConfig{Type: "local"},
		Log:     config.LogConfig{Level: "debug"},
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(testConfig(t), "cart bug", nil)
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Reproducer)
	assert.NotNil(t, c.Store)
	assert.IsType(t, &rod.BrowserAdapter{}, c.Browser)
	assert.IsType(t, &openrouter.OpenRouterAdapter{}, c.LLM)
}

func TestNewBrowser_Remote(t *testing.T) {
	b := NewBrowser(config.BrowserConfig{RemoteURL: "http://browser:8787"}, mocks.NopLogger{})
	assert.IsType(t, &remote.Client{}, b)
}

func TestNewLLM(t *testing.T) {
	llm, err := NewLLM(config.LLMConfig{Provider: "ollama", Model: "llama3.1"}, mocks.NopLogger{})
	require.NoError(t, err)
	assert.IsType(t, &langchain.Adapter{}, llm)

	_, err = NewLLM(config.LLMConfig{Provider: "gemini"}, mocks.NopLogger{})
	assert.Error(t, err)
}

func TestRodConfig(t *testing.T) {
	cfg := rodConfig(config.BrowserConfig{Timeout: 3 * time.Second, ScreenshotWidth: 800})
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 800, cfg.ScreenshotWidth)
	assert.Equal(t, rod.DefaultConfig().NavTimeout, cfg.NavTimeout)
}
