package clients

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const completionRequestTimeout = 60 * time.Second

var (
	completionInstance *CompletionHandle
	completionOnce     sync.Once
)

// CompletionHandle wraps the one shared completion-model client. All
// inference calls in the process go through this handle.
type CompletionHandle struct {
	Client *openai.Client
	Model  string
}

// GetCompletionHandle lazily builds the shared client from the environment.
// COMPLETION_BASE_URL points it at a self-hosted OpenAI-compatible server
// (the deployment runs a local Qwen2 instance); COMPLETION_MODEL overrides
// the model name.
func GetCompletionHandle() *CompletionHandle {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		slog.Error("[CompletionClient] Missing OPENAI_API_KEY in environment variables")
		panic("[CompletionClient] Missing OPENAI_API_KEY in environment variables")
	}
	completionOnce.Do(func() {
		config := openai.DefaultConfig(apiKey)
		if baseURL := os.Getenv("COMPLETION_BASE_URL"); baseURL != "" {
			config.BaseURL = baseURL
		}
		config.HTTPClient = &http.Client{Timeout: completionRequestTimeout}

		model := os.Getenv("COMPLETION_MODEL")
		if model == "" {
			model = openai.GPT3Dot5Turbo
		}

		completionInstance = &CompletionHandle{
			Client: openai.NewClientWithConfig(config),
			Model:  model,
		}
		slog.Info("[CompletionClient] completion client initialized",
			slog.String("model", model),
			slog.Duration("timeout", completionRequestTimeout))
	})
	return completionInstance
}
