// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends a user prompt together with extracted document text to
// a language model and returns the model's answer.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/pkg/types"
)

// Client answers a prompt about a document.
type Client interface {
	Complete(ctx context.Context, prompt, content string) (string, error)
}

const (
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 4096
)

// documentPromptTmpl combines the user's prompt with the document text.
var documentPromptTmpl = template.Must(template.New("document").Parse(`{{.Prompt}}

Answer using only the document below. If the document does not contain the answer, say so.

Document:
{{.Content}}
`))

// renderPrompt executes the document prompt template.
func renderPrompt(prompt, content string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Prompt, Content string }{Prompt: prompt, Content: content}
	if err := documentPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// New returns the client for cfg.Provider. An empty provider selects Ollama.
func New(cfg types.LLMConfig, log *zap.Logger) (Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case types.ProviderOllama, "":
		return &OllamaClient{
			BaseURL:    cfg.OllamaURL,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
			Client:     httpClient,
			Log:        log,
		}, nil
	case types.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider selected but no API key configured: set anthropic_api_key, ANTHROPIC_API_KEY, or .secrets/anthropic-api-key")
		}
		return &ClaudeClient{
			APIKey:     cfg.AnthropicAPIKey,
			Model:      cfg.Model,
			MaxTokens:  maxTokens,
			MaxRetries: cfg.MaxRetries,
			Client:     httpClient,
			Log:        log,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q: use ollama or anthropic", cfg.Provider)
	}
}
