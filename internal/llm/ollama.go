// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/internal/httputil"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

// OllamaClient calls a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	BaseURL    string
	Model      string
	MaxRetries int
	Client     *http.Client
	Log        *zap.Logger
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Complete sends a non-streaming generate request and returns the response text.
func (o *OllamaClient) Complete(ctx context.Context, prompt, content string) (string, error) {
	message, err := renderPrompt(prompt, content)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	model := o.Model
	if model == "" {
		model = defaultOllamaModel
	}
	base := strings.TrimRight(o.BaseURL, "/")
	if base == "" {
		base = defaultOllamaURL
	}

	bodyBytes, err := json.Marshal(ollamaRequest{
		Model:   model,
		Prompt:  message,
		Stream:  false,
		Options: map[string]any{"temperature": 0.2},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, o.MaxRetries, o.Log)
	if err != nil {
		return "", fmt.Errorf("calling Ollama at %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding Ollama response: %w", err)
	}
	if oResp.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", oResp.Error)
	}
	return strings.TrimSpace(oResp.Response), nil
}
