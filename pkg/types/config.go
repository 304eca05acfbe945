// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LLMProvider selects the language model API.
type LLMProvider string

const (
	ProviderOllama    LLMProvider = "ollama"
	ProviderAnthropic LLMProvider = "anthropic"
)

// ExtractionBackend selects the document text extraction tool.
type ExtractionBackend string

const (
	BackendTabula     ExtractionBackend = "tabula"
	BackendMarkitdown ExtractionBackend = "markitdown"
)

// LLMConfig holds settings for the language model call.
type LLMConfig struct {
	// Provider is the model API: ollama or anthropic.
	Provider LLMProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "llama3.2" or "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// OllamaURL is the base URL of the Ollama server.
	OllamaURL string `json:"ollama_url,omitempty" yaml:"ollama_url,omitempty" mapstructure:"ollama_url"`

	// AnthropicAPIKey authenticates against the Anthropic Messages API.
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty" mapstructure:"anthropic_api_key"`

	// MaxTokens caps the length of the model response.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds a single model request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on HTTP 429.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// OCRConfig holds the persisted OCR settings.
type OCRConfig struct {
	// Enabled turns on OCR of page images.
	Enabled bool `json:"ocr_enabled" yaml:"ocr_enabled" mapstructure:"ocr_enabled"`

	// Languages lists ISO 639-1 language codes (e.g. "en", "fr").
	Languages []string `json:"ocr_languages" yaml:"ocr_languages" mapstructure:"ocr_languages"`

	// Fallback keeps the standard text when OCR fails instead of failing the file.
	Fallback bool `json:"ocr_fallback" yaml:"ocr_fallback" mapstructure:"ocr_fallback"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Enabled records every run in the history database.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file. Empty selects the default location.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
}

// Config is the persisted aigrok configuration.
type Config struct {
	LLMConfig `yaml:",inline" mapstructure:",squash"`
	OCRConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the extraction tool: tabula or markitdown.
	Backend ExtractionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}
