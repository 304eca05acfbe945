// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files.
// The filename is the key and the trimmed contents are the value, so
// "~/.config/aigrok/secrets/anthropic-api-key" holds the Anthropic key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Key names understood by aigrok.
const (
	AnthropicAPIKey = "anthropic-api-key"
	OllamaURL       = "ollama-url"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value of key, or "" when absent.
func (s Secrets) Get(key string) string {
	return s[key]
}

// DefaultDir returns ~/.config/aigrok/secrets, or "" when the home
// directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "aigrok", "secrets")
}

// Load reads every regular, non-hidden file in dir. A missing directory
// yields empty Secrets. Files that cannot be read are logged and skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		return Secrets{}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	log.Debug("loaded secrets", zap.String("dir", dir), zap.Int("count", len(out)))
	return out, nil
}
