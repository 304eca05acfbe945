// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads, validates, and persists the aigrok configuration.
// Values come from (highest first) environment variables prefixed AIGROK_,
// the config file, the secrets directory, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/aigrok/internal/secrets"
	"github.com/pdiddy/aigrok/pkg/types"
)

// ErrNotInitialized is returned by operations that need a saved
// configuration when none was found.
var ErrNotInitialized = errors.New("PDF processor not properly initialized. Please run with --configure first.")

const (
	envPrefix     = "AIGROK"
	localFileName = "aigrok.yaml"
)

// DefaultPath returns ~/.config/aigrok/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "aigrok", "config.yaml")
	}
	return filepath.Join(home, ".config", "aigrok", "config.yaml")
}

// Manager owns the configuration of one invocation.
type Manager struct {
	// Config is the effective configuration after Load.
	Config types.Config

	v          *viper.Viper
	log        *zap.Logger
	explicit   string
	searchPath []string
	secretDirs []string
	file       string
}

// NewManager returns a manager reading configFile, or searching
// ./aigrok.yaml then ~/.config/aigrok/config.yaml when configFile is empty.
func NewManager(configFile string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		v:          viper.New(),
		log:        log,
		explicit:   configFile,
		searchPath: []string{localFileName, DefaultPath()},
		secretDirs: []string{".secrets", secrets.DefaultDir()},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(types.ProviderOllama))
	v.SetDefault("model", "")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("timeout", "120s")
	v.SetDefault("max_retries", 3)
	v.SetDefault("ocr_enabled", false)
	v.SetDefault("ocr_languages", []string{"en"})
	v.SetDefault("ocr_fallback", false)
	v.SetDefault("backend", string(types.BackendTabula))
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "")
}

// Load reads .env, the config file, and the environment into m.Config.
// A missing config file is not an error unless it was named explicitly;
// Initialized reports whether one was found.
func (m *Manager) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	setDefaults(m.v)
	m.v.SetConfigType("yaml")
	m.v.SetEnvPrefix(envPrefix)
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()
	if err := m.v.BindEnv("anthropic_api_key", envPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return err
	}

	file, err := m.locate()
	if err != nil {
		return err
	}
	if file != "" {
		if err := validateFile(file); err != nil {
			return err
		}
		m.v.SetConfigFile(file)
		if err := m.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
		m.file = file
		m.log.Debug("using config file", zap.String("path", file))
	}

	var cfg types.Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := m.applySecrets(&cfg); err != nil {
		return err
	}
	m.Config = cfg
	return nil
}

// locate picks the config file to read, or "" when none exists.
func (m *Manager) locate() (string, error) {
	if m.explicit != "" {
		if _, err := os.Stat(m.explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", m.explicit, err)
		}
		return m.explicit, nil
	}
	for _, p := range m.searchPath {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// applySecrets fills credentials the file and environment left empty.
func (m *Manager) applySecrets(cfg *types.Config) error {
	for _, dir := range m.secretDirs {
		s, err := secrets.Load(dir, m.log)
		if err != nil {
			return err
		}
		if cfg.AnthropicAPIKey == "" {
			cfg.AnthropicAPIKey = s.Get(secrets.AnthropicAPIKey)
		}
		if u := s.Get(secrets.OllamaURL); u != "" && !m.v.InConfig("ollama_url") && !m.envSet("ollama_url") {
			cfg.OllamaURL = u
		}
	}
	return nil
}

func (m *Manager) envSet(key string) bool {
	_, ok := os.LookupEnv(envPrefix + "_" + strings.ToUpper(key))
	return ok
}

// Initialized reports whether a configuration file was loaded.
func (m *Manager) Initialized() bool {
	return m.file != ""
}

// File returns the config file in use, or "" when none was loaded.
func (m *Manager) File() string {
	return m.file
}

// Save sets the given keys in the config file's own document and writes
// it back, creating ~/.config/aigrok/config.yaml when no file is in use.
// Dotted keys address nested mappings. Keys not named keep what the file
// held; values that came from the environment or secrets are not written.
func (m *Manager) Save(values map[string]any) error {
	path := m.file
	if path == "" {
		path = m.explicit
	}
	if path == "" {
		path = DefaultPath()
	}

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	for key, value := range values {
		setPath(doc, strings.Split(key, "."), value)
	}
	if err := validateDocument(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	m.file = path
	m.log.Debug("saved config", zap.String("path", path), zap.Int("keys", len(values)))
	return nil
}

// readDocument decodes the YAML mapping at path, or returns an empty one
// when the file does not exist.
func readDocument(path string) (map[string]any, error) {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func setPath(doc map[string]any, path []string, value any) {
	if len(path) == 1 {
		doc[path[0]] = value
		return
	}
	child, ok := doc[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		doc[path[0]] = child
	}
	setPath(child, path[1:], value)
}
