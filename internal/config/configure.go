// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pdiddy/aigrok/pkg/types"
)

// prompter reads answers to interactive questions, one per line.
type prompter struct {
	in   *bufio.Scanner
	out  io.Writer
	done bool
}

// ask prints question with the current value and returns the answer, or
// current when the answer is blank.
func (p *prompter) ask(question, current string) string {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, current)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	if p.done || !p.in.Scan() {
		p.done = true
		fmt.Fprintln(p.out)
		return current
	}
	if answer := strings.TrimSpace(p.in.Text()); answer != "" {
		return answer
	}
	return current
}

// choose asks until the answer is one of options.
func (p *prompter) choose(question, current string, options ...string) (string, error) {
	q := fmt.Sprintf("%s (%s)", question, strings.Join(options, ", "))
	for {
		answer := p.ask(q, current)
		if slices.Contains(options, answer) {
			return answer, nil
		}
		if p.done {
			return "", fmt.Errorf("configuration aborted: no valid answer for %q", question)
		}
		fmt.Fprintf(p.out, "Unknown choice %q.\n", answer)
	}
}

func (p *prompter) confirm(question string, current bool) bool {
	def := "y/N"
	if current {
		def = "Y/n"
	}
	switch strings.ToLower(p.ask(question+" ("+def+")", "")) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return current
	}
}

// Configure walks the user through the settings on in/out, starting from
// the loaded values, then validates and saves the result.
func (m *Manager) Configure(in io.Reader, out io.Writer) error {
	p := &prompter{in: bufio.NewScanner(in), out: out}
	cfg := m.Config

	fmt.Fprintln(out, "aigrok configuration")

	provider, err := p.choose("LLM provider", string(cfg.Provider),
		string(types.ProviderOllama), string(types.ProviderAnthropic))
	if err != nil {
		return err
	}
	cfg.Provider = types.LLMProvider(provider)
	cfg.Model = p.ask("Model (blank for the provider default)", cfg.Model)
	values := map[string]any{
		"provider": provider,
		"model":    cfg.Model,
	}

	switch cfg.Provider {
	case types.ProviderOllama:
		cfg.OllamaURL = p.ask("Ollama URL", cfg.OllamaURL)
		values["ollama_url"] = cfg.OllamaURL
	case types.ProviderAnthropic:
		masked := ""
		if cfg.AnthropicAPIKey != "" {
			masked = "keep current"
		}
		if key := p.ask("Anthropic API key", masked); key != masked {
			cfg.AnthropicAPIKey = key
			values["anthropic_api_key"] = key
		}
	}

	backend, err := p.choose("Extraction backend", string(cfg.Backend),
		string(types.BackendTabula), string(types.BackendMarkitdown))
	if err != nil {
		return err
	}
	cfg.Backend = types.ExtractionBackend(backend)
	values["backend"] = backend

	cfg.OCRConfig.Enabled = p.confirm("Enable OCR", cfg.OCRConfig.Enabled)
	values["ocr_enabled"] = cfg.OCRConfig.Enabled
	if cfg.OCRConfig.Enabled {
		langs := p.ask("OCR languages, comma separated", strings.Join(cfg.Languages, ","))
		cfg.Languages = nonNil(SplitLanguages(langs))
		cfg.Fallback = p.confirm("Fall back to standard extraction when OCR fails", cfg.Fallback)
		values["ocr_languages"] = cfg.Languages
		values["ocr_fallback"] = cfg.Fallback
	}

	cfg.History.Enabled = p.confirm("Record run history", cfg.History.Enabled)
	values["history.enabled"] = cfg.History.Enabled

	if err := p.in.Err(); err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}

	if err := m.Save(values); err != nil {
		return err
	}
	m.Config = cfg
	fmt.Fprintf(out, "Configuration saved to %s\n", m.file)
	return nil
}

// SplitLanguages splits a comma-separated language list, dropping blanks.
func SplitLanguages(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nonNil(langs []string) []string {
	if langs == nil {
		return []string{}
	}
	return langs
}

// EnableOCR turns OCR on with the given languages and fallback setting and
// saves those settings. It requires a loaded configuration file.
func (m *Manager) EnableOCR(languages []string, fallback bool) error {
	if !m.Initialized() {
		return ErrNotInitialized
	}
	if len(languages) == 0 {
		languages = nonNil(m.Config.Languages)
	}
	if err := m.Save(map[string]any{
		"ocr_enabled":   true,
		"ocr_languages": languages,
		"ocr_fallback":  fallback,
	}); err != nil {
		return err
	}
	m.Config.OCRConfig = types.OCRConfig{Enabled: true, Languages: languages, Fallback: fallback}
	return nil
}
