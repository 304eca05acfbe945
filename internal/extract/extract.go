// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls text, page counts, and document properties out of
// input files. Two backends exist: tabula (in-process, with optional
// Tesseract OCR) and markitdown (run as a container image).
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/internal/container"
	"github.com/pdiddy/aigrok/pkg/types"
)

// Document is the extraction output for one file.
type Document struct {
	Text      string
	PageCount int
	Metadata  types.Metadata
}

// OCROptions controls OCR of page images.
type OCROptions struct {
	Enabled bool

	// Languages holds ISO 639-1 codes such as "en" or "fr".
	Languages []string

	// Fallback keeps the standard text when OCR fails.
	Fallback bool
}

// Options configures one extraction.
type Options struct {
	// Type is the declared input type ("pdf", "docx", ...). Empty means
	// detect from the file extension.
	Type string

	OCR OCROptions
}

// Extractor reads one document.
type Extractor interface {
	Extract(ctx context.Context, path string, opts Options) (*Document, error)
	SupportedTypes() []string
}

var (
	tabulaTypes     = []string{"pdf", "docx", "odt"}
	markitdownTypes = []string{"pdf", "docx", "pptx", "xlsx", "html"}
)

// SupportedTypes returns the input types a backend accepts.
func SupportedTypes(backend types.ExtractionBackend) []string {
	if backend == types.BackendMarkitdown {
		return slices.Clone(markitdownTypes)
	}
	return slices.Clone(tabulaTypes)
}

// TypesHelp describes the supported input types of every backend.
func TypesHelp() string {
	return fmt.Sprintf("%s (tabula backend); %s (markitdown backend)",
		strings.Join(tabulaTypes, ", "), strings.Join(markitdownTypes, ", "))
}

// ValidateType checks a declared type against the backend.
func ValidateType(backend types.ExtractionBackend, t string) error {
	if t == "" {
		return nil
	}
	supported := SupportedTypes(backend)
	if !slices.Contains(supported, normalizeType(t)) {
		return fmt.Errorf("unsupported input type %q for the %s backend (supported: %s)",
			t, backendName(backend), strings.Join(supported, ", "))
	}
	return nil
}

// New returns the extractor for a backend. An empty backend selects tabula.
func New(ctx context.Context, backend types.ExtractionBackend, log *zap.Logger) (Extractor, error) {
	switch backend {
	case types.BackendTabula, "":
		return NewTabulaExtractor(log), nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdownExtractor(ctx, rt, log)
	default:
		return nil, fmt.Errorf("unsupported extraction backend %q: use tabula or markitdown", backend)
	}
}

func backendName(b types.ExtractionBackend) string {
	if b == "" {
		return string(types.BackendTabula)
	}
	return string(b)
}

// DetectType returns the lower-case extension of path without the dot.
func DetectType(path string) string {
	return normalizeType(filepath.Ext(path))
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
	if t == "htm" {
		return "html"
	}
	return t
}

// checkType resolves the type to extract path as. A declared type must be
// supported and must agree with the file extension when there is one.
func checkType(path, declared string, supported []string) (string, error) {
	detected := DetectType(path)
	if declared != "" {
		declared = normalizeType(declared)
		if !slices.Contains(supported, declared) {
			return "", fmt.Errorf("unsupported input type %q (supported: %s)", declared, strings.Join(supported, ", "))
		}
		if detected != "" && detected != declared {
			return "", fmt.Errorf("%s is not a %s file", filepath.Base(path), declared)
		}
		return declared, nil
	}
	if !slices.Contains(supported, detected) {
		return "", fmt.Errorf("unsupported file type %q for %s (supported: %s)",
			detected, filepath.Base(path), strings.Join(supported, ", "))
	}
	return detected, nil
}

// baseMetadata starts the metadata of every document with the file facts.
func baseMetadata(path, fileType string) (types.Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return types.Metadata{}, fmt.Errorf("%s is a directory", path)
	}
	return types.NewMetadata(
		types.MetadataFileName, filepath.Base(path),
		"file_type", fileType,
		"file_size", info.Size(),
	), nil
}
