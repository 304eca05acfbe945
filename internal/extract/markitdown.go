// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownExtractor converts documents to Markdown by piping them through
// the markitdown container image.
type MarkitdownExtractor struct {
	runtime container.Runtime
	log     *zap.Logger
}

// NewMarkitdownExtractor verifies that the markitdown image exists in rt
// before returning.
func NewMarkitdownExtractor(ctx context.Context, rt container.Runtime, log *zap.Logger) (*MarkitdownExtractor, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := rt.ImageExists(ctx, imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownExtractor{runtime: rt, log: log}, nil
}

// SupportedTypes returns the types markitdown converts.
func (m *MarkitdownExtractor) SupportedTypes() []string {
	return slices.Clone(markitdownTypes)
}

// Extract converts path to Markdown. Page counts come from tabula for the
// types it reads; for the others the count is left unknown.
func (m *MarkitdownExtractor) Extract(ctx context.Context, path string, opts Options) (*Document, error) {
	fileType, err := checkType(path, opts.Type, markitdownTypes)
	if err != nil {
		return nil, err
	}
	meta, err := baseMetadata(path, fileType)
	if err != nil {
		return nil, err
	}
	if opts.OCR.Enabled {
		m.log.Warn("OCR is not supported by the markitdown backend", zap.String("file", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with markitdown: %w", filepath.Base(path), err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("markitdown produced empty output for %s", filepath.Base(path))
	}

	doc := &Document{
		Text:     strings.TrimSpace(out.String()),
		Metadata: meta,
	}
	if slices.Contains(tabulaTypes, fileType) {
		n, err := countPages(path, fileType, m.log)
		if err != nil {
			m.log.Debug("counting pages", zap.String("file", path), zap.Error(err))
		} else {
			doc.PageCount = n
			doc.Metadata.Set("page_count", n)
		}
	}
	return doc, nil
}

func countPages(path, fileType string, log *zap.Logger) (int, error) {
	src, err := openSource(path, fileType, log)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return src.PageCount()
}
