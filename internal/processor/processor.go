// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package processor runs extraction and the LLM call for one file.
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/internal/extract"
	"github.com/pdiddy/aigrok/internal/llm"
	"github.com/pdiddy/aigrok/pkg/types"
)

// Service implements batch.Processor.
type Service struct {
	Extractor      extract.Extractor
	LLM            llm.Client
	ExtractOptions extract.Options

	// MetadataOnly skips the text and the LLM call and reports only the
	// document metadata and page count.
	MetadataOnly bool

	Log *zap.Logger
}

// Process extracts path and, unless MetadataOnly is set or there is no
// prompt, asks the LLM about its text.
func (s *Service) Process(ctx context.Context, path, prompt string) (types.ProcessingResult, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.Extractor == nil {
		return types.ProcessingResult{}, fmt.Errorf("no extractor configured")
	}

	log.Debug("processing file", zap.String("file", path), zap.Bool("metadata_only", s.MetadataOnly))
	doc, err := s.Extractor.Extract(ctx, path, s.ExtractOptions)
	if err != nil {
		return types.ProcessingResult{}, err
	}

	result := types.ProcessingResult{
		Success:   true,
		Metadata:  doc.Metadata,
		PageCount: doc.PageCount,
		Filename:  filepath.Base(path),
	}
	if s.MetadataOnly {
		return result, nil
	}
	result.Text = doc.Text

	if strings.TrimSpace(prompt) == "" || s.LLM == nil {
		return result, nil
	}
	if strings.TrimSpace(doc.Text) == "" {
		return types.ProcessingResult{}, fmt.Errorf("no text could be extracted from %s", filepath.Base(path))
	}

	answer, err := s.LLM.Complete(ctx, prompt, doc.Text)
	if err != nil {
		return types.ProcessingResult{}, fmt.Errorf("querying LLM: %w", err)
	}
	result.LLMResponse = strings.TrimSpace(answer)
	log.Debug("LLM answered", zap.String("file", path), zap.Int("chars", len(result.LLMResponse)))
	return result, nil
}
