// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives the processing service over a list of files. A
// failure in one file is captured in that file's result and never stops
// the batch.
package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/aigrok/pkg/types"
)

// Processor extracts one document and runs the prompt against it. A
// non-nil error marks the file as failed.
type Processor interface {
	Process(ctx context.Context, path, prompt string) (types.ProcessingResult, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, path, prompt string) (types.ProcessingResult, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, path, prompt string) (types.ProcessingResult, error) {
	return f(ctx, path, prompt)
}

// Options configures a batch run.
type Options struct {
	// Jobs is the number of files processed at once. Values below 2 run
	// the batch sequentially.
	Jobs int

	Logger *zap.Logger
}

// ProcessOne runs p on a single file. Errors and panics from p become a
// failed result. The result's Filename is always the base name of path.
func ProcessOne(ctx context.Context, p Processor, path, prompt string, log *zap.Logger) (result types.ProcessingResult) {
	if log == nil {
		log = zap.NewNop()
	}
	name := filepath.Base(path)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("processor panicked", zap.String("file", path), zap.Any("panic", rec))
			result = failed(name, fmt.Errorf("panic: %v", rec))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(name, err)
	}

	r, err := p.Process(ctx, path, prompt)
	if err != nil {
		log.Error("failed to process file", zap.String("file", path), zap.Error(err))
		return failed(name, err)
	}
	r.Filename = name
	if !r.Success && r.Error == "" {
		r.Error = unknownError
	}
	return r
}

// unknownError is reported for failures that carry no message.
const unknownError = "unknown error"

func failed(name string, err error) types.ProcessingResult {
	msg := err.Error()
	if msg == "" {
		msg = unknownError
	}
	return types.ProcessingResult{
		Success:  false,
		Error:    msg,
		Filename: name,
	}
}

// Run processes every path and returns one result per path in input
// order. With opts.Jobs > 1 files are processed concurrently; ordering is
// still by input position, not completion.
func Run(ctx context.Context, p Processor, paths []string, prompt string, opts Options) types.ResultSet {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	results := make(types.ResultSet, len(paths))

	if opts.Jobs < 2 || len(paths) < 2 {
		for i, path := range paths {
			log.Debug("processing file", zap.Int("index", i), zap.String("file", path))
			results[i] = ProcessOne(ctx, p, path, prompt, log)
		}
		return results
	}

	// ProcessOne never returns an error, so the group only bounds concurrency.
	var g errgroup.Group
	g.SetLimit(opts.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			log.Debug("processing file", zap.Int("index", i), zap.String("file", path))
			results[i] = ProcessOne(ctx, p, path, prompt, log)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
