// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/internal/batch"
	"github.com/pdiddy/aigrok/internal/config"
	"github.com/pdiddy/aigrok/internal/extract"
	"github.com/pdiddy/aigrok/internal/format"
	"github.com/pdiddy/aigrok/internal/history"
	"github.com/pdiddy/aigrok/internal/llm"
	"github.com/pdiddy/aigrok/internal/logging"
	"github.com/pdiddy/aigrok/internal/processor"
	"github.com/pdiddy/aigrok/internal/resolve"
	"github.com/pdiddy/aigrok/pkg/types"
)

// processorOptions are the per-run settings that shape the processor
// beyond the configuration.
type processorOptions struct {
	FileType     string
	MetadataOnly bool
}

// processorFactory builds the processor for a run.
type processorFactory func(ctx context.Context, cfg types.Config, opts processorOptions, log *zap.Logger) (batch.Processor, error)

// newService wires the extraction backend and, unless only metadata is
// wanted, the LLM client into a processor.Service.
func newService(ctx context.Context, cfg types.Config, opts processorOptions, log *zap.Logger) (batch.Processor, error) {
	if err := extract.ValidateType(cfg.Backend, opts.FileType); err != nil {
		return nil, err
	}
	ex, err := extract.New(ctx, cfg.Backend, log)
	if err != nil {
		return nil, err
	}
	svc := &processor.Service{
		Extractor: ex,
		ExtractOptions: extract.Options{
			Type: opts.FileType,
			OCR: extract.OCROptions{
				Enabled:   cfg.OCRConfig.Enabled,
				Languages: cfg.Languages,
				Fallback:  cfg.Fallback,
			},
		},
		MetadataOnly: opts.MetadataOnly,
		Log:          log,
	}
	if !opts.MetadataOnly {
		client, err := llm.New(cfg.LLMConfig, log)
		if err != nil {
			return nil, err
		}
		svc.LLM = client
	}
	return svc, nil
}

// userError prints a user-input error and ends the run cleanly.
func (a *app) userError(err error) error {
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return nil
}

// run is the root command: resolve inputs, process every file, render
// the report, and record the run.
func (a *app) run(cmd *cobra.Command, opts *rootOptions, args []string) error {
	ctx := cmd.Context()
	log := logging.Get()
	started := a.now()

	log.Debug("arguments",
		zap.Strings("args", args),
		zap.String("prompt", opts.prompt),
		zap.String("format", opts.format),
		zap.Bool("metadata_only", opts.metadataOnly),
		zap.Bool("easyocr", opts.easyOCR),
		zap.Int("jobs", opts.jobs))

	outFormat, err := format.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	mgr := config.NewManager(opts.configFile, log)
	if err := mgr.Load(); err != nil {
		return err
	}

	if opts.configure {
		return mgr.Configure(a.stdin, a.stdout)
	}

	if opts.easyOCR {
		err := mgr.EnableOCR(config.SplitLanguages(opts.ocrLanguages), opts.ocrFallback)
		if errors.Is(err, config.ErrNotInitialized) {
			return a.userError(err)
		}
		if err != nil {
			return err
		}
		log.Debug("OCR enabled", zap.Strings("languages", mgr.Config.Languages), zap.String("config", mgr.File()))
	}

	prompt, patterns, err := resolve.ResolveArgs(args, opts.prompt, cmd.Flags().Changed("prompt"))
	if err != nil {
		return a.inputOrFail(err)
	}
	files, err := resolve.ExpandPatterns(patterns)
	if err != nil {
		return a.inputOrFail(err)
	}
	log.Debug("processing files", zap.Strings("files", files))

	cfg := mgr.Config
	if opts.model != "" {
		cfg.Model = opts.model
	}

	proc, err := a.newProcessor(ctx, cfg, processorOptions{
		FileType:     opts.fileType,
		MetadataOnly: opts.metadataOnly,
	}, log)
	if err != nil {
		return err
	}

	results := batch.Run(ctx, proc, files, prompt, batch.Options{Jobs: opts.jobs, Logger: log})

	report, err := format.RenderSet(results, outFormat, len(files) > 1)
	if err != nil {
		return err
	}
	if err := writeReport(opts.output, a.stdout, report); err != nil {
		return err
	}

	if cfg.History.Enabled {
		recordRun(ctx, cfg.History.Path, history.NewRun(started, prompt, string(outFormat), results), log)
	}

	log.Debug("run complete",
		zap.Int("files", len(results)),
		zap.Int("failed", results.Failed()),
		zap.Duration("elapsed", a.now().Sub(started)))
	return nil
}

func (a *app) inputOrFail(err error) error {
	var inputErr *resolve.InputError
	if errors.As(err, &inputErr) {
		return a.userError(inputErr)
	}
	return err
}

// writeReport writes report and a trailing newline to path, or to w when
// path is empty.
func writeReport(path string, w io.Writer, report string) error {
	if path == "" {
		_, err := fmt.Fprintln(w, report)
		return err
	}
	if err := os.WriteFile(path, []byte(report+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// recordRun appends run to the history database. Failures are logged and
// never fail the invocation.
func recordRun(ctx context.Context, path string, run history.Run, log *zap.Logger) {
	store, err := history.Open(path)
	if err != nil {
		log.Warn("opening run history", zap.Error(err))
		return
	}
	defer store.Close()
	if err := store.Record(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("recording run history", zap.String("run", run.ID), zap.Error(err))
		return
	}
	log.Debug("recorded run", zap.String("run", run.ID))
}
