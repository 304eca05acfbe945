// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the aigrok CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/internal/extract"
	"github.com/pdiddy/aigrok/internal/format"
	"github.com/pdiddy/aigrok/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// app holds the collaborators of one invocation. Tests replace them.
type app struct {
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	newProcessor processorFactory
	now          func() time.Time
}

func defaultApp() *app {
	return &app{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		newProcessor: newService,
		now:          time.Now,
	}
}

// rootOptions holds the root command's flags.
type rootOptions struct {
	prompt       string
	format       string
	configure    bool
	model        string
	output       string
	fileType     string
	metadataOnly bool
	verbose      bool
	easyOCR      bool
	ocrLanguages string
	ocrFallback  bool
	configFile   string
	jobs         int
}

func newRootCmd(a *app) *cobra.Command {
	opts := &rootOptions{}

	formats := make([]string, len(format.Formats))
	for i, f := range format.Formats {
		formats[i] = string(f)
	}

	cmd := &cobra.Command{
		Use:   "aigrok [flags] [prompt] files...",
		Short: "Ask a language model questions about PDF and office documents",
		Long: `aigrok extracts the text and metadata of documents, optionally runs OCR
on their page images, and sends a prompt together with the text to a
language model (Ollama or Anthropic). The answers are reported as plain
text, JSON, or Markdown.

The prompt is the first positional argument unless --prompt is given; the
remaining arguments are file paths or glob patterns.`,
		Example: `  aigrok "What is the invoice total?" invoice.pdf
  aigrok -p "Summarize" -f markdown reports/*.pdf -o summary.md
  aigrok --metadata-only -f json scans/*.pdf`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logging.Level(opts.verbose), false)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, opts, args)
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.prompt, "prompt", "p", "", "prompt to send with each document (default: first positional argument)")
	f.StringVarP(&opts.format, "format", "f", string(format.Text), "output format: "+strings.Join(formats, ", "))
	f.BoolVar(&opts.configure, "configure", false, "run the interactive configuration and exit")
	f.StringVar(&opts.model, "model", "", "model to use, overriding the configured one")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to this file instead of stdout")
	f.StringVar(&opts.fileType, "type", "", "input file type; supported: "+extract.TypesHelp())
	f.BoolVar(&opts.metadataOnly, "metadata-only", false, "report document metadata only, without calling the model")
	f.BoolVar(&opts.easyOCR, "easyocr", false, "enable OCR in the saved configuration, then process")
	f.StringVar(&opts.ocrLanguages, "ocr-languages", "en", "comma-separated OCR language codes")
	f.BoolVar(&opts.ocrFallback, "ocr-fallback", false, "keep standard text extraction when OCR fails")
	f.IntVar(&opts.jobs, "jobs", 1, "number of files to process at once")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.StringVar(&opts.configFile, "config", "", "config file (default: ./aigrok.yaml or ~/.config/aigrok/config.yaml)")

	cmd.AddCommand(newVersionCmd(a))
	cmd.AddCommand(newHistoryCmd(a, opts))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(defaultApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.Get().Error("aigrok failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}
