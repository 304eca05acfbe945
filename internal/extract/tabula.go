// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/docx"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/odt"
	"github.com/tsawler/tabula/reader"
	"go.uber.org/zap"

	"github.com/pdiddy/aigrok/pkg/types"
)

// source is an open document of any type tabula reads.
type source interface {
	PageCount() (int, error)
	Text() (string, error)
	Metadata() model.Metadata
	Close() error
}

// openSource opens path with the tabula reader for fileType.
func openSource(path, fileType string, log *zap.Logger) (source, error) {
	switch fileType {
	case "pdf":
		r, err := reader.Open(path)
		if err != nil {
			return nil, err
		}
		return &pdfSource{r: r, path: path, log: log}, nil
	case "docx":
		r, err := docx.Open(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "odt":
		r, err := odt.Open(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", fileType)
	}
}

// pdfSource adapts a PDF reader to source.
type pdfSource struct {
	r    *reader.Reader
	path string
	log  *zap.Logger
}

func (p *pdfSource) PageCount() (int, error) { return p.r.PageCount() }
func (p *pdfSource) Close() error            { return p.r.Close() }

func (p *pdfSource) Text() (string, error) {
	text, warnings, err := tabula.FromReader(p.r).Text()
	if len(warnings) > 0 {
		msgs := make([]string, len(warnings))
		for i, w := range warnings {
			msgs[i] = w.Message
		}
		p.log.Debug("extraction warnings", zap.String("file", p.path), zap.Strings("warnings", msgs))
	}
	return text, err
}

// Metadata reads the PDF information dictionary. Dates stay in PDF form
// here; they are normalised when copied into the result.
func (p *pdfSource) Metadata() model.Metadata {
	var m model.Metadata
	info, err := p.r.GetInfo()
	if err != nil || info == nil {
		return m
	}
	str := func(key string) string {
		if s, ok := info.Get(key).(core.String); ok {
			return strings.TrimSpace(string(s))
		}
		return ""
	}
	m.Title = str("Title")
	m.Author = str("Author")
	m.Subject = str("Subject")
	m.Creator = str("Creator")
	m.Producer = str("Producer")
	if kw := str("Keywords"); kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				m.Keywords = append(m.Keywords, k)
			}
		}
	}
	m.CreationDate = parsePDFDate(str("CreationDate"))
	m.ModDate = parsePDFDate(str("ModDate"))
	return m
}

// parsePDFDate parses "D:YYYYMMDDHHmmSSOHH'mm'" and its truncations. An
// unparseable date yields the zero time.
func parsePDFDate(s string) time.Time {
	s = strings.TrimPrefix(s, "D:")
	if s == "" {
		return time.Time{}
	}
	digits := len(s)
	for i, c := range s {
		if c < '0' || c > '9' {
			digits = i
			break
		}
	}
	layout := "20060102150405"
	if digits < 4 || digits > len(layout) || digits%2 != 0 {
		return time.Time{}
	}
	t, err := time.Parse(layout[:digits], s[:digits])
	if err != nil {
		return time.Time{}
	}
	tz := strings.ReplaceAll(s[digits:], "'", "")
	if len(tz) == 5 && (tz[0] == '+' || tz[0] == '-') {
		off, err := time.Parse("-0700", tz)
		if err == nil {
			_, secs := off.Zone()
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0,
				time.FixedZone("", secs))
		}
	}
	return t
}

// TabulaExtractor reads PDF, DOCX, and ODT files in-process with tabula.
type TabulaExtractor struct {
	log *zap.Logger

	// Overridden in tests.
	pageImages    func(path string) ([][][]byte, error)
	newRecognizer func() (recognizer, error)
}

// NewTabulaExtractor returns an extractor using tabula and, for OCR,
// Tesseract through tabula/ocr.
func NewTabulaExtractor(log *zap.Logger) *TabulaExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &TabulaExtractor{
		log:           log,
		pageImages:    tabulaPageImages,
		newRecognizer: tesseractRecognizer,
	}
}

// SupportedTypes returns pdf, docx, and odt.
func (t *TabulaExtractor) SupportedTypes() []string {
	return SupportedTypes(types.BackendTabula)
}

// Extract reads the text and properties of path. With OCR enabled, text
// recognised in PDF page images is appended after the standard text.
func (t *TabulaExtractor) Extract(ctx context.Context, path string, opts Options) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileType, err := checkType(path, opts.Type, tabulaTypes)
	if err != nil {
		return nil, err
	}
	meta, err := baseMetadata(path, fileType)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)

	src, err := openSource(path, fileType, t.log)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	defer src.Close()

	pages, err := src.PageCount()
	if err != nil {
		return nil, fmt.Errorf("counting pages of %s: %w", name, err)
	}
	text, err := src.Text()
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", name, err)
	}

	meta.Set("page_count", pages)
	addProperties(&meta, src.Metadata())

	if opts.OCR.Enabled && fileType == "pdf" {
		ocrText, ocrPages, err := t.ocrPages(ctx, path, opts.OCR.Languages)
		switch {
		case err != nil && !opts.OCR.Fallback:
			return nil, fmt.Errorf("OCR of %s: %w", name, err)
		case err != nil:
			t.log.Warn("OCR failed, using standard text extraction", zap.String("file", path), zap.Error(err))
		case ocrText != "":
			text = strings.TrimSpace(text) + "\n\n" + ocrText
			meta.Set("ocr_pages", ocrPages)
		}
	}

	t.log.Debug("extracted document",
		zap.String("file", path),
		zap.Int("pages", pages),
		zap.Int("chars", len(text)))

	return &Document{
		Text:      strings.TrimSpace(text),
		PageCount: pages,
		Metadata:  meta,
	}, nil
}

// addProperties copies non-empty document properties into meta.
func addProperties(meta *types.Metadata, props model.Metadata) {
	for _, p := range []struct{ key, value string }{
		{"title", props.Title},
		{"author", props.Author},
		{"subject", props.Subject},
		{"creator", props.Creator},
		{"producer", props.Producer},
		{"keywords", strings.Join(props.Keywords, ", ")},
		{"creation_date", formatDate(props.CreationDate)},
		{"modification_date", formatDate(props.ModDate)},
	} {
		if p.value != "" {
			meta.Set(p.key, p.value)
		}
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
