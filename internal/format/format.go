// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders processing results as plain text, JSON, or
// Markdown reports.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/aigrok/pkg/types"
)

// Format selects the output representation.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	Markdown Format = "markdown"
)

// Formats lists the supported formats in help-text order.
var Formats = []Format{Text, JSON, Markdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q: use text, json, or markdown", s)
}

// Render renders a single result. In text format an empty primary content
// yields the empty string; in JSON the result is one object.
func Render(r types.ProcessingResult, f Format, showFilenames bool) (string, error) {
	switch f {
	case Text:
		return textLine(r, showFilenames), nil
	case JSON:
		return encodeJSON(newRecord(r))
	case Markdown:
		return strings.Join(markdownLines(r), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported format %q", f)
	}
}

// RenderSet renders a result set in input order. Text output omits results
// with no primary content; JSON output is an array; Markdown documents are
// each followed by a horizontal rule.
func RenderSet(rs types.ResultSet, f Format, showFilenames bool) (string, error) {
	switch f {
	case Text:
		lines := make([]string, 0, len(rs))
		for _, r := range rs {
			if line := textLine(r, showFilenames); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n"), nil
	case JSON:
		records := make([]record, len(rs))
		for i, r := range rs {
			records[i] = newRecord(r)
		}
		return encodeJSON(records)
	case Markdown:
		var all []string
		for _, r := range rs {
			all = append(all, markdownLines(r)...)
			all = append(all, separator)
		}
		return strings.Join(all, "\n"), nil
	default:
		return "", fmt.Errorf("unsupported format %q", f)
	}
}

func textLine(r types.ProcessingResult, showFilenames bool) string {
	content := r.PrimaryContent()
	if content == "" || !showFilenames {
		return content
	}
	return types.ResolveFilename(r) + ": " + content
}

// record is the JSON projection of a result. Absent optional values encode
// as null.
type record struct {
	Success     bool           `json:"success"`
	Text        *string        `json:"text"`
	Metadata    types.Metadata `json:"metadata"`
	PageCount   *int           `json:"page_count"`
	LLMResponse *string        `json:"llm_response"`
	Error       *string        `json:"error"`
	Filename    string         `json:"filename"`
}

func newRecord(r types.ProcessingResult) record {
	rec := record{
		Success:     r.Success,
		Text:        optional(r.Text),
		Metadata:    r.Metadata,
		LLMResponse: optional(r.LLMResponse),
		Error:       optional(r.Error),
		Filename:    types.ResolveFilename(r),
	}
	if r.PageCount != 0 {
		n := r.PageCount
		rec.PageCount = &n
	}
	return rec
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
