// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UnknownFilename is the filename rendered when neither the result nor its
// metadata names the source file.
const UnknownFilename = "unknown"

// MetadataFileName is the metadata key the extraction service uses for the
// source file's base name.
const MetadataFileName = "file_name"

// ProcessingResult is the outcome of processing one input file. Empty
// strings and a zero PageCount mean the value is absent.
type ProcessingResult struct {
	// Success reports whether extraction and the LLM call completed without error.
	Success bool `json:"success" yaml:"success"`

	// Text is the raw extracted document text.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// LLMResponse is the text produced by the language model.
	LLMResponse string `json:"llm_response,omitempty" yaml:"llm_response,omitempty"`

	// Metadata holds document properties in extraction order.
	Metadata Metadata `json:"metadata" yaml:"-"`

	// PageCount is the number of pages, 0 when unknown.
	PageCount int `json:"page_count,omitempty" yaml:"page_count,omitempty"`

	// Error describes the failure. Set only when Success is false.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Filename is the base name of the source file. The batch runner stamps
	// it after the processing service returns.
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// ResultSet holds one ProcessingResult per resolved input file, in input order.
type ResultSet []ProcessingResult

// Failed returns the number of unsuccessful results.
func (rs ResultSet) Failed() int {
	n := 0
	for _, r := range rs {
		if !r.Success {
			n++
		}
	}
	return n
}

// PrimaryContent returns the LLM response if present, else the extracted
// text, else the empty string.
func (r ProcessingResult) PrimaryContent() string {
	if r.LLMResponse != "" {
		return r.LLMResponse
	}
	return r.Text
}

// ResolveFilename returns the explicit filename, falling back to the
// "file_name" metadata entry and then to UnknownFilename.
func ResolveFilename(r ProcessingResult) string {
	if r.Filename != "" {
		return r.Filename
	}
	if v, ok := r.Metadata.Get(MetadataFileName); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return UnknownFilename
}
