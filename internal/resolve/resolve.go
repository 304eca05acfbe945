// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns the CLI's positional arguments into a prompt and a
// concrete, ordered list of input files.
package resolve

import (
	"fmt"
	"path/filepath"
)

// InputError reports a problem with the user's input that ends the run
// without processing. It is not a crash: the CLI prints it and exits 0.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// ResolveArgs splits positional arguments into a prompt and file patterns.
// When promptSet is true every positional is a pattern and promptFlag is the
// prompt. Otherwise the first positional is the prompt and the rest are
// patterns.
func ResolveArgs(positional []string, promptFlag string, promptSet bool) (prompt string, patterns []string, err error) {
	if promptSet {
		prompt = promptFlag
		patterns = positional
	} else if len(positional) > 0 {
		prompt = positional[0]
		patterns = positional[1:]
	}

	if len(patterns) == 0 {
		return "", nil, &InputError{Msg: "No input files specified"}
	}
	return prompt, append([]string(nil), patterns...), nil
}

// ExpandPatterns expands each glob pattern and concatenates the matches in
// pattern order. Duplicates are kept. If any pattern matches nothing the
// whole expansion fails, so a typo in one pattern never yields a partial
// report.
func ExpandPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, &InputError{Msg: "File not found: " + pattern}
		}
		files = append(files, matches...)
	}
	return files, nil
}
