// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveArgs(t *testing.T) {
	tests := []struct {
		name         string
		positional   []string
		promptFlag   string
		promptSet    bool
		wantPrompt   string
		wantPatterns []string
		wantErr      string
	}{
		{
			name:         "prompt inferred from first positional",
			positional:   []string{"Summarize this", "report.pdf"},
			wantPrompt:   "Summarize this",
			wantPatterns: []string{"report.pdf"},
		},
		{
			name:         "explicit prompt keeps all positionals as patterns",
			positional:   []string{"a.pdf", "b.pdf"},
			promptFlag:   "Summarize",
			promptSet:    true,
			wantPrompt:   "Summarize",
			wantPatterns: []string{"a.pdf", "b.pdf"},
		},
		{
			name:       "only a prompt",
			positional: []string{"Summarize this"},
			wantErr:    "No input files specified",
		},
		{
			name:      "explicit prompt without files",
			promptSet: true,
			wantErr:   "No input files specified",
		},
		{
			name:    "nothing at all",
			wantErr: "No input files specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, patterns, err := ResolveArgs(tt.positional, tt.promptFlag, tt.promptSet)
			if tt.wantErr != "" {
				var inErr *InputError
				require.True(t, errors.As(err, &inErr), "want InputError, got %v", err)
				assert.Equal(t, tt.wantErr, inErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrompt, prompt)
			assert.Equal(t, tt.wantPatterns, patterns)
		})
	}
}

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")

	t.Run("literal paths in pattern order", func(t *testing.T) {
		got, err := ExpandPatterns([]string{b, a})
		require.NoError(t, err)
		assert.Equal(t, []string{b, a}, got)
	})

	t.Run("glob expands", func(t *testing.T) {
		got, err := ExpandPatterns([]string{filepath.Join(dir, "*.pdf")})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a, b}, got)
	})

	t.Run("duplicates preserved", func(t *testing.T) {
		got, err := ExpandPatterns([]string{a, filepath.Join(dir, "a.*")})
		require.NoError(t, err)
		assert.Equal(t, []string{a, a}, got)
	})

	t.Run("one missing pattern aborts everything", func(t *testing.T) {
		missing := filepath.Join(dir, "missing*.pdf")
		got, err := ExpandPatterns([]string{a, missing})
		assert.Nil(t, got)
		var inErr *InputError
		require.True(t, errors.As(err, &inErr))
		assert.Equal(t, "File not found: "+missing, inErr.Error())
	})

	t.Run("malformed pattern is not an input error", func(t *testing.T) {
		_, err := ExpandPatterns([]string{filepath.Join(dir, "[")})
		require.Error(t, err)
		var inErr *InputError
		assert.False(t, errors.As(err, &inErr))
		assert.ErrorIs(t, err, filepath.ErrBadPattern)
	})
}
