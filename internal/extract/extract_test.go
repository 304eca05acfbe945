// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/tabula/model"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/aigrok/pkg/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckType(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		declared string
		want     string
		wantErr  string
	}{
		{name: "detected pdf", path: "a.pdf", want: "pdf"},
		{name: "upper-case extension", path: "A.PDF", want: "pdf"},
		{name: "declared matches", path: "a.docx", declared: "docx", want: "docx"},
		{name: "declared with dot", path: "a.pdf", declared: ".PDF", want: "pdf"},
		{name: "declared without extension", path: "report", declared: "pdf", want: "pdf"},
		{name: "declared mismatch", path: "a.docx", declared: "pdf", wantErr: "a.docx is not a pdf file"},
		{name: "declared unsupported", path: "a.txt", declared: "txt", wantErr: `unsupported input type "txt"`},
		{name: "detected unsupported", path: "notes.txt", wantErr: `unsupported file type "txt" for notes.txt`},
		{name: "no extension", path: "README", wantErr: `unsupported file type ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkType(tt.path, tt.declared, tabulaTypes)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateType(t *testing.T) {
	assert.NoError(t, ValidateType(types.BackendTabula, ""))
	assert.NoError(t, ValidateType(types.BackendTabula, "pdf"))
	assert.NoError(t, ValidateType(types.BackendMarkitdown, "pptx"))

	err := ValidateType(types.BackendTabula, "pptx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tabula backend")
	assert.Contains(t, err.Error(), "pdf, docx, odt")
}

func TestSupportedTypesIsACopy(t *testing.T) {
	got := SupportedTypes(types.BackendTabula)
	got[0] = "changed"
	assert.Equal(t, "pdf", SupportedTypes(types.BackendTabula)[0])
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, "pdf", DetectType("/tmp/x/Report.Pdf"))
	assert.Equal(t, "html", DetectType("page.htm"))
	assert.Equal(t, "", DetectType("Makefile"))
}

func TestBaseMetadata(t *testing.T) {
	path := writeFile(t, "doc.pdf", "12345")
	meta, err := baseMetadata(path, "pdf")
	require.NoError(t, err)

	keys := make([]string, 0, meta.Len())
	for _, e := range meta.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"file_name", "file_type", "file_size"}, keys)
	v, _ := meta.Get("file_size")
	assert.Equal(t, int64(5), v)

	_, err = baseMetadata(filepath.Dir(path), "pdf")
	assert.ErrorContains(t, err, "is a directory")
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), "pandoc", zaptest.NewLogger(t))
	assert.ErrorContains(t, err, `unsupported extraction backend "pandoc"`)
}

func TestNewDefaultsToTabula(t *testing.T) {
	ex, err := New(context.Background(), "", nil)
	require.NoError(t, err)
	assert.IsType(t, &TabulaExtractor{}, ex)
}

func TestTabulaExtractRejectsBadInput(t *testing.T) {
	ex := NewTabulaExtractor(zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := ex.Extract(ctx, writeFile(t, "notes.txt", "hi"), Options{})
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = ex.Extract(ctx, filepath.Join(t.TempDir(), "missing.pdf"), Options{})
	assert.ErrorContains(t, err, "stat")

	_, err = ex.Extract(ctx, writeFile(t, "broken.pdf", "this is not a pdf"), Options{})
	assert.ErrorContains(t, err, "reading broken.pdf")
}

func TestTabulaExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTabulaExtractor(nil).Extract(ctx, "a.pdf", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeRuntime implements container.Runtime.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
	gotInput string
}

func (f *fakeRuntime) Name() string { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }
func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	var in bytes.Buffer
	if _, err := io.Copy(&in, stdin); err != nil {
		return err
	}
	f.gotInput = in.String()
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestMarkitdownExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("missing image", func(t *testing.T) {
		_, err := NewMarkitdownExtractor(ctx, &fakeRuntime{imageErr: errors.New("no such image")}, nil)
		assert.ErrorContains(t, err, "markitdown image not available in fake")
	})

	t.Run("converts html", func(t *testing.T) {
		rt := &fakeRuntime{output: "# Title\n\nBody\n"}
		ex, err := NewMarkitdownExtractor(ctx, rt, zaptest.NewLogger(t))
		require.NoError(t, err)

		path := writeFile(t, "page.html", "<h1>Title</h1><p>Body</p>")
		doc, err := ex.Extract(ctx, path, Options{})
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nBody", doc.Text)
		assert.Equal(t, 0, doc.PageCount)
		assert.Equal(t, "<h1>Title</h1><p>Body</p>", rt.gotInput)
		name, _ := doc.Metadata.Get(types.MetadataFileName)
		assert.Equal(t, "page.html", name)
	})

	t.Run("empty output", func(t *testing.T) {
		ex, err := NewMarkitdownExtractor(ctx, &fakeRuntime{}, nil)
		require.NoError(t, err)
		_, err = ex.Extract(ctx, writeFile(t, "page.html", "x"), Options{})
		assert.ErrorContains(t, err, "empty output for page.html")
	})

	t.Run("run failure", func(t *testing.T) {
		ex, err := NewMarkitdownExtractor(ctx, &fakeRuntime{runErr: errors.New("exit 1")}, nil)
		require.NoError(t, err)
		_, err = ex.Extract(ctx, writeFile(t, "deck.pptx", "x"), Options{})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "converting deck.pptx with markitdown"))
	})

	t.Run("odt not supported", func(t *testing.T) {
		ex, err := NewMarkitdownExtractor(ctx, &fakeRuntime{output: "x"}, nil)
		require.NoError(t, err)
		_, err = ex.Extract(ctx, writeFile(t, "doc.odt", "x"), Options{})
		assert.ErrorContains(t, err, "unsupported file type")
	})
}

func TestParsePDFDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "D:20240315102030Z", want: "2024-03-15T10:20:30Z"},
		{in: "D:20240315102030+02'00'", want: "2024-03-15T10:20:30+02:00"},
		{in: "D:20240315102030-05'30", want: "2024-03-15T10:20:30-05:30"},
		{in: "D:2024", want: "2024-01-01T00:00:00Z"},
		{in: "20240315", want: "2024-03-15T00:00:00Z"},
		{in: "", want: ""},
		{in: "yesterday", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDate(parsePDFDate(tt.in)))
		})
	}
}

func TestAddProperties(t *testing.T) {
	meta := types.NewMetadata("file_name", "a.pdf")
	addProperties(&meta, model.Metadata{
		Title:    "Quarterly Report",
		Keywords: []string{"finance", "q3"},
	})

	var keys []string
	for _, e := range meta.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"file_name", "title", "keywords"}, keys)
	kw, _ := meta.Get("keywords")
	assert.Equal(t, "finance, q3", kw)
}
