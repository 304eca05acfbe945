// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTesseractLanguages(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		want    string
		wantErr bool
	}{
		{name: "default", codes: nil, want: "eng"},
		{name: "english", codes: []string{"en"}, want: "eng"},
		{name: "english and french", codes: []string{"en", "fr"}, want: "eng+fra"},
		{name: "spaces and blanks", codes: []string{" de ", ""}, want: "deu"},
		{name: "chinese", codes: []string{"zh"}, want: "chi_sim"},
		{name: "malformed", codes: []string{"not a language"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TesseractLanguages(tt.codes)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fakeRecognizer returns the image bytes as text.
type fakeRecognizer struct {
	lang   string
	failOn string
	closed bool
}

func (f *fakeRecognizer) SetLanguage(lang string) error { f.lang = lang; return nil }
func (f *fakeRecognizer) Close() error { f.closed = true; return nil }
func (f *fakeRecognizer) RecognizeImage(img []byte) (string, error) {
	if string(img) == f.failOn {
		return "", errors.New("tesseract failed")
	}
	return string(img), nil
}

func newOCRExtractor(t *testing.T, images [][][]byte, rec *fakeRecognizer) *TabulaExtractor {
	t.Helper()
	ex := NewTabulaExtractor(zaptest.NewLogger(t))
	ex.pageImages = func(string) ([][][]byte, error) { return images, nil }
	ex.newRecognizer = func() (recognizer, error) { return rec, nil }
	return ex
}

func TestOCRPages(t *testing.T) {
	images := [][][]byte{
		{[]byte("first page")},
		nil,
		{[]byte("scan a"), []byte("  "), []byte("scan b")},
	}
	rec := &fakeRecognizer{}
	ex := newOCRExtractor(t, images, rec)

	text, pages, err := ex.ocrPages(context.Background(), "doc.pdf", []string{"en", "fr"})
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, "<!-- ocr page 1 -->\nfirst page\n\n<!-- ocr page 3 -->\nscan a\nscan b", text)
	assert.Equal(t, "eng+fra", rec.lang)
	assert.True(t, rec.closed)
}

func TestOCRPagesErrors(t *testing.T) {
	t.Run("recognition failure", func(t *testing.T) {
		rec := &fakeRecognizer{failOn: "bad"}
		ex := newOCRExtractor(t, [][][]byte{{[]byte("ok")}, {[]byte("bad")}}, rec)
		_, _, err := ex.ocrPages(context.Background(), "doc.pdf", nil)
		assert.ErrorContains(t, err, "page 2: tesseract failed")
		assert.True(t, rec.closed)
	})

	t.Run("ocr unavailable", func(t *testing.T) {
		ex := newOCRExtractor(t, [][][]byte{{[]byte("x")}}, nil)
		ex.newRecognizer = func() (recognizer, error) { return nil, errors.New("OCR support not enabled") }
		_, _, err := ex.ocrPages(context.Background(), "doc.pdf", nil)
		assert.ErrorContains(t, err, "not enabled")
	})

	t.Run("page images", func(t *testing.T) {
		ex := newOCRExtractor(t, nil, &fakeRecognizer{})
		ex.pageImages = func(string) ([][][]byte, error) { return nil, errors.New("bad xref") }
		_, _, err := ex.ocrPages(context.Background(), "doc.pdf", nil)
		assert.ErrorContains(t, err, "reading page images: bad xref")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ex := newOCRExtractor(t, [][][]byte{{[]byte("x")}}, &fakeRecognizer{})
		_, _, err := ex.ocrPages(ctx, "doc.pdf", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
