// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/tabula/ocr"
	"github.com/tsawler/tabula/reader"
	"golang.org/x/text/language"
)

// recognizer is the subset of the Tesseract client used for page images.
type recognizer interface {
	SetLanguage(lang string) error
	RecognizeImage(imageData []byte) (string, error)
	Close() error
}

// tesseractRecognizer opens a Tesseract client. Binaries built without the
// ocr tag get ocr.ErrOCRNotEnabled.
func tesseractRecognizer() (recognizer, error) {
	c, err := ocr.New()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// tesseractNames covers languages whose Tesseract data file is not the
// plain ISO 639-2 code.
var tesseractNames = map[string]string{
	"zho": "chi_sim",
}

// TesseractLanguages maps ISO 639-1 codes ("en", "fr") to a Tesseract
// language string ("eng+fra"). No codes means English.
func TesseractLanguages(codes []string) (string, error) {
	var out []string
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			return "", fmt.Errorf("invalid OCR language %q: %w", code, err)
		}
		base, conf := tag.Base()
		if conf == language.No {
			return "", fmt.Errorf("invalid OCR language %q", code)
		}
		name := base.ISO3()
		if alt, ok := tesseractNames[name]; ok {
			name = alt
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return "eng", nil
	}
	return strings.Join(out, "+"), nil
}

// tabulaPageImages returns the PNG-encoded images of each PDF page,
// indexed by page.
func tabulaPageImages(path string) ([][][]byte, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	n, err := r.PageCount()
	if err != nil {
		return nil, err
	}
	pages := make([][][]byte, n)
	for i := range n {
		page, err := r.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		imgs, err := r.ExtractPageImages(page)
		if err != nil {
			return nil, fmt.Errorf("images of page %d: %w", i+1, err)
		}
		for j := range imgs {
			png, err := imgs[j].ToPNG()
			if err != nil {
				return nil, fmt.Errorf("encoding image %d of page %d: %w", j+1, i+1, err)
			}
			pages[i] = append(pages[i], png)
		}
	}
	return pages, nil
}

// ocrPages recognises the text of every page image. Each page with
// recognised text is emitted under an "<!-- ocr page N -->" marker; the
// count of such pages is returned with the text.
func (t *TabulaExtractor) ocrPages(ctx context.Context, path string, languages []string) (string, int, error) {
	langs, err := TesseractLanguages(languages)
	if err != nil {
		return "", 0, err
	}
	images, err := t.pageImages(path)
	if err != nil {
		return "", 0, fmt.Errorf("reading page images: %w", err)
	}

	client, err := t.newRecognizer()
	if err != nil {
		return "", 0, err
	}
	defer client.Close()
	if err := client.SetLanguage(langs); err != nil {
		return "", 0, fmt.Errorf("setting OCR language %s: %w", langs, err)
	}

	var b strings.Builder
	pages := 0
	for i, imgs := range images {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		var parts []string
		for _, img := range imgs {
			txt, err := client.RecognizeImage(img)
			if err != nil {
				return "", 0, fmt.Errorf("page %d: %w", i+1, err)
			}
			if txt = strings.TrimSpace(txt); txt != "" {
				parts = append(parts, txt)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if pages > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<!-- ocr page %d -->\n%s", i+1, strings.Join(parts, "\n"))
		pages++
	}
	return b.String(), pages, nil
}
