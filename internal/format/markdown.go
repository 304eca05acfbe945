// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pdiddy/aigrok/pkg/types"
)

const (
	notAvailable = "N/A"
	separator    = "\n---\n"
)

func markdownLines(r types.ProcessingResult) []string {
	pages := notAvailable
	if r.PageCount != 0 {
		pages = strconv.Itoa(r.PageCount)
	}

	lines := []string{
		"# " + types.ResolveFilename(r),
		"Text: " + orNA(r.Text),
		"Page Count: " + pages,
		"LLM Response: " + orNA(r.LLMResponse),
	}

	if r.Metadata.Len() > 0 {
		lines = append(lines, "## Metadata")
		for _, e := range r.Metadata.Entries() {
			lines = append(lines, e.Key+": "+scalar(e.Value))
		}
	}

	if r.Error != "" {
		lines = append(lines, "## Error\n"+r.Error)
	}
	return lines
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return notAvailable
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
