// Package report renders a comparison result into a downloadable artifact.
// Rendering is a pure function of the result: diffs are never recomputed
// and the detail always matches the summary counts the result carries.
package report

import (
	"fmt"

	"github.com/kartik-devs/lcp-compare/compare"
)

// Encoding selects the output artifact type.
type Encoding string

const (
	// EncodingHTML produces a self-contained interactive HTML document.
	EncodingHTML Encoding = "html"
	// EncodingPDF produces a paginated PDF document.
	EncodingPDF Encoding = "pdf"
)

// RenderError rejects an unsupported encoding or a malformed result.
type RenderError struct {
	Encoding Encoding
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Encoding, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render produces the report bytes for res in the requested encoding. The
// encoding is validated before any rendering work begins.
func Render(res *compare.Result, enc Encoding) ([]byte, error) {
	if res == nil {
		return nil, &RenderError{Encoding: enc, Err: fmt.Errorf("nil result")}
	}
	switch enc {
	case EncodingHTML:
		return renderHTML(res), nil
	case EncodingPDF:
		return renderPDF(res)
	default:
		return nil, &RenderError{Encoding: enc, Err: fmt.Errorf("unsupported encoding")}
	}
}

// pairTitle labels one version pair in report output.
func pairTitle(p compare.Pair) string {
	return fmt.Sprintf("%s → %s", baseName(p.LeftKey), baseName(p.RightKey))
}

func baseName(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}

func summaryLine(p compare.Pair) string {
	s := p.Summary
	return fmt.Sprintf("%d sections: %d added, %d removed, %d modified, %d unchanged",
		s.Total, s.Added, s.Removed, s.Modified, s.Unchanged)
}
