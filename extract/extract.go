// Package extract converts raw document bytes to plain text through an
// ordered chain of extraction strategies.
package extract

import (
	"fmt"
	"strings"
)

// Extractor is one text-extraction strategy. Implementations must be pure:
// same bytes in, same text out, no side effects.
type Extractor interface {
	// Name identifies the strategy in results and logs.
	Name() string
	// Extract returns the plain text found in data. Returning empty text
	// without an error is treated the same as failing.
	Extract(data []byte) (string, error)
}

// Document is the outcome of a successful extraction.
type Document struct {
	VersionKey string
	Text       string
	Method     string
}

// ExtractionError means every strategy in the chain came up empty:
// corrupt file, password-protected, or an image-only scan with no text
// layer. Extraction is deterministic, so these are never retried.
type ExtractionError struct {
	Attempts []string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no text extracted (tried %s): %v",
		strings.Join(e.Attempts, ", "), e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Chain tries strategies in order and returns the first non-empty text.
type Chain struct {
	extractors []Extractor
}

// NewChain builds a chain from the given strategies, tried front to back.
func NewChain(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// DefaultChain is the production chain: pdfcpu content-stream extraction
// with a plain-text fallback for non-PDF payloads.
func DefaultChain() *Chain {
	return NewChain(NewPDF(), NewPlain())
}

// Extract runs the chain over data. A strategy that errors or yields only
// whitespace falls through to the next; if all fail the errors are joined
// into one ExtractionError. The returned Document records which strategy
// produced the text; VersionKey is left for the caller to fill in.
func (c *Chain) Extract(data []byte) (Document, error) {
	var attempts []string
	var firstErr error

	for _, ex := range c.extractors {
		attempts = append(attempts, ex.Name())
		text, err := ex.Extract(data)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", ex.Name(), err)
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		return Document{Text: text, Method: ex.Name()}, nil
	}

	if firstErr == nil {
		firstErr = fmt.Errorf("all strategies returned empty text")
	}
	return Document{}, &ExtractionError{Attempts: attempts, Err: firstErr}
}
