package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Plain passes UTF-8 text payloads through unchanged. It backstops the PDF
// strategy for fixtures and for renditions already stored as text.
type Plain struct{}

// NewPlain creates the passthrough extractor.
func NewPlain() *Plain { return &Plain{} }

func (p *Plain) Name() string { return "plain" }

// Extract accepts valid UTF-8 without NUL bytes and normalises line
// endings. Binary payloads are rejected so a broken PDF does not leak
// stream garbage into a comparison.
func (p *Plain) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("not a text payload")
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}
