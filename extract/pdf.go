package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF extracts text by walking pdfcpu content streams. Line structure is
// preserved: text-positioning operators become line breaks so downstream
// section and line diffing see the document's visual layout.
type PDF struct {
	conf *model.Configuration
}

// NewPDF creates the pdfcpu-backed extractor.
func NewPDF() *PDF {
	return &PDF{conf: model.NewDefaultConfiguration()}
}

func (p *PDF) Name() string { return "pdfcpu" }

// Extract returns the text of every page, pages joined by newlines.
func (p *PDF) Extract(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", fmt.Errorf("not a PDF payload")
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), p.conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// textFromStream parses content stream operators for shown text.
// Tj/TJ append to the current line; ', T* and TD start a new one.
func textFromStream(data []byte) string {
	var lines []string
	var cur strings.Builder

	flush := func() {
		line := cleanLine(cur.String())
		cur.Reset()
		if line != "" {
			lines = append(lines, line)
		}
	}

	appendMatches := func(line []byte) {
		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			if text := decodePDFString(m[1]); text != "" {
				cur.WriteString(text)
			}
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// (text) Tj and [(text) -100 (more)] TJ show text on the
		// current line.
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			appendMatches(line)

		// (text) ' moves to the next line, then shows text.
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			flush()
			appendMatches(line)

		// TD and T* move to the next line.
		case bytes.HasSuffix(line, []byte("TD")), bytes.Equal(line, []byte("T*")):
			flush()

		// Td repositions; treat as a word gap within the line.
		case bytes.HasSuffix(line, []byte("Td")):
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}

		// ET ends a text object.
		case bytes.Equal(line, []byte("ET")):
			flush()
		}
	}
	flush()

	return strings.Join(lines, "\n")
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				// Octal escape (e.g. \040 for space).
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(raw[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// cleanLine collapses runs of whitespace within one line and drops
// non-printable bytes left over from stream decoding.
func cleanLine(s string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
