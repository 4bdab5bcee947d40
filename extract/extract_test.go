package extract

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// stub is a scripted extractor for chain tests.
type stub struct {
	name string
	text string
	err  error
}

func (s stub) Name() string { return s.name }

func (s stub) Extract(_ []byte) (string, error) { return s.text, s.err }

func TestChainFallbackOrder(t *testing.T) {
	tests := []struct {
		name       string
		extractors []Extractor
		wantText   string
		wantMethod string
		wantErr    bool
	}{
		{
			name: "primary succeeds",
			extractors: []Extractor{
				stub{name: "primary", text: "hello"},
				stub{name: "secondary", text: "unused"},
			},
			wantText:   "hello",
			wantMethod: "primary",
		},
		{
			name: "primary errors, secondary used",
			extractors: []Extractor{
				stub{name: "primary", err: fmt.Errorf("boom")},
				stub{name: "secondary", text: "fallback"},
			},
			wantText:   "fallback",
			wantMethod: "secondary",
		},
		{
			name: "primary empty counts as failure",
			extractors: []Extractor{
				stub{name: "primary", text: "   \n\t"},
				stub{name: "secondary", text: "fallback"},
			},
			wantText:   "fallback",
			wantMethod: "secondary",
		},
		{
			name: "all strategies fail",
			extractors: []Extractor{
				stub{name: "primary", err: fmt.Errorf("boom")},
				stub{name: "secondary", text: ""},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewChain(tt.extractors...).Extract([]byte("data"))
			if tt.wantErr {
				var ee *ExtractionError
				if !errors.As(err, &ee) {
					t.Fatalf("expected ExtractionError, got %v", err)
				}
				if len(ee.Attempts) != len(tt.extractors) {
					t.Errorf("attempts: %v", ee.Attempts)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if doc.Text != tt.wantText || doc.Method != tt.wantMethod {
				t.Errorf("got (%q, %q), want (%q, %q)", doc.Text, doc.Method, tt.wantText, tt.wantMethod)
			}
		})
	}
}

func TestPlainExtract(t *testing.T) {
	p := NewPlain()

	text, err := p.Extract([]byte("line one\r\nline two\rline three"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "line one\nline two\nline three" {
		t.Errorf("line endings: %q", text)
	}

	if _, err := p.Extract([]byte{0x00, 0x01, 0xff}); err == nil {
		t.Error("binary payload accepted")
	}
	if _, err := p.Extract([]byte("text\x00with nul")); err == nil {
		t.Error("NUL byte accepted")
	}
}

func TestPDFRejectsNonPDF(t *testing.T) {
	if _, err := NewPDF().Extract([]byte("plain text, no header")); err == nil {
		t.Error("non-PDF payload accepted")
	}
}

func TestTextFromStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "Tj on one line",
			stream: "BT\n(Hello) Tj\n( World) Tj\nET",
			want:   "Hello World",
		},
		{
			name:   "TJ array",
			stream: "BT\n[(Sec) -250 (tion 1)] TJ\nET",
			want:   "Section 1",
		},
		{
			name:   "quote starts new line",
			stream: "BT\n(first) Tj\n(second) '\nET",
			want:   "first\nsecond",
		},
		{
			name:   "T-star breaks line",
			stream: "BT\n(first) Tj\nT*\n(second) Tj\nET",
			want:   "first\nsecond",
		},
		{
			name:   "escapes decoded",
			stream: "BT\n(a\\(b\\)c \\040d) Tj\nET",
			want:   "a(b)c d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textFromStream([]byte(tt.stream))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`tab\there`, "tab\there"},
		{`octal\101`, "octalA"},
		{`paren\(x\)`, "paren(x)"},
		{`back\\slash`, `back\slash`},
	}

	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.in)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanLine(t *testing.T) {
	if got := cleanLine("  a   b\t\tc  "); got != "a b c" {
		t.Errorf("cleanLine: %q", got)
	}
	if got := cleanLine(strings.Repeat(" ", 5)); got != "" {
		t.Errorf("whitespace-only: %q", got)
	}
}
