// Package sections splits extracted document text into named, ordered
// sections using heading-recognition rules.
package sections

import (
	"regexp"
	"strings"
)

// Names for spans not introduced by a heading.
const (
	// PreambleName labels text that precedes the first heading.
	PreambleName = "Preamble"
	// ImplicitName labels the whole text when no heading rule matches.
	ImplicitName = "Full Document"
)

// Section is a named contiguous span of document text.
type Section struct {
	Name  string
	Index int
	Body  string
}

// Document is an ordered set of sections. Order follows the physical
// position of headings in the source text.
type Document struct {
	sections []Section
	byName   map[string]int
	implicit bool
}

// Rule recognizes one family of headings. Pattern is matched against a
// single line; Label is a regexp expansion template ("Section $1: $2")
// producing the section name from the captures.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Label   string
}

// DefaultRules returns the heading grammars seen in generated reports, in
// priority order. The first rule that matches anywhere in a document fixes
// the grammar for that whole document; rules are never mixed.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "section-heading",
			Pattern: regexp.MustCompile(`(?i)^Section\s+(\d+)\s*[:\-]?\s+(\S.*)$`),
			Label:   "Section $1: $2",
		},
		{
			Name:    "numbered-heading",
			Pattern: regexp.MustCompile(`^(\d+)\.\s+([A-Z].*)$`),
			Label:   "Section $1: $2",
		},
		{
			Name:    "part-heading",
			Pattern: regexp.MustCompile(`(?i)^Part\s+([IVX]+)\s*[:\-]?\s+(\S.*)$`),
			Label:   "Part $1: $2",
		},
	}
}

// Segmenter applies an ordered rule list to document text.
type Segmenter struct {
	rules []Rule
}

// NewSegmenter creates a segmenter with the given rules, or DefaultRules
// when none are supplied.
func NewSegmenter(rules ...Rule) *Segmenter {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Segmenter{rules: rules}
}

// Segment splits text into sections. The first rule (in priority order)
// matching any line selects the grammar; text before its first heading
// becomes the preamble. When no rule matches, the whole text is one
// implicit section.
func (s *Segmenter) Segment(text string) *Document {
	lines := strings.Split(text, "\n")

	rule, ok := s.selectRule(lines)
	if !ok {
		doc := newDocument(true)
		doc.append(ImplicitName, text)
		return doc
	}

	doc := newDocument(false)
	current := PreambleName
	var body []string

	flush := func() {
		joined := strings.Join(body, "\n")
		// An empty preamble means the document opened with a heading.
		if current == PreambleName && strings.TrimSpace(joined) == "" {
			return
		}
		doc.append(current, joined)
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := rule.Pattern.FindStringSubmatchIndex(trimmed); m != nil {
			flush()
			name := string(rule.Pattern.ExpandString(nil, rule.Label, trimmed, m))
			current = strings.TrimSpace(name)
			body = body[:0]
			continue
		}
		body = append(body, line)
	}
	flush()

	return doc
}

// selectRule returns the highest-priority rule matching any line.
func (s *Segmenter) selectRule(lines []string) (Rule, bool) {
	for _, rule := range s.rules {
		for _, line := range lines {
			if rule.Pattern.MatchString(strings.TrimSpace(line)) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

func newDocument(implicit bool) *Document {
	return &Document{byName: make(map[string]int), implicit: implicit}
}

// append adds a section; a duplicate name keeps the first occurrence.
func (d *Document) append(name, body string) {
	if _, exists := d.byName[name]; exists {
		return
	}
	d.byName[name] = len(d.sections)
	d.sections = append(d.sections, Section{
		Name:  name,
		Index: len(d.sections),
		Body:  strings.Trim(body, "\n"),
	})
}

// Sections returns sections in source order.
func (d *Document) Sections() []Section { return d.sections }

// Names returns section names in source order.
func (d *Document) Names() []string {
	names := make([]string, len(d.sections))
	for i, sec := range d.sections {
		names[i] = sec.Name
	}
	return names
}

// Body returns the named section's text.
func (d *Document) Body(name string) (string, bool) {
	i, ok := d.byName[name]
	if !ok {
		return "", false
	}
	return d.sections[i].Body, true
}

// Len returns the number of sections.
func (d *Document) Len() int { return len(d.sections) }

// Implicit reports whether no heading rule matched and the whole text was
// kept as a single section.
func (d *Document) Implicit() bool { return d.implicit }
