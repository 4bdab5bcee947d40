// Package diff computes section-level and line-level differences between
// two segmented documents.
package diff

import (
	"strings"

	"github.com/kartik-devs/lcp-compare/sections"
)

// Status classifies how a section changed between two documents.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
)

// SectionDiff is the comparison outcome for one named section. Status is
// derived purely from line-level equality: identical trimmed line
// sequences are unchanged, a section absent on one side is added or
// removed wholesale, anything else is modified.
type SectionDiff struct {
	Name          string         `json:"name"`
	Status        Status         `json:"status"`
	AddedLines    []string       `json:"added_lines,omitempty"`
	RemovedLines  []string       `json:"removed_lines,omitempty"`
	ModifiedPairs []ReplacedLine `json:"modified_pairs,omitempty"`
}

// Summary counts sections by status.
type Summary struct {
	Total     int `json:"total"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
}

// Compare diffs two segmented documents, left being the older rendition.
// Output order is the contract: left-document section order first, then
// right-only sections in their own order, never map order, so identical
// inputs give byte-identical results.
//
// If either side segmented to a single implicit section the documents are
// compared as whole texts under one section name.
func Compare(left, right *sections.Document) ([]SectionDiff, Summary) {
	if left.Implicit() || right.Implicit() {
		return compareWhole(left, right)
	}

	names := unionNames(left, right)

	diffs := make([]SectionDiff, 0, len(names))
	for _, name := range names {
		leftBody, inLeft := left.Body(name)
		rightBody, inRight := right.Body(name)
		diffs = append(diffs, compareSection(name, leftBody, inLeft, rightBody, inRight))
	}
	return diffs, summarize(diffs)
}

// unionNames interleaves section names: all of left's in order, then names
// appearing only in right, in right's order.
func unionNames(left, right *sections.Document) []string {
	names := left.Names()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	for _, name := range right.Names() {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// compareWhole diffs two documents as single blobs of text. The section
// is named by whichever side was implicit, preferring the right.
func compareWhole(left, right *sections.Document) ([]SectionDiff, Summary) {
	name := sections.ImplicitName
	switch {
	case right.Implicit():
		name = right.Names()[0]
	case left.Implicit():
		name = left.Names()[0]
	}

	d := compareSection(name, wholeText(left), left.Len() > 0, wholeText(right), right.Len() > 0)
	diffs := []SectionDiff{d}
	return diffs, summarize(diffs)
}

// wholeText reconstructs a document's full text, re-inserting heading
// names so an implicit side sees the same lines the segmented side was
// built from.
func wholeText(d *sections.Document) string {
	var out []string
	for _, sec := range d.Sections() {
		if sec.Name != sections.PreambleName && sec.Name != sections.ImplicitName {
			out = append(out, sec.Name)
		}
		if sec.Body != "" {
			out = append(out, sec.Body)
		}
	}
	return strings.Join(out, "\n")
}

func compareSection(name, leftBody string, inLeft bool, rightBody string, inRight bool) SectionDiff {
	switch {
	case inLeft && !inRight:
		return SectionDiff{
			Name:         name,
			Status:       StatusRemoved,
			RemovedLines: splitLines(leftBody),
		}
	case !inLeft && inRight:
		return SectionDiff{
			Name:       name,
			Status:     StatusAdded,
			AddedLines: splitLines(rightBody),
		}
	}

	leftLines := splitLines(leftBody)
	rightLines := splitLines(rightBody)
	if linesEqual(leftLines, rightLines) {
		return SectionDiff{Name: name, Status: StatusUnchanged}
	}

	added, removed, replaced := collapseScript(lineDiff(leftLines, rightLines))
	return SectionDiff{
		Name:          name,
		Status:        StatusModified,
		AddedLines:    added,
		RemovedLines:  removed,
		ModifiedPairs: replaced,
	}
}

func summarize(diffs []SectionDiff) Summary {
	s := Summary{Total: len(diffs)}
	for _, d := range diffs {
		switch d.Status {
		case StatusAdded:
			s.Added++
		case StatusRemoved:
			s.Removed++
		case StatusModified:
			s.Modified++
		case StatusUnchanged:
			s.Unchanged++
		}
	}
	return s
}
