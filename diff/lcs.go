package diff

import "strings"

// LineKind classifies one line of a diff.
type LineKind string

const (
	LineAdded     LineKind = "added"
	LineRemoved   LineKind = "removed"
	LineUnchanged LineKind = "unchanged"
)

// LineChange is one entry in a line-level edit script.
type LineChange struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// ReplacedLine pairs a removed line with the added line that replaced it.
type ReplacedLine struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// trimLine strips trailing whitespace; line equality ignores it so
// re-extracted documents with ragged right edges still compare equal.
func trimLine(s string) string {
	return strings.TrimRight(s, " \t\r")
}

// splitLines splits text into trimmed lines for comparison.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = trimLine(line)
	}
	return lines
}

// linesEqual reports whether two line sequences match exactly.
func linesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// lineDiff computes a minimal edit script between two line sequences using
// a longest-common-subsequence table. The script is stable: on ties the
// backtrack prefers keeping a line, and removals are emitted before the
// additions that displace them, so identical inputs always produce an
// identical script.
func lineDiff(left, right []string) []LineChange {
	n, m := len(left), len(right)

	// lcs[i][j] = length of the LCS of left[i:] and right[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if left[i] == right[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	script := make([]LineChange, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case left[i] == right[j]:
			script = append(script, LineChange{Kind: LineUnchanged, Text: left[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			script = append(script, LineChange{Kind: LineRemoved, Text: left[i]})
			i++
		default:
			script = append(script, LineChange{Kind: LineAdded, Text: right[j]})
			j++
		}
	}
	for ; i < n; i++ {
		script = append(script, LineChange{Kind: LineRemoved, Text: left[i]})
	}
	for ; j < m; j++ {
		script = append(script, LineChange{Kind: LineAdded, Text: right[j]})
	}
	return script
}

// collapseScript folds an edit script into added, removed, and replaced
// line groups. A removal immediately followed by an addition reads as an
// in-place edit and becomes a ReplacedLine; everything else stays an
// independent add or remove. Unchanged lines are dropped.
func collapseScript(script []LineChange) (added, removed []string, replaced []ReplacedLine) {
	for i := 0; i < len(script); i++ {
		switch script[i].Kind {
		case LineAdded:
			added = append(added, script[i].Text)
		case LineRemoved:
			if i+1 < len(script) && script[i+1].Kind == LineAdded {
				replaced = append(replaced, ReplacedLine{
					Old: script[i].Text,
					New: script[i+1].Text,
				})
				i++
				continue
			}
			removed = append(removed, script[i].Text)
		}
	}
	return added, removed, replaced
}
