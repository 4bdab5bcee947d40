package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/kartik-devs/lcp-compare/compare"
	"github.com/kartik-devs/lcp-compare/diff"
)

// htmlLineCap bounds how many lines of each change kind a section shows;
// the remainder collapses into an "and N more" marker.
const htmlLineCap = 10

const htmlStyle = `body { font-family: 'Segoe UI', Tahoma, sans-serif; max-width: 1100px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
.header { background: #4a5568; color: white; padding: 24px; border-radius: 8px; margin-bottom: 24px; }
.pair { margin-bottom: 32px; }
.pair-title { font-size: 1.2em; font-weight: bold; margin-bottom: 8px; }
.summary { color: #444; margin-bottom: 12px; }
.section { background: white; padding: 16px; margin-bottom: 12px; border-radius: 6px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
.section-title { font-weight: bold; border-bottom: 1px solid #ddd; padding-bottom: 6px; margin-bottom: 10px; }
.badge { display: inline-block; padding: 2px 10px; border-radius: 12px; font-size: 0.8em; font-weight: bold; margin-left: 8px; }
.badge-added { background: #d4edda; color: #155724; }
.badge-removed { background: #f8d7da; color: #721c24; }
.badge-modified { background: #fff3cd; color: #856404; }
.badge-unchanged { background: #d1ecf1; color: #0c5460; }
.badge-failed { background: #e2e3e5; color: #383d41; }
.lines { margin: 8px 0; padding: 8px 12px; border-left: 3px solid #ddd; background: #fafafa; white-space: pre-wrap; }
.lines.added { border-left-color: #28a745; background: #f0fff4; }
.lines.removed { border-left-color: #dc3545; background: #fff5f5; }
.lines.modified { border-left-color: #ffc107; background: #fffdf0; }
.more { color: #888; font-style: italic; }`

// renderHTML builds the interactive-markup artifact: per pair the summary
// counts, then every section in segmentation order with a status badge and
// its line-level changes.
func renderHTML(res *compare.Result) []byte {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\"/>\n")
	fmt.Fprintf(&sb, "<title>LCP Version Comparison - Case %s</title>\n", html.EscapeString(res.CaseID))
	sb.WriteString("<style>\n" + htmlStyle + "\n</style>\n</head>\n<body>\n")

	sb.WriteString("<div class=\"header\">\n<h1>LCP Version Comparison Report</h1>\n")
	fmt.Fprintf(&sb, "<p><strong>Case ID:</strong> %s</p>\n", html.EscapeString(res.CaseID))
	fmt.Fprintf(&sb, "<p><strong>Mode:</strong> %s</p>\n", html.EscapeString(string(res.Mode)))
	fmt.Fprintf(&sb, "<p><strong>Generated:</strong> %s</p>\n", res.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "<p><strong>Run:</strong> %s</p>\n", html.EscapeString(res.RunID))
	sb.WriteString("</div>\n")

	for _, pair := range res.Pairs {
		sb.WriteString("<div class=\"pair\">\n")
		fmt.Fprintf(&sb, "<div class=\"pair-title\">%s</div>\n", html.EscapeString(pairTitle(pair)))

		if !pair.Comparable {
			fmt.Fprintf(&sb, "<div class=\"section\"><div class=\"section-title\">Not comparable<span class=\"badge badge-failed\">FAILED</span></div>\n")
			fmt.Fprintf(&sb, "<p>Could not extract: %s</p></div>\n", html.EscapeString(strings.Join(pair.FailedKeys, ", ")))
			sb.WriteString("</div>\n")
			continue
		}

		fmt.Fprintf(&sb, "<div class=\"summary\">%s</div>\n", html.EscapeString(summaryLine(pair)))
		for _, sec := range pair.Sections {
			writeSectionHTML(&sb, sec)
		}
		sb.WriteString("</div>\n")
	}

	if len(res.VersionErrors) > 0 {
		sb.WriteString("<div class=\"section\">\n<div class=\"section-title\">Version errors</div>\n<ul>\n")
		for _, ve := range res.VersionErrors {
			fmt.Fprintf(&sb, "<li>%s</li>\n", html.EscapeString(ve.Error()))
		}
		sb.WriteString("</ul>\n</div>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String())
}

func writeSectionHTML(sb *strings.Builder, sec diff.SectionDiff) {
	sb.WriteString("<div class=\"section\">\n")
	fmt.Fprintf(sb, "<div class=\"section-title\">%s<span class=\"badge badge-%s\">%s</span></div>\n",
		html.EscapeString(sec.Name), sec.Status, strings.ToUpper(string(sec.Status)))

	switch sec.Status {
	case diff.StatusUnchanged:
		sb.WriteString("<p>No changes detected in this section.</p>\n")
	case diff.StatusAdded, diff.StatusModified, diff.StatusRemoved:
		writeLinesHTML(sb, "added", "Added lines", sec.AddedLines)
		writeLinesHTML(sb, "removed", "Removed lines", sec.RemovedLines)
		if len(sec.ModifiedPairs) > 0 {
			sb.WriteString("<div class=\"lines modified\"><strong>Modified lines:</strong>\n")
			for i, pair := range sec.ModifiedPairs {
				if i == htmlLineCap {
					fmt.Fprintf(sb, "<p class=\"more\">… and %d more changes</p>\n", len(sec.ModifiedPairs)-htmlLineCap)
					break
				}
				fmt.Fprintf(sb, "<p><strong>Old:</strong> %s<br/><strong>New:</strong> %s</p>\n",
					html.EscapeString(pair.Old), html.EscapeString(pair.New))
			}
			sb.WriteString("</div>\n")
		}
	}
	sb.WriteString("</div>\n")
}

func writeLinesHTML(sb *strings.Builder, class, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(sb, "<div class=\"lines %s\"><strong>%s:</strong>\n", class, label)
	for i, line := range lines {
		if i == htmlLineCap {
			fmt.Fprintf(sb, "<p class=\"more\">… and %d more lines</p>\n", len(lines)-htmlLineCap)
			break
		}
		fmt.Fprintf(sb, "<p>%s</p>\n", html.EscapeString(line))
	}
	sb.WriteString("</div>\n")
}
