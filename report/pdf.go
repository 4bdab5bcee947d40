package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kartik-devs/lcp-compare/compare"
	"github.com/kartik-devs/lcp-compare/diff"
)

// pdfLineCap bounds per-kind detail lines in the paginated artifact,
// matching the tighter budget of a printed page.
const pdfLineCap = 5

// A4 geometry in points, lower-left origin.
const (
	pdfTopY    = 792.0
	pdfBottomY = 50.0
	pdfLeftX   = 50.0
	pdfLeading = 14.0
	pdfMaxCols = 100
)

// pdfcpu create-JSON shapes. Only the subset the report needs.
type pdfDoc struct {
	Paper string             `json:"paper"`
	Pages map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfText struct {
	Value    string     `json:"value"`
	Font     pdfFont    `json:"font"`
	Position [2]float64 `json:"position"`
}

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// styledLine is one report line before pagination.
type styledLine struct {
	text string
	size int
	bold bool
}

// renderPDF lays the report out as styled lines, paginates them onto A4
// pages, and hands the page description to pdfcpu's create API.
func renderPDF(res *compare.Result) ([]byte, error) {
	lines := layoutLines(res)

	doc := pdfDoc{Paper: "A4", Pages: make(map[string]pdfPage)}
	pageNr := 1
	y := pdfTopY
	var texts []pdfText

	flushPage := func() {
		if len(texts) == 0 {
			return
		}
		doc.Pages[strconv.Itoa(pageNr)] = pdfPage{Content: pdfContent{Text: texts}}
		pageNr++
		texts = nil
		y = pdfTopY
	}

	for _, line := range lines {
		leading := pdfLeading * float64(line.size) / 10
		if y-leading < pdfBottomY {
			flushPage()
		}
		if line.text != "" {
			font := pdfFont{Name: "Helvetica", Size: line.size}
			if line.bold {
				font.Name = "Helvetica-Bold"
			}
			texts = append(texts, pdfText{
				Value:    clipLine(line.text),
				Font:     font,
				Position: [2]float64{pdfLeftX, y},
			})
		}
		y -= leading
	}
	flushPage()

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, &RenderError{Encoding: EncodingPDF, Err: err}
	}

	var buf bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.Create(nil, bytes.NewReader(payload), &buf, conf); err != nil {
		return nil, &RenderError{Encoding: EncodingPDF, Err: fmt.Errorf("pdfcpu create: %w", err)}
	}
	return buf.Bytes(), nil
}

// layoutLines flattens the result into the printed line sequence.
func layoutLines(res *compare.Result) []styledLine {
	var out []styledLine
	add := func(text string, size int, bold bool) {
		out = append(out, styledLine{text: text, size: size, bold: bold})
	}
	blank := func() { add("", 10, false) }

	add("LCP Version Comparison Report", 18, true)
	blank()
	add(fmt.Sprintf("Case ID: %s", res.CaseID), 10, false)
	add(fmt.Sprintf("Mode: %s", res.Mode), 10, false)
	add(fmt.Sprintf("Generated: %s", res.GeneratedAt.Format("2006-01-02 15:04:05 MST")), 10, false)
	add(fmt.Sprintf("Run: %s", res.RunID), 10, false)
	blank()

	for _, pair := range res.Pairs {
		add(pairTitle(pair), 13, true)
		if !pair.Comparable {
			add(fmt.Sprintf("NOT COMPARABLE - could not extract: %s",
				strings.Join(pair.FailedKeys, ", ")), 10, false)
			blank()
			continue
		}
		add(summaryLine(pair), 10, false)
		blank()

		for _, sec := range pair.Sections {
			add(fmt.Sprintf("%s  [%s]", sec.Name, strings.ToUpper(string(sec.Status))), 11, true)
			if sec.Status == diff.StatusUnchanged {
				continue
			}
			layoutKind(&out, "+", sec.AddedLines)
			layoutKind(&out, "-", sec.RemovedLines)
			for i, rp := range sec.ModifiedPairs {
				if i == pdfLineCap {
					add(fmt.Sprintf("   ... and %d more changes", len(sec.ModifiedPairs)-pdfLineCap), 9, false)
					break
				}
				add(fmt.Sprintf("~ old: %s", rp.Old), 9, false)
				add(fmt.Sprintf("  new: %s", rp.New), 9, false)
			}
			blank()
		}
	}

	if len(res.VersionErrors) > 0 {
		add("Version errors", 13, true)
		for _, ve := range res.VersionErrors {
			add(ve.Error(), 9, false)
		}
	}
	return out
}

func layoutKind(out *[]styledLine, marker string, lines []string) {
	for i, line := range lines {
		if i == pdfLineCap {
			*out = append(*out, styledLine{
				text: fmt.Sprintf("   ... and %d more lines", len(lines)-pdfLineCap),
				size: 9,
			})
			return
		}
		*out = append(*out, styledLine{text: marker + " " + line, size: 9})
	}
}

// clipLine keeps a line within the printable column budget.
func clipLine(s string) string {
	runes := []rune(s)
	if len(runes) <= pdfMaxCols {
		return s
	}
	return string(runes[:pdfMaxCols-1]) + "…"
}
