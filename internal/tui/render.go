package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineHeader
	lineDecision
	lineReason
	lineLabels
	lineMarker
	lineDoc
	lineError
)

// renderedLine is a single line of detail output ready for display.
type renderedLine struct {
	Kind     lineKind
	Content  string
	Decision string // set for lineDecision

	// Syntax highlighting tokens for document lines (nil = plain)
	Tokens []Token
}

// renderReview produces the detail pane lines for one review, either
// the verdict summary or the raw status document.
func renderReview(r Review, rawDoc bool) []renderedLine {
	title := r.Change.Descriptor.Title
	if title == "" {
		title = "(untitled)"
	}
	header := title
	if r.Change.Handle != "" {
		header = r.Change.Handle + "  " + title
	}

	lines := []renderedLine{{Kind: lineHeader, Content: header}}

	if r.Err != nil {
		lines = append(lines, renderedLine{Kind: lineError, Content: "evaluation failed: " + r.Err.Error()})
		return lines
	}

	if rawDoc {
		return append(lines, renderDocument(r.Result.Document)...)
	}

	res := r.Result
	lines = append(lines,
		renderedLine{
			Kind:     lineDecision,
			Content:  "Decision: " + res.Verdict.Decision.String(),
			Decision: res.Verdict.Decision.String(),
		},
		renderedLine{
			Kind: lineReason,
			Content: fmt.Sprintf("Category: %s (%s)",
				res.Verdict.Category, res.Classification.Source),
		},
	)

	if res.ScoreKnown {
		lines = append(lines, renderedLine{Kind: lineReason, Content: fmt.Sprintf("Quality score: %.2f", res.Score)})
	} else {
		lines = append(lines, renderedLine{Kind: lineReason, Content: "Quality score: unavailable"})
	}

	if len(res.Verdict.Reasons) > 0 {
		lines = append(lines, renderedLine{Kind: lineBlank})
		for _, reason := range res.Verdict.Reasons {
			lines = append(lines, renderedLine{Kind: lineReason, Content: "• " + reason})
		}
	}

	if len(res.Classification.DerivedLabels) > 0 {
		var labels []string
		for l := range res.Classification.DerivedLabels {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		lines = append(lines,
			renderedLine{Kind: lineBlank},
			renderedLine{Kind: lineLabels, Content: "Labels: " + strings.Join(labels, ", ")},
		)
	}

	for i, tr := range res.Transitions {
		lines = append(lines, renderedLine{
			Kind:    lineLabels,
			Content: fmt.Sprintf("Transition: %s %s → %s", tr.Label, tr.Action, res.Behaviors[i]),
		})
	}

	if res.DiffStats.Files > 0 {
		lines = append(lines,
			renderedLine{Kind: lineBlank},
			renderedLine{Kind: lineReason, Content: fmt.Sprintf("Diff: %d files, +%d -%d",
				res.DiffStats.Files, res.DiffStats.Added, res.DiffStats.Deleted)},
		)
	}

	return lines
}

// renderDocument turns the status document into highlighted lines.
// Marker lines stay dim so the managed structure is visible but quiet.
func renderDocument(doc string) []renderedLine {
	raw := strings.Split(doc, "\n")
	highlighted := highlightMarkdown(raw)

	lines := make([]renderedLine, 0, len(raw))
	for i, text := range raw {
		rl := renderedLine{Kind: lineDoc, Content: text}
		if isMarkerLine(text) {
			rl.Kind = lineMarker
		} else if i < len(highlighted) {
			rl.Tokens = highlighted[i].Tokens
		}
		if text == "" {
			rl.Kind = lineBlank
		}
		lines = append(lines, rl)
	}
	return lines
}

func isMarkerLine(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<!--") || strings.HasPrefix(t, "<SECTION-")
}

// styleLine applies styling to a rendered line for the detail pane.
func styleLine(rl renderedLine, width int) string {
	switch rl.Kind {
	case lineBlank:
		return ""

	case lineHeader:
		return detailHeaderStyle.Render(truncate(rl.Content, width))

	case lineDecision:
		style := decisionEscalateStyle
		switch rl.Decision {
		case "allow":
			style = decisionAllowStyle
		case "block":
			style = decisionBlockStyle
		}
		return style.Render(truncate(rl.Content, width))

	case lineLabels:
		return labelStyle.Render(truncate(rl.Content, width))

	case lineMarker:
		return markerStyle.Render(truncate(rl.Content, width))

	case lineError:
		return errorStyle.Render(truncate(rl.Content, width))

	case lineDoc:
		if len(rl.Tokens) == 0 {
			return reasonStyle.Render(truncate(rl.Content, width))
		}
		var b strings.Builder
		for _, tok := range rl.Tokens {
			if tok.Color != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
			} else {
				b.WriteString(tok.Text)
			}
		}
		if lipgloss.Width(b.String()) > width {
			return reasonStyle.Render(truncate(rl.Content, width))
		}
		return b.String()

	default:
		return reasonStyle.Render(truncate(rl.Content, width))
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
