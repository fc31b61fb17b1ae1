// Package docsync maintains a marker-delimited status document. Each
// concern owns one named section; upserts replace exactly that section
// and leave every other byte of the document alone.
package docsync

import (
	"fmt"
	"regexp"
	"strings"
)

// DocumentMarker identifies the managed document among unrelated
// external content (e.g. other comments on the same thread).
const DocumentMarker = "<!-- mergegate-status -->"

// StartMarker returns the opening delimiter for a section.
func StartMarker(sectionID string) string {
	return "<SECTION-START:" + sectionID + ">"
}

// EndMarker returns the closing delimiter for a section.
func EndMarker(sectionID string) string {
	return "<SECTION-END:" + sectionID + ">"
}

// Warning is a non-fatal diagnostic raised while upserting.
type Warning struct {
	SectionID string
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("section %q: %s", w.SectionID, w.Message)
}

// UpsertSection returns the full replacement document with sectionID's
// block set to body. existing == "" means no document exists yet.
//
// The returned warning is non-nil only when the existing document is
// corrupted (duplicate start markers for the same section); the upsert
// still succeeds against the first match and the caller decides whether
// to alert.
//
// Upsert is idempotent: applying the same (sectionID, body) twice yields
// a byte-identical document.
func UpsertSection(existing string, sectionID, body string) (string, *Warning) {
	start := StartMarker(sectionID)
	end := EndMarker(sectionID)
	block := start + "\n" + body + "\n" + end

	if existing == "" {
		return DocumentMarker + "\n\n" + block, nil
	}

	var warn *Warning
	if strings.Count(existing, start) > 1 {
		warn = &Warning{SectionID: sectionID, Message: "duplicate start marker, replacing first occurrence only"}
	}

	// Non-greedy and scoped to this section's exact delimiter pair, so
	// other sections are never touched even if their bodies happen to
	// contain these literals.
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `.*?` + regexp.QuoteMeta(end))
	if re.MatchString(existing) {
		replaced := false
		out := re.ReplaceAllStringFunc(existing, func(m string) string {
			if replaced {
				return m
			}
			replaced = true
			return block
		})
		return out, warn
	}

	// No match: append after exactly one blank-line separator,
	// preserving every prior byte.
	return strings.TrimRight(existing, "\n") + "\n\n" + block, warn
}

// Section extracts the body of sectionID from doc. The second return is
// false when the section is absent.
func Section(doc, sectionID string) (string, bool) {
	start := StartMarker(sectionID)
	end := EndMarker(sectionID)
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(start) + `\n?(.*?)\n?` + regexp.QuoteMeta(end))
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SectionIDs lists the section ids present in doc, in document order.
var sectionIDRe = regexp.MustCompile(`<SECTION-START:([^>]+)>`)

func SectionIDs(doc string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, m := range sectionIDRe.FindAllStringSubmatch(doc, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	return ids
}
