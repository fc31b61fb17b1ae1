// Package convention validates change titles against the conventional
// commit grammar and maps type tokens to change categories.
package convention

import (
	"errors"
	"regexp"
	"strings"

	"github.com/sprite-ai/mergegate/internal/model"
)

// titleRe is the wire-exact grammar: type, optional scope, optional
// breaking bang, separator, subject.
var titleRe = regexp.MustCompile(`(?i)^(\w+)(?:\(([^)]+)\))?(!)?:\s*(.+)$`)

// ErrInvalidFormat is returned for any text the grammar rejects.
var ErrInvalidFormat = errors.New("invalid change format")

// Vocabulary maps lowercase type tokens to their default category and
// names the marker tokens that force a breaking classification.
type Vocabulary struct {
	Types           map[string]model.Category
	BreakingMarkers map[string]bool
}

// DefaultVocabulary returns the stock conventional-commit token set.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Types: map[string]model.Category{
			"fix":      model.CategoryPatch,
			"docs":     model.CategoryPatch,
			"style":    model.CategoryPatch,
			"test":     model.CategoryPatch,
			"chore":    model.CategoryPatch,
			"ci":       model.CategoryPatch,
			"build":    model.CategoryPatch,
			"perf":     model.CategoryPatch,
			"feat":     model.CategoryMinor,
			"refactor": model.CategoryMinor,
			"revert":   model.CategoryMajor,
		},
		BreakingMarkers: map[string]bool{
			"breaking": true,
		},
	}
}

// ParsedTitle is the result of validating a single title.
type ParsedTitle struct {
	Type     string
	Scope    string
	Subject  string
	Category model.Category
	Breaking bool
}

// Parse validates text against the grammar and the vocabulary. It is a
// pure function: same input, same result, no side effects.
func Parse(text string, vocab Vocabulary) (ParsedTitle, error) {
	m := titleRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ParsedTitle{}, ErrInvalidFormat
	}

	typ := strings.ToLower(m[1])
	marker := vocab.BreakingMarkers[typ]
	cat, ok := vocab.Types[typ]
	if !ok && !marker {
		return ParsedTitle{}, ErrInvalidFormat
	}

	subject := strings.TrimSpace(m[4])
	if subject == "" {
		return ParsedTitle{}, ErrInvalidFormat
	}

	breaking := m[3] == "!" || marker
	if breaking {
		cat = model.CategoryBreaking
	}

	return ParsedTitle{
		Type:     typ,
		Scope:    m[2],
		Subject:  subject,
		Category: cat,
		Breaking: breaking,
	}, nil
}
