// Package classify maps change descriptors to semantic change categories.
package classify

import (
	"context"

	"github.com/sprite-ai/mergegate/internal/convention"
	"github.com/sprite-ai/mergegate/internal/model"
)

// Correction is a structured fix-up offered by an external corrector for
// a title the grammar rejected.
type Correction struct {
	Title    string
	Category model.Category
}

// Corrector is an optional collaborator (typically an AI model behind a
// remote call) consulted only after every candidate source failed
// validation. A false return means no correction is available; the
// classifier then reports CategoryInvalid as usual.
type Corrector interface {
	Correct(ctx context.Context, text string) (Correction, bool)
}

// Classify derives a classification from the descriptor's title, falling
// back to its commit messages. Pure: it never fails and never mutates the
// descriptor.
func Classify(d model.ChangeDescriptor, vocab convention.Vocabulary) model.Classification {
	if p, err := convention.Parse(d.Title, vocab); err == nil {
		return build(p.Category, model.SourceDeclared)
	}

	// Title rejected: reduce the surviving commit categories to the
	// single highest severity. Count and order do not matter.
	top := model.CategoryInvalid
	for _, c := range d.Commits {
		p, err := convention.Parse(c.Message, vocab)
		if err != nil {
			continue
		}
		if p.Category > top {
			top = p.Category
		}
	}

	if top == model.CategoryInvalid {
		return model.Classification{
			Category:      model.CategoryInvalid,
			DerivedLabels: map[string]bool{},
			Source:        model.SourceInferred,
		}
	}
	return build(top, model.SourceInferred)
}

// ClassifyWithCorrector runs Classify and, when the result is invalid and
// a corrector is supplied, gives the corrector one shot at the title. A
// failed or absent correction leaves the invalid classification intact.
func ClassifyWithCorrector(ctx context.Context, d model.ChangeDescriptor, vocab convention.Vocabulary, corrector Corrector) model.Classification {
	cls := Classify(d, vocab)
	if cls.Category != model.CategoryInvalid || corrector == nil {
		return cls
	}

	fix, ok := corrector.Correct(ctx, d.Title)
	if !ok || fix.Category == model.CategoryInvalid {
		return cls
	}
	return build(fix.Category, model.SourceInferred)
}

func build(cat model.Category, src model.Source) model.Classification {
	labels := map[string]bool{cat.String(): true}
	if cat == model.CategoryBreaking {
		labels["breaking"] = true
	}
	return model.Classification{
		Category:      cat,
		DerivedLabels: labels,
		Source:        src,
	}
}
