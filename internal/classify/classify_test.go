package classify

import (
	"context"
	"testing"

	"github.com/sprite-ai/mergegate/internal/convention"
	"github.com/sprite-ai/mergegate/internal/model"
)

func TestClassifyDeclaredTitle(t *testing.T) {
	d := model.ChangeDescriptor{Title: "feat: add dark mode"}
	cls := Classify(d, convention.DefaultVocabulary())

	if cls.Category != model.CategoryMinor {
		t.Errorf("category = %v, want minor", cls.Category)
	}
	if cls.Source != model.SourceDeclared {
		t.Errorf("source = %v, want declared", cls.Source)
	}
	if !cls.DerivedLabels["minor"] {
		t.Errorf("derived labels = %v, want minor present", cls.DerivedLabels)
	}
}

func TestClassifyDeclaredBreaking(t *testing.T) {
	d := model.ChangeDescriptor{Title: "chore!: drop legacy API"}
	cls := Classify(d, convention.DefaultVocabulary())

	if cls.Category != model.CategoryBreaking {
		t.Errorf("category = %v, want breaking", cls.Category)
	}
	if !cls.DerivedLabels["breaking"] {
		t.Errorf("derived labels = %v, want breaking present", cls.DerivedLabels)
	}
}

func TestClassifyInferredHighestSeverityWins(t *testing.T) {
	d := model.ChangeDescriptor{
		Title: "Add a bunch of stuff",
		Commits: []model.CommitRecord{
			{Message: "fix: null pointer in loader", ID: "a1"},
			{Message: "feat: new loader API", ID: "b2"},
			{Message: "not a conventional message", ID: "c3"},
		},
	}
	cls := Classify(d, convention.DefaultVocabulary())

	if cls.Category != model.CategoryMinor {
		t.Errorf("category = %v, want minor", cls.Category)
	}
	if cls.Source != model.SourceInferred {
		t.Errorf("source = %v, want inferred", cls.Source)
	}
}

func TestClassifyInvalidWhenEverySourceFails(t *testing.T) {
	d := model.ChangeDescriptor{
		Title: "wip",
		Commits: []model.CommitRecord{
			{Message: "more wip", ID: "a1"},
			{Message: "", ID: "b2"},
		},
	}
	cls := Classify(d, convention.DefaultVocabulary())

	if cls.Category != model.CategoryInvalid {
		t.Errorf("category = %v, want invalid", cls.Category)
	}
	if len(cls.DerivedLabels) != 0 {
		t.Errorf("derived labels = %v, want none", cls.DerivedLabels)
	}
}

func TestClassifyTotality(t *testing.T) {
	vocab := convention.DefaultVocabulary()
	inputs := []string{
		"", "   ", "\t\n", "::::", "feat", "<SECTION-START:gating>",
		"feat(!): weird", "fix(): empty scope", "a: b",
	}
	for _, in := range inputs {
		cls := Classify(model.ChangeDescriptor{Title: in}, vocab)
		switch cls.Category {
		case model.CategoryPatch, model.CategoryMinor, model.CategoryMajor,
			model.CategoryBreaking, model.CategoryInvalid:
		default:
			t.Errorf("Classify(%q) returned out-of-range category %v", in, cls.Category)
		}
	}
}

type stubCorrector struct {
	fix Correction
	ok  bool
}

func (s stubCorrector) Correct(context.Context, string) (Correction, bool) {
	return s.fix, s.ok
}

func TestCorrectorRescuesInvalidTitle(t *testing.T) {
	d := model.ChangeDescriptor{Title: "added dark mode"}
	c := stubCorrector{fix: Correction{Title: "feat: add dark mode", Category: model.CategoryMinor}, ok: true}

	cls := ClassifyWithCorrector(context.Background(), d, convention.DefaultVocabulary(), c)
	if cls.Category != model.CategoryMinor {
		t.Errorf("category = %v, want minor", cls.Category)
	}
	if cls.Source != model.SourceInferred {
		t.Errorf("source = %v, want inferred", cls.Source)
	}
}

func TestCorrectorFailureKeepsInvalid(t *testing.T) {
	d := model.ChangeDescriptor{Title: "added dark mode"}

	cls := ClassifyWithCorrector(context.Background(), d, convention.DefaultVocabulary(), stubCorrector{})
	if cls.Category != model.CategoryInvalid {
		t.Errorf("category = %v, want invalid", cls.Category)
	}

	// Nil corrector takes the same path.
	cls = ClassifyWithCorrector(context.Background(), d, convention.DefaultVocabulary(), nil)
	if cls.Category != model.CategoryInvalid {
		t.Errorf("category = %v, want invalid with nil corrector", cls.Category)
	}
}

func TestCorrectorNotConsultedForValidTitle(t *testing.T) {
	d := model.ChangeDescriptor{Title: "fix: a real fix"}
	c := stubCorrector{fix: Correction{Category: model.CategoryBreaking}, ok: true}

	cls := ClassifyWithCorrector(context.Background(), d, convention.DefaultVocabulary(), c)
	if cls.Category != model.CategoryPatch {
		t.Errorf("category = %v, want patch (corrector must not override)", cls.Category)
	}
	if cls.Source != model.SourceDeclared {
		t.Errorf("source = %v, want declared", cls.Source)
	}
}
