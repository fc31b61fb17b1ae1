package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/sprite-ai/mergegate/internal/docsync"
	"github.com/sprite-ai/mergegate/internal/model"
	"github.com/sprite-ai/mergegate/internal/remote"
)

func TestEvaluateOffline(t *testing.T) {
	e := New()
	d := model.ChangeDescriptor{Title: "feat: add dark mode"}

	res, err := e.Evaluate(context.Background(), "pr-1", d, "")
	if err != nil {
		t.Fatal(err)
	}

	if res.Classification.Category != model.CategoryMinor {
		t.Errorf("category = %v", res.Classification.Category)
	}
	// No score provider: fail closed, minor below threshold escalates.
	if res.Verdict.Decision != model.DecisionEscalate {
		t.Errorf("decision = %v, want escalate", res.Verdict.Decision)
	}
	if res.ScoreKnown {
		t.Error("score should be unknown")
	}

	body, ok := docsync.Section(res.Document, "gating")
	if !ok {
		t.Fatal("gating section missing from document")
	}
	if !strings.Contains(body, "escalate") {
		t.Errorf("section body = %q", body)
	}
}

func TestEvaluateAppliesSideEffects(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	store.SetScore("pr-2", 0.95)

	e := New()
	e.Store = store
	e.Scores = store
	e.Pins = store

	d := model.ChangeDescriptor{Title: "feat: new API surface"}
	res, err := e.Evaluate(ctx, "pr-2", d, "")
	if err != nil {
		t.Fatal(err)
	}

	if res.Verdict.Decision != model.DecisionAllow {
		t.Fatalf("decision = %v, want allow: %v", res.Verdict.Decision, res.Verdict.Reasons)
	}

	labels, _ := store.ListLabels(ctx, "pr-2")
	if !labels["minor"] {
		t.Errorf("labels = %v, want minor applied", labels)
	}

	doc, ok, _ := store.GetDocument(ctx, "pr-2")
	if !ok {
		t.Fatal("document not persisted")
	}
	if body, ok := docsync.Section(doc, "gating"); !ok || !strings.Contains(body, "allow") {
		t.Errorf("persisted section = %q", body)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	store.SetScore("pr-3", 0.9)

	e := New()
	e.Store = store
	e.Scores = store

	d := model.ChangeDescriptor{Title: "fix: close file handles"}
	first, err := e.Evaluate(ctx, "pr-3", d, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Evaluate(ctx, "pr-3", d, "")
	if err != nil {
		t.Fatal(err)
	}

	if first.Document != second.Document {
		t.Errorf("documents differ:\n%q\n%q", first.Document, second.Document)
	}
	// Second run sees the labels already applied: no transitions.
	if len(second.Transitions) != 0 {
		t.Errorf("second run transitions = %v, want none", second.Transitions)
	}
}

func TestEvaluateReclassificationSwapsLabels(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	store.SetScore("pr-4", 1)

	e := New()
	e.Store = store
	e.Scores = store

	if _, err := e.Evaluate(ctx, "pr-4", model.ChangeDescriptor{Title: "fix: typo"}, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Evaluate(ctx, "pr-4", model.ChangeDescriptor{Title: "feat!: rewrite config format"}, ""); err != nil {
		t.Fatal(err)
	}

	labels, _ := store.ListLabels(ctx, "pr-4")
	if labels["patch"] {
		t.Errorf("labels = %v, stale patch label should be removed", labels)
	}
	if !labels["breaking"] {
		t.Errorf("labels = %v, want breaking", labels)
	}
}

func TestEvaluateBreakingNotifies(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()

	e := New()
	e.Store = store
	e.Scores = store
	e.Pins = store

	d := model.ChangeDescriptor{Title: "feat!: drop v1"}
	res, err := e.Evaluate(ctx, "pr-5", d, "")
	if err != nil {
		t.Fatal(err)
	}

	if res.Verdict.Decision != model.DecisionEscalate {
		t.Errorf("decision = %v, want escalate", res.Verdict.Decision)
	}
	if notices := store.Notices("pr-5"); len(notices) == 0 {
		t.Error("expected a notify side effect for the breaking label")
	}
}

func TestEvaluateMergesDiffHints(t *testing.T) {
	const patch = `diff --git a/README.md b/README.md
index abc1234..def5678 100644
--- a/README.md
+++ b/README.md
@@ -1,1 +1,2 @@
 # Title
+More docs.
`
	e := New()
	res, err := e.Evaluate(context.Background(), "pr-6", model.ChangeDescriptor{Title: "docs: expand readme"}, patch)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Classification.DerivedLabels["docs-only"] {
		t.Errorf("derived labels = %v, want docs-only", res.Classification.DerivedLabels)
	}
	if res.DiffStats.Files != 1 {
		t.Errorf("diff stats = %+v", res.DiffStats)
	}
}

func TestEvaluateEscapeHatch(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	if err := store.AddLabel(ctx, "pr-7", "security"); err != nil {
		t.Fatal(err)
	}

	e := New()
	e.Store = store
	e.Scores = store // no score seeded: unavailable

	d := model.ChangeDescriptor{Title: "feat!: emergency credential rotation"}
	res, err := e.Evaluate(ctx, "pr-7", d, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Verdict.Decision != model.DecisionAllow {
		t.Errorf("decision = %v, want allow via escape hatch", res.Verdict.Decision)
	}
}
