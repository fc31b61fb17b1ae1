// Package engine runs the evaluation pipeline for one change
// descriptor: classify, gate, synchronize the status document, and
// apply the resulting label transitions.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sprite-ai/mergegate/internal/classify"
	"github.com/sprite-ai/mergegate/internal/convention"
	"github.com/sprite-ai/mergegate/internal/diffscan"
	"github.com/sprite-ai/mergegate/internal/dispatch"
	"github.com/sprite-ai/mergegate/internal/docsync"
	"github.com/sprite-ai/mergegate/internal/gate"
	"github.com/sprite-ai/mergegate/internal/model"
	"github.com/sprite-ai/mergegate/internal/remote"
)

// Engine evaluates descriptors against a fixed configuration. The
// remote collaborators are optional: with a nil Store the engine
// computes everything and applies nothing, which is how the CLI's dry
// runs and the TUI work.
type Engine struct {
	Vocabulary convention.Vocabulary
	Policy     gate.Policy
	Table      *dispatch.Table
	SectionID  string

	Store     remote.Store
	Scores    remote.ScoreProvider
	Pins      remote.Pinner
	Corrector classify.Corrector
}

// New returns an engine with the stock vocabulary, policy and dispatch
// table and no remote collaborators.
func New() *Engine {
	return &Engine{
		Vocabulary: convention.DefaultVocabulary(),
		Policy:     gate.DefaultPolicy(),
		Table:      dispatch.DefaultTable(),
		SectionID:  "gating",
	}
}

// Result is everything one evaluation produced.
type Result struct {
	Classification model.Classification
	Verdict        model.Verdict
	Score          float64
	ScoreKnown     bool

	// Document is the full replacement text for the status document
	// (read-modify-return; the caller persists it).
	Document string
	Warning  *docsync.Warning

	Transitions []model.LabelTransition
	Behaviors   []model.Behavior

	DiffStats diffscan.Stats
}

// Evaluate runs the pipeline for one descriptor. patch may be empty.
// Remote operation failures propagate unchanged; domain failures are
// represented in the verdict, never as errors.
func (e *Engine) Evaluate(ctx context.Context, h remote.Handle, d model.ChangeDescriptor, patch string) (*Result, error) {
	labels := d.Labels
	if e.Store != nil {
		snapshot, err := e.Store.ListLabels(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("listing labels: %w", err)
		}
		labels = snapshot
	}

	cls := classify.ClassifyWithCorrector(ctx, d, e.Vocabulary, e.Corrector)

	res := &Result{Classification: cls}

	if patch != "" {
		hints, stats, err := diffscan.Scan(patch)
		if err != nil {
			return nil, err
		}
		res.DiffStats = stats
		for l := range hints {
			cls.DerivedLabels[l] = true
		}
		res.Classification = cls
	}

	score, known := 0.0, false
	if e.Scores != nil {
		var err error
		score, known, err = e.Scores.QualityScore(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("fetching quality score: %w", err)
		}
	}
	if !known {
		score = 0 // fail closed
	}
	res.Score, res.ScoreKnown = score, known

	res.Verdict = gate.Evaluate(cls, labels, score, e.Policy)

	if err := e.syncDocument(ctx, h, res); err != nil {
		return nil, err
	}

	if err := e.applyLabels(ctx, h, labels, cls.DerivedLabels, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (e *Engine) syncDocument(ctx context.Context, h remote.Handle, res *Result) error {
	existing := ""
	if e.Store != nil {
		text, ok, err := e.Store.GetDocument(ctx, h)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		if ok {
			existing = text
		}
	}

	section := e.SectionID
	if section == "" {
		section = "gating"
	}

	doc, warn := docsync.UpsertSection(existing, section, renderVerdict(res))
	res.Document = doc
	res.Warning = warn

	if e.Store != nil {
		if err := e.Store.SetDocument(ctx, h, doc); err != nil {
			return fmt.Errorf("writing document: %w", err)
		}
	}
	return nil
}

// managedLabels are the labels the engine owns on the external unit;
// only these are ever removed automatically.
var managedLabels = map[string]bool{
	"patch":        true,
	"minor":        true,
	"major":        true,
	"breaking":     true,
	"dependencies": true,
	"docs-only":    true,
	"config":       true,
	"large-change": true,
}

func (e *Engine) applyLabels(ctx context.Context, h remote.Handle, current, desired map[string]bool, res *Result) error {
	var names []string
	for l := range desired {
		if !current[l] {
			names = append(names, l)
		}
	}
	sort.Strings(names)
	for _, l := range names {
		if e.Store != nil {
			if err := e.Store.AddLabel(ctx, h, l); err != nil {
				return fmt.Errorf("adding label %q: %w", l, err)
			}
		}
		if err := e.transition(ctx, h, model.LabelTransition{Label: l, Action: model.LabelAdded}, res); err != nil {
			return err
		}
	}

	names = names[:0]
	for l := range current {
		if managedLabels[l] && !desired[l] {
			names = append(names, l)
		}
	}
	sort.Strings(names)
	for _, l := range names {
		if e.Store != nil {
			if err := e.Store.RemoveLabel(ctx, h, l); err != nil {
				return fmt.Errorf("removing label %q: %w", l, err)
			}
		}
		if err := e.transition(ctx, h, model.LabelTransition{Label: l, Action: model.LabelRemoved}, res); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) transition(ctx context.Context, h remote.Handle, tr model.LabelTransition, res *Result) error {
	res.Transitions = append(res.Transitions, tr)

	b := e.Table.Dispatch(tr)
	res.Behaviors = append(res.Behaviors, b)
	if e.Pins == nil || b == model.BehaviorNoOp {
		return nil
	}

	switch b {
	case model.BehaviorPin:
		if err := e.Pins.Pin(ctx, h); err != nil {
			return fmt.Errorf("pinning: %w", err)
		}
	case model.BehaviorUnpin:
		if err := e.Pins.Unpin(ctx, h); err != nil {
			return fmt.Errorf("unpinning: %w", err)
		}
	case model.BehaviorNotify:
		msg := fmt.Sprintf("label %q %s", tr.Label, tr.Action)
		if err := e.Pins.Notify(ctx, h, msg); err != nil {
			return fmt.Errorf("notifying: %w", err)
		}
	}
	return nil
}

func renderVerdict(res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Decision:** %s\n", res.Verdict.Decision)
	fmt.Fprintf(&b, "**Category:** %s (%s)\n", res.Verdict.Category, res.Classification.Source)
	if res.ScoreKnown {
		fmt.Fprintf(&b, "**Quality score:** %.2f\n", res.Score)
	} else {
		b.WriteString("**Quality score:** unavailable\n")
	}
	if len(res.Verdict.Reasons) > 0 {
		b.WriteString("\n")
		for _, r := range res.Verdict.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
