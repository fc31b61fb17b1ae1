package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/mergegate/internal/engine"
	"github.com/sprite-ai/mergegate/internal/model"
	"github.com/sprite-ai/mergegate/internal/remote"
)

func testChanges() []Change {
	return []Change{
		{
			Handle:     "pr-1",
			Descriptor: model.ChangeDescriptor{Title: "fix: close file handles"},
		},
		{
			Handle:     "pr-2",
			Descriptor: model.ChangeDescriptor{Title: "feat!: drop v1 endpoints"},
		},
	}
}

func setupModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New()
	eng.Scores = remote.StaticScore(0.9)

	m := New(eng, testChanges())
	// Simulate window size
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.changeIndex != 0 {
		t.Errorf("expected changeIndex 0, got %d", m.changeIndex)
	}
	if len(m.lines) == 0 {
		t.Error("expected lines to be rendered")
	}
	if len(m.reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(m.reviews))
	}
	if m.reviews[0].Result.Verdict.Decision != model.DecisionAllow {
		t.Errorf("expected first review allowed, got %v", m.reviews[0].Result.Verdict.Decision)
	}
	if m.reviews[1].Result.Verdict.Decision != model.DecisionEscalate {
		t.Errorf("expected second review escalated, got %v", m.reviews[1].Result.Verdict.Decision)
	}
}

func TestNavigation(t *testing.T) {
	m := setupModel(t)

	// Move to next change
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = newM.(Model)
	if m.changeIndex != 1 {
		t.Errorf("expected changeIndex 1 after next, got %d", m.changeIndex)
	}

	// Move past end — should stay
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = newM.(Model)
	if m.changeIndex != 1 {
		t.Errorf("expected changeIndex 1 at end, got %d", m.changeIndex)
	}

	// Move back
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'N'}})
	m = newM.(Model)
	if m.changeIndex != 0 {
		t.Errorf("expected changeIndex 0 after prev, got %d", m.changeIndex)
	}
}

func TestScrolling(t *testing.T) {
	m := setupModel(t)

	// Scroll down
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = newM.(Model)
	if m.scrollOffset != 1 {
		t.Errorf("expected scrollOffset 1, got %d", m.scrollOffset)
	}

	// Scroll up
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = newM.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0, got %d", m.scrollOffset)
	}

	// Can't scroll above 0
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = newM.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0 at top, got %d", m.scrollOffset)
	}
}

func TestToggleDocumentView(t *testing.T) {
	m := setupModel(t)

	if m.showRawDoc {
		t.Error("expected verdict view by default")
	}

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = newM.(Model)
	if !m.showRawDoc {
		t.Error("expected document view after toggle")
	}

	view := m.View()
	if !strings.Contains(view, "mergegate-status") {
		t.Error("expected document view to show the document marker")
	}

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = newM.(Model)
	if m.showRawDoc {
		t.Error("expected verdict view after second toggle")
	}
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	if view == "" {
		t.Error("expected non-empty view")
	}

	// Should contain the change title
	if !strings.Contains(view, "close file handles") {
		t.Error("expected view to contain the change title")
	}

	// Should contain the verdict
	if !strings.Contains(view, "Decision: allow") {
		t.Error("expected view to contain the decision")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = newM.(Model)
	if !m.showHelp {
		t.Error("expected help to be shown")
	}

	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("expected help view to contain shortcuts")
	}
}

func TestRenderReviewSummary(t *testing.T) {
	m := setupModel(t)

	lines := renderReview(m.reviews[1], false)
	var found bool
	for _, l := range lines {
		if strings.Contains(l.Content, "manual sign-off") {
			found = true
		}
	}
	if !found {
		t.Error("expected breaking escalation reason in detail lines")
	}
}
