// Package tui implements the Bubble Tea terminal user interface for
// reviewing gating verdicts.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/mergegate/internal/engine"
	"github.com/sprite-ai/mergegate/internal/model"
)

// Change is one reviewable unit queued for the session.
type Change struct {
	Handle     string
	Descriptor model.ChangeDescriptor
	Patch      string
}

// Review is a change together with its evaluation.
type Review struct {
	Change Change
	Result *engine.Result
	Err    error
}

// Model is the top-level Bubble Tea model for mergegate.
type Model struct {
	reviews []Review

	// UI state
	width  int
	height int

	// Change list
	changeIndex int // currently selected change

	// Detail viewport
	scrollOffset int
	viewHeight   int

	// Rendered lines for the current review
	lines []renderedLine

	// View mode
	showRawDoc bool

	// Help
	showHelp bool
}

// New evaluates every change against eng and builds the model. The
// engine's remote collaborators are ignored; the review session is a
// dry run.
func New(eng *engine.Engine, changes []Change) Model {
	dry := *eng
	dry.Store = nil
	dry.Pins = nil

	m := Model{}
	for _, c := range changes {
		res, err := dry.Evaluate(context.Background(), "", c.Descriptor, c.Patch)
		m.reviews = append(m.reviews, Review{Change: c, Result: res, Err: err})
	}
	m.updateLines()
	return m
}

func (m *Model) updateLines() {
	if len(m.reviews) == 0 {
		m.lines = nil
		return
	}
	m.lines = renderReview(m.reviews[m.changeIndex], m.showRawDoc)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewHeight = m.height - 4 // status bar + help bar + borders
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.scrollOffset < len(m.lines)-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.NextChange):
			if m.changeIndex < len(m.reviews)-1 {
				m.changeIndex++
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.PrevChange):
			if m.changeIndex > 0 {
				m.changeIndex--
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.ToggleDoc):
			m.showRawDoc = !m.showRawDoc
			m.scrollOffset = 0
			m.updateLines()

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Layout: change list on left, detail on right
	listWidth := m.changeListWidth()
	detailWidth := m.width - listWidth - 1 // -1 for gap

	changeList := m.renderChangeList(listWidth, m.height-2)
	detailView := m.renderDetailView(detailWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, changeList, " ", detailView)

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) changeListWidth() int {
	maxLen := 20
	for _, r := range m.reviews {
		if len(r.Change.Descriptor.Title) > maxLen {
			maxLen = len(r.Change.Descriptor.Title)
		}
	}
	w := maxLen + 14 // padding + decision badge
	if w > m.width/3 {
		w = m.width / 3
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderChangeList(width, height int) string {
	var b strings.Builder

	for i, r := range m.reviews {
		title := r.Change.Descriptor.Title
		if title == "" {
			title = "(untitled)"
		}

		maxTitle := width - 14
		if maxTitle > 0 && len(title) > maxTitle {
			title = title[:maxTitle-1] + "…"
		}

		badge := "error"
		if r.Err == nil {
			badge = r.Result.Verdict.Decision.String()
		}
		line := fmt.Sprintf("%-*s %s", maxTitle, title, badge)

		var style lipgloss.Style
		if i == m.changeIndex {
			style = changeSelectedStyle
		} else if r.Err != nil {
			style = changeBlockedStyle
		} else {
			switch r.Result.Verdict.Decision {
			case model.DecisionAllow:
				style = changeAllowedStyle
			case model.DecisionBlock:
				style = changeBlockedStyle
			default:
				style = changeEscalatedStyle
			}
		}

		b.WriteString(style.Width(width - 4).Render(line))
		if i < len(m.reviews)-1 {
			b.WriteByte('\n')
		}
	}

	innerHeight := height - 2 // borders
	return changeListStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderDetailView(width, height int) string {
	innerHeight := height - 2
	if len(m.reviews) == 0 {
		return detailViewStyle.Width(width).Height(innerHeight).Render("No changes queued")
	}

	innerWidth := width - 4 // borders + padding

	visibleLines := innerHeight
	if visibleLines < 1 {
		visibleLines = 1
	}

	end := m.scrollOffset + visibleLines
	if end > len(m.lines) {
		end = len(m.lines)
	}

	var b strings.Builder
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(styleLine(m.lines[i], innerWidth))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return detailViewStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" Change %d/%d", m.changeIndex+1, len(m.reviews))
	if len(m.lines) > 0 {
		left += fmt.Sprintf("  Line %d/%d", m.scrollOffset+1, len(m.lines))
	}

	var allowed, escalated, blocked int
	for _, r := range m.reviews {
		if r.Err != nil {
			continue
		}
		switch r.Result.Verdict.Decision {
		case model.DecisionAllow:
			allowed++
		case model.DecisionEscalate:
			escalated++
		case model.DecisionBlock:
			blocked++
		}
	}

	mode := "verdict"
	if m.showRawDoc {
		mode = "document"
	}

	right := fmt.Sprintf("%d allow / %d escalate / %d block  %s  ? help ",
		allowed, escalated, blocked, mode)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(detailHeaderStyle.Render("mergegate — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Scroll up"},
		{"↓/j", "Scroll down"},
		{"n/Tab", "Next change"},
		{"N/S-Tab", "Previous change"},
		{"d", "Toggle verdict/document view"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the TUI application.
func Run(eng *engine.Engine, changes []Change) error {
	m := New(eng, changes)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
