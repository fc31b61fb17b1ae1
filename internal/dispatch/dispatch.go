// Package dispatch maps label transitions to named behaviors via a
// static lookup table, decoupling transition detection from behavior
// execution.
package dispatch

import "github.com/sprite-ai/mergegate/internal/model"

// ruleKey identifies one (label, action) transition.
type ruleKey struct {
	Label  string
	Action model.TransitionAction
}

// Table resolves transitions to behaviors. Unknown transitions resolve
// to NoOp; labels outside the table's vocabulary are silently ignored.
type Table struct {
	rules map[ruleKey]model.Behavior
}

// NewTable builds an empty table.
func NewTable() *Table {
	return &Table{rules: make(map[ruleKey]model.Behavior)}
}

// Add registers a behavior for a (label, action) pair, replacing any
// prior entry.
func (t *Table) Add(label string, action model.TransitionAction, b model.Behavior) *Table {
	t.rules[ruleKey{Label: label, Action: action}] = b
	return t
}

// Dispatch selects the behavior for a transition. It never fails and
// performs no I/O; executing the behavior belongs to the caller.
func (t *Table) Dispatch(tr model.LabelTransition) model.Behavior {
	if t == nil || t.rules == nil {
		return model.BehaviorNoOp
	}
	return t.rules[ruleKey{Label: tr.Label, Action: tr.Action}]
}

// DefaultTable wires the stock transitions: pinning tracks the critical
// label, and newly broken changes notify a human.
func DefaultTable() *Table {
	return NewTable().
		Add("critical", model.LabelAdded, model.BehaviorPin).
		Add("critical", model.LabelRemoved, model.BehaviorUnpin).
		Add("breaking", model.LabelAdded, model.BehaviorNotify).
		Add("security", model.LabelAdded, model.BehaviorNotify)
}
