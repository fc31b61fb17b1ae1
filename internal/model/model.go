// Package model defines the core data types shared across mergegate.
package model

// Category classifies the severity of a change.
type Category int

const (
	CategoryInvalid Category = iota
	CategoryPatch
	CategoryMinor
	CategoryMajor
	CategoryBreaking
)

func (c Category) String() string {
	switch c {
	case CategoryPatch:
		return "patch"
	case CategoryMinor:
		return "minor"
	case CategoryMajor:
		return "major"
	case CategoryBreaking:
		return "breaking"
	default:
		return "invalid"
	}
}

// ParseCategory maps a category name back to its Category. Unknown names
// map to CategoryInvalid.
func ParseCategory(s string) Category {
	switch s {
	case "patch":
		return CategoryPatch
	case "minor":
		return CategoryMinor
	case "major":
		return CategoryMajor
	case "breaking":
		return CategoryBreaking
	default:
		return CategoryInvalid
	}
}

// Source records where a classification came from.
type Source int

const (
	SourceDeclared Source = iota // the title itself encoded the category
	SourceInferred               // reduced from the commit messages
)

func (s Source) String() string {
	if s == SourceInferred {
		return "inferred"
	}
	return "declared"
}

// Decision is the gating outcome for a descriptor.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionEscalate
	DecisionBlock
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionEscalate:
		return "escalate"
	case DecisionBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Behavior is a side effect selected by the state dispatcher.
type Behavior int

const (
	BehaviorNoOp Behavior = iota
	BehaviorPin
	BehaviorUnpin
	BehaviorNotify
)

func (b Behavior) String() string {
	switch b {
	case BehaviorPin:
		return "pin"
	case BehaviorUnpin:
		return "unpin"
	case BehaviorNotify:
		return "notify"
	default:
		return "noop"
	}
}

// TransitionAction distinguishes label additions from removals.
type TransitionAction int

const (
	LabelAdded TransitionAction = iota
	LabelRemoved
)

func (a TransitionAction) String() string {
	if a == LabelRemoved {
		return "removed"
	}
	return "added"
}

// CommitRecord is a single commit within a descriptor.
type CommitRecord struct {
	Message string
	ID      string // opaque, unique within the descriptor
}

// ChangeDescriptor is one reviewable unit of work. It is treated as
// immutable once classification begins; re-evaluation builds a new one.
type ChangeDescriptor struct {
	Title   string
	Commits []CommitRecord
	Labels  map[string]bool // current external labels
}

// HasLabel reports whether the descriptor currently carries the label.
func (d ChangeDescriptor) HasLabel(name string) bool {
	return d.Labels[name]
}

// Classification is the classifier's output for one descriptor.
type Classification struct {
	Category      Category
	DerivedLabels map[string]bool
	Source        Source
}

// Verdict is the gating decision for a descriptor.
type Verdict struct {
	Decision Decision
	Category Category
	Reasons  []string
}

// LabelTransition is a single label add/remove event consumed by the
// state dispatcher. Not persisted.
type LabelTransition struct {
	Label  string
	Action TransitionAction
}

// DocumentSection is a named, independently replaceable region of the
// shared status document.
type DocumentSection struct {
	ID   string
	Body string
}
