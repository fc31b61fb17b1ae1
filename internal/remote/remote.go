// Package remote declares the narrow operation interface through which
// the engine reaches the external label/document store. Every call is a
// possibly-failing remote operation; retry policy belongs to the caller,
// never to the engine.
package remote

import "context"

// Handle identifies one external reviewable unit (e.g. a PR number or
// node id). Opaque to the engine.
type Handle string

// Store is the label/document side of the external collaborator.
type Store interface {
	// GetDocument returns the managed document text. ok is false when
	// no document exists yet.
	GetDocument(ctx context.Context, h Handle) (text string, ok bool, err error)
	// SetDocument replaces the managed document wholesale.
	SetDocument(ctx context.Context, h Handle, text string) error

	AddLabel(ctx context.Context, h Handle, name string) error
	RemoveLabel(ctx context.Context, h Handle, name string) error
	ListLabels(ctx context.Context, h Handle) (map[string]bool, error)
}

// ScoreProvider supplies the external quality score for a handle. ok is
// false when no score is available; callers treat that as 0 (fail
// closed).
type ScoreProvider interface {
	QualityScore(ctx context.Context, h Handle) (score float64, ok bool, err error)
}

// StaticScore is a ScoreProvider that always reports one known score,
// e.g. a value carried inline on an API request.
type StaticScore float64

func (s StaticScore) QualityScore(context.Context, Handle) (float64, bool, error) {
	return float64(s), true, nil
}

// Pinner executes pin/unpin/notify behaviors selected by the state
// dispatcher.
type Pinner interface {
	Pin(ctx context.Context, h Handle) error
	Unpin(ctx context.Context, h Handle) error
	Notify(ctx context.Context, h Handle, message string) error
}
