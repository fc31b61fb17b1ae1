// Package gate decides whether a classified change may proceed
// automatically.
package gate

import (
	"fmt"

	"github.com/sprite-ai/mergegate/internal/model"
)

// Policy is the externally supplied gating configuration. It is read-only
// input; the evaluator never mutates it.
type Policy struct {
	MutationThreshold   float64 // minimum quality score in [0,1] for auto-allow
	AutoAllowCategories map[model.Category]bool
	AlwaysAllowLabels   map[string]bool // escape hatch, e.g. "security"
}

// DefaultPolicy mirrors the stock gate: 80% threshold, patch and minor
// auto-allowed, security and critical labels short-circuit.
func DefaultPolicy() Policy {
	return Policy{
		MutationThreshold: 0.80,
		AutoAllowCategories: map[model.Category]bool{
			model.CategoryPatch: true,
			model.CategoryMinor: true,
		},
		AlwaysAllowLabels: map[string]bool{
			"security": true,
			"critical": true,
		},
	}
}

// Evaluate applies the policy decision table to a classification. First
// match wins. The function is total: malformed input yields a block or
// escalate verdict, never an error. Scores and thresholds outside [0,1]
// are clamped, and a missing score must be passed as 0 (fail closed).
func Evaluate(cls model.Classification, labels map[string]bool, score float64, p Policy) model.Verdict {
	score = clamp01(score)
	threshold := clamp01(p.MutationThreshold)

	switch {
	case cls.Category == model.CategoryInvalid:
		return verdict(model.DecisionBlock, cls.Category, "unrecognized change format")

	case intersects(labels, p.AlwaysAllowLabels):
		return verdict(model.DecisionAllow, cls.Category)

	case cls.Category == model.CategoryBreaking:
		return verdict(model.DecisionEscalate, cls.Category, "breaking change requires manual sign-off")

	case p.AutoAllowCategories[cls.Category] && score >= threshold:
		return verdict(model.DecisionAllow, cls.Category)

	case p.AutoAllowCategories[cls.Category]:
		return verdict(model.DecisionEscalate, cls.Category,
			fmt.Sprintf("quality score %.2f below threshold %.2f (short by %.2f)",
				score, threshold, threshold-score))

	default:
		return verdict(model.DecisionEscalate, cls.Category, "category outside auto-allow policy")
	}
}

func verdict(d model.Decision, c model.Category, reasons ...string) model.Verdict {
	return model.Verdict{Decision: d, Category: c, Reasons: reasons}
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if a[k] && b[k] {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
