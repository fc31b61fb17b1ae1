package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/engine"
	"github.com/sprite-ai/mergegate/internal/history"
	"github.com/sprite-ai/mergegate/internal/model"
	"github.com/sprite-ai/mergegate/internal/remote"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [descriptor.json]",
	Short: "Run the full gating pipeline on a change (non-interactive)",
	Long: `Classify the change, evaluate it against the gating policy, and print
the verdict and the managed status document. Useful for CI and hooks.

Exit codes:
  0 — allowed
  1 — escalated for manual review
  2 — blocked`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringP("title", "t", "", "change title to evaluate")
	evaluateCmd.Flags().Float64P("score", "s", -1, "external quality score in [0,1]; omit when unknown")
	evaluateCmd.Flags().StringP("patch", "p", "", "unified diff file to scan for hint labels (\"-\" for stdin)")
	evaluateCmd.Flags().String("handle", "", "identifier recorded in the audit log")
	evaluateCmd.Flags().String("history", "", "data directory for the evaluation audit log")
	evaluateCmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	d, err := loadDescriptor(cmd, args)
	if err != nil {
		return err
	}

	patch := ""
	if patchPath, _ := cmd.Flags().GetString("patch"); patchPath != "" {
		data, err := readInput(patchPath)
		if err != nil {
			return err
		}
		patch = string(data)
	}

	eng := newEngine(cfg)
	if score, _ := cmd.Flags().GetFloat64("score"); score >= 0 {
		eng.Scores = remote.StaticScore(score)
	}

	handle, _ := cmd.Flags().GetString("handle")
	res, err := eng.Evaluate(context.Background(), remote.Handle(handle), d, patch)
	if err != nil {
		return err
	}

	if dataDir, _ := cmd.Flags().GetString("history"); dataDir != "" {
		hist, err := history.Open(dataDir)
		if err != nil {
			return err
		}
		defer hist.Close()
		if _, err := hist.Record(handle, d.Title, res.Classification, res.Verdict, res.Score); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record evaluation: %v\n", err)
		}
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		if err := outputEvaluateJSON(res); err != nil {
			return err
		}
	case "markdown":
		fmt.Println(res.Document)
	default:
		outputEvaluateText(res)
	}

	switch res.Verdict.Decision {
	case model.DecisionEscalate:
		os.Exit(1)
	case model.DecisionBlock:
		os.Exit(2)
	}
	return nil
}

func outputEvaluateText(res *engine.Result) {
	fmt.Printf("Decision: %s\n", res.Verdict.Decision)
	fmt.Printf("Category: %s (%s)\n", res.Verdict.Category, res.Classification.Source)
	if res.ScoreKnown {
		fmt.Printf("Score:    %.2f\n", res.Score)
	} else {
		fmt.Printf("Score:    unavailable\n")
	}

	if len(res.Verdict.Reasons) > 0 {
		fmt.Println()
		for _, r := range res.Verdict.Reasons {
			fmt.Printf("  - %s\n", r)
		}
	}

	if len(res.Classification.DerivedLabels) > 0 {
		fmt.Printf("\nLabels: %s\n", joinLabels(res.Classification.DerivedLabels))
	}

	for i, tr := range res.Transitions {
		fmt.Printf("Transition: %s %s -> %s\n", tr.Label, tr.Action, res.Behaviors[i])
	}

	if res.DiffStats.Files > 0 {
		fmt.Printf("\nDiff: %d file(s), +%d -%d\n",
			res.DiffStats.Files, res.DiffStats.Added, res.DiffStats.Deleted)
	}

	if res.Warning != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", res.Warning)
	}
}

func outputEvaluateJSON(res *engine.Result) error {
	type transitionOut struct {
		Label    string `json:"label"`
		Action   string `json:"action"`
		Behavior string `json:"behavior"`
	}
	out := struct {
		Decision    string          `json:"decision"`
		Category    string          `json:"category"`
		Source      string          `json:"source"`
		Reasons     []string        `json:"reasons,omitempty"`
		Score       *float64        `json:"score,omitempty"`
		Document    string          `json:"document"`
		Warning     string          `json:"warning,omitempty"`
		Transitions []transitionOut `json:"transitions,omitempty"`
	}{
		Decision: res.Verdict.Decision.String(),
		Category: res.Verdict.Category.String(),
		Source:   res.Classification.Source.String(),
		Reasons:  res.Verdict.Reasons,
		Document: res.Document,
	}
	if res.ScoreKnown {
		score := res.Score
		out.Score = &score
	}
	if res.Warning != nil {
		out.Warning = res.Warning.String()
	}
	for i, tr := range res.Transitions {
		out.Transitions = append(out.Transitions, transitionOut{
			Label:    tr.Label,
			Action:   tr.Action.String(),
			Behavior: res.Behaviors[i].String(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
