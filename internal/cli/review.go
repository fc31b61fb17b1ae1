package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/remote"
	"github.com/sprite-ai/mergegate/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review <descriptors.json>",
	Short: "Open an interactive review session",
	Long: `Open an interactive TUI showing the gating verdict for a batch of
changes. The input is a JSON array of descriptors ("-" for stdin).

Examples:
  mergegate review changes.json
  mergegate review changes.json --score 0.92
  cat changes.json | mergegate review -`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Float64P("score", "s", -1, "external quality score applied to every change")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	var entries []struct {
		Handle string `json:"handle,omitempty"`
		descriptorFile
		Patch string `json:"patch,omitempty"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing descriptors: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No changes to review.")
		return nil
	}

	changes := make([]tui.Change, 0, len(entries))
	for _, e := range entries {
		changes = append(changes, tui.Change{
			Handle:     e.Handle,
			Descriptor: e.toModel(),
			Patch:      e.Patch,
		})
	}

	eng := newEngine(cfg)
	if score, _ := cmd.Flags().GetFloat64("score"); score >= 0 {
		eng.Scores = remote.StaticScore(score)
	}

	return tui.Run(eng, changes)
}
