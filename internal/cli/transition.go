package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/model"
)

var transitionCmd = &cobra.Command{
	Use:   "transition <label> <added|removed>",
	Short: "Show the behavior a label transition dispatches to",
	Long: `Look up one label transition in the dispatch table and print the
behavior it selects. Unknown transitions select no-op.

Examples:
  mergegate transition critical added
  mergegate transition breaking removed`,
	Args: cobra.ExactArgs(2),
	RunE: runTransition,
}

func runTransition(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var action model.TransitionAction
	switch args[1] {
	case "added":
		action = model.LabelAdded
	case "removed":
		action = model.LabelRemoved
	default:
		return fmt.Errorf("action must be \"added\" or \"removed\", got %q", args[1])
	}

	b := cfg.DispatchTable().Dispatch(model.LabelTransition{Label: args[0], Action: action})
	fmt.Printf("%s %s -> %s\n", args[0], action, b)
	return nil
}
