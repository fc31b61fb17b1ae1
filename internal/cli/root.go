// Package cli implements the mergegate command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/config"
	"github.com/sprite-ai/mergegate/internal/engine"
	"github.com/sprite-ai/mergegate/internal/model"
)

var rootCmd = &cobra.Command{
	Use:   "mergegate",
	Short: "Workflow state and gating engine for reviewable changes",
	Long: `mergegate classifies changes from their conventional-commit titles,
evaluates them against a gating policy, and keeps labels and a managed
status document in sync with the verdict.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (YAML)")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(transitionCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the --config flag, falling back to defaults when it
// is unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newEngine builds an offline engine from the loaded configuration.
func newEngine(cfg config.Config) *engine.Engine {
	eng := engine.New()
	eng.Vocabulary = cfg.ConventionVocabulary()
	eng.Policy = cfg.GatePolicy()
	eng.Table = cfg.DispatchTable()
	eng.SectionID = cfg.SectionID()
	return eng
}

// descriptorFile is the JSON shape accepted by classify, evaluate and
// review.
type descriptorFile struct {
	Title   string `json:"title"`
	Commits []struct {
		Message string `json:"message"`
		ID      string `json:"id,omitempty"`
	} `json:"commits,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

func (d descriptorFile) toModel() model.ChangeDescriptor {
	out := model.ChangeDescriptor{
		Title:  d.Title,
		Labels: make(map[string]bool, len(d.Labels)),
	}
	for _, c := range d.Commits {
		out.Commits = append(out.Commits, model.CommitRecord{Message: c.Message, ID: c.ID})
	}
	for _, l := range d.Labels {
		out.Labels[l] = true
	}
	return out
}

// readInput reads a file argument, with "-" meaning stdin.
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// loadDescriptor builds a descriptor from either a JSON file argument
// or the --title flag.
func loadDescriptor(cmd *cobra.Command, args []string) (model.ChangeDescriptor, error) {
	if len(args) == 1 {
		data, err := readInput(args[0])
		if err != nil {
			return model.ChangeDescriptor{}, err
		}
		var df descriptorFile
		if err := json.Unmarshal(data, &df); err != nil {
			return model.ChangeDescriptor{}, fmt.Errorf("parsing descriptor: %w", err)
		}
		return df.toModel(), nil
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		return model.ChangeDescriptor{}, fmt.Errorf("provide a descriptor file or --title")
	}
	return model.ChangeDescriptor{Title: title, Labels: map[string]bool{}}, nil
}
