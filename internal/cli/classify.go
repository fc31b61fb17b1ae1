package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/classify"
	"github.com/sprite-ai/mergegate/internal/model"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [descriptor.json]",
	Short: "Classify a change from its title and commits",
	Long: `Classify a change into patch, minor, major or breaking. Reads a
descriptor JSON file ("-" for stdin) or a bare title via --title.

Examples:
  mergegate classify --title "feat(api): add pagination"
  mergegate classify change.json
  cat change.json | mergegate classify -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringP("title", "t", "", "change title to classify")
	classifyCmd.Flags().StringP("format", "f", "text", "output format: text, json")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	d, err := loadDescriptor(cmd, args)
	if err != nil {
		return err
	}

	cls := classify.Classify(d, cfg.ConventionVocabulary())

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return outputClassificationJSON(cls)
	}

	fmt.Printf("Category: %s (%s)\n", cls.Category, cls.Source)
	if len(cls.DerivedLabels) > 0 {
		fmt.Printf("Labels:   %s\n", joinLabels(cls.DerivedLabels))
	}
	if cls.Category == model.CategoryInvalid {
		os.Exit(2)
	}
	return nil
}

func outputClassificationJSON(cls model.Classification) error {
	out := struct {
		Category      string   `json:"category"`
		Source        string   `json:"source"`
		DerivedLabels []string `json:"derived_labels,omitempty"`
	}{
		Category: cls.Category.String(),
		Source:   cls.Source.String(),
	}
	for l := range cls.DerivedLabels {
		out.DerivedLabels = append(out.DerivedLabels, l)
	}
	sort.Strings(out.DerivedLabels)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func joinLabels(m map[string]bool) string {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += ", "
		}
		out += l
	}
	return out
}
