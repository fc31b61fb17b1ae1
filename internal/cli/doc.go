package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/mergegate/internal/docsync"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Inspect and update managed status documents",
}

var docUpsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Insert or replace one delimited section of a document",
	Long: `Upsert a section into a marker-delimited status document. The
operation is idempotent: re-running with the same body leaves the
document unchanged. Other sections and free-form text are preserved.

Examples:
  mergegate doc upsert --file status.md --section gating --body "all green"
  mergegate doc upsert --file status.md --section hygiene --body-file report.md --in-place`,
	RunE: runDocUpsert,
}

var docSectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the managed sections present in a document",
	RunE:  runDocSections,
}

var docShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the body of one managed section",
	RunE:  runDocShow,
}

func init() {
	docUpsertCmd.Flags().StringP("file", "F", "", "document file (\"-\" for stdin, empty starts a fresh document)")
	docUpsertCmd.Flags().String("section", "", "section identifier (required)")
	docUpsertCmd.Flags().String("body", "", "section body text")
	docUpsertCmd.Flags().String("body-file", "", "read the section body from a file")
	docUpsertCmd.Flags().Bool("in-place", false, "rewrite the document file instead of printing")
	docUpsertCmd.MarkFlagRequired("section")

	docSectionsCmd.Flags().StringP("file", "F", "", "document file (\"-\" for stdin)")
	docSectionsCmd.MarkFlagRequired("file")

	docShowCmd.Flags().StringP("file", "F", "", "document file (\"-\" for stdin)")
	docShowCmd.Flags().String("section", "", "section identifier (required)")
	docShowCmd.MarkFlagRequired("file")
	docShowCmd.MarkFlagRequired("section")

	docCmd.AddCommand(docUpsertCmd)
	docCmd.AddCommand(docSectionsCmd)
	docCmd.AddCommand(docShowCmd)
}

func runDocUpsert(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	existing := ""
	if file != "" {
		data, err := readInput(file)
		switch {
		case err == nil:
			existing = string(data)
		case file != "-" && errors.Is(err, os.ErrNotExist):
			// A missing file starts a fresh document.
		default:
			return err
		}
	}

	body, _ := cmd.Flags().GetString("body")
	if bodyFile, _ := cmd.Flags().GetString("body-file"); bodyFile != "" {
		data, err := readInput(bodyFile)
		if err != nil {
			return err
		}
		body = string(data)
	}

	section, _ := cmd.Flags().GetString("section")
	doc, warn := docsync.UpsertSection(existing, section, body)
	if warn != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
	}

	inPlace, _ := cmd.Flags().GetBool("in-place")
	if inPlace && file != "" && file != "-" {
		if err := os.WriteFile(file, []byte(doc), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", file, err)
		}
		fmt.Fprintf(os.Stderr, "Updated %s\n", file)
		return nil
	}

	fmt.Println(doc)
	return nil
}

func runDocSections(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	data, err := readInput(file)
	if err != nil {
		return err
	}

	ids := docsync.SectionIDs(string(data))
	if len(ids) == 0 {
		fmt.Println("No managed sections found.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runDocShow(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	data, err := readInput(file)
	if err != nil {
		return err
	}

	section, _ := cmd.Flags().GetString("section")
	body, ok := docsync.Section(string(data), section)
	if !ok {
		return fmt.Errorf("section %q not found", section)
	}
	fmt.Println(body)
	return nil
}
