package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gofhir/terminology/ffq"
)

var translateCompact bool

func init() {
	translateCmd.Flags().BoolVar(&translateCompact, "compact", false, "Emit compact JSON instead of indented")
}

var translateCmd = &cobra.Command{
	Use:   "translate [query|-]",
	Short: "Translate an FFQ expression to ValueSet.compose JSON",
	Long: `Translate a terminology query to a FHIR ValueSet.compose structure.

The query is taken from the first argument, or from stdin when the
argument is "-" or absent.

Examples:
  ffq translate 'http://snomed.info/sct: << 73211009'
  echo '@alias sct = http://snomed.info/sct
  sct: < 22298006' | ffq translate -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readQuery(args)
		if err != nil {
			return err
		}

		compose, err := ffq.TranslateQuery(input)
		if err != nil {
			return err
		}

		var out []byte
		if translateCompact {
			out, err = json.Marshal(compose)
		} else {
			out, err = json.MarshalIndent(compose, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("encoding compose: %w", err)
		}

		fmt.Println(string(out))
		return nil
	},
}

func readQuery(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
