// Package main implements the ffq CLI: it translates FHIR-Focused Query
// expressions to ValueSet.compose JSON and checks codes against a
// terminology server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ffq",
		Short: "FHIR terminology query tooling",
		Long: `ffq translates compact terminology queries into FHIR ValueSet.compose
structures and validates codes against a FHIR terminology server.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(lookupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ffq %s\n", Version)
	},
}
