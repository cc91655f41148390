package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gofhir/terminology"
)

var (
	validateServer   string
	validateValueSet string
	validateCacheDir string
	validateNoCache  bool
	validateMock     bool
	validateVerbose  bool
	validateJSON     bool
)

func init() {
	validateCmd.Flags().StringVar(&validateServer, "server", terminology.TxServerURL, "Terminology server base URL")
	validateCmd.Flags().StringVar(&validateValueSet, "valueset", "", "Validate membership in this ValueSet URL")
	validateCmd.Flags().StringVar(&validateCacheDir, "cache-dir", "", "Cache directory (default ~/.fhir/terminology-cache)")
	validateCmd.Flags().BoolVar(&validateNoCache, "no-cache", false, "Skip the persistent cache")
	validateCmd.Flags().BoolVar(&validateMock, "mock", false, "Use the built-in mock service instead of a server")
	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Log requests")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Emit the raw result as JSON")

	lookupCmd.Flags().StringVar(&validateServer, "server", terminology.TxServerURL, "Terminology server base URL")
	lookupCmd.Flags().StringVar(&validateCacheDir, "cache-dir", "", "Cache directory (default ~/.fhir/terminology-cache)")
	lookupCmd.Flags().BoolVar(&validateNoCache, "no-cache", false, "Skip the persistent cache")
	lookupCmd.Flags().BoolVar(&validateMock, "mock", false, "Use the built-in mock service instead of a server")
	lookupCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Log requests")
}

// newService assembles the service stack the flags describe: mock or HTTP,
// wrapped in the persistent cache unless disabled. The returned close
// function flushes the cache.
func newService() (terminology.Service, func(), error) {
	log := zerolog.Nop()
	if validateVerbose {
		log = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr })).
			With().Timestamp().Logger()
	}

	var svc terminology.Service
	if validateMock {
		svc = terminology.NewMockServiceWithCommonCodes()
	} else {
		svc = terminology.NewHTTPService(validateServer, terminology.WithHTTPLogger(log))
	}

	if validateNoCache {
		return svc, func() {}, nil
	}

	cacheOpts := []terminology.CacheOption{terminology.WithCacheLogger(log)}
	if validateCacheDir != "" {
		cacheOpts = append(cacheOpts, terminology.WithCacheDir(validateCacheDir))
	}
	cached := terminology.NewCachedService(svc, cacheOpts...)
	return cached, func() { _ = cached.Close() }, nil
}

var validateCmd = &cobra.Command{
	Use:   "validate <system> <code> [display]",
	Short: "Validate a code against a terminology server",
	Long: `Validate that a code is defined in a code system, optionally checking
its display text, or (with --valueset) that it is a member of a ValueSet.

Examples:
  ffq validate http://loinc.org 8867-4 'Heart rate'
  ffq validate --valueset http://hl7.org/fhir/ValueSet/administrative-gender \
      http://hl7.org/fhir/administrative-gender male`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		system, code := args[0], args[1]
		display := ""
		if len(args) == 3 {
			display = args[2]
		}

		svc, closeSvc, err := newService()
		if err != nil {
			return err
		}
		defer closeSvc()

		var result *terminology.ValidateResult
		if validateValueSet != "" {
			result, err = svc.ValidateCodeInValueSet(validateValueSet, system, code, display)
		} else {
			result, err = svc.ValidateCodeInCodeSystem(system, code, display)
		}
		if err != nil {
			return err
		}

		if validateJSON {
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else {
			status := "INVALID"
			if result.Result {
				status = "VALID"
			}
			fmt.Printf("%s %s#%s\n", status, system, code)
			if result.Display != "" {
				fmt.Printf("Display: %s\n", result.Display)
			}
			if result.Message != "" {
				fmt.Printf("Message: %s\n", result.Message)
			}
		}

		if !result.Result {
			os.Exit(1)
		}
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <system> <code>",
	Short: "Look up a code's display, properties and designations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSvc, err := newService()
		if err != nil {
			return err
		}
		defer closeSvc()

		result, err := svc.LookupCode(args[0], args[1])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
