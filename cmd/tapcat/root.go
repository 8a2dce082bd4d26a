// Command tapcat reads TAP output, from a file or piped stdin, and prints
// a colorized rendering of the parsed event stream alongside the final
// summary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	cfgDir  string

	flagNoColor      bool
	flagStrict       bool
	flagGrep         string
	flagShowPragmas  bool
)

var rootCmd = &cobra.Command{
	Use:     "tapcat",
	Short:   "Stream and render Test Anything Protocol output",
	Version: version,
	Long: `tapcat parses TAP (Test Anything Protocol) v13 output as it arrives
and renders a colorized line-by-line report with a final pass/fail summary.

  tapcat cat results.tap        render a complete TAP file
  some-test-runner | tapcat cat render TAP piped from a test runner
  tapcat watch results.tap      follow a TAP log file as it grows`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tapcat:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", ".", "directory to look for .tapcat.yaml in")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "treat any non-TAP line as a failure")
	rootCmd.PersistentFlags().StringVar(&flagGrep, "grep", "", "fuzzy-filter printed assertions by test name")
	rootCmd.PersistentFlags().BoolVar(&flagShowPragmas, "show-pragmas", false, "log recognized pragma lines to stderr")
	rootCmd.SetVersionTemplate(fmt.Sprintf("tapcat version %s\n", version))
}
