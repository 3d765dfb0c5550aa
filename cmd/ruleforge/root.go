package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ruleforge",
	Short: "Ruleforge - rule expression engine and API server",
	Long: `Ruleforge is a rule expression engine for boolean conditions over
record attributes.

Rules are expressions like:

  age > 30 AND department = 'Sales'
  (age < 18 OR age > 65) AND status = 'active'

Operators combine strictly left to right; there is no precedence between
AND and OR. The server stores rules per owner and evaluates incoming
records against the owner's rule set, combined with OR.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
