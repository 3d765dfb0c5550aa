package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruleforge/ruleforge/pkg/rule"
	ruleerrors "github.com/ruleforge/ruleforge/pkg/rule/errors"
)

var checkCmd = &cobra.Command{
	Use:   "check <rule>...",
	Short: "Check rule syntax",
	Long: `Parse one or more rules and report syntax errors.

Exits non-zero if any rule fails to parse.

Examples:
  ruleforge check "age > 30 AND department = 'Sales'"
  ruleforge check "age < 10" "salary < 750"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, text := range args {
		node, err := rule.Create(text)
		if err != nil {
			failed++
			var synErr *ruleerrors.SyntaxError
			if errors.As(err, &synErr) {
				fmt.Fprintf(os.Stderr, "error: %s: %s\n", text, synErr)
				continue
			}
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", text, err)
			continue
		}

		if verbose {
			fmt.Printf("ok: %s\n  parsed as: %s\n", text, node)
		} else {
			fmt.Printf("ok: %s\n", text)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rules failed to parse", failed, len(args))
	}
	return nil
}
