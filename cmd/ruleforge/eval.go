package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruleforge/ruleforge/pkg/rule"
	"github.com/ruleforge/ruleforge/pkg/rule/eval"
)

var evalFlags struct {
	rules      []string
	record     string
	recordFile string
	quiet      bool
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate rules against a record",
	Long: `Combine the given rules with OR and evaluate them against a JSON
record. The record comes from --record, --record-file, or stdin.

Prints the boolean result and exits 0 when the record matches, 1 when it
does not.

Examples:
  ruleforge eval --rule "age < 10" --record '{"age": 5}'
  ruleforge eval --rule "age < 10" --rule "salary < 750" --record-file record.json
  echo '{"age": 5}' | ruleforge eval --rule "age < 10"`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayVarP(&evalFlags.rules, "rule", "r", nil, "rule to evaluate (repeatable)")
	evalCmd.Flags().StringVar(&evalFlags.record, "record", "", "JSON record to evaluate against")
	evalCmd.Flags().StringVar(&evalFlags.recordFile, "record-file", "", "file containing the JSON record")
	evalCmd.Flags().BoolVarP(&evalFlags.quiet, "quiet", "q", false, "suppress output, use only the exit code")
	_ = evalCmd.MarkFlagRequired("rule")
}

func runEval(cmd *cobra.Command, args []string) error {
	record, err := readRecord()
	if err != nil {
		return err
	}

	tree, err := rule.Combine(evalFlags.rules)
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	var diags []eval.Diagnostic
	evaluator := eval.New(
		eval.WithReporter(func(d eval.Diagnostic) { diags = append(diags, d) }),
	)
	result := evaluator.Evaluate(tree, record)

	if !evalFlags.quiet {
		fmt.Println(result)
		if verbose {
			for _, d := range diags {
				fmt.Fprintf(os.Stderr, "diagnostic: %s: %s\n", d.Reason, d.Detail)
			}
		}
	}

	if !result {
		// Exit code carries the result for scripting.
		os.Exit(1)
	}
	return nil
}

// readRecord loads the record from the flag, the file, or stdin.
func readRecord() (eval.Record, error) {
	var data []byte
	var err error

	switch {
	case evalFlags.record != "":
		data = []byte(evalFlags.record)
	case evalFlags.recordFile != "":
		data, err = os.ReadFile(evalFlags.recordFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read record file: %w", err)
		}
	default:
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read record from stdin: %w", err)
		}
	}

	var record eval.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("invalid JSON record: %w", err)
	}
	return record, nil
}
