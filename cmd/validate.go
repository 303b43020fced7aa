package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/specimen-cli/internal/missing"
	"github.com/KaramelBytes/specimen-cli/internal/parser"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
)

var (
	valDelimiter string
	valSheet     string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a catalog has the required columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		popt, err := parserOptions(valDelimiter, valSheet)
		if err != nil {
			return err
		}
		raw, err := parser.ReadFile(args[0], popt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := processor.ValidateColumns(raw); err != nil {
			var mc *processor.MissingColumnsError
			if errors.As(err, &mc) {
				fmt.Fprintf(out, "✗ Missing required columns: %v\n", mc.Columns)
				fmt.Fprintf(out, "  Found: %v\n", raw.Columns)
			}
			return err
		}
		fmt.Fprintf(out, "✓ %s: %d rows, %d columns, required columns present\n", args[0], raw.Len(), len(raw.Columns))

		ds, err := newProcessor(0).Process(raw)
		if err != nil {
			return err
		}
		m := missing.Compute(ds)
		for _, l := range m.Lines() {
			if l.Count > 0 {
				fmt.Fprintf(out, "⚠ %s missing in %d rows (%.1f%%)\n", l.Name, l.Count, l.Percent)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&valDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	validateCmd.Flags().StringVar(&valSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
}
