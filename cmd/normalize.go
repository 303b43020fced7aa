package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/specimen-cli/internal/parser"
	"github.com/KaramelBytes/specimen-cli/internal/utils"
)

var (
	normOutput    string
	normDelimiter string
	normSheet     string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Write the normalized catalog as CSV",
	Long: `Normalize country, class, order and family fields and write the full dataset
as CSV. Every field is quoted so the export reads back into the same dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		popt, err := parserOptions(normDelimiter, normSheet)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0], popt, newProcessor(0))
		if err != nil {
			return err
		}
		if normOutput == "" {
			return parser.WriteCSV(cmd.OutOrStdout(), ds)
		}
		var buf bytes.Buffer
		if err := parser.WriteCSV(&buf, ds); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(normOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d specimens to %s\n", ds.Len(), normOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&normOutput, "output", "o", "", "path to write the CSV (default stdout)")
	normalizeCmd.Flags().StringVar(&normDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	normalizeCmd.Flags().StringVar(&normSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
}
