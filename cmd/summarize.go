package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/specimen-cli/internal/processor"
	"github.com/KaramelBytes/specimen-cli/internal/report"
	"github.com/KaramelBytes/specimen-cli/internal/utils"
)

var (
	sumFormat    string
	sumOutput    string
	sumChartsDir string
	sumHTML      string
	sumTopN      int
	sumDelimiter string
	sumSheet     string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Normalize a catalog and report distributions and missing data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := strings.ToLower(strings.TrimSpace(sumFormat))
		switch format {
		case "markdown", "md", "table", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|table|json)", sumFormat)
		}
		popt, err := parserOptions(sumDelimiter, sumSheet)
		if err != nil {
			return err
		}
		p := newProcessor(sumTopN)
		ds, err := loadDataset(path, popt, p)
		if err != nil {
			return err
		}
		var mc *processor.MissingColumnsError
		if err := processor.ValidateColumns(ds); errors.As(err, &mc) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		}

		s := report.Summary{Name: filepath.Base(path), Overview: p.Overview(ds), Bundle: p.Summarize(ds)}
		var out string
		switch format {
		case "table":
			out = report.Tables(s)
		case "json":
			b, err := utils.PrettyJSON(s)
			if err != nil {
				return err
			}
			out = string(b)
		default:
			out = report.Markdown(s)
		}

		if sumChartsDir != "" {
			if err := writeCharts(cmd, sumChartsDir, s); err != nil {
				return err
			}
		}
		if sumHTML != "" {
			var buf bytes.Buffer
			if err := report.InteractivePage(&buf, s); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(sumHTML, buf.Bytes()); err != nil {
				return fmt.Errorf("write html: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote interactive charts to %s\n", sumHTML)
		}
		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// writeCharts renders one PNG per field into dir. Fields with nothing to
// draw are skipped.
func writeCharts(cmd *cobra.Command, dir string, s report.Summary) error {
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}
	for _, sec := range report.Sections(s.Bundle) {
		var (
			png []byte
			err error
		)
		if sec.Field == "class" {
			png, err = report.PieChart(sec.Title, sec.Rows)
		} else {
			png, err = report.BarChart(sec.Title, sec.Rows)
		}
		if errors.Is(err, report.ErrNoData) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped %s chart: no data\n", sec.Field)
			continue
		}
		if err != nil {
			return err
		}
		dst := filepath.Join(dir, sec.Field+".png")
		if err := os.WriteFile(dst, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", dst)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&sumFormat, "format", "f", "markdown", "output format: markdown|table|json")
	summarizeCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "optional path to write the summary")
	summarizeCmd.Flags().StringVar(&sumChartsDir, "charts", "", "directory to write PNG charts into")
	summarizeCmd.Flags().StringVar(&sumHTML, "html", "", "path to write an interactive HTML chart page")
	summarizeCmd.Flags().IntVar(&sumTopN, "top", 0, "cap Order/Family rankings at N entries (default from config)")
	summarizeCmd.Flags().StringVar(&sumDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	summarizeCmd.Flags().StringVar(&sumSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
}
