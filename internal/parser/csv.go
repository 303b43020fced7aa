package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

type csvDecoder struct{}

func (csvDecoder) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvDecoder) Decode(r io.Reader, filename string, opt Options) (*specimen.Dataset, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(filename)
	}
	return ReadCSV(r, opt)
}

// ReadCSV decodes delimited text with a header row. Cells that look like
// plain decimal numbers become Number values, empty cells become Absent and
// everything else stays a String. Empty lines are skipped.
func ReadCSV(r io.Reader, opt Options) (*specimen.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = ','
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &specimen.Dataset{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	return fromRecords(header, cr.Read)
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}

// numberPattern accepts the plain decimal forms a spreadsheet export writes;
// hex, infinities and digit separators stay text.
var numberPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// maxExactInt is 2^53; magnitudes at or above it cannot round-trip through
// float64, so long barcodes and catalog numbers stay text.
const maxExactInt = 1 << 53

// Cell types one raw text field: "" is Absent, true/TRUE/false/FALSE are
// Bool, decimals strictly inside ±2^53 are Number, the rest is String.
func Cell(s string) specimen.Value {
	switch s {
	case "":
		return specimen.Null()
	case "true", "TRUE", "false", "FALSE":
		return specimen.Boolean(s)
	}
	if numberPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && math.Abs(f) < maxExactInt {
			return specimen.Num(f)
		}
	}
	return specimen.Str(s)
}

// WriteCSV writes ds as comma separated text with a header row. Every field
// is quoted and records end with CRLF, so the output parses back into the
// same dataset.
func WriteCSV(w io.Writer, ds *specimen.Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, ds.Columns); err != nil {
		return err
	}
	rec := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, c := range ds.Columns {
			rec[i] = row.Get(c).String()
		}
		if err := writeRecord(bw, rec); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
