// Package parser loads specimen catalogs from delimited text or spreadsheets
// and writes them back out as CSV.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

// Options controls decoding.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (tab for .tsv, comma otherwise).
	Delimiter rune
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

// Decoder turns a named byte stream into a Dataset.
type Decoder interface {
	CanParse(filename string) bool
	Decode(r io.Reader, filename string, opt Options) (*specimen.Dataset, error)
}

var registry []Decoder

// Register adds a decoder implementation to the registry.
func Register(d Decoder) {
	registry = append(registry, d)
}

func init() {
	Register(csvDecoder{})
	Register(xlsxDecoder{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported dataset format")

// ReadFile loads a dataset from disk. Archives (.gz, .zip, .lz4) are
// unpacked in memory first.
func ReadFile(path string, opt Options) (*specimen.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Read(filepath.Base(path), bytes.NewReader(data), opt)
}

// Read decodes r, picking a decoder by name. It is used for uploads where
// only the client supplied filename is known.
func Read(name string, r io.Reader, opt Options) (*specimen.Dataset, error) {
	if IsArchive(name) {
		inner, content, err := Unpack(name, r)
		if err != nil {
			return nil, err
		}
		name, r = inner, bytes.NewReader(content)
	}
	for _, d := range registry {
		if d.CanParse(name) {
			ds, err := d.Decode(r, name, opt)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return ds, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
}

// fromRecords builds a Dataset from a header row followed by data rows.
// Short rows are padded with Absent cells and surplus fields are dropped.
func fromRecords(header []string, next func() ([]string, error)) (*specimen.Dataset, error) {
	cols := cleanHeaders(header)
	ds := &specimen.Dataset{Columns: cols}
	for {
		rec, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(ds.Rows)+1, err)
		}
		if blankRecord(rec) {
			continue
		}
		row := make(specimen.Row, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c] = Cell(rec[i])
			} else {
				row[c] = specimen.Null()
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// cleanHeaders trims names, strips a UTF-8 byte order mark, names empty
// headers by position and suffixes duplicates.
func cleanHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// blankRecord reports a line with no content at all (a lone empty field).
func blankRecord(rec []string) bool {
	return len(rec) == 0 || (len(rec) == 1 && rec[0] == "")
}
