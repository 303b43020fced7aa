package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

type xlsxDecoder struct{}

func (xlsxDecoder) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxDecoder) Decode(r io.Reader, _ string, opt Options) (*specimen.Dataset, error) {
	return ReadXLSX(r, opt.Sheet)
}

// ReadXLSX decodes one worksheet; the first row is the header. Cells are
// read as displayed and typed the same way as CSV cells.
func ReadXLSX(r io.Reader, sheet string) (*specimen.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &specimen.Dataset{}, nil
	}
	if sheet == "" {
		sheet = sheets[0]
	} else {
		found := ""
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				found = s
				break
			}
		}
		if found == "" {
			return nil, fmt.Errorf("sheet '%s' not found.\nAvailable sheets: %s", sheet, strings.Join(sheets, ", "))
		}
		sheet = found
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	next := func() ([]string, error) {
		if !rows.Next() {
			if err := rows.Error(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return rows.Columns()
	}
	header, err := next()
	if err != nil {
		if err == io.EOF {
			return &specimen.Dataset{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	return fromRecords(header, next)
}
