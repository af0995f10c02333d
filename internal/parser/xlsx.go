package parser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return hasExt(filename, ".xlsx", ".xlsm")
}

// Parse reads one sheet: the named one, or the first. The first non-empty
// row is the header.
func (xlsxParser) Parse(filename string, content []byte, opt Options) (*Result, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer xl.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = xl.GetSheetName(0)
		if sheet == "" {
			list := xl.GetSheetList()
			if len(list) == 0 {
				return nil, fmt.Errorf("no sheets found in %s", filename)
			}
			sheet = list[0]
		}
	} else if idx, err := xl.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, filename)
	}

	rows, err := xl.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer rows.Close()

	var header []string
	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			continue // skip malformed rows
		}
		if header == nil {
			if len(cols) == 0 {
				continue
			}
			header = headerNames(cols)
			continue
		}
		if len(cols) == 0 {
			continue
		}
		records = append(records, cols)
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			break
		}
	}
	if header == nil {
		return nil, fmt.Errorf("xlsx sheet %q is empty", sheet)
	}
	return &Result{Table: recordsToTable(header, records, opt.MaxRows), Format: "xlsx"}, nil
}
