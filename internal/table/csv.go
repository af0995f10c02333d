package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serializes the table with a header row in column order. Fields
// containing the delimiter, quotes or line breaks are quoted. Missing cells
// are written empty.
func WriteCSV(w io.Writer, t *Table, delim rune) error {
	if delim == 0 {
		delim = ','
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i, r := range t.Rows {
		for j, c := range t.Columns {
			v := r[c]
			if v == nil {
				rec[j] = ""
				continue
			}
			rec[j] = Stringify(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
