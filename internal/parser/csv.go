package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	return hasExt(filename, ".csv", ".tsv")
}

func (csvParser) Parse(filename string, content []byte, opt Options) (*Result, error) {
	delim := opt.Delimiter
	if delim == 0 {
		if hasExt(filename, ".tsv") {
			delim = '\t'
		} else {
			delim = sniffDelimiter(content)
		}
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv %s: empty file", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("csv %s: read header: %w", filename, err)
	}
	cols := headerNames(header)
	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv %s: %w", filename, err)
		}
		// a bare newline between records
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && len(cols) > 1 {
			continue
		}
		records = append(records, rec)
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			break
		}
	}
	return &Result{Table: recordsToTable(cols, records, opt.MaxRows), Format: "csv"}, nil
}

// sniffDelimiter picks the most frequent of ',', ';' and '\t' on the first line.
func sniffDelimiter(content []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		return ','
	}
	line := sc.Text()
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
