package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// Options controls how an upload is turned into a table.
type Options struct {
	// Delimiter for CSV. If 0, auto-detects among ',', ';', '\t' ('\t' for .tsv).
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
}

// Result is a parsed upload.
type Result struct {
	Table  *table.Table
	Format string
	// Skipped counts records dropped because they were not row-shaped.
	Skipped int
}

// Parser turns the bytes of one file format into a table.
type Parser interface {
	CanParse(filename string) bool
	Parse(filename string, content []byte, opt Options) (*Result, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported dataset format")

// ParseFile selects a parser based on filename and returns the parsed table.
func ParseFile(path string, opt Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseBytes(filepath.Base(path), data, opt)
}

// ParseBytes parses content using the parser registered for filename's extension.
func ParseBytes(filename string, content []byte, opt Options) (*Result, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p.Parse(filename, content, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func hasExt(filename string, exts ...string) bool {
	name := strings.ToLower(filename)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// headerNames fills blank header cells and disambiguates repeats so every
// column has a distinct key.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		out[i] = h
	}
	return out
}

// recordsToTable maps positional records onto header names. Short records
// leave trailing keys absent; surplus cells are ignored.
func recordsToTable(header []string, records [][]string, maxRows int) *table.Table {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		if maxRows > 0 && len(rows) >= maxRows {
			break
		}
		r := make(table.Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				r[h] = rec[i]
			}
		}
		rows = append(rows, r)
	}
	return table.NewWithColumns(header, rows)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
	Register(jsonParser{})
}
