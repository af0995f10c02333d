package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

type jsonParser struct{}

func (jsonParser) CanParse(filename string) bool {
	return hasExt(filename, ".json")
}

func (jsonParser) Parse(filename string, content []byte, opt Options) (*Result, error) {
	t, skipped, err := DecodeJSON(content)
	if err != nil {
		return nil, fmt.Errorf("json %s: %w", filename, err)
	}
	if opt.MaxRows > 0 && len(t.Rows) > opt.MaxRows {
		t = t.WithRows(t.Rows[:opt.MaxRows])
	}
	return &Result{Table: t, Format: "json", Skipped: skipped}, nil
}

// ErrNotArray is returned when a JSON document is not an array of records.
var ErrNotArray = errors.New("expected a JSON array of objects")

// DecodeJSON reads a JSON array of objects into a table, keeping each
// object's key order for the column order. Elements that are not objects are
// dropped and counted. Nested arrays and objects are kept as their JSON text.
func DecodeJSON(data []byte) (*table.Table, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNotArray, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, 0, ErrNotArray
	}
	var (
		cols    []string
		seen    = make(map[string]bool)
		rows    []table.Row
		skipped int
	)
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, 0, err
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			skipped++
			continue
		}
		row, keys, err := decodeObject(raw)
		if err != nil {
			return nil, 0, err
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, err
	}
	return table.NewWithColumns(cols, rows), skipped, nil
}

func decodeObject(raw []byte) (table.Row, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	row := make(table.Row)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		val, err := scalar(v)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = val
	}
	return row, keys, nil
}

func scalar(v json.RawMessage) (any, error) {
	v = bytes.TrimSpace(v)
	if len(v) > 0 && (v[0] == '{' || v[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}
	var out any
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}
