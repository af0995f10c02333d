package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dataclinic-cli/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestParseFileCSV(t *testing.T) {
	p := writeFile(t, "hop_harvest.csv", "date,plot,alpha_acids,moisture\n"+
		"2024-08-10,A1,12.5,74\n"+
		"2024-08-12,\"A1, north\",11.8,\n"+
		"2024-08-15,B3\n")
	res, err := parser.ParseFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tbl := res.Table
	if !reflect.DeepEqual(tbl.Columns, []string{"date", "plot", "alpha_acids", "moisture"}) {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if tbl.Len() != 3 {
		t.Fatalf("rows = %d", tbl.Len())
	}
	if tbl.Rows[1]["plot"] != "A1, north" || tbl.Rows[1]["moisture"] != "" {
		t.Fatalf("row 1 = %v", tbl.Rows[1])
	}
	if _, ok := tbl.Rows[2]["moisture"]; ok {
		t.Fatalf("short record should leave key absent: %v", tbl.Rows[2])
	}
}

func TestParseFileCSVSniffsSemicolon(t *testing.T) {
	p := writeFile(t, "eu.csv", "name;score\nA;1,5\nB;2,0\n")
	res, err := parser.ParseFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Table.Rows[0]["score"] != "1,5" {
		t.Fatalf("row = %v", res.Table.Rows[0])
	}
}

func TestParseFileTSVAndHeaderRepair(t *testing.T) {
	p := writeFile(t, "a.tsv", "x\t\tx\n1\t2\t3\n")
	res, err := parser.ParseFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"x", "column_2", "x_2"}
	if !reflect.DeepEqual(res.Table.Columns, want) {
		t.Fatalf("columns = %v, want %v", res.Table.Columns, want)
	}
}

func TestParseFileJSON(t *testing.T) {
	p := writeFile(t, "rows.json", `[{"b": "x", "a": 1}, 7, {"a": null, "c": [1,2]}]`)
	res, err := parser.ParseFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Skipped != 1 {
		t.Fatalf("skipped = %d", res.Skipped)
	}
	if !reflect.DeepEqual(res.Table.Columns, []string{"b", "a", "c"}) {
		t.Fatalf("columns = %v", res.Table.Columns)
	}
	if res.Table.Rows[0]["a"] != 1.0 || res.Table.Rows[1]["c"] != "[1,2]" {
		t.Fatalf("rows = %v", res.Table.Rows)
	}
	if v, ok := res.Table.Rows[1]["a"]; !ok || v != nil {
		t.Fatalf("null should be kept as nil: %v", res.Table.Rows[1])
	}
}

func TestDecodeJSONRejectsNonArray(t *testing.T) {
	if _, _, err := parser.DecodeJSON([]byte(`{"a": 1}`)); !errors.Is(err, parser.ErrNotArray) {
		t.Fatalf("err = %v, want ErrNotArray", err)
	}
}

func TestParseFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Harvest"
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	cells := map[string]any{
		"A1": "plot", "B1": "yield",
		"A2": "A1", "B2": 10.5,
		"A3": "B3", "B3": 12,
	}
	for ref, v := range cells {
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			t.Fatalf("set %s: %v", ref, err)
		}
	}
	p := filepath.Join(t.TempDir(), "harvest.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := parser.ParseFile(p, parser.Options{Sheet: sheet})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(res.Table.Columns, []string{"plot", "yield"}) {
		t.Fatalf("columns = %v", res.Table.Columns)
	}
	if res.Table.Len() != 2 || res.Table.Rows[1]["yield"] != "12" {
		t.Fatalf("rows = %v", res.Table.Rows)
	}
	if _, err := parser.ParseFile(p, parser.Options{Sheet: "Missing"}); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}

func TestParseFileUnsupported(t *testing.T) {
	p := writeFile(t, "notes.txt", "hello")
	if _, err := parser.ParseFile(p, parser.Options{}); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if parser.Supported("notes.txt") || !parser.Supported("DATA.CSV") {
		t.Fatalf("Supported mismatch")
	}
}

func TestMaxRows(t *testing.T) {
	p := writeFile(t, "big.csv", "a\n1\n2\n3\n")
	res, err := parser.ParseFile(p, parser.Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Table.Len() != 2 {
		t.Fatalf("rows = %d", res.Table.Len())
	}
}
