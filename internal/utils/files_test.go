package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Sales Q1 (2024).csv": "sales-q1-2024-csv",
		"  hop__harvest ":     "hop-harvest",
		"***":                 "session",
	}
	for in, want := range cases {
		if got := utils.Slugify(in, "session"); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
	if utils.BaseName("/tmp/data/sales.v2.xlsx") != "sales.v2" {
		t.Fatalf("BaseName")
	}
}

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.json")
	if err := utils.SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "two" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
