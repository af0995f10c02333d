package utils_test

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := map[string]int{
		"":                     0,
		"yield":                1,
		"Available Columns: a": 5,
		strings.Repeat("é", 8): 2,
	}
	for in, want := range cases {
		if got := utils.CountTokens(in); got != want {
			t.Errorf("CountTokens(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	row := `{"plot":"A1","yield":10.5,"note":"` + strings.Repeat("wet season ", 200) + `"}`
	got := utils.TruncateToTokenLimit(row, 75)
	if len([]rune(got)) != 300 || !strings.HasPrefix(row, got) {
		t.Fatalf("truncated to %d runes", len([]rune(got)))
	}
	if utils.TruncateToTokenLimit("short", 75) != "short" {
		t.Fatalf("short text should pass through")
	}
	if utils.TruncateToTokenLimit("anything", 0) != "" {
		t.Fatalf("zero limit should drop everything")
	}
}

func TestTokenBreakdown(t *testing.T) {
	got := utils.TokenBreakdown(map[string]string{"system": "abcdabcd", "user": ""})
	if got["system"] != 2 || got["user"] != 0 {
		t.Fatalf("breakdown = %v", got)
	}
}
