package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// rowKey is the canonical serialization of a row. encoding/json sorts map
// keys, so equality is structural and independent of key order.
func rowKey(r table.Row) string {
	b, err := json.Marshal(r)
	if err != nil {
		// NaN/Inf are not valid JSON; fall back to a printed form
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%q:%#v;", k, r[k])
		}
		return sb.String()
	}
	return string(b)
}

// Dedupe removes exact duplicate rows, keeping the first occurrence and the
// original order of survivors. It returns the new table and the number removed.
func Dedupe(t *table.Table) (*table.Table, int) {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		k := rowKey(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r.Clone())
	}
	return t.WithRows(kept), len(t.Rows) - len(kept)
}

// CountDuplicates returns how many rows Dedupe would remove.
func CountDuplicates(t *table.Table) int {
	seen := make(map[string]struct{}, len(t.Rows))
	n := 0
	for _, r := range t.Rows {
		k := rowKey(r)
		if _, dup := seen[k]; dup {
			n++
			continue
		}
		seen[k] = struct{}{}
	}
	return n
}

// RemoveEmptyRows drops rows whose every value is missing and reports how many were dropped.
func RemoveEmptyRows(t *table.Table) (*table.Table, int) {
	kept := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if table.IsEmptyRow(r) {
			continue
		}
		kept = append(kept, r.Clone())
	}
	return t.WithRows(kept), len(t.Rows) - len(kept)
}
