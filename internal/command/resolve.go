package command

import (
	"fmt"
	"regexp"
	"strings"
)

// maxEditDistance is the largest edit distance accepted for a fuzzy match.
const maxEditDistance = 3

// Resolution is the outcome of matching a typed name against the columns.
type Resolution struct {
	Name      string // column actually used
	Requested string // name as typed
	Note      string // set when Name is not an exact match
}

// UnresolvedColumnError reports a name that matched no column.
type UnresolvedColumnError struct {
	Name string
}

func (e *UnresolvedColumnError) Error() string {
	return fmt.Sprintf("column '%s' not found", e.Name)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeName(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

// Resolve maps a typed column name onto one of columns. It tries, in order,
// an exact match after normalization, containment in either direction, and
// the closest name within maxEditDistance edits. Any match other than exact
// carries a note naming both the typed and the chosen column.
func Resolve(name string, columns []string) (Resolution, error) {
	target := normalizeName(name)
	if target == "" {
		return Resolution{}, &UnresolvedColumnError{Name: name}
	}
	norm := make([]string, len(columns))
	for i, c := range columns {
		norm[i] = normalizeName(c)
	}
	for i, n := range norm {
		if n == target {
			return Resolution{Name: columns[i], Requested: name}, nil
		}
	}
	for i, n := range norm {
		if n == "" {
			continue
		}
		if strings.Contains(n, target) || strings.Contains(target, n) {
			return interpreted(name, columns[i]), nil
		}
	}
	best, bestDist := -1, maxEditDistance+1
	for i, n := range norm {
		if n == "" {
			continue
		}
		if d := Levenshtein(n, target); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return interpreted(name, columns[best]), nil
	}
	return Resolution{}, &UnresolvedColumnError{Name: name}
}

func interpreted(name, col string) Resolution {
	return Resolution{Name: col, Requested: name, Note: fmt.Sprintf("(interpreted '%s' as '%s')", name, col)}
}

// Levenshtein is the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	r1, r2 := []rune(a), []rune(b)
	row := make([]int, len(r2)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		prev := i
		for j := 1; j <= len(r2); j++ {
			val := row[j-1]
			if r1[i-1] != r2[j-1] {
				val = min(row[j-1]+1, prev+1, row[j]+1)
			}
			row[j-1] = prev
			prev = val
		}
		row[len(r2)] = prev
	}
	return row[len(r2)]
}
