package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/charts"
)

// Op is the kind of work an Action asks for.
type Op string

const (
	OpChart          Op = "chart"
	OpBarAuto        Op = "bar_auto"
	OpFill           Op = "fill"
	OpRemoveNullRows Op = "remove_null_rows"
	OpDropColumn     Op = "drop_column"
	OpRenameColumn   Op = "rename_column"
	OpDescribe       Op = "describe"
	OpUnrecognized   Op = "unrecognized"
)

// HelpText is the reply for input that matches no command.
const HelpText = "I can clean data (fill/remove nulls, drop/rename columns) and create charts. " +
	"Examples: 'fill nulls in Age with mean', 'remove rows where Salary is null', 'drop column Address', " +
	"'rename column old to new', 'histogram of Year', 'scatter Age vs Salary', 'pie of Category', or ask for 'insights'."

// Action is a structured command. Columns are resolved table columns in the
// order the operation takes them; for charts that is the builder's argument
// order. Err is set when a column could not be resolved, in which case
// Message explains it and nothing may be applied.
type Action struct {
	Op       Op          `json:"op"`
	Chart    charts.Kind `json:"chart,omitempty"`
	Columns  []string    `json:"columns,omitempty"`
	Notes    []string    `json:"notes,omitempty"`
	Strategy string      `json:"strategy,omitempty"`
	NewName  string      `json:"new_name,omitempty"`
	Message  string      `json:"message,omitempty"`
	Err      error       `json:"-"`
}

// Resolved reports whether the action can be applied.
func (a Action) Resolved() bool { return a.Err == nil && a.Op != OpUnrecognized }

// Note joins the resolution notes.
func (a Action) Note() string { return strings.Join(a.Notes, " ") }

const colPat = `([a-z0-9_\-]+)`

type rule struct {
	re    *regexp.Regexp
	build func(m []string, columns []string) Action
}

func pattern(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.ReplaceAll(p, "COL", colPat))
}

// rules are tried in order; the first match wins.
var rules = []rule{
	{pattern(`histogram[^a-z0-9]+(?:of|for)?\s*COL`), chart1(charts.KindHistogram)},
	{pattern(`scatter.*?(?:of\s+)?COL\s*(?:vs|and)\s*COL`), chart2(charts.KindScatter, false)},
	{pattern(`pie[^a-z0-9]+(?:of|for)?\s*COL`), chart1(charts.KindPie)},
	{pattern(`fill\s+(?:missing|nulls?)\s+(?:in\s+)?COL\s+(?:with\s+)(mean|median|mode|[a-z0-9_\-\.]+)`), fill},
	{pattern(`remove\s+rows\s+where\s+COL\s+(?:is\s+)?null`), cleaning1(OpRemoveNullRows)},
	{pattern(`drop\s+column\s+COL`), cleaning1(OpDropColumn)},
	{pattern(`rename\s+column\s+COL\s+to\s+COL`), rename},
	{pattern(`line(?:\s+chart)?[^a-z0-9]+(?:of\s+)?COL\s*(?:vs|over|by)\s*COL`), chart2(charts.KindLine, true)},
	{pattern(`bar(?:\s+chart)?[^a-z0-9]+(?:of\s+)?count\s+(?:by|for)\s*COL`), chart1(charts.KindBarCount)},
	{pattern(`bar(?:\s+chart)?[^a-z0-9]+(?:of\s+)?COL\s+(?:by|per|vs)\s*COL`), chart2(charts.KindBarAgg, false)},
	{pattern(`box(?:\s+plot)?[^a-z0-9]+(?:of\s+)?COL\s+(?:by|per|vs)\s*COL`), chart2(charts.KindBox, false)},
	{pattern(`heatmap[^a-z0-9]+(?:of\s+)?COL\s*(?:vs|by)\s*COL`), chart2(charts.KindHeatmap, false)},
	{pattern(`bar[^a-z0-9]+COL\s*(?:vs|by|per)\s*COL`), barAuto},
	{regexp.MustCompile(`(?i)(describe|insights|summary|stats|statistics)`), func([]string, []string) Action {
		return Action{Op: OpDescribe}
	}},
}

// Interpret turns free text into an Action against the given columns. Text
// that matches no command yields OpUnrecognized with the help text.
func Interpret(text string, columns []string) Action {
	text = strings.TrimSpace(text)
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			return r.build(m, columns)
		}
	}
	return Action{Op: OpUnrecognized, Message: HelpText}
}

// resolveAll resolves each literal; on failure the returned message names the
// literals exactly as typed.
func resolveAll(columns []string, literals ...string) ([]Resolution, string, error) {
	out := make([]Resolution, len(literals))
	for i, l := range literals {
		res, err := Resolve(l, columns)
		if err != nil {
			if len(literals) == 1 {
				return nil, fmt.Sprintf("Column '%s' not found.", l), err
			}
			quoted := make([]string, len(literals))
			for j, q := range literals {
				quoted[j] = "'" + q + "'"
			}
			return nil, fmt.Sprintf("Columns %s not found.", strings.Join(quoted, " and/or ")), err
		}
		out[i] = res
	}
	return out, "", nil
}

func notesOf(rs ...Resolution) []string {
	var out []string
	for _, r := range rs {
		if r.Note != "" {
			out = append(out, r.Note)
		}
	}
	return out
}

func chart1(kind charts.Kind) func([]string, []string) Action {
	return func(m []string, columns []string) Action {
		a := Action{Op: OpChart, Chart: kind}
		rs, msg, err := resolveAll(columns, m[1])
		if err != nil {
			a.Message, a.Err = msg, err
			return a
		}
		a.Columns = []string{rs[0].Name}
		a.Notes = notesOf(rs...)
		return a
	}
}

// chart2 resolves two captured names. yFirst marks patterns that name the
// y column before the x column ("line Sales over Date").
func chart2(kind charts.Kind, yFirst bool) func([]string, []string) Action {
	return func(m []string, columns []string) Action {
		a := Action{Op: OpChart, Chart: kind}
		rs, msg, err := resolveAll(columns, m[1], m[2])
		if err != nil {
			a.Message, a.Err = msg, err
			return a
		}
		a.Columns = []string{rs[0].Name, rs[1].Name}
		a.Notes = notesOf(rs...)
		if yFirst {
			a.Columns = []string{rs[1].Name, rs[0].Name}
			a.Notes = notesOf(rs[1], rs[0])
		}
		return a
	}
}

func barAuto(m []string, columns []string) Action {
	a := chart2("", false)(m, columns)
	a.Op = OpBarAuto
	return a
}

func cleaning1(op Op) func([]string, []string) Action {
	return func(m []string, columns []string) Action {
		a := chart1("")(m, columns)
		a.Op = op
		return a
	}
}

func fill(m []string, columns []string) Action {
	a := cleaning1(OpFill)(m, columns)
	a.Strategy = m[2]
	switch s := strings.ToLower(m[2]); s {
	case "mean", "median", "mode":
		a.Strategy = s
	}
	return a
}

func rename(m []string, columns []string) Action {
	a := cleaning1(OpRenameColumn)(m, columns)
	a.NewName = m[2]
	return a
}
