package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/parser"
	"github.com/KaramelBytes/dataclinic-cli/internal/session"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// parseDelimiter maps the --delimiter flag onto a rune; "" means auto-detect.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// openStore returns the session store for the configured sessions dir.
func openStore() (*session.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return session.NewStore(c.SessionsDir, logger), nil
}

// openSession loads a session by name.
func openSession(name string) (*session.Store, *session.Session, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	s, err := st.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return st, s, nil
}

// loadCleaned parses a dataset file and runs the cleaning pipeline.
func loadCleaned(path string, opt parser.Options) (*parser.Result, *table.Table, []string, error) {
	res, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, nil, nil, err
	}
	t, steps := analysis.PreprocessUpload(res)
	return res, t, steps, nil
}

// parserOptions builds parser options from flags, filling MaxRows from config
// when the flag is unset.
func parserOptions(delim, sheet string, maxRows int) (parser.Options, error) {
	d, err := parseDelimiter(strings.TrimSpace(delim))
	if err != nil {
		return parser.Options{}, err
	}
	if c, err := requireConfig(); err == nil && maxRows <= 0 {
		maxRows = c.MaxRows
	}
	return parser.Options{Delimiter: d, Sheet: sheet, MaxRows: maxRows}, nil
}
