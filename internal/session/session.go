package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/charts"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

const (
	sessionFileName = "session.json"
)

// Turn is one exchange recorded by the assistant.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session holds a cleaned dataset and everything derived from it.
type Session struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Source      string                `json:"source"`
	Format      string                `json:"format,omitempty"`
	Columns     []string              `json:"columns"`
	Rows        []table.Row           `json:"rows"`
	Steps       []string              `json:"steps"`
	Suggestions []analysis.Suggestion `json:"suggestions"`
	Chart       *charts.Spec          `json:"chart,omitempty"`
	Turns       []Turn                `json:"turns,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`

	// Not serialized: on-disk location of the session.json
	rootDir string `json:"-"`
}

// New constructs an in-memory session for a cleaned table. Call Save() to persist.
func New(name, source string, t *table.Table, steps []string, rootDir string) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		Steps:     append([]string(nil), steps...),
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   rootDir,
	}
	s.setTable(t)
	s.Suggestions = analysis.GenerateSuggestions(t)
	return s
}

// Load reads a session.json from the provided directory.
func Load(dir string) (*Session, error) {
	path := filepath.Join(dir, sessionFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("session not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk session directory path.
func (s *Session) RootDir() string { return s.rootDir }

// Save writes session.json using atomic write.
func (s *Session) Save() error {
	if s.rootDir == "" {
		return errors.New("session root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, sessionFileName), data)
}

// Table returns the stored dataset. The rows are shared with the session;
// callers that modify must Clone first.
func (s *Session) Table() *table.Table {
	return table.NewWithColumns(s.Columns, s.Rows)
}

// Replace swaps in a new table, appends step to the log and regenerates
// suggestions for the new data.
func (s *Session) Replace(t *table.Table, step string) {
	s.setTable(t)
	if step != "" {
		s.Steps = append(s.Steps, step)
	}
	s.Suggestions = analysis.GenerateSuggestions(t)
	s.UpdatedAt = time.Now()
}

// MarkApplied flags the suggestion with id as applied.
func (s *Session) MarkApplied(id string) bool {
	if !analysis.MarkApplied(s.Suggestions, id) {
		return false
	}
	s.UpdatedAt = time.Now()
	return true
}

// SetChart records the most recently built chart.
func (s *Session) SetChart(c *charts.Spec) {
	s.Chart = c
	s.UpdatedAt = time.Now()
}

// AddTurn appends a chat exchange entry.
func (s *Session) AddTurn(role, text string) {
	s.Turns = append(s.Turns, Turn{Role: role, Text: text, At: time.Now()})
}

func (s *Session) setTable(t *table.Table) {
	if t == nil {
		s.Columns, s.Rows = nil, nil
		return
	}
	s.Columns = append([]string(nil), t.Columns...)
	s.Rows = t.Rows
	if s.Rows == nil {
		s.Rows = []table.Row{}
	}
}
