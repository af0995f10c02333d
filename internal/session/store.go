package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/dataclinic-cli/internal/logging"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

// ErrExists is returned by Create when a session with the same name is on disk.
var ErrExists = errors.New("session already exists")

// Summary is the listing view of a stored session.
type Summary struct {
	Name      string
	ID        string
	Source    string
	Rows      int
	Columns   int
	Steps     int
	UpdatedAt time.Time
}

// Store manages sessions stored as <root>/<name>/session.json.
type Store struct {
	Root string
	log  *zap.Logger
}

// NewStore returns a store rooted at root. A nil logger is replaced by a no-op.
func NewStore(root string, log *zap.Logger) *Store {
	return &Store{Root: root, log: logging.OrNop(log).Named("session")}
}

// Dir returns the directory for a session name.
func (st *Store) Dir(name string) string {
	return filepath.Join(st.Root, utils.Slugify(name, "session"))
}

// Create builds and saves a new session for a cleaned table read from source
// in the given format. Unless overwrite is set an existing session with the
// same name is an error.
func (st *Store) Create(name, source, format string, t *table.Table, steps []string, overwrite bool) (*Session, error) {
	dir := st.Dir(name)
	if !overwrite {
		if _, err := os.Stat(filepath.Join(dir, sessionFileName)); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrExists, filepath.Base(dir))
		}
	}
	s := New(filepath.Base(dir), source, t, steps, dir)
	s.Format = format
	if err := s.Save(); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	st.log.Debug("session created",
		zap.String("name", s.Name),
		zap.String("id", s.ID),
		zap.Int("rows", len(s.Rows)),
		zap.Int("steps", len(s.Steps)))
	return s, nil
}

// Open loads a session by name.
func (st *Store) Open(name string) (*Session, error) {
	s, err := Load(st.Dir(name))
	if err != nil {
		return nil, err
	}
	st.log.Debug("session opened", zap.String("name", s.Name), zap.Int("rows", len(s.Rows)))
	return s, nil
}

// Save persists s and logs the write.
func (st *Store) Save(s *Session) error {
	if err := s.Save(); err != nil {
		st.log.Warn("session save failed", zap.String("name", s.Name), zap.Error(err))
		return err
	}
	st.log.Debug("session saved", zap.String("name", s.Name), zap.Int("rows", len(s.Rows)))
	return nil
}

// List returns summaries of all readable sessions, most recently updated first.
// Directories without a readable session.json are skipped.
func (st *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(st.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var out []Summary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := Load(filepath.Join(st.Root, e.Name()))
		if err != nil {
			st.log.Debug("skipping session dir", zap.String("dir", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, Summary{
			Name:      e.Name(),
			ID:        s.ID,
			Source:    s.Source,
			Rows:      len(s.Rows),
			Columns:   len(s.Columns),
			Steps:     len(s.Steps),
			UpdatedAt: s.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
