// Package memory provides bounded stores of finished tasks and the summary the Planner
// reads from them.
//
// Stores keep only the newest N records. Reads never fail a task: a missing,
// unreadable or corrupt backing store is treated as an empty history.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rickchristie/lessongraph"
	"github.com/rs/zerolog"
)

// DefaultMaxItems is the ring size used when a store is created with max <= 0.
const DefaultMaxItems = 10

// FileStore keeps records in one JSON file. The whole file is rewritten on every
// Append; it is meant for tens of records, not thousands.
//
// A FileStore serializes its own reads and writes. Two FileStores (or two processes)
// sharing one path are not coordinated.
type FileStore struct {
	mu     sync.Mutex
	path   string
	max    int
	logger zerolog.Logger
}

// NewFileStore creates a store at path keeping at most max records. The file and its
// directory are created on the first Append.
func NewFileStore(path string, max int) *FileStore {
	if max <= 0 {
		max = DefaultMaxItems
	}
	return &FileStore{
		path:   path,
		max:    max,
		logger: zerolog.Nop(),
	}
}

// WithLogger sets the logger used to report a corrupt or unreadable file.
func (s *FileStore) WithLogger(logger zerolog.Logger) *FileStore {
	s.logger = logger
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Append adds record and keeps the newest max records. A corrupt file is replaced.
func (s *FileStore) Append(ctx context.Context, record lessongraph.MemoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.load(), record)
	if len(records) > s.max {
		records = records[len(records)-s.max:]
	}
	return s.save(records)
}

// Recent returns up to n newest records, oldest first. n <= 0 returns all.
func (s *FileStore) Recent(ctx context.Context, n int) ([]lessongraph.MemoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	records := s.load()
	s.mu.Unlock()

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}

// load reads the file. Any failure yields an empty history.
func (s *FileStore) load() []lessongraph.MemoryRecord {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("memory file unreadable, starting empty")
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var records []lessongraph.MemoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("memory file corrupt, starting empty")
		return nil
	}
	return records
}

// save writes to a temp file and renames it over the target so a crash never leaves a
// half-written file behind.
func (s *FileStore) save(records []lessongraph.MemoryRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write memory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write memory: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

var _ lessongraph.MemoryStore = (*FileStore)(nil)
