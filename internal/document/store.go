// Package document reads and writes the prophecy document: one JSON array
// of records, loaded and replaced wholesale.
//
// Load is forgiving. A missing file is an empty document, malformed JSON is
// reported and treated as empty, a non-array root is wrapped, and elements
// that are not objects are dropped. Every object element passes through the
// migrator. Write replaces the file atomically with indented UTF-8 JSON.
package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/prophecies/internal/migrate"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Store is the document at one path.
type Store struct {
	path string
	log  *zap.Logger
}

// LoadStats summarizes what Load found.
type LoadStats struct {
	Elements  int // array elements seen
	Legacy    int // elements migrated from the legacy schema
	Canonical int // elements already canonical
	Dropped   int // non-object or undecodable elements
	Malformed bool
	Wrapped   bool
}

// NewStore returns a Store for path. A nil logger discards diagnostics.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log.With(zap.String("document", path))}
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Load reads and migrates every record in the document.
func (s *Store) Load() ([]types.Record, error) {
	recs, _, err := s.LoadWithStats()
	return recs, err
}

// LoadWithStats is Load that also reports how the elements were handled.
// Only I/O failures other than a missing file are returned as errors.
func (s *Store) LoadWithStats() ([]types.Record, LoadStats, error) {
	var stats LoadStats

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("reading %s: %w", s.path, err)
	}

	elems, wrapped, err := splitRoot(data)
	if err != nil {
		stats.Malformed = true
		s.log.Error("JSON parse failed; treating document as empty", zap.Error(err))
		return nil, stats, nil
	}
	if wrapped {
		stats.Wrapped = true
		s.log.Warn("JSON root not a list; wrapping")
	}

	stats.Elements = len(elems)
	recs := make([]types.Record, 0, len(elems))
	for i, el := range elems {
		obj, err := types.ParseObject(el)
		if err != nil {
			stats.Dropped++
			continue
		}
		entry := migrate.Classify(obj)
		rec, err := entry.Canonical()
		if err != nil {
			stats.Dropped++
			s.log.Warn("skipping undecodable record", zap.Int("index", i), zap.Error(err))
			continue
		}
		if _, ok := entry.(migrate.LegacyRecord); ok {
			stats.Legacy++
		} else {
			stats.Canonical++
		}
		recs = append(recs, rec)
	}
	if stats.Legacy > 0 {
		s.log.Info("migrated legacy records", zap.Int("count", stats.Legacy))
	}
	return recs, stats, nil
}

// Count reloads the document and returns the length of its root array.
func (s *Store) Count() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var root []json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return len(root), nil
}

// Write replaces the document with records, indented by two spaces, with
// non-ASCII and HTML characters written literally.
func (s *Store) Write(records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := writeAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write document %s: %w", s.path, err)
	}
	return nil
}

// splitRoot returns the elements of the root array. A non-array root is
// returned as a single element with wrapped set.
func splitRoot(data []byte) (elems []json.RawMessage, wrapped bool, err error) {
	var root json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, false, err
	}
	root = bytes.TrimSpace(root)
	if len(root) > 0 && root[0] == '[' {
		if err := json.Unmarshal(root, &elems); err != nil {
			return nil, false, err
		}
		return elems, false, nil
	}
	return []json.RawMessage{root}, true, nil
}

// writeAtomic writes data to path using the temp-file, fsync, rename
// pattern so readers never observe a partial document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".document-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing data: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
