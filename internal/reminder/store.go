package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("reminder not found")

	// ErrDuplicateID is returned by Add when the id is already stored.
	ErrDuplicateID = errors.New("duplicate reminder id")
)

// Store persists the whole reminder collection.
//
// Load never fails on missing or corrupt storage; it returns an empty
// collection instead. Save replaces the collection atomically.
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
	Add(r Record) error
	UpdateStatus(id string, status Status, executedAt time.Time) error
	Close() error
}

// document is the on-disk layout of FileStore.
type document struct {
	Reminders []Record `json:"reminders"`
}

// FileStore keeps reminders in a single JSON file.
//
// Add and UpdateStatus hold an advisory lock on a sibling ".lock" file for
// the duration of their load-modify-save cycle, so concurrent workers do not
// overwrite each other's updates. Save on its own is last-write-wins.
type FileStore struct {
	path     string
	lockPath string
}

// NewFileStore returns a store backed by the file at path. Nothing is
// created on disk until the first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	return &FileStore{path: path, lockPath: path + ".lock"}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Close is a no-op; FileStore holds no open handles between calls.
func (s *FileStore) Close() error {
	return nil
}

// Load reads all records.
func (s *FileStore) Load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[store] Ignoring unreadable %s: %v", s.path, err)
		}
		return []Record{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[store] Ignoring corrupt %s: %v", s.path, err)
		return []Record{}, nil
	}
	if doc.Reminders == nil {
		doc.Reminders = []Record{}
	}
	return doc.Reminders, nil
}

// Save writes records to a temporary file next to the target and renames it
// into place, so readers see either the old or the new collection.
func (s *FileStore) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(document{Reminders: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write reminders: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync reminders: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Add appends r to the collection.
func (s *FileStore) Add(r Record) error {
	return s.withLock(func() error {
		records, err := s.Load()
		if err != nil {
			return err
		}
		for _, existing := range records {
			if existing.ID == r.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
			}
		}
		return s.Save(append(records, r))
	})
}

// UpdateStatus sets the status and executed_at of the record with the given
// id. Applying the same update twice has no further effect.
func (s *FileStore) UpdateStatus(id string, status Status, executedAt time.Time) error {
	return s.withLock(func() error {
		records, err := s.Load()
		if err != nil {
			return err
		}
		if err := applyStatus(records, id, status, executedAt); err != nil {
			return err
		}
		return s.Save(records)
	})
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

func (s *FileStore) withLock(fn func() error) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	unlock, err := lockFile(s.lockPath)
	if err != nil {
		return fmt.Errorf("failed to lock store: %w", err)
	}
	defer unlock()
	return fn()
}

// applyStatus mutates the matching record in place. A done record is never
// moved back to pending.
func applyStatus(records []Record, id string, status Status, executedAt time.Time) error {
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if records[i].Status != StatusDone {
			records[i].Status = status
		}
		t := executedAt.UTC()
		records[i].ExecutedAt = &t
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
