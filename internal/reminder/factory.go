package reminder

import (
	"fmt"
	"time"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// StoreLocation identifies a store so it can be reopened by another process.
type StoreLocation struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// OpenStore creates the store for loc.
func OpenStore(loc StoreLocation) (Store, error) {
	switch loc.Backend {
	case BackendJSON, "":
		return NewFileStore(loc.Path)
	case BackendSQLite:
		return NewSQLiteStore(loc.Path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: %s, %s)",
			loc.Backend, BackendJSON, BackendSQLite)
	}
}

// unavailableStore stands in for a store that could not be opened. It reads
// as empty and fails every write with the original error.
type unavailableStore struct {
	err error
}

// NewUnavailableStore returns a Store that reports err on writes and an
// empty collection on reads.
func NewUnavailableStore(err error) Store {
	return unavailableStore{err: err}
}

func (s unavailableStore) Load() ([]Record, error) { return []Record{}, nil }
func (s unavailableStore) Save([]Record) error      { return s.err }
func (s unavailableStore) Add(Record) error         { return s.err }
func (s unavailableStore) Close() error             { return nil }

func (s unavailableStore) UpdateStatus(string, Status, time.Time) error {
	return s.err
}
