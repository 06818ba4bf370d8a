package reminder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 10, 17, 9, 30, 0, 123_000_000, time.UTC)

func sampleRecords(n int) []Record {
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		r := Record{
			ID:         fmt.Sprintf("rec-%02d", i),
			Message:    fmt.Sprintf("message %d", i),
			CreatedAt:  baseTime,
			TargetTime: baseTime.Add(time.Duration(i+1) * time.Minute),
			Status:     StatusPending,
			Permanent:  i%2 == 0,
			Mute:       i%3 == 0,
			Repeat:     i + 1,
		}
		if i%2 == 1 {
			executed := baseTime.Add(time.Hour)
			r.ExecutedAt = &executed
			r.Status = StatusDone
		}
		records = append(records, r)
	}
	return records
}

// storeFactories returns a constructor per backend so every contract test
// runs against both.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		BackendJSON: func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "reminders.json"))
			require.NoError(t, err)
			return s
		},
		BackendSQLite: func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reminders.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, open := range storeFactories() {
		for _, n := range []int{0, 1, 7} {
			t.Run(fmt.Sprintf("%s/%d", name, n), func(t *testing.T) {
				s := open(t)
				want := sampleRecords(n)

				require.NoError(t, s.Save(want))
				got, err := s.Load()
				require.NoError(t, err)

				assert.Len(t, got, n)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			got, err := open(t).Load()
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestStoreAdd(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			records := sampleRecords(2)

			require.NoError(t, s.Add(records[0]))
			require.NoError(t, s.Add(records[1]))

			err := s.Add(records[0])
			assert.ErrorIs(t, err, ErrDuplicateID)

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}
}

func TestStoreUpdateStatusIsIdempotent(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Save(sampleRecords(3)))
			at := baseTime.Add(10 * time.Minute)

			require.NoError(t, s.UpdateStatus("rec-00", StatusDone, at))
			once, err := s.Load()
			require.NoError(t, err)

			require.NoError(t, s.UpdateStatus("rec-00", StatusDone, at))
			twice, err := s.Load()
			require.NoError(t, err)

			assert.Equal(t, once, twice)
			assert.Equal(t, StatusDone, twice[0].Status)
			require.NotNil(t, twice[0].ExecutedAt)
			assert.True(t, at.Equal(*twice[0].ExecutedAt))
			// Others untouched.
			assert.Equal(t, sampleRecords(3)[1:], twice[1:])
		})
	}
}

func TestStoreUpdateStatusPendingRefreshesExecutedAt(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Save(sampleRecords(1)))
			at := baseTime.Add(5 * time.Second)

			require.NoError(t, s.UpdateStatus("rec-00", StatusPending, at))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, StatusPending, got[0].Status)
			require.NotNil(t, got[0].ExecutedAt)
			assert.True(t, at.Equal(*got[0].ExecutedAt))
		})
	}
}

func TestStoreUpdateStatusNeverRevertsDone(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Save(sampleRecords(2)))

			require.NoError(t, s.UpdateStatus("rec-01", StatusPending, baseTime))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, StatusDone, got[1].Status)
		})
	}
}

func TestStoreUpdateStatusUnknownID(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Save(sampleRecords(1)))

			err := s.UpdateStatus("nope", StatusDone, baseTime)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// Plain Save replaces the whole collection, so two writers working from the
// same snapshot lose one of their changes.
func TestStoreSaveIsLastWriteWins(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Save(sampleRecords(2)))

			first, err := s.Load()
			require.NoError(t, err)
			second, err := s.Load()
			require.NoError(t, err)

			first[0].Message = "changed by first"
			second[1].Message = "changed by second"

			require.NoError(t, s.Save(first))
			require.NoError(t, s.Save(second))

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, "message 0", got[0].Message, "first writer's update is lost")
			assert.Equal(t, "changed by second", got[1].Message)
		})
	}
}

// UpdateStatus runs its load-modify-save under a lock, so concurrent updates
// to different ids all survive.
func TestStoreConcurrentUpdateStatus(t *testing.T) {
	for name, open := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			records := sampleRecords(8)
			for i := range records {
				records[i].Status = StatusPending
				records[i].ExecutedAt = nil
			}
			require.NoError(t, s.Save(records))

			var wg sync.WaitGroup
			errs := make(chan error, len(records))
			for _, r := range records {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					errs <- s.UpdateStatus(id, StatusDone, baseTime)
				}(r.ID)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			got, err := s.Load()
			require.NoError(t, err)
			require.Len(t, got, len(records))
			for _, r := range got {
				assert.Equal(t, StatusDone, r.Status, r.ID)
			}
		})
	}
}

func TestFileStoreLoadCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	// The next write replaces the corrupt file.
	require.NoError(t, s.Add(sampleRecords(1)[0]))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "reminders.json"))
	require.NoError(t, err)

	require.NoError(t, s.Save(sampleRecords(3)))
	require.NoError(t, s.UpdateStatus("rec-00", StatusDone, baseTime))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreSaveUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	s, err := NewFileStore(filepath.Join(blocker, "reminders.json"))
	require.NoError(t, err)

	assert.Error(t, s.Save(sampleRecords(1)))
	assert.Error(t, s.Add(sampleRecords(1)[0]))
}

func TestStoreConstructorsTouchNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	fs, err := NewFileStore(filepath.Join(dir, "reminders.json"))
	require.NoError(t, err)
	records, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	ss, err := NewSQLiteStore(filepath.Join(dir, "reminders.db"))
	require.NoError(t, err)
	records, err = ss.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, ss.Close())

	assert.NoDirExists(t, dir)
}

func TestSQLiteStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.db")
	garbage := []byte(strings.Repeat("this is not a database\n", 200))
	require.NoError(t, os.WriteFile(path, garbage, 0o600))

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.Error(t, s.UpdateStatus("rec-00", StatusDone, baseTime))
	assert.Error(t, s.Add(sampleRecords(1)[0]))
}

func TestUnavailableStore(t *testing.T) {
	cause := errors.New("disk on fire")
	s := NewUnavailableStore(cause)

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.ErrorIs(t, s.Add(sampleRecords(1)[0]), cause)
	assert.ErrorIs(t, s.UpdateStatus("rec-00", StatusDone, baseTime), cause)
	assert.ErrorIs(t, s.Save(nil), cause)
	assert.NoError(t, s.Close())
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenStore(StoreLocation{Backend: BackendJSON, Path: filepath.Join(dir, "r.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = OpenStore(StoreLocation{Backend: BackendSQLite, Path: filepath.Join(dir, "r.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = OpenStore(StoreLocation{Backend: "bolt", Path: filepath.Join(dir, "r.bolt")})
	assert.ErrorContains(t, err, "unknown store backend")
}
