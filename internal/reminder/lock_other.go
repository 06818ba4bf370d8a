//go:build !unix

package reminder

// lockFile is a no-op where flock is unavailable; updates fall back to
// last-write-wins.
func lockFile(string) (func() error, error) {
	return func() error { return nil }, nil
}
