//go:build unix

package reminder

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive flock on path, blocking until it is granted.
func lockFile(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	fd := int(f.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return func() error {
		unix.Flock(fd, unix.LOCK_UN)
		return f.Close()
	}, nil
}
