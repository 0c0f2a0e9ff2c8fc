package datafile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when another process holds the lock on a target file.
var ErrLocked = errors.New("a lockfile is already held by another writer")

// createFlockFile creates and exclusively locks the given lock file.
func createFlockFile(flockFile string) (*os.File, error) {
	flockF, err := os.OpenFile(flockFile, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot create lock file %q: %w", flockFile, err)
	}
	if err := unix.Flock(int(flockF.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		flockF.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %q", ErrLocked, flockFile)
		}
		return nil, fmt.Errorf("cannot acquire lock on file %q: %w", flockFile, err)
	}
	return flockF, nil
}

// destroyFlockFile unlocks and removes a lock file.
func destroyFlockFile(flockF *os.File) error {
	// Remove first so that a waiting writer never locks a stale inode.
	if err := os.Remove(flockF.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot remove file %q: %w", flockF.Name(), err)
	}
	if err := unix.Flock(int(flockF.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("cannot unlock lock on file %q: %w", flockF.Name(), err)
	}
	if err := flockF.Close(); err != nil {
		return fmt.Errorf("cannot close fd on file %q: %w", flockF.Name(), err)
	}
	return nil
}
