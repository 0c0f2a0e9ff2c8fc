package datafile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	LOCK_SUFFIX  = ".lock"
	TEMP_PATTERN = ".%s.tmp-*"
)

// Atomic writes a file that only appears at its final path once Commit
// succeeds. A lock file next to the target keeps two writers apart.
type Atomic struct {
	path   string
	flockF *os.File
	tmp    *os.File
	bw     *bufio.Writer
	offset int64
	done   bool
}

// Create locks path and opens a temp file in the same directory.
func Create(path string) (*Atomic, error) {
	flockF, err := createFlockFile(path + LOCK_SUFFIX)
	if err != nil {
		return nil, err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, fmt.Sprintf(TEMP_PATTERN, base))
	if err != nil {
		destroyFlockFile(flockF)
		return nil, fmt.Errorf("error creating temp file: %w", err)
	}

	return &Atomic{
		path:   path,
		flockF: flockF,
		tmp:    tmp,
		bw:     bufio.NewWriter(tmp),
	}, nil
}

// Write appends data to the temp file.
func (a *Atomic) Write(data []byte) (int, error) {
	n, err := a.bw.Write(data)
	a.offset += int64(n)
	return n, err
}

// Offset returns the number of bytes written so far.
func (a *Atomic) Offset() int64 {
	return a.offset
}

// Commit flushes and syncs the temp file, renames it over the target and
// releases the lock. A non-zero modTime is set on the result.
func (a *Atomic) Commit(modTime time.Time) error {
	if a.done {
		return fmt.Errorf("%s: already committed or aborted", a.path)
	}
	if err := a.bw.Flush(); err != nil {
		a.Abort()
		return fmt.Errorf("error flushing %s: %w", a.tmp.Name(), err)
	}
	if err := a.tmp.Sync(); err != nil {
		a.Abort()
		return fmt.Errorf("error syncing %s: %w", a.tmp.Name(), err)
	}
	if err := a.tmp.Close(); err != nil {
		a.Abort()
		return fmt.Errorf("error closing %s: %w", a.tmp.Name(), err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(a.tmp.Name(), modTime, modTime); err != nil {
			a.Abort()
			return fmt.Errorf("error setting mtime on %s: %w", a.tmp.Name(), err)
		}
	}
	if err := os.Rename(a.tmp.Name(), a.path); err != nil {
		a.Abort()
		return fmt.Errorf("error renaming %s to %s: %w", a.tmp.Name(), a.path, err)
	}

	a.done = true
	return destroyFlockFile(a.flockF)
}

// Abort removes the temp file and releases the lock. It is a no-op after
// Commit, so it can be deferred.
func (a *Atomic) Abort() error {
	if a.done {
		return nil
	}
	a.done = true

	a.tmp.Close()
	if err := os.Remove(a.tmp.Name()); err != nil && !os.IsNotExist(err) {
		destroyFlockFile(a.flockF)
		return fmt.Errorf("error removing temp file: %w", err)
	}
	return destroyFlockFile(a.flockF)
}
