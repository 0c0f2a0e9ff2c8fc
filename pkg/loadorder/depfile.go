// Package loadorder keeps the list of archives a game loads and the order it
// loads them in.
package loadorder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UnknownSize marks a DepFile whose size has not been looked up.
const UnknownSize int64 = -1

// DepFile names one archive in a load order.
type DepFile struct {
	Name     string    `yaml:"name"`
	Size     int64     `yaml:"size"`
	Modified time.Time `yaml:"modified,omitempty"`
}

// NewDepFile returns a DepFile with unknown size and modification time.
func NewDepFile(name string) DepFile {
	return DepFile{Name: name, Size: UnknownSize}
}

// IsMaster reports whether the file has the master extension.
func (d DepFile) IsMaster() bool {
	return strings.EqualFold(filepath.Ext(d.Name), ".esm")
}

func (d DepFile) Equal(o DepFile) bool {
	return d.Name == o.Name && d.Size == o.Size && d.Modified.Equal(o.Modified)
}

// Stat fills size and modification time from the file in dir.
func (d *DepFile) Stat(dir string) error {
	fi, err := os.Stat(filepath.Join(dir, d.Name))
	if err != nil {
		return err
	}
	d.Size = fi.Size()
	d.Modified = fi.ModTime()
	return nil
}

// CheckMaster compares the size recorded for a dependency against the file on
// disk. A dependency whose size changed since the dependent archive was saved
// is stale.
func (d DepFile) CheckMaster(recorded int64) error {
	if d.Size == UnknownSize || recorded <= 0 {
		return nil
	}
	if d.Size != recorded {
		return fmt.Errorf("%w: %s is %d bytes, recorded %d", ErrStaleMaster, d.Name, d.Size, recorded)
	}
	return nil
}

func (d DepFile) String() string {
	return d.Name
}
