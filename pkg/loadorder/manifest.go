package loadorder

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mr-karan/esmkit/internal/datafile"
)

const manifestVersion = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic("loadorder: cbor encoder: " + err.Error())
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic("loadorder: cbor decoder: " + err.Error())
	}
}

// Manifest is a resolved load order saved next to the data files, so later
// runs can reuse it and notice archives that changed in the meantime.
type Manifest struct {
	Version int     `cbor:"1,keyasint" yaml:"version"`
	Game    string  `cbor:"2,keyasint" yaml:"game"`
	Entries []Entry `cbor:"3,keyasint" yaml:"entries"`
}

// Entry is one archive of a Manifest. Modified is in unix nanoseconds.
type Entry struct {
	Name     string `cbor:"1,keyasint" yaml:"name"`
	Size     int64  `cbor:"2,keyasint" yaml:"size"`
	Modified int64  `cbor:"3,keyasint" yaml:"modified"`
	Digest   []byte `cbor:"4,keyasint,omitempty" yaml:"digest,omitempty"`
}

// NewManifest records l. With digest set, the content of every entry found in
// dir is hashed.
func NewManifest(game string, l *List, dir string, digest bool) (*Manifest, error) {
	m := &Manifest{Version: manifestVersion, Game: game}
	for _, f := range l.files {
		e := Entry{Name: f.Name, Size: f.Size}
		if !f.Modified.IsZero() {
			e.Modified = f.Modified.UnixNano()
		}
		if digest {
			sum, err := datafile.Digest(filepath.Join(dir, f.Name))
			if err != nil {
				return nil, err
			}
			e.Digest = sum[:]
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}

// List returns the recorded entries as a load order list.
func (m *Manifest) List() *List {
	l := &List{}
	for _, e := range m.Entries {
		f := DepFile{Name: e.Name, Size: e.Size}
		if e.Modified != 0 {
			f.Modified = time.Unix(0, e.Modified)
		}
		l.PushBack(f)
	}
	return l
}

// Verify checks every entry against the files in dir and returns the first
// one that changed.
func (m *Manifest) Verify(dir string) error {
	for _, e := range m.Entries {
		f := NewDepFile(e.Name)
		if err := f.Stat(dir); err != nil {
			return err
		}
		if err := f.CheckMaster(e.Size); err != nil {
			return err
		}
		if e.Digest == nil {
			continue
		}
		sum, err := datafile.Digest(filepath.Join(dir, e.Name))
		if err != nil {
			return err
		}
		if !bytes.Equal(sum[:], e.Digest) {
			return fmt.Errorf("%w: %s content differs", ErrStaleMaster, e.Name)
		}
	}
	return nil
}

// Save writes the manifest to path. The write holds an exclusive lock and
// replaces the file atomically.
func (m *Manifest) Save(path string) error {
	b, err := encMode.Marshal(m)
	if err != nil {
		return err
	}

	f, err := datafile.Create(path)
	if err != nil {
		return err
	}
	defer f.Abort()

	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Commit(time.Time{})
}

// LoadManifest reads a manifest written by Save.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := decMode.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	if m.Version != manifestVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadManifest, m.Version)
	}
	return &m, nil
}
