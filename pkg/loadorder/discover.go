package loadorder

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// baseMasters lists the masters shipped with each game, in load order. The
// first one is required; the others are added only when present.
var baseMasters = map[string][]string{
	"morrowind": {"Morrowind.esm", "Tribunal.esm", "Bloodmoon.esm"},
	"skyrim":    {"Skyrim.esm", "Update.esm", "Dawnguard.esm", "HearthFires.esm", "Dragonborn.esm"},
}

// IsArchive reports whether name has a master or plugin extension.
func IsArchive(name string) bool {
	ext := filepath.Ext(name)
	return strings.EqualFold(ext, ".esm") || strings.EqualFold(ext, ".esp")
}

// Discover returns every master and plugin in dir with size and modification
// time filled in. The list is not sorted.
func Discover(dir string) (*List, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error listing data files: %w", err)
	}

	l := &List{}
	for _, e := range entries {
		if e.IsDir() || !IsArchive(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		l.PushBack(DepFile{Name: e.Name(), Size: fi.Size(), Modified: fi.ModTime()})
	}

	return l, nil
}

// FromIni reads the active archives from the [Game Files] section of a
// Morrowind.ini file.
func FromIni(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		l  = &List{}
		in bool
		sc = bufio.NewScanner(f)
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			in = strings.EqualFold(line, "[Game Files]")
			continue
		}
		if !in {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok || !strings.HasPrefix(strings.ToLower(k), "gamefile") {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			l.PushBack(NewDepFile(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return l, nil
}

// Stat looks up size and modification time of every entry in dir. Entries
// missing on disk keep unknown values and are returned as an error after all
// others are filled.
func (l *List) Stat(dir string) error {
	var missing []string
	for i := range l.files {
		if err := l.files[i].Stat(dir); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			missing = append(missing, l.files[i].Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", os.ErrNotExist, strings.Join(missing, ", "))
	}
	return nil
}

// WithBaseMasters puts the masters shipped with game at the front of the list
// unless they are already in it. Optional masters are added only when they
// exist in dir.
func (l *List) WithBaseMasters(game, dir string) error {
	names, ok := baseMasters[strings.ToLower(game)]
	if !ok {
		return fmt.Errorf("unknown game %q", game)
	}

	for i := len(names) - 1; i >= 0; i-- {
		if l.Has(names[i]) {
			continue
		}
		if i > 0 {
			if _, err := os.Stat(filepath.Join(dir, names[i])); err != nil {
				continue
			}
		}
		l.PushFront(NewDepFile(names[i]))
	}

	return nil
}

// RequireBaseMaster checks that the required master of game is in dir.
func RequireBaseMaster(game, dir string) error {
	names, ok := baseMasters[strings.ToLower(game)]
	if !ok {
		return fmt.Errorf("unknown game %q", game)
	}
	if _, err := os.Stat(filepath.Join(dir, names[0])); err != nil {
		return fmt.Errorf("%w: %s", ErrNoMaster, names[0])
	}
	return nil
}

// NextModTime returns a modification time one minute after the newest entry,
// so a file stamped with it loads after everything in the list.
func (l *List) NextModTime() time.Time {
	var last time.Time
	for _, f := range l.files {
		if f.Modified.After(last) {
			last = f.Modified
		}
	}
	if last.IsZero() {
		return time.Now()
	}
	return last.Add(time.Minute)
}
