package loadorder

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// List is an ordered list of archives. The zero value is an empty list.
type List struct {
	files []DepFile
}

// NewList returns a list of the given names with unknown size and time.
func NewList(names ...string) *List {
	l := &List{}
	for _, n := range names {
		l.PushBack(NewDepFile(n))
	}
	return l
}

func (l *List) Len() int {
	return len(l.files)
}

func (l *List) Empty() bool {
	return len(l.files) == 0
}

// At returns the entry at index i.
func (l *List) At(i int) (DepFile, error) {
	if i < 0 || i >= len(l.files) {
		return DepFile{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(l.files))
	}
	return l.files[i], nil
}

// Files returns a copy of the entries.
func (l *List) Files() []DepFile {
	return slices.Clone(l.files)
}

// Names returns the entry names in order.
func (l *List) Names() []string {
	out := make([]string, len(l.files))
	for i, f := range l.files {
		out[i] = f.Name
	}
	return out
}

func (l *List) PushBack(f DepFile) {
	l.files = append(l.files, f)
}

func (l *List) PushFront(f DepFile) {
	l.files = slices.Insert(l.files, 0, f)
}

// Has reports whether an entry named name exists. Names compare
// case-insensitively.
func (l *List) Has(name string) bool {
	return l.Index(name) >= 0
}

// Index returns the position of the first entry named name, or -1.
func (l *List) Index(name string) int {
	return slices.IndexFunc(l.files, func(f DepFile) bool {
		return strings.EqualFold(f.Name, name)
	})
}

// RemoveAt removes the entry at index i. It reports false if i is out of
// range.
func (l *List) RemoveAt(i int) bool {
	if i < 0 || i >= len(l.files) {
		return false
	}
	l.files = slices.Delete(l.files, i, i+1)
	return true
}

func (l *List) Clear() {
	l.files = nil
}

// Sort orders masters before plugins and, within each kind, older files
// first. Entries that compare equal keep their relative order.
func (l *List) Sort() {
	sort.SliceStable(l.files, func(i, j int) bool {
		a, b := l.files[i], l.files[j]
		if am, bm := a.IsMaster(), b.IsMaster(); am != bm {
			return am
		}
		return a.Modified.Before(b.Modified)
	})
}

// RemoveDuplicates drops entries whose name equals that of the entry before
// them and returns how many were dropped. Only adjacent duplicates are found,
// so the list should be sorted first.
func (l *List) RemoveDuplicates() int {
	if len(l.files) < 2 {
		return 0
	}
	before := len(l.files)
	l.files = slices.CompactFunc(l.files, func(a, b DepFile) bool {
		return strings.EqualFold(a.Name, b.Name)
	})
	return before - len(l.files)
}

// Equal reports whether both lists hold equal entries in the same order.
func (l *List) Equal(o *List) bool {
	return slices.EqualFunc(l.files, o.files, DepFile.Equal)
}
