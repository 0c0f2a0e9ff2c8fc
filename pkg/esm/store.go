package esm

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/btree"
)

// Outcome is the result of adding a record to a store.
type Outcome int

const (
	// Discarded: the record had an empty key and was ignored.
	Discarded Outcome = iota
	// Unchanged: an equal record was already stored under the key.
	Unchanged
	// Added: the key was new.
	Added
	// Changed: a different record under the key was replaced.
	Changed
)

func (o Outcome) String() string {
	switch o {
	case Discarded:
		return "discarded"
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Changed:
		return "changed"
	}
	return "outcome(" + strconv.Itoa(int(o)) + ")"
}

// Count is the contribution of the outcome to a read total: one for every
// new or changed record.
func (o Outcome) Count() int {
	if o == Added || o == Changed {
		return 1
	}
	return 0
}

// Table is the type-erased view of a Store used by front ends.
type Table interface {
	Tag() FourCC
	Len() int
	Lookup(key string) (Record, error)
	Keys(limit int) []string
	Each(fn func(Record) bool)
	Clear()
}

type item[K cmp.Ordered, R Record] struct {
	key K
	rec R
}

// Store indexes decoded records of one type by key. Keys are folded before
// use, so lookups and ordering follow the folded form. A store owns the
// records it holds; it is not safe for concurrent use.
type Store[K cmp.Ordered, R Record] struct {
	tag   FourCC
	key   func(R) K
	fold  func(K) K
	parse func(string) (K, error)
	tree  *btree.BTreeG[item[K, R]]
}

// NewStore returns an empty store. fold may be nil; parse converts textual
// keys for Lookup.
func NewStore[K cmp.Ordered, R Record](tag FourCC, key func(R) K, fold func(K) K, parse func(string) (K, error)) *Store[K, R] {
	return &Store[K, R]{
		tag:   tag,
		key:   key,
		fold:  fold,
		parse: parse,
		tree:  newTree[K, R](),
	}
}

// NewIDStore returns a store keyed by a case-insensitive string ID.
func NewIDStore[R Record](tag FourCC, id func(R) string) *Store[string, R] {
	return NewStore(tag, id, FoldID, func(s string) (string, error) {
		return s, nil
	})
}

// NewFormIDStore returns a store keyed by the form ID of the record header.
// Form ID zero is the empty key.
func NewFormIDStore[R Record](tag FourCC) *Store[uint32, R] {
	return NewStore(tag, func(r R) uint32 {
		return r.Header().FormID
	}, nil, ParseFormID)
}

func newTree[K cmp.Ordered, R Record]() *btree.BTreeG[item[K, R]] {
	return btree.NewBTreeG(func(a, b item[K, R]) bool {
		return a.key < b.key
	})
}

// FoldID lower-cases the ASCII letters of an ID. Other bytes are kept as is
// since IDs are not necessarily valid UTF-8.
func FoldID(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// ParseFormID parses a form ID written in hex, with or without 0x prefix.
func ParseFormID(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid form id %q: %w", s, err)
	}
	return uint32(v), nil
}

func (s *Store[K, R]) norm(k K) K {
	if s.fold != nil {
		return s.fold(k)
	}
	return k
}

// Tag returns the record type held by the store.
func (s *Store[K, R]) Tag() FourCC {
	return s.tag
}

// Add merges rec into the store. A record equal to the stored one leaves the
// store untouched.
func (s *Store[K, R]) Add(rec R) Outcome {
	var zero K
	k := s.norm(s.key(rec))
	if k == zero {
		return Discarded
	}

	prev, ok := s.tree.Get(item[K, R]{key: k})
	if ok && prev.rec.Equal(rec) {
		return Unchanged
	}
	s.tree.Set(item[K, R]{key: k, rec: rec})
	if ok {
		return Changed
	}
	return Added
}

// Has reports whether a record is stored under k.
func (s *Store[K, R]) Has(k K) bool {
	_, ok := s.tree.Get(item[K, R]{key: s.norm(k)})
	return ok
}

// Get returns the record stored under k or ErrNotFound.
func (s *Store[K, R]) Get(k K) (R, error) {
	it, ok := s.tree.Get(item[K, R]{key: s.norm(k)})
	if !ok {
		var zero R
		return zero, fmt.Errorf("%w: %s %v", ErrNotFound, s.tag, k)
	}
	return it.rec, nil
}

// Remove deletes the record under k and reports whether one was present.
func (s *Store[K, R]) Remove(k K) bool {
	_, ok := s.tree.Delete(item[K, R]{key: s.norm(k)})
	return ok
}

// Scan calls fn for every record in key order until fn returns false.
func (s *Store[K, R]) Scan(fn func(R) bool) {
	s.tree.Scan(func(it item[K, R]) bool {
		return fn(it.rec)
	})
}

// Records returns all records in key order.
func (s *Store[K, R]) Records() []R {
	out := make([]R, 0, s.tree.Len())
	s.Scan(func(r R) bool {
		out = append(out, r)
		return true
	})
	return out
}

func (s *Store[K, R]) Len() int {
	return s.tree.Len()
}

// Clear drops every record.
func (s *Store[K, R]) Clear() {
	s.tree = newTree[K, R]()
}

// Lookup parses key and returns the record stored under it.
func (s *Store[K, R]) Lookup(key string) (Record, error) {
	k, err := s.parse(key)
	if err != nil {
		return nil, err
	}
	rec, err := s.Get(k)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store[K, R]) Each(fn func(Record) bool) {
	s.Scan(func(r R) bool {
		return fn(r)
	})
}

// Keys returns up to limit keys in key order, all of them if limit is not
// positive. Form IDs are printed in hex, IDs as stored in the record.
func (s *Store[K, R]) Keys(limit int) []string {
	var out []string
	s.Scan(func(r R) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		out = append(out, FormatKey(s.key(r)))
		return true
	})
	return out
}

// FormatKey prints a store key the way Lookup parses it.
func FormatKey[K cmp.Ordered](k K) string {
	if id, ok := any(k).(uint32); ok {
		return fmt.Sprintf("%08X", id)
	}
	return fmt.Sprint(k)
}
