package esm

import (
	"bytes"
	"cmp"
	"sort"
)

// Input is what the reader hands to a Handler for one record.
type Input struct {
	Header RecordHeader
	Fields *FieldReader
	// Groups are the enclosing groups, outermost first.
	Groups []GroupHeader
}

// Parent returns the innermost enclosing group.
func (in *Input) Parent() (GroupHeader, bool) {
	if len(in.Groups) == 0 {
		return GroupHeader{}, false
	}
	return in.Groups[len(in.Groups)-1], true
}

// Handler decodes a record and absorbs it into wherever it belongs.
type Handler interface {
	Absorb(in *Input) (Record, Outcome, error)
}

// Database bundles what a reader needs to know about one game: its family,
// how to make an archive header and which record types it decodes.
type Database interface {
	Family() *Family
	NewHeader() ArchiveHeader
	Registry() *Registry
}

// Registry maps record tags to handlers.
type Registry struct {
	handlers map[FourCC]Handler
	tables   []Table
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[FourCC]Handler)}
}

// Handle registers h for records of type tag, replacing any earlier handler.
func (r *Registry) Handle(tag FourCC, h Handler) {
	r.handlers[tag] = h
}

// Handler returns the handler for tag.
func (r *Registry) Handler(tag FourCC) (Handler, bool) {
	h, ok := r.handlers[tag]
	return h, ok
}

// Has reports whether records of type tag are decoded.
func (r *Registry) Has(tag FourCC) bool {
	_, ok := r.handlers[tag]
	return ok
}

// Tags returns the registered tags in byte order.
func (r *Registry) Tags() []FourCC {
	tags := make([]FourCC, 0, len(r.handlers))
	for t := range r.handlers {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		return bytes.Compare(tags[i][:], tags[j][:]) < 0
	})
	return tags
}

// Table returns the store registered for tag.
func (r *Registry) Table(tag FourCC) (Table, bool) {
	for _, t := range r.tables {
		if t.Tag() == tag {
			return t, true
		}
	}
	return nil, false
}

// Tables returns the stores in registration order.
func (r *Registry) Tables() []Table {
	return r.tables
}

// Clear empties every registered store.
func (r *Registry) Clear() {
	for _, t := range r.tables {
		t.Clear()
	}
}

// Register decodes records of the store's type with newRec and adds them to
// store.
func Register[K cmp.Ordered, R Record](reg *Registry, store *Store[K, R], newRec func() R) {
	reg.Handle(store.Tag(), &storeHandler[K, R]{store: store, newRec: newRec})
	reg.tables = append(reg.tables, store)
}

type storeHandler[K cmp.Ordered, R Record] struct {
	store  *Store[K, R]
	newRec func() R
}

func (h *storeHandler[K, R]) Absorb(in *Input) (Record, Outcome, error) {
	rec := h.newRec()
	*rec.Header() = in.Header

	if err := DecodeFields(rec, in.Fields); err != nil {
		return nil, Discarded, err
	}
	return rec, h.store.Add(rec), nil
}

// DecodeFields runs rec.Decode over the reader and checks that the whole
// payload was consumed. Deleted records without payload are left empty.
func DecodeFields(rec Record, r *FieldReader) error {
	if r.Size() == 0 && rec.Header().Deleted() {
		return nil
	}
	if err := rec.Decode(r); err != nil {
		return err
	}
	if r.More() {
		return &FormatError{Tag: rec.Tag(), Reason: "trailing bytes after last sub-record"}
	}
	return nil
}
