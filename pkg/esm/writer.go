package esm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mr-karan/esmkit/internal/datafile"
)

// Writer encodes records and groups of one family to an io.Writer.
type Writer struct {
	w   io.Writer
	fam *Family
	n   int64
}

func NewWriter(w io.Writer, fam *Family) *Writer {
	return &Writer{w: w, fam: fam}
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 {
	return w.n
}

func (w *Writer) write(b []byte) error {
	n, err := w.w.Write(b)
	w.n += int64(n)
	return err
}

// WriteRecord encodes a single record, tag and header included.
func (w *Writer) WriteRecord(rec Record) error {
	b, err := EncodeRecord(w.fam, rec)
	if err != nil {
		return err
	}
	return w.write(b)
}

// WriteGroup encodes a group with all of its children. The group size is
// computed from the children.
func (w *Writer) WriteGroup(g *Group) error {
	b, err := EncodeGroup(w.fam, g)
	if err != nil {
		return err
	}
	return w.write(b)
}

// WriteTable writes every record of t in key order, as a top level group for
// families with groups.
func (w *Writer) WriteTable(t Table) error {
	var doc Document
	doc.AppendTable(t, w.fam.Groups)
	return w.writeEntries(doc.Entries)
}

// WriteDocument writes the header followed by the body.
func (w *Writer) WriteDocument(doc *Document) error {
	if doc.Header == nil {
		return fmt.Errorf("document has no header")
	}
	if err := w.WriteRecord(doc.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return w.writeEntries(doc.Entries)
}

func (w *Writer) writeEntries(entries []Entry) error {
	for _, e := range entries {
		var err error
		if e.Group != nil {
			err = w.WriteGroup(e.Group)
		} else {
			err = w.WriteRecord(e.Record)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// EncodeGroup encodes g with its header and children.
func EncodeGroup(fam *Family, g *Group) ([]byte, error) {
	if !fam.Groups {
		return nil, fmt.Errorf("%s archives have no groups", fam.Name)
	}

	var body bytes.Buffer
	inner := NewWriter(&body, fam)
	if err := inner.writeEntries(g.Entries); err != nil {
		return nil, fmt.Errorf("encoding group %s: %w", g.Header.Label, err)
	}

	gh := g.Header
	gh.Size = uint32(GroupHeaderSize + body.Len())

	buf := bytes.NewBuffer(make([]byte, 0, int(gh.Size)))
	if err := gh.encode(buf); err != nil {
		return nil, err
	}
	buf.Write(body.Bytes())

	return buf.Bytes(), nil
}

// WriteFile writes doc to path. The archive only appears at path once it was
// written completely; a concurrent writer of the same path gets ErrLocked.
func WriteFile(path string, fam *Family, doc *Document, cfgs ...Config) error {
	opts, err := buildOptions(cfgs)
	if err != nil {
		return err
	}

	out, err := datafile.Create(path)
	if err != nil {
		return &ArchiveError{Path: path, Err: err}
	}
	defer out.Abort()

	w := NewWriter(out, fam)
	if err := w.WriteDocument(doc); err != nil {
		return &ArchiveError{Path: path, Offset: w.Written(), Err: err}
	}
	if err := out.Commit(opts.modTime); err != nil {
		return &ArchiveError{Path: path, Offset: w.Written(), Err: err}
	}

	opts.lo.Debug("wrote archive", "path", path, "bytes", w.Written())
	return nil
}
