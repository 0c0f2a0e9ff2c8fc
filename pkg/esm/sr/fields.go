package sr

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mr-karan/esmkit/pkg/esm"
)

// LocalizedString is text that lives either inline or, in localized
// archives, in an external string table referenced by Index.
type LocalizedString struct {
	Localized bool   `yaml:"localized,omitempty"`
	Index     uint32 `yaml:"index,omitempty"`
	Text      string `yaml:"text,omitempty"`
}

func (s LocalizedString) size() uint32 {
	if s.Localized {
		return fam.FieldSize(4)
	}
	return fam.StringSize(s.Text)
}

// read decodes the current sub-record according to the archive mode.
func (s *LocalizedString) read(r *esm.FieldReader) error {
	s.Localized = r.Localized
	if r.Localized {
		v, err := r.Uint32()
		s.Index, s.Text = v, ""
		return err
	}
	t, err := r.String(esm.MaxEditorIDLength)
	s.Index, s.Text = 0, t
	return err
}

func (s LocalizedString) write(w *esm.FieldWriter, tag esm.FourCC) {
	if s.Localized {
		w.Uint32(tag, s.Index)
		return
	}
	w.String(tag, s.Text)
}

// ObjectBounds is the OBND sub-record: two corners of a bounding box.
type ObjectBounds struct {
	X1, Y1, Z1 int16
	X2, Y2, Z2 int16
}

const boundsSize = 12

func readBounds(r *esm.FieldReader) (ObjectBounds, error) {
	var ob ObjectBounds
	b, err := r.ReadFixed(tagOBND, boundsSize)
	if err != nil {
		return ob, err
	}
	err = binary.Read(bytes.NewReader(b), binary.LittleEndian, &ob)
	return ob, err
}

func writeBounds(w *esm.FieldWriter, ob ObjectBounds) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, ob); err != nil {
		w.Fail(err)
		return
	}
	w.Fixed(tagOBND, buf.Bytes())
}

// readEditorID reads the mandatory, non-empty EDID sub-record.
func readEditorID(r *esm.FieldReader) (string, error) {
	id, err := r.ReadBoundedString(tagEDID, esm.MaxEditorIDLength)
	if err != nil {
		return "", err
	}
	if r.Len() == 0 {
		return "", &esm.LengthMismatchError{Record: r.Record(), Tag: tagEDID, Want: 1, Got: 0}
	}
	return id, nil
}

// readFormID reads the current sub-record as a non-zero form ID. seen must
// hold the value read so far for the same sub-record, which has to be zero.
func readFormID(r *esm.FieldReader, seen uint32) (uint32, error) {
	if seen != 0 {
		return 0, &esm.DuplicateSubRecordError{Record: r.Record(), Tag: r.Tag()}
	}
	v, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, &esm.FormatError{Tag: r.Record(), Reason: fmt.Sprintf("%s is zero", r.Tag())}
	}
	return v, nil
}

// optionalSize returns the size of a uint32 sub-record written only when v is
// non-zero.
func optionalSize(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	return fam.FieldSize(4)
}

func writeOptional(w *esm.FieldWriter, tag esm.FourCC, v uint32) {
	if v != 0 {
		w.Uint32(tag, v)
	}
}
