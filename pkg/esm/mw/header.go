package mw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/mr-karan/esmkit/pkg/esm"
)

const (
	hedrSize        = 300
	companySize     = 32
	descriptionSize = 256
	// minHeaderSize is the payload of a header without dependencies.
	minHeaderSize = 308
)

/*
Header is the TES3 record at the start of every morrowind archive.

HEDR (300 bytes):
-------------------------------------------------------------------------------
| version(4, float) | flag(4) | company(32) | description(256) | num_records(4) |
-------------------------------------------------------------------------------

followed by one MAST (name) + DATA (int64 size) pair per dependency.
*/
type Header struct {
	esm.RecordHeader `yaml:",inline"`

	Version      float32      `yaml:"version"`
	FileFlag     uint32       `yaml:"file_flag"`
	Company      string       `yaml:"company"`
	Description  string       `yaml:"description"`
	NumRecords   uint32       `yaml:"num_records"`
	Dependencies []esm.Master `yaml:"dependencies,omitempty"`
}

// hedr is the fixed width layout of the HEDR sub-record.
type hedr struct {
	Version     float32
	FileFlag    uint32
	Company     [companySize]byte
	Description [descriptionSize]byte
	NumRecords  uint32
}

func NewHeader() *Header {
	return &Header{}
}

func (h *Header) Tag() esm.FourCC {
	return TagTES3
}

func (h *Header) IsMaster() bool {
	return h.FileFlag&1 != 0
}

// Localized is always false, morrowind keeps strings inline.
func (h *Header) Localized() bool {
	return false
}

func (h *Header) Masters() []esm.Master {
	return h.Dependencies
}

func (h *Header) RecordCount() uint32 {
	return h.NumRecords
}

func (h *Header) SetRecordCount(n uint32) {
	h.NumRecords = n
}

func (h *Header) Decode(r *esm.FieldReader) error {
	if r.Size() < minHeaderSize {
		return &esm.FormatError{Tag: TagTES3, Reason: fmt.Sprintf("header size %d is below %d", r.Size(), minHeaderSize)}
	}

	b, err := r.ReadFixed(tagHEDR, hedrSize)
	if err != nil {
		return err
	}
	var raw hedr
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return err
	}
	h.Version = raw.Version
	h.FileFlag = raw.FileFlag
	h.Company = esm.CString(raw.Company[:])
	h.Description = esm.CString(raw.Description[:])
	h.NumRecords = raw.NumRecords

	h.Dependencies = nil
	for r.More() {
		name, err := r.ReadBoundedString(tagMAST, esm.MaxIDLength)
		if err != nil {
			return err
		}
		if err := r.Expect(tagDATA); err != nil {
			return err
		}
		size, err := r.Int64()
		if err != nil {
			return err
		}
		h.Dependencies = append(h.Dependencies, esm.Master{Name: name, Size: size})
	}

	return nil
}

func (h *Header) WriteSize() uint32 {
	size := fam.FieldSize(hedrSize)
	for _, m := range h.Dependencies {
		size += fam.StringSize(m.Name) + fam.FieldSize(8)
	}
	return size
}

// Encode writes HEDR and the dependencies. Company and description are cut
// to leave room for the terminating NUL.
func (h *Header) Encode(w *esm.FieldWriter) error {
	raw := hedr{
		Version:    h.Version,
		FileFlag:   h.FileFlag,
		NumRecords: h.NumRecords,
	}
	copy(raw.Company[:companySize-1], h.Company)
	copy(raw.Description[:descriptionSize-1], h.Description)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, raw); err != nil {
		return err
	}
	w.Fixed(tagHEDR, buf.Bytes())

	for _, m := range h.Dependencies {
		w.String(tagMAST, m.Name)
		w.Int64(tagDATA, m.Size)
	}

	return w.Err()
}

func (h *Header) Equal(other esm.Record) bool {
	o, ok := other.(*Header)
	if !ok {
		return false
	}
	return h.Version == o.Version &&
		h.FileFlag == o.FileFlag &&
		h.Company == o.Company &&
		h.Description == o.Description &&
		h.NumRecords == o.NumRecords &&
		slices.Equal(h.Dependencies, o.Dependencies)
}
