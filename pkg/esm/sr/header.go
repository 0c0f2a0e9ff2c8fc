package sr

import (
	"bytes"
	"encoding/binary"
	"slices"

	"github.com/mr-karan/esmkit/pkg/esm"
)

/*
Header is the TES4 record at the start of every skyrim archive.

HEDR (12 bytes):
-------------------------------------------------------------
| version(4, float) | num_records_and_groups(4) | next_id(4) |
-------------------------------------------------------------

then CNAM (author), and in any order: SNAM (summary), MAST + DATA pairs,
ONAM (overridden form IDs), INTV and INCC.
*/
type Header struct {
	esm.RecordHeader `yaml:",inline"`

	Version         float32      `yaml:"version"`
	NumRecords      uint32       `yaml:"num_records_and_groups"`
	NextObjectID    uint32       `yaml:"next_object_id"`
	Author          string       `yaml:"author"`
	Summary         string       `yaml:"summary,omitempty"`
	Dependencies    []esm.Master `yaml:"dependencies,omitempty"`
	Overrides       []uint32     `yaml:"overrides,omitempty"`
	InternalVersion uint32       `yaml:"internal_version"`
	Counter         uint32       `yaml:"counter,omitempty"`
	HasCounter      bool         `yaml:"has_counter,omitempty"`
}

type hedr struct {
	Version      float32
	NumRecords   uint32
	NextObjectID uint32
}

const hedrSize = 12

func NewHeader() *Header {
	return &Header{}
}

func (h *Header) Tag() esm.FourCC {
	return TagTES4
}

func (h *Header) IsMaster() bool {
	return h.Flags&esm.FlagMaster != 0
}

// Localized reports whether strings of this archive live in string tables.
func (h *Header) Localized() bool {
	return h.Flags&esm.FlagLocalized != 0
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
	b, err := r.ReadFixed(tagHEDR, hedrSize)
	if err != nil {
		return err
	}
	var raw hedr
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return err
	}
	h.Version, h.NumRecords, h.NextObjectID = raw.Version, raw.NumRecords, raw.NextObjectID

	if h.Author, err = r.ReadBoundedString(tagCNAM, esm.MaxEditorIDLength); err != nil {
		return err
	}

	h.Summary = ""
	h.Dependencies = nil
	h.Overrides = nil
	h.Counter, h.HasCounter = 0, false
	var hasINTV bool

	for r.More() {
		tag, err := r.Next()
		if err != nil {
			return err
		}

		switch tag {
		case tagSNAM:
			if h.Summary != "" {
				return &esm.DuplicateSubRecordError{Record: TagTES4, Tag: tag}
			}
			if h.Summary, err = r.String(esm.MaxEditorIDLength); err != nil {
				return err
			}
			if h.Summary == "" {
				return &esm.FormatError{Tag: TagTES4, Reason: "SNAM is empty"}
			}
		case tagMAST:
			name, err := r.String(esm.MaxEditorIDLength)
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
		case tagONAM:
			if h.Overrides != nil {
				return &esm.DuplicateSubRecordError{Record: TagTES4, Tag: tag}
			}
			if r.Len() == 0 || r.Len()%4 != 0 {
				return &esm.LengthMismatchError{Record: TagTES4, Tag: tag, Want: (r.Len()/4 + 1) * 4, Got: r.Len()}
			}
			if h.Overrides, err = r.Uint32Array(r.Len() / 4); err != nil {
				return err
			}
		case tagINTV:
			if hasINTV {
				return &esm.DuplicateSubRecordError{Record: TagTES4, Tag: tag}
			}
			if h.InternalVersion, err = r.Uint32(); err != nil {
				return err
			}
			hasINTV = true
		case tagINCC:
			if h.HasCounter {
				return &esm.DuplicateSubRecordError{Record: TagTES4, Tag: tag}
			}
			if h.Counter, err = r.Uint32(); err != nil {
				return err
			}
			h.HasCounter = true
		default:
			return esm.Unexpected(TagTES4, tag, tagSNAM, tagMAST, tagONAM, tagINTV, tagINCC)
		}
	}

	if !hasINTV {
		return &esm.MissingRequiredSubRecordError{Record: TagTES4, Tag: tagINTV}
	}
	return nil
}

func (h *Header) WriteSize() uint32 {
	if h.Deleted() {
		return 0
	}
	size := fam.FieldSize(hedrSize) + fam.StringSize(h.Author) + fam.FieldSize(4)
	if h.Summary != "" {
		size += fam.StringSize(h.Summary)
	}
	for _, m := range h.Dependencies {
		size += fam.StringSize(m.Name) + fam.FieldSize(8)
	}
	if len(h.Overrides) > 0 {
		size += fam.FieldSize(4 * len(h.Overrides))
	}
	if h.HasCounter {
		size += fam.FieldSize(4)
	}
	return size
}

func (h *Header) Encode(w *esm.FieldWriter) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, hedr{
		Version:      h.Version,
		NumRecords:   h.NumRecords,
		NextObjectID: h.NextObjectID,
	}); err != nil {
		return err
	}
	w.Fixed(tagHEDR, buf.Bytes())
	w.String(tagCNAM, h.Author)
	if h.Summary != "" {
		w.String(tagSNAM, h.Summary)
	}
	for _, m := range h.Dependencies {
		w.String(tagMAST, m.Name)
		w.Int64(tagDATA, m.Size)
	}
	if len(h.Overrides) > 0 {
		w.Uint32Array(tagONAM, h.Overrides)
	}
	w.Uint32(tagINTV, h.InternalVersion)
	if h.HasCounter {
		w.Uint32(tagINCC, h.Counter)
	}
	return w.Err()
}

func (h *Header) Equal(other esm.Record) bool {
	o, ok := other.(*Header)
	if !ok {
		return false
	}
	return h.Version == o.Version &&
		h.NumRecords == o.NumRecords &&
		h.NextObjectID == o.NextObjectID &&
		h.Author == o.Author &&
		h.Summary == o.Summary &&
		slices.Equal(h.Dependencies, o.Dependencies) &&
		slices.Equal(h.Overrides, o.Overrides) &&
		h.InternalVersion == o.InternalVersion &&
		h.HasCounter == o.HasCounter &&
		h.Counter == o.Counter
}
