package esm

import (
	"bytes"
	"encoding/binary"
)

/*
RecordHeader is the fixed width block that follows the 4 byte type tag of every
record. Its layout depends on the family:

morrowind (12 bytes):
------------------------------------
| size(4) | revision(4) | flags(4) |
------------------------------------

skyrim (20 bytes):
--------------------------------------------------------------------------
| size(4) | flags(4) | form_id(4) | revision(4) | version(2) | unknown(2) |
--------------------------------------------------------------------------

Size is the length of the payload that follows the header. The remaining
fields are bookkeeping carried through unchanged.
*/
type RecordHeader struct {
	Size     uint32 `yaml:"-" cbor:"-"`
	Revision uint32 `yaml:"revision,omitempty"`
	Flags    uint32 `yaml:"flags,omitempty"`
	FormID   uint32 `yaml:"form_id,omitempty"`
	Version  uint16 `yaml:"version,omitempty"`
	Unknown  uint16 `yaml:"unknown,omitempty"`
}

const (
	FlagMaster     uint32 = 0x00000001
	FlagDeleted    uint32 = 0x00000020
	FlagLocalized  uint32 = 0x00000080
	FlagIgnored    uint32 = 0x00001000
	FlagCompressed uint32 = 0x00040000
)

type morrowindHeader struct {
	Size     uint32
	Revision uint32
	Flags    uint32
}

type skyrimHeader struct {
	Size     uint32
	Flags    uint32
	FormID   uint32
	Revision uint32
	Version  uint16
	Unknown  uint16
}

// Header gives records embedding a RecordHeader access to it.
func (h *RecordHeader) Header() *RecordHeader {
	return h
}

func (h *RecordHeader) Deleted() bool {
	return h.Flags&FlagDeleted != 0
}

func (h *RecordHeader) Ignored() bool {
	return h.Flags&FlagIgnored != 0
}

func (h *RecordHeader) Compressed() bool {
	return h.Flags&FlagCompressed != 0
}

// SetFlag sets or clears the given flag bits.
func (h *RecordHeader) SetFlag(flag uint32, on bool) {
	if on {
		h.Flags |= flag
	} else {
		h.Flags &^= flag
	}
}

// encodeHeader writes the family specific header layout to the buffer.
func (f *Family) encodeHeader(buf *bytes.Buffer, h RecordHeader) error {
	if f.HeaderSize == 12 {
		return binary.Write(buf, binary.LittleEndian, morrowindHeader{
			Size:     h.Size,
			Revision: h.Revision,
			Flags:    h.Flags,
		})
	}
	return binary.Write(buf, binary.LittleEndian, skyrimHeader{
		Size:     h.Size,
		Flags:    h.Flags,
		FormID:   h.FormID,
		Revision: h.Revision,
		Version:  h.Version,
		Unknown:  h.Unknown,
	})
}

// decodeHeader decodes HeaderSize bytes into a RecordHeader.
func (f *Family) decodeHeader(b []byte) (RecordHeader, error) {
	if f.HeaderSize == 12 {
		var mh morrowindHeader
		if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &mh); err != nil {
			return RecordHeader{}, err
		}
		return RecordHeader{Size: mh.Size, Revision: mh.Revision, Flags: mh.Flags}, nil
	}

	var sh skyrimHeader
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &sh); err != nil {
		return RecordHeader{}, err
	}
	return RecordHeader{
		Size:     sh.Size,
		Flags:    sh.Flags,
		FormID:   sh.FormID,
		Revision: sh.Revision,
		Version:  sh.Version,
		Unknown:  sh.Unknown,
	}, nil
}

/*
GroupHeader is the header of a GRUP block. Size covers the whole group
including the 24 header bytes.

-----------------------------------------------------------------------------
| "GRUP"(4) | size(4) | label(4) | type(4) | stamp(4) | unknown(4) | records |
-----------------------------------------------------------------------------
*/
type GroupHeader struct {
	Size    uint32 `yaml:"-"`
	Label   FourCC `yaml:"label"`
	Type    int32  `yaml:"type"`
	Stamp   uint32 `yaml:"stamp,omitempty"`
	Unknown uint32 `yaml:"unknown,omitempty"`
}

const GroupHeaderSize = 24

// Group types. Only top level groups carry a record type as their label.
const (
	GroupTop int32 = iota
	GroupWorldChildren
	GroupInteriorCellBlock
	GroupInteriorCellSubBlock
	GroupExteriorCellBlock
	GroupExteriorCellSubBlock
	GroupCellChildren
	GroupTopicChildren
	GroupCellPersistentChildren
	GroupCellTemporaryChildren
	GroupCellVisibleDistantChildren
)

// IsTop reports whether the group holds all records of the type in Label.
func (g GroupHeader) IsTop() bool {
	return g.Type == GroupTop
}

func (g GroupHeader) encode(buf *bytes.Buffer) error {
	buf.Write(TagGRUP[:])
	return binary.Write(buf, binary.LittleEndian, g)
}

func decodeGroupHeader(b []byte) (GroupHeader, error) {
	var g GroupHeader
	err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &g)
	return g, err
}
