package esm

import (
	"fmt"
	"strings"
)

// Family describes the framing rules shared by every archive of one game.
type Family struct {
	Name  string
	Magic FourCC

	LengthWidth  int  // Width in bytes of a sub-record length field.
	HeaderSize   int  // Bytes of record header following the type tag.
	Groups       bool // Records may be wrapped in GRUP blocks.
	Compression  bool // Records may carry zlib compressed payloads.
	EmptyDeleted bool // Deleted records carry no payload at all.
}

var (
	// Morrowind archives: 12 byte record headers, 32-bit sub-record lengths.
	Morrowind = &Family{
		Name:        "morrowind",
		Magic:       TagTES3,
		LengthWidth: 4,
		HeaderSize:  12,
	}

	// Skyrim archives: 20 byte record headers, 16-bit sub-record lengths,
	// nested groups and compressed records.
	Skyrim = &Family{
		Name:         "skyrim",
		Magic:        TagTES4,
		LengthWidth:  2,
		HeaderSize:   20,
		Groups:       true,
		Compression:  true,
		EmptyDeleted: true,
	}

	families = []*Family{Morrowind, Skyrim}
)

// FamilyByName returns the family registered under name.
func FamilyByName(name string) (*Family, error) {
	for _, f := range families {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown game family %q", name)
}

// FamilyByMagic returns the family whose archives start with magic.
func FamilyByMagic(magic FourCC) (*Family, error) {
	for _, f := range families {
		if f.Magic == magic {
			return f, nil
		}
	}
	return nil, &FormatError{Tag: magic, Reason: "not a known archive magic"}
}

// FieldSize returns the encoded size of a sub-record carrying n bytes.
func (f *Family) FieldSize(n int) uint32 {
	return uint32(4 + f.LengthWidth + n)
}

// StringSize returns the encoded size of a NUL-terminated string sub-record.
func (f *Family) StringSize(s string) uint32 {
	return f.FieldSize(len(s) + 1)
}

func (f *Family) String() string {
	return f.Name
}
