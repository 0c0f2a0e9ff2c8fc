package esm

// FourCC is the 4-byte ASCII code identifying a record or sub-record type.
type FourCC [4]byte

// Tag converts a string to a FourCC. Longer strings are cut, shorter ones
// are NUL-padded.
func Tag(s string) FourCC {
	var f FourCC
	copy(f[:], s)
	return f
}

func (f FourCC) String() string {
	return string(f[:])
}

// MarshalText renders the code as text in YAML and CBOR output.
func (f FourCC) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FourCC) UnmarshalText(b []byte) error {
	*f = Tag(string(b))
	return nil
}

var (
	TagTES3 = Tag("TES3")
	TagTES4 = Tag("TES4")
	TagGRUP = Tag("GRUP")
)
