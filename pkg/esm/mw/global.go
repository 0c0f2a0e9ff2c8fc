package mw

import (
	"fmt"
	"math"

	"github.com/mr-karan/esmkit/pkg/esm"
)

// GlobalType is the declared type of a global variable.
type GlobalType byte

const (
	GlobalShort GlobalType = 's'
	GlobalLong  GlobalType = 'l'
	GlobalFloat GlobalType = 'f'
)

func (t GlobalType) valid() bool {
	return t == GlobalShort || t == GlobalLong || t == GlobalFloat
}

func (t GlobalType) String() string {
	switch t {
	case GlobalShort:
		return "short"
	case GlobalLong:
		return "long"
	case GlobalFloat:
		return "float"
	}
	return fmt.Sprintf("type(%#x)", byte(t))
}

func (t GlobalType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Global is a GLOB record. The game stores every global as a float in FLTV
// whatever its declared type.
type Global struct {
	esm.RecordHeader `yaml:",inline"`

	ID    string     `yaml:"id"`
	Type  GlobalType `yaml:"type"`
	Value float32    `yaml:"value"`
}

func (g *Global) Tag() esm.FourCC {
	return TagGLOB
}

// Int returns the value truncated to the declared integer type.
func (g *Global) Int() int32 {
	if g.Type == GlobalShort {
		return int32(int16(g.Value))
	}
	return int32(g.Value)
}

func (g *Global) Decode(r *esm.FieldReader) error {
	var err error
	if g.ID, err = r.ReadBoundedString(tagNAME, esm.MaxIDLength); err != nil {
		return err
	}

	b, err := r.ReadFixed(tagFNAM, 1)
	if err != nil {
		return err
	}
	g.Type = GlobalType(b[0])
	if !g.Type.valid() {
		return &esm.FormatError{Tag: TagGLOB, Reason: fmt.Sprintf("invalid global type %q", b[0])}
	}

	if err := r.Expect(tagFLTV); err != nil {
		return err
	}
	g.Value, err = r.Float32()
	return err
}

func (g *Global) WriteSize() uint32 {
	return fam.StringSize(g.ID) + fam.FieldSize(1) + fam.FieldSize(4)
}

func (g *Global) Encode(w *esm.FieldWriter) error {
	w.String(tagNAME, g.ID)
	w.Uint8(tagFNAM, byte(g.Type))
	w.Float32(tagFLTV, g.Value)
	return w.Err()
}

func (g *Global) Equal(other esm.Record) bool {
	o, ok := other.(*Global)
	return ok && g.ID == o.ID && g.Type == o.Type &&
		math.Float32bits(g.Value) == math.Float32bits(o.Value)
}
