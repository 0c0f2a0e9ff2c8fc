package sr

import (
	"fmt"
	"math"

	"github.com/mr-karan/esmkit/pkg/esm"
)

const (
	GlobalShort byte = 's'
	GlobalLong  byte = 'l'
	GlobalFloat byte = 'f'
)

// Global is a GLOB record. The value is stored as a float for every type.
type Global struct {
	esm.RecordHeader `yaml:",inline"`

	EditorID string  `yaml:"editor_id"`
	Type     byte    `yaml:"type"`
	Value    float32 `yaml:"value"`
}

func (g *Global) Tag() esm.FourCC {
	return TagGLOB
}

func (g *Global) Decode(r *esm.FieldReader) error {
	var err error
	if g.EditorID, err = readEditorID(r); err != nil {
		return err
	}

	b, err := r.ReadFixed(tagFNAM, 1)
	if err != nil {
		return err
	}
	switch g.Type = b[0]; g.Type {
	case GlobalShort, GlobalLong, GlobalFloat:
	default:
		return &esm.FormatError{Tag: TagGLOB, Reason: fmt.Sprintf("invalid global type %q", g.Type)}
	}

	if err := r.Expect(tagFLTV); err != nil {
		return err
	}
	g.Value, err = r.Float32()
	return err
}

func (g *Global) WriteSize() uint32 {
	if g.Deleted() {
		return 0
	}
	return fam.StringSize(g.EditorID) + fam.FieldSize(1) + fam.FieldSize(4)
}

func (g *Global) Encode(w *esm.FieldWriter) error {
	w.String(tagEDID, g.EditorID)
	w.Uint8(tagFNAM, g.Type)
	w.Float32(tagFLTV, g.Value)
	return w.Err()
}

func (g *Global) Equal(other esm.Record) bool {
	o, ok := other.(*Global)
	return ok && g.EditorID == o.EditorID && g.Type == o.Type &&
		math.Float32bits(g.Value) == math.Float32bits(o.Value)
}
