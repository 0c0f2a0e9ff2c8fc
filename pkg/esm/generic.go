package esm

import "bytes"

// GenericRecord keeps the payload of a record type without a registered codec
// so the record can be written back byte for byte. Compressed payloads are
// kept compressed.
type GenericRecord struct {
	RecordHeader `yaml:",inline"`

	Type FourCC `yaml:"type"`
	Data []byte `yaml:"data"`
}

func NewGenericRecord(tag FourCC) *GenericRecord {
	return &GenericRecord{Type: tag}
}

func (g *GenericRecord) Tag() FourCC {
	return g.Type
}

// Retag changes the record type, keeping header and payload.
func (g *GenericRecord) Retag(tag FourCC) {
	g.Type = tag
}

func (g *GenericRecord) Decode(r *FieldReader) error {
	g.Data = r.Rest()
	return nil
}

func (g *GenericRecord) WriteSize() uint32 {
	return uint32(len(g.Data))
}

func (g *GenericRecord) Encode(w *FieldWriter) error {
	w.Raw(g.Data)
	return w.Err()
}

func (g *GenericRecord) Equal(other Record) bool {
	o, ok := other.(*GenericRecord)
	if !ok {
		return false
	}
	return g.Type == o.Type && bytes.Equal(g.Data, o.Data)
}
