package sr

import (
	"bytes"
	"encoding/binary"
	"math"
	"slices"

	"github.com/mr-karan/esmkit/pkg/esm"
)

// Key is a KEYM record.
type Key struct {
	esm.RecordHeader `yaml:",inline"`

	EditorID     string          `yaml:"editor_id"`
	Scripts      []byte          `yaml:"scripts,omitempty"` // VMAD, kept opaque
	Bounds       ObjectBounds    `yaml:"bounds"`
	Name         LocalizedString `yaml:"name"`
	Model        string          `yaml:"model,omitempty"`
	TextureHash  []byte          `yaml:"texture_hash,omitempty"` // MODT
	PickupSound  uint32          `yaml:"pickup_sound,omitempty"`
	PutdownSound uint32          `yaml:"putdown_sound,omitempty"`
	Keywords     []uint32        `yaml:"keywords,omitempty"`
	Value        uint32          `yaml:"value"`
	Weight       float32         `yaml:"weight"`
}

type keyData struct {
	Value  uint32
	Weight float32
}

const keyDataSize = 8

func (k *Key) Tag() esm.FourCC {
	return TagKEYM
}

func (k *Key) Decode(r *esm.FieldReader) error {
	var err error
	if k.EditorID, err = readEditorID(r); err != nil {
		return err
	}

	k.Scripts = nil
	if tag, ok := r.Peek(); ok && tag == tagVMAD {
		if _, err := r.Next(); err != nil {
			return err
		}
		k.Scripts = r.Bytes()
	}

	if k.Bounds, err = readBounds(r); err != nil {
		return err
	}

	if tag, ok := r.Peek(); !ok || tag != tagFULL {
		return &esm.MissingRequiredSubRecordError{Record: TagKEYM, Tag: tagFULL}
	}
	if _, err := r.Next(); err != nil {
		return err
	}
	if err := k.Name.read(r); err != nil {
		return err
	}

	k.Model, k.TextureHash = "", nil
	k.PickupSound, k.PutdownSound = 0, 0
	k.Keywords = nil
	var hasKeywords, hasData bool

	for r.More() {
		tag, err := r.Next()
		if err != nil {
			return err
		}

		switch tag {
		case tagFULL:
			return &esm.DuplicateSubRecordError{Record: TagKEYM, Tag: tag}
		case tagMODL:
			if k.Model != "" {
				return &esm.DuplicateSubRecordError{Record: TagKEYM, Tag: tag}
			}
			if k.Model, err = r.String(esm.MaxEditorIDLength); err != nil {
				return err
			}
			if k.Model == "" {
				return &esm.FormatError{Tag: TagKEYM, Reason: "MODL is empty"}
			}
		case tagMODT:
			if k.TextureHash != nil {
				return &esm.DuplicateSubRecordError{Record: TagKEYM, Tag: tag}
			}
			k.TextureHash = r.Bytes()
		case tagYNAM:
			k.PickupSound, err = readFormID(r, k.PickupSound)
		case tagZNAM:
			k.PutdownSound, err = readFormID(r, k.PutdownSound)
		case tagKSIZ:
			if hasKeywords {
				return &esm.DuplicateSubRecordError{Record: TagKEYM, Tag: tag}
			}
			count, err := r.Uint32()
			if err != nil {
				return err
			}
			if count > math.MaxUint16/4 {
				return &esm.FormatError{Tag: TagKEYM, Reason: "keyword count exceeds KWDA capacity"}
			}
			if err := r.Expect(tagKWDA); err != nil {
				return err
			}
			if k.Keywords, err = r.Uint32Array(int(count)); err != nil {
				return err
			}
			hasKeywords = true
		case tagDATA:
			if hasData {
				return &esm.DuplicateSubRecordError{Record: TagKEYM, Tag: tag}
			}
			b, err := r.Fixed(keyDataSize)
			if err != nil {
				return err
			}
			var d keyData
			if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &d); err != nil {
				return err
			}
			k.Value, k.Weight = d.Value, d.Weight
			hasData = true
		default:
			return esm.Unexpected(TagKEYM, tag, tagMODL, tagMODT, tagYNAM, tagZNAM, tagKSIZ, tagDATA)
		}
		if err != nil {
			return err
		}
	}

	if !hasData {
		return &esm.MissingRequiredSubRecordError{Record: TagKEYM, Tag: tagDATA}
	}
	return nil
}

func (k *Key) WriteSize() uint32 {
	if k.Deleted() {
		return 0
	}
	size := fam.StringSize(k.EditorID) + fam.FieldSize(boundsSize) + k.Name.size() + fam.FieldSize(keyDataSize)
	if k.Scripts != nil {
		size += fam.FieldSize(len(k.Scripts))
	}
	if k.Model != "" {
		size += fam.StringSize(k.Model)
	}
	if k.TextureHash != nil {
		size += fam.FieldSize(len(k.TextureHash))
	}
	size += optionalSize(k.PickupSound) + optionalSize(k.PutdownSound)
	if len(k.Keywords) > 0 {
		size += fam.FieldSize(4) + fam.FieldSize(4*len(k.Keywords))
	}
	return size
}

func (k *Key) Encode(w *esm.FieldWriter) error {
	w.String(tagEDID, k.EditorID)
	if k.Scripts != nil {
		w.Fixed(tagVMAD, k.Scripts)
	}
	writeBounds(w, k.Bounds)
	k.Name.write(w, tagFULL)
	if k.Model != "" {
		w.String(tagMODL, k.Model)
	}
	if k.TextureHash != nil {
		w.Fixed(tagMODT, k.TextureHash)
	}
	writeOptional(w, tagYNAM, k.PickupSound)
	writeOptional(w, tagZNAM, k.PutdownSound)
	if len(k.Keywords) > 0 {
		w.Uint32(tagKSIZ, uint32(len(k.Keywords)))
		w.Uint32Array(tagKWDA, k.Keywords)
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, keyData{Value: k.Value, Weight: k.Weight}); err != nil {
		return err
	}
	w.Fixed(tagDATA, buf.Bytes())

	return w.Err()
}

func (k *Key) Equal(other esm.Record) bool {
	o, ok := other.(*Key)
	if !ok {
		return false
	}
	return k.EditorID == o.EditorID &&
		bytes.Equal(k.Scripts, o.Scripts) &&
		k.Bounds == o.Bounds &&
		k.Name == o.Name &&
		k.Model == o.Model &&
		bytes.Equal(k.TextureHash, o.TextureHash) &&
		k.PickupSound == o.PickupSound &&
		k.PutdownSound == o.PutdownSound &&
		slices.Equal(k.Keywords, o.Keywords) &&
		k.Value == o.Value &&
		math.Float32bits(k.Weight) == math.Float32bits(o.Weight)
}
