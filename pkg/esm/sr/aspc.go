package sr

import "github.com/mr-karan/esmkit/pkg/esm"

// AcousticSpace is an ASPC record. The sound and region references are
// optional; zero means absent.
type AcousticSpace struct {
	esm.RecordHeader `yaml:",inline"`

	EditorID    string       `yaml:"editor_id"`
	Bounds      ObjectBounds `yaml:"bounds"`
	LoopSound   uint32       `yaml:"loop_sound,omitempty"`  // SNAM
	Region      uint32       `yaml:"region,omitempty"`      // RDAT
	Environment uint32       `yaml:"environment,omitempty"` // BNAM
}

func (a *AcousticSpace) Tag() esm.FourCC {
	return TagASPC
}

func (a *AcousticSpace) Decode(r *esm.FieldReader) error {
	var err error
	if a.EditorID, err = readEditorID(r); err != nil {
		return err
	}
	if a.Bounds, err = readBounds(r); err != nil {
		return err
	}

	a.LoopSound, a.Region, a.Environment = 0, 0, 0
	for r.More() {
		tag, err := r.Next()
		if err != nil {
			return err
		}
		switch tag {
		case tagSNAM:
			a.LoopSound, err = readFormID(r, a.LoopSound)
		case tagRDAT:
			a.Region, err = readFormID(r, a.Region)
		case tagBNAM:
			a.Environment, err = readFormID(r, a.Environment)
		default:
			return esm.Unexpected(TagASPC, tag, tagSNAM, tagRDAT, tagBNAM)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *AcousticSpace) WriteSize() uint32 {
	if a.Deleted() {
		return 0
	}
	return fam.StringSize(a.EditorID) + fam.FieldSize(boundsSize) +
		optionalSize(a.LoopSound) + optionalSize(a.Region) + optionalSize(a.Environment)
}

func (a *AcousticSpace) Encode(w *esm.FieldWriter) error {
	w.String(tagEDID, a.EditorID)
	writeBounds(w, a.Bounds)
	writeOptional(w, tagSNAM, a.LoopSound)
	writeOptional(w, tagRDAT, a.Region)
	writeOptional(w, tagBNAM, a.Environment)
	return w.Err()
}

func (a *AcousticSpace) Equal(other esm.Record) bool {
	o, ok := other.(*AcousticSpace)
	return ok && a.EditorID == o.EditorID && a.Bounds == o.Bounds &&
		a.LoopSound == o.LoopSound && a.Region == o.Region && a.Environment == o.Environment
}
