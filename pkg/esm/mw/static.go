package mw

import "github.com/mr-karan/esmkit/pkg/esm"

// Static is a STAT record: an object placed in the world with a mesh only.
type Static struct {
	esm.RecordHeader `yaml:",inline"`

	ID    string `yaml:"id"`
	Model string `yaml:"model"`
}

func (s *Static) Tag() esm.FourCC {
	return TagSTAT
}

func (s *Static) Decode(r *esm.FieldReader) error {
	var err error
	if s.ID, err = r.ReadBoundedString(tagNAME, esm.MaxIDLength); err != nil {
		return err
	}
	if s.Model, err = r.ReadBoundedString(tagMODL, esm.MaxIDLength); err != nil {
		return err
	}
	return nil
}

func (s *Static) WriteSize() uint32 {
	return fam.StringSize(s.ID) + fam.StringSize(s.Model)
}

func (s *Static) Encode(w *esm.FieldWriter) error {
	w.String(tagNAME, s.ID)
	w.String(tagMODL, s.Model)
	return w.Err()
}

func (s *Static) Equal(other esm.Record) bool {
	o, ok := other.(*Static)
	return ok && s.ID == o.ID && s.Model == o.Model
}
