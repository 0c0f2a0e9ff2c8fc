package sr

import "github.com/mr-karan/esmkit/pkg/esm"

// Database holds the decoded skyrim records, keyed by form ID.
type Database struct {
	Globals        *esm.Store[uint32, *Global]
	AcousticSpaces *esm.Store[uint32, *AcousticSpace]
	Keys           *esm.Store[uint32, *Key]

	reg *esm.Registry
}

func NewDatabase() *Database {
	db := &Database{
		Globals:        esm.NewFormIDStore[*Global](TagGLOB),
		AcousticSpaces: esm.NewFormIDStore[*AcousticSpace](TagASPC),
		Keys:           esm.NewFormIDStore[*Key](TagKEYM),
		reg:            esm.NewRegistry(),
	}

	esm.Register(db.reg, db.Globals, func() *Global { return &Global{} })
	esm.Register(db.reg, db.AcousticSpaces, func() *AcousticSpace { return &AcousticSpace{} })
	esm.Register(db.reg, db.Keys, func() *Key { return &Key{} })

	return db
}

func (db *Database) Family() *esm.Family {
	return esm.Skyrim
}

func (db *Database) NewHeader() esm.ArchiveHeader {
	return NewHeader()
}

func (db *Database) Registry() *esm.Registry {
	return db.reg
}

func (db *Database) Clear() {
	db.reg.Clear()
}

func (db *Database) Reader(cfgs ...esm.Config) (*esm.Reader, error) {
	return esm.NewReader(db, cfgs...)
}
