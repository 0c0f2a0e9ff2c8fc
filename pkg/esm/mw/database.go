package mw

import "github.com/mr-karan/esmkit/pkg/esm"

// Database holds one store per decoded record type. Callers own it and hand
// it to the readers that fill it.
type Database struct {
	Statics *esm.Store[string, *Static]
	Globals *esm.Store[string, *Global]

	reg *esm.Registry
}

// NewDatabase returns an empty database with STAT and GLOB registered.
func NewDatabase() *Database {
	db := &Database{
		Statics: esm.NewIDStore(TagSTAT, func(s *Static) string { return s.ID }),
		Globals: esm.NewIDStore(TagGLOB, func(g *Global) string { return g.ID }),
		reg:     esm.NewRegistry(),
	}

	esm.Register(db.reg, db.Statics, func() *Static { return &Static{} })
	esm.Register(db.reg, db.Globals, func() *Global { return &Global{} })

	return db
}

func (db *Database) Family() *esm.Family {
	return esm.Morrowind
}

func (db *Database) NewHeader() esm.ArchiveHeader {
	return NewHeader()
}

func (db *Database) Registry() *esm.Registry {
	return db.reg
}

// Clear empties every store.
func (db *Database) Clear() {
	db.reg.Clear()
}

// Reader returns a reader feeding this database.
func (db *Database) Reader(cfgs ...esm.Config) (*esm.Reader, error) {
	return esm.NewReader(db, cfgs...)
}
