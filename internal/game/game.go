// Package game ties a record database to a data directory and its load order
// for the command line front ends.
package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zerodha/logf"

	"github.com/mr-karan/esmkit/pkg/esm"
	"github.com/mr-karan/esmkit/pkg/esm/mw"
	"github.com/mr-karan/esmkit/pkg/esm/sr"
	"github.com/mr-karan/esmkit/pkg/loadorder"
)

// Database is implemented by the database of every supported game.
type Database interface {
	esm.Database
	Clear()
	Reader(cfgs ...esm.Config) (*esm.Reader, error)
}

// NewDatabase returns an empty database for the game family name.
func NewDatabase(name string) (Database, error) {
	fam, err := esm.FamilyByName(name)
	if err != nil {
		return nil, err
	}
	return ForFamily(fam), nil
}

// ForFamily returns an empty database for fam.
func ForFamily(fam *esm.Family) Database {
	if fam == esm.Skyrim {
		return sr.NewDatabase()
	}
	return mw.NewDatabase()
}

// Config selects the archives of a session and how they are read.
type Config struct {
	Game          string
	Dir           string
	Files         []string
	Unknown       string
	MaxRecordSize uint32
	// Masters adds the game's base masters to an explicit file list.
	Masters bool
	// Ini is a Morrowind.ini whose [Game Files] section gives the load
	// order when Files is empty.
	Ini string
}

// Session is one load of a data directory.
type Session struct {
	cfg   Config
	lo    logf.Logger
	db    Database
	order *loadorder.List

	Results []*esm.Result
}

// New resolves the load order of cfg. Nothing is read until Load.
func New(cfg Config, lo logf.Logger) (*Session, error) {
	db, err := NewDatabase(cfg.Game)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, lo: lo, db: db}
	if s.order, err = s.resolve(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) resolve() (*loadorder.List, error) {
	var (
		order *loadorder.List
		err   error
	)
	if len(s.cfg.Files) == 0 && s.cfg.Ini == "" {
		if order, err = loadorder.Discover(s.cfg.Dir); err != nil {
			return nil, err
		}
		if err := loadorder.RequireBaseMaster(s.cfg.Game, s.cfg.Dir); err != nil {
			return nil, err
		}
	} else {
		if len(s.cfg.Files) > 0 {
			order = loadorder.NewList(s.cfg.Files...)
		} else if order, err = loadorder.FromIni(s.cfg.Ini); err != nil {
			return nil, fmt.Errorf("error reading load order from %s: %w", s.cfg.Ini, err)
		}
		if s.cfg.Masters {
			if err := order.WithBaseMasters(s.cfg.Game, s.cfg.Dir); err != nil {
				return nil, err
			}
		}
		if err := order.Stat(s.cfg.Dir); err != nil {
			return nil, err
		}
	}

	order.Sort()
	if n := order.RemoveDuplicates(); n > 0 {
		s.lo.Warn("removed duplicate files from load order", "count", n)
	}
	return order, nil
}

func (s *Session) DB() Database {
	return s.db
}

func (s *Session) Family() *esm.Family {
	return s.db.Family()
}

func (s *Session) Order() *loadorder.List {
	return s.order
}

func (s *Session) Dir() string {
	return s.cfg.Dir
}

// Paths returns the archive paths in load order.
func (s *Session) Paths() []string {
	names := s.order.Names()
	for i, n := range names {
		names[i] = filepath.Join(s.cfg.Dir, n)
	}
	return names
}

// ReaderOptions returns the reader configuration of the session.
func (s *Session) ReaderOptions() ([]esm.Config, error) {
	u, err := esm.ParseUnknown(strings.ToLower(s.cfg.Unknown))
	if err != nil {
		return nil, err
	}
	cfgs := []esm.Config{esm.WithUnknown(u), esm.WithLogger(s.lo)}
	if s.cfg.MaxRecordSize > 0 {
		cfgs = append(cfgs, esm.WithMaxRecordSize(s.cfg.MaxRecordSize))
	}
	return cfgs, nil
}

// Load reads every archive of the load order into a fresh database. The
// database and results of the session are replaced only when every archive
// reads cleanly; on failure the previous ones stay in place.
func (s *Session) Load() error {
	cfgs, err := s.ReaderOptions()
	if err != nil {
		return err
	}
	db := ForFamily(s.db.Family())
	rd, err := db.Reader(cfgs...)
	if err != nil {
		return err
	}

	results, err := rd.ReadAll(s.Paths())
	if err != nil {
		return err
	}
	s.db, s.Results = db, results
	s.checkMasters()
	return nil
}

// checkMasters warns about dependencies missing from the load order or
// changed since the dependent archive was saved.
func (s *Session) checkMasters() {
	files := s.order.Files()
	for _, res := range s.Results {
		for _, m := range res.Header.Masters() {
			i := s.order.Index(m.Name)
			if i < 0 {
				s.lo.Warn("master not in load order", "archive", res.Path, "master", m.Name)
				continue
			}
			if err := files[i].CheckMaster(m.Size); err != nil {
				s.lo.Warn("stale master", "archive", res.Path, "error", err)
			}
		}
	}
}

// Lookup finds the record stored under key in the table for tag.
func (s *Session) Lookup(tag esm.FourCC, key string) (esm.Record, error) {
	t, ok := s.db.Registry().Table(tag)
	if !ok {
		return nil, fmt.Errorf("%w: no table for %s", esm.ErrNotFound, tag)
	}
	return t.Lookup(key)
}

// Exists reports whether path is a readable file.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
