package game

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerodha/logf"

	"github.com/mr-karan/esmkit/pkg/esm"
	"github.com/mr-karan/esmkit/pkg/esm/mw"
	"github.com/mr-karan/esmkit/pkg/esm/sr"
)

var base = time.Date(2002, 5, 1, 0, 0, 0, 0, time.UTC)

func writeArchive(t *testing.T, path string, mod time.Time, masters []esm.Master, recs ...esm.Record) {
	t.Helper()

	hdr := mw.NewHeader()
	hdr.Version = 1.3
	hdr.Company = "esmkit"
	hdr.Dependencies = masters
	if filepath.Ext(path) == ".esm" {
		hdr.FileFlag = 1
	}

	doc := &esm.Document{Header: hdr}
	doc.Append(recs...)
	doc.Header.SetRecordCount(doc.CountRecords(false))
	require.NoError(t, esm.WriteFile(path, esm.Morrowind, doc, esm.WithModTime(mod)))
}

func gold(v float32) *mw.Global {
	return &mw.Global{ID: "PCGold", Type: mw.GlobalLong, Value: v}
}

func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeArchive(t, filepath.Join(dir, "Morrowind.esm"), base, nil, gold(0))
	writeArchive(t, filepath.Join(dir, "Tribunal.esm"), base.Add(time.Hour),
		[]esm.Master{{Name: "Morrowind.esm", Size: 1}},
		gold(100), &mw.Static{ID: "in_redoran_hut_bfloor_02", Model: "i\\In_redoran_hut_Bfloor_02.NIF"})
	writeArchive(t, filepath.Join(dir, "mod.esp"), base.Add(-time.Hour),
		[]esm.Master{{Name: "Tribunal.esm"}}, gold(250))

	return dir
}

func testLogger() logf.Logger {
	return logf.New(logf.Opts{Writer: io.Discard})
}

func TestSession(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = testDir(t)
	)

	s, err := New(Config{Game: "Morrowind", Dir: dir}, testLogger())
	require.NoError(t, err)
	assert.Equal(esm.Morrowind, s.Family())
	assert.Equal(dir, s.Dir())
	assert.Equal([]string{"Morrowind.esm", "Tribunal.esm", "mod.esp"}, s.Order().Names())
	assert.Equal(filepath.Join(dir, "mod.esp"), s.Paths()[2])

	require.NoError(t, s.Load())
	require.Len(t, s.Results, 3)
	assert.Equal(1, s.Results[0].Absorbed)

	r, err := s.Lookup(mw.TagGLOB, "pcgold")
	require.NoError(t, err)
	assert.Equal(float32(250), r.(*mw.Global).Value)

	r, err = s.Lookup(mw.TagSTAT, "IN_REDORAN_HUT_BFLOOR_02")
	require.NoError(t, err)
	assert.Equal("in_redoran_hut_bfloor_02", r.(*mw.Static).ID)

	_, err = s.Lookup(esm.Tag("BOOK"), "x")
	assert.True(errors.Is(err, esm.ErrNotFound))

	t.Run("Reload", func(t *testing.T) {
		require.NoError(t, s.Load())
		db := s.DB().(*mw.Database)
		assert.Equal(1, db.Globals.Len())
		assert.Equal(1, db.Statics.Len())
	})

	t.Run("Failed_Reload_Keeps_Data", func(t *testing.T) {
		db := s.DB()
		path := filepath.Join(dir, "mod.esp")
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.NoError(t, os.Truncate(path, fi.Size()-3))

		err = s.Load()
		var te *esm.TruncatedStreamError
		assert.ErrorAs(err, &te)

		assert.Same(db, s.DB())
		assert.Len(s.Results, 3)
		r, err := s.Lookup(mw.TagGLOB, "PCGold")
		require.NoError(t, err)
		assert.Equal(float32(250), r.(*mw.Global).Value)
	})
}

func TestSessionFiles(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = testDir(t)
	)

	s, err := New(Config{Game: "morrowind", Dir: dir, Files: []string{"mod.esp", "Tribunal.esm"}}, testLogger())
	require.NoError(t, err)
	assert.Equal([]string{"Tribunal.esm", "mod.esp"}, s.Order().Names())

	s, err = New(Config{Game: "morrowind", Dir: dir, Files: []string{"mod.esp"}, Masters: true}, testLogger())
	require.NoError(t, err)
	assert.Equal([]string{"Morrowind.esm", "Tribunal.esm", "mod.esp"}, s.Order().Names())

	s, err = New(Config{Game: "morrowind", Dir: dir, Files: []string{"mod.esp", "mod.esp"}}, testLogger())
	require.NoError(t, err)
	assert.Equal(1, s.Order().Len())

	_, err = New(Config{Game: "morrowind", Dir: dir, Files: []string{"missing.esp"}}, testLogger())
	assert.Error(err)
}

func TestSessionIni(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = testDir(t)
		ini    = filepath.Join(t.TempDir(), "Morrowind.ini")
	)

	require.NoError(t, os.WriteFile(ini, []byte("[Game Files]\r\nGameFile0=mod.esp\r\nGameFile1=Morrowind.esm\r\n"), 0o644))

	s, err := New(Config{Game: "morrowind", Dir: dir, Ini: ini}, testLogger())
	require.NoError(t, err)
	assert.Equal([]string{"Morrowind.esm", "mod.esp"}, s.Order().Names())

	s, err = New(Config{Game: "morrowind", Dir: dir, Ini: ini, Masters: true}, testLogger())
	require.NoError(t, err)
	assert.Equal([]string{"Morrowind.esm", "Tribunal.esm", "mod.esp"}, s.Order().Names())
	require.NoError(t, s.Load())
	assert.Len(s.Results, 3)

	// An explicit file list wins over the ini.
	s, err = New(Config{Game: "morrowind", Dir: dir, Ini: ini, Files: []string{"Tribunal.esm"}}, testLogger())
	require.NoError(t, err)
	assert.Equal([]string{"Tribunal.esm"}, s.Order().Names())

	_, err = New(Config{Game: "morrowind", Dir: dir, Ini: filepath.Join(dir, "missing.ini")}, testLogger())
	assert.Error(err)

	require.NoError(t, os.WriteFile(ini, []byte("[Game Files]\nGameFile0=gone.esp\n"), 0o644))
	_, err = New(Config{Game: "morrowind", Dir: dir, Ini: ini}, testLogger())
	assert.True(errors.Is(err, os.ErrNotExist))
}

func TestSessionErrors(t *testing.T) {
	assert := assert.New(t)
	dir := testDir(t)

	_, err := New(Config{Game: "oblivion", Dir: dir}, testLogger())
	assert.Error(err)

	_, err = New(Config{Game: "skyrim", Dir: dir}, testLogger())
	assert.Error(err)

	s, err := New(Config{Game: "morrowind", Dir: dir, Unknown: "drop"}, testLogger())
	require.NoError(t, err)
	assert.Error(s.Load())

	s, err = New(Config{Game: "morrowind", Dir: dir, Unknown: "FAIL", MaxRecordSize: 1 << 10}, testLogger())
	require.NoError(t, err)
	cfgs, err := s.ReaderOptions()
	assert.NoError(err)
	assert.Len(cfgs, 3)
}

func TestNewDatabase(t *testing.T) {
	assert := assert.New(t)

	db, err := NewDatabase("Skyrim")
	assert.NoError(err)
	assert.IsType(&sr.Database{}, db)

	db, err = NewDatabase("morrowind")
	assert.NoError(err)
	assert.IsType(&mw.Database{}, db)

	_, err = NewDatabase("oblivion")
	assert.Error(err)

	assert.IsType(&sr.Database{}, ForFamily(esm.Skyrim))
	assert.True(Exists(t.TempDir()))
	assert.False(Exists(filepath.Join(t.TempDir(), "missing")))
}
