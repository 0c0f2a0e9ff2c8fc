package loadorder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touch creates name in dir with size bytes and the given modification time.
func touch(t *testing.T, dir, name string, size int, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestDiscover(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = t.TempDir()
		base   = time.Date(2003, 5, 6, 12, 0, 0, 0, time.UTC)
	)

	touch(t, dir, "Morrowind.esm", 30, base)
	touch(t, dir, "Tribunal.esm", 20, base.Add(time.Hour))
	touch(t, dir, "mod.esp", 10, base.Add(-time.Hour))
	touch(t, dir, "Morrowind.ini", 5, base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.esm"), 0o755))

	l, err := Discover(dir)
	require.NoError(t, err)
	assert.ElementsMatch([]string{"Morrowind.esm", "Tribunal.esm", "mod.esp"}, l.Names())

	l.Sort()
	assert.Equal([]string{"Morrowind.esm", "Tribunal.esm", "mod.esp"}, l.Names())

	f, err := l.At(0)
	require.NoError(t, err)
	assert.Equal(int64(30), f.Size)
	assert.True(base.Equal(f.Modified))

	assert.True(base.Add(time.Hour + time.Minute).Equal(l.NextModTime()))

	t.Run("Missing_Dir", func(t *testing.T) {
		_, err := Discover(filepath.Join(dir, "nope"))
		assert.Error(err)
	})

	t.Run("Require_Base_Master", func(t *testing.T) {
		assert.NoError(RequireBaseMaster("Morrowind", dir))
		assert.True(errors.Is(RequireBaseMaster("skyrim", dir), ErrNoMaster))
		assert.Error(RequireBaseMaster("oblivion", dir))
	})
}

func TestWithBaseMasters(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = t.TempDir()
		mod    = time.Date(2011, 11, 11, 0, 0, 0, 0, time.UTC)
	)

	touch(t, dir, "Skyrim.esm", 1, mod)
	touch(t, dir, "Dawnguard.esm", 1, mod)

	l := NewList("Dawnguard.esm", "mod.esp")
	require.NoError(t, l.WithBaseMasters("Skyrim", dir))
	// Update.esm is not installed and Dawnguard.esm is already listed.
	assert.Equal([]string{"Skyrim.esm", "Dawnguard.esm", "mod.esp"}, l.Names())

	l = NewList("mod.esp")
	require.NoError(t, l.WithBaseMasters("skyrim", dir))
	assert.Equal([]string{"Skyrim.esm", "Dawnguard.esm", "mod.esp"}, l.Names())

	// The required master is added even when missing.
	l = NewList()
	require.NoError(t, l.WithBaseMasters("morrowind", dir))
	assert.Equal([]string{"Morrowind.esm"}, l.Names())

	assert.Error(l.WithBaseMasters("oblivion", dir))
}

func TestStat(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = t.TempDir()
		mod    = time.Date(2002, 5, 1, 0, 0, 0, 0, time.UTC)
	)

	touch(t, dir, "Morrowind.esm", 12, mod)

	l := NewList("Morrowind.esm", "Gone.esp", "Also gone.esp")
	err := l.Stat(dir)
	assert.True(errors.Is(err, os.ErrNotExist))
	assert.Contains(err.Error(), "Gone.esp, Also gone.esp")

	f, _ := l.At(0)
	assert.Equal(int64(12), f.Size)
	f, _ = l.At(1)
	assert.Equal(UnknownSize, f.Size)

	t.Run("Next_Mod_Time_Without_Times", func(t *testing.T) {
		before := time.Now()
		next := NewList("a.esp").NextModTime()
		assert.False(next.Before(before))
	})
}

func TestFromIni(t *testing.T) {
	var (
		assert = assert.New(t)
		dir    = t.TempDir()
		path   = filepath.Join(dir, "Morrowind.ini")
	)

	ini := "[General]\r\nGameFile0=Ignored.esm\r\n" +
		"[Game Files]\r\n" +
		"GameFile0=Morrowind.esm\r\n" +
		"GameFile1=Tribunal.esm\r\n" +
		"; GameFile2=Commented.esp\r\n" +
		"GameFile2= My Mod.esp \r\n" +
		"GameFile3=\r\n" +
		"\r\n" +
		"[Archives]\r\nArchive 0=Tribunal.bsa\r\n"
	require.NoError(t, os.WriteFile(path, []byte(ini), 0o644))

	l, err := FromIni(path)
	require.NoError(t, err)
	assert.Equal([]string{"Morrowind.esm", "Tribunal.esm", "My Mod.esp"}, l.Names())

	_, err = FromIni(filepath.Join(dir, "missing.ini"))
	assert.Error(err)
}

func TestIsArchive(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsArchive("Morrowind.esm"))
	assert.True(IsArchive("mod.ESP"))
	assert.False(IsArchive("Morrowind.bsa"))
	assert.False(IsArchive("esm"))
}
