package esm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, db Database, b []byte, cfgs ...Config) (*Result, error) {
	t.Helper()
	rd, err := NewReader(db, cfgs...)
	require.NoError(t, err)
	return rd.Read(bytes.NewReader(b), int64(len(b)))
}

func TestReaderSkip(t *testing.T) {
	var (
		assert = assert.New(t)
		db     = newTestDB(Morrowind)
		b      = archive(t, Morrowind,
			rec(testRaw(Morrowind, "a", 1)),
			rec(raw("XXXX", "abcdef")),
			rec(testRaw(Morrowind, "b", 2)),
		)
	)

	res, err := read(t, db, b)
	require.NoError(t, err)

	assert.Equal(2, res.Absorbed)
	assert.Equal(3, res.Records)
	assert.Equal(1, res.Skipped)
	assert.Equal(1, res.Counts[Tag("XXXX")])
	assert.Equal(2, res.Counts[tagTEST])
	assert.Equal(int64(len(b)), res.LastGood)
	assert.Equal(uint32(7), res.Header.RecordCount())
	assert.Nil(res.Document)
	assert.Equal(2, db.tests.Len())

	r, err := db.tests.Get("b")
	assert.NoError(err)
	assert.Equal(uint32(2), r.Value)
}

func TestReaderMerge(t *testing.T) {
	var (
		assert = assert.New(t)
		db     = newTestDB(Morrowind)
		first  = archive(t, Morrowind,
			rec(testRaw(Morrowind, "a", 1)),
			rec(testRaw(Morrowind, "b", 2)),
		)
	)

	t.Run("First", func(t *testing.T) {
		res, err := read(t, db, first)
		assert.NoError(err)
		assert.Equal(2, res.Absorbed)
	})

	t.Run("Same_Again", func(t *testing.T) {
		res, err := read(t, db, first)
		assert.NoError(err)
		assert.Equal(0, res.Absorbed)
		assert.Equal(2, res.Records)
		assert.Equal(2, db.tests.Len())
	})

	t.Run("Override", func(t *testing.T) {
		res, err := read(t, db, archive(t, Morrowind,
			rec(testRaw(Morrowind, "A", 5)),
			rec(testRaw(Morrowind, "c", 3)),
			rec(testRaw(Morrowind, "", 9)),
		))
		assert.NoError(err)
		assert.Equal(2, res.Absorbed)
		assert.Equal(3, db.tests.Len())

		r, err := db.tests.Get("a")
		assert.NoError(err)
		assert.Equal("A", r.ID)
		assert.Equal(uint32(5), r.Value)
	})
}

func TestReaderUnknownFail(t *testing.T) {
	var (
		assert = assert.New(t)
		db     = newTestDB(Morrowind)
		b      = archive(t, Morrowind,
			rec(testRaw(Morrowind, "a", 1)),
			rec(raw("XXXX", "abcdef")),
		)
	)

	res, err := read(t, db, b, WithUnknown(UnknownFail))

	var ae *ArchiveError
	require.ErrorAs(t, err, &ae)
	// Header is 28 bytes, the first record 38.
	assert.Equal(int64(66), ae.Offset)
	assert.Equal(1, res.Absorbed)

	var ue *UnknownRecordTypeError
	assert.ErrorAs(err, &ue)
	assert.Equal(Tag("XXXX"), ue.Tag)
}

func TestReaderErrors(t *testing.T) {
	assert := assert.New(t)

	t.Run("Truncated_Record", func(t *testing.T) {
		db := newTestDB(Morrowind)
		b := archive(t, Morrowind,
			rec(testRaw(Morrowind, "a", 1)),
			rec(testRaw(Morrowind, "b", 2)),
		)
		_, err := read(t, db, b[:len(b)-5])

		var te *TruncatedStreamError
		assert.ErrorAs(err, &te)
		var ae *ArchiveError
		assert.ErrorAs(err, &ae)
		assert.Equal(int64(66), ae.Offset)
		// Records before the failure stay in the store.
		assert.Equal(1, db.tests.Len())
	})

	t.Run("Truncated_Skip", func(t *testing.T) {
		db := newTestDB(Morrowind)
		b := archive(t, Morrowind, rec(raw("XXXX", "abcdef")))
		_, err := read(t, db, b[:len(b)-1])

		var te *TruncatedStreamError
		require.ErrorAs(t, err, &te)
		assert.Equal(Tag("XXXX"), te.Tag)
		assert.Equal(6, te.Want)
		assert.Equal(5, te.Got)
		var fe *FormatError
		assert.False(errors.As(err, &fe))
	})

	t.Run("Missing_SubRecord", func(t *testing.T) {
		db := newTestDB(Morrowind)
		b := archive(t, Morrowind, rec(raw("TEST", "NAME\x02\x00\x00\x00a\x00")))
		_, err := read(t, db, b)

		var te *TruncatedStreamError
		assert.ErrorAs(err, &te)
		assert.Equal(0, db.tests.Len())
	})

	t.Run("Trailing_Bytes", func(t *testing.T) {
		db := newTestDB(Morrowind)
		b := archive(t, Morrowind, rec(raw("TEST", testPayload(Morrowind, "a", 1)+"XTRA\x00\x00\x00\x00")))
		_, err := read(t, db, b)

		var fe *FormatError
		assert.ErrorAs(err, &fe)
		assert.Equal(0, db.tests.Len())
	})

	t.Run("Bad_Magic", func(t *testing.T) {
		_, err := read(t, newTestDB(Skyrim), archive(t, Morrowind))

		var fe *FormatError
		assert.ErrorAs(err, &fe)
		assert.Equal(TagTES3, fe.Tag)
	})

	t.Run("Too_Short", func(t *testing.T) {
		_, err := read(t, newTestDB(Morrowind), []byte("TES3"))

		var fe *FormatError
		assert.ErrorAs(err, &fe)
	})

	t.Run("Max_Record_Size", func(t *testing.T) {
		db := newTestDB(Morrowind)
		b := archive(t, Morrowind, rec(testRaw(Morrowind, "a", 1)))
		_, err := read(t, db, b, WithMaxRecordSize(10))

		var fe *FormatError
		assert.ErrorAs(err, &fe)
	})

	t.Run("Capture_Needs_Keep", func(t *testing.T) {
		_, err := NewReader(newTestDB(Morrowind), WithCapture(), WithUnknown(UnknownFail))
		assert.Error(err)
	})
}

func TestReaderGroups(t *testing.T) {
	var (
		assert = assert.New(t)
		b      = archive(t, Skyrim,
			grp("TEST", GroupTop,
				rec(testRaw(Skyrim, "a", 1)),
				grp("CHLD", GroupCellChildren,
					rec(testRaw(Skyrim, "b", 2)),
				),
			),
			grp("XXXX", GroupTop,
				rec(raw("XXXX", "zz")),
			),
		)
	)

	t.Run("Default", func(t *testing.T) {
		db := newTestDB(Skyrim)
		res, err := read(t, db, b)
		require.NoError(t, err)

		assert.Equal(2, res.Absorbed)
		assert.Equal(2, res.Records)
		assert.Equal(3, res.Groups)
		assert.Equal(1, res.Skipped)
		assert.Equal(int64(len(b)), res.LastGood)
		assert.Equal(2, db.tests.Len())
	})

	t.Run("Filter", func(t *testing.T) {
		db := newTestDB(Skyrim)
		res, err := read(t, db, b, WithGroupFilter(func(g GroupHeader, parents []GroupHeader) bool {
			return len(parents) == 0
		}))
		require.NoError(t, err)

		assert.Equal(1, res.Absorbed)
		assert.Equal(2, res.Records)
		assert.Equal(2, res.Skipped)
		assert.True(db.tests.Has("a"))
		assert.False(db.tests.Has("b"))
	})

	t.Run("Capture_Roundtrip", func(t *testing.T) {
		db := newTestDB(Skyrim)
		res, err := read(t, db, b, WithCapture())
		require.NoError(t, err)
		require.NotNil(t, res.Document)

		assert.Equal(uint32(3), res.Document.CountRecords(false))
		assert.Equal(uint32(6), res.Document.CountRecords(true))

		var seen []string
		res.Document.Walk(func(rec Record, groups []GroupHeader) bool {
			seen = append(seen, rec.Tag().String())
			if r, ok := rec.(*testRecord); ok && r.ID == "b" {
				assert.Len(groups, 2)
				assert.Equal(Tag("CHLD"), groups[1].Label)
			}
			return true
		})
		assert.Equal([]string{"TEST", "TEST", "XXXX"}, seen)

		var buf bytes.Buffer
		assert.NoError(NewWriter(&buf, Skyrim).WriteDocument(res.Document))
		assert.Equal(b, buf.Bytes())
	})
}

func TestReaderGroupErrors(t *testing.T) {
	var (
		assert = assert.New(t)
		base   = archive(t, Skyrim)
	)

	groupHead := func(size uint32) []byte {
		var buf bytes.Buffer
		buf.WriteString("GRUP")
		binary.Write(&buf, binary.LittleEndian, size)
		buf.WriteString("TEST")
		buf.Write(make([]byte, 12))
		return buf.Bytes()
	}

	t.Run("Below_Header_Size", func(t *testing.T) {
		b := append(bytes.Clone(base), groupHead(10)...)
		_, err := read(t, newTestDB(Skyrim), b)

		var fe *FormatError
		assert.ErrorAs(err, &fe)
		assert.Equal(TagGRUP, fe.Tag)
	})

	t.Run("Past_End", func(t *testing.T) {
		b := append(bytes.Clone(base), groupHead(100)...)
		_, err := read(t, newTestDB(Skyrim), b)

		var te *TruncatedStreamError
		assert.ErrorAs(err, &te)
		assert.Equal(TagGRUP, te.Tag)
	})

	t.Run("Record_Past_Group", func(t *testing.T) {
		r, err := EncodeRecord(Skyrim, testRaw(Skyrim, "a", 1))
		require.NoError(t, err)

		b := append(bytes.Clone(base), groupHead(GroupHeaderSize+10)...)
		b = append(b, r...)
		_, err = read(t, newTestDB(Skyrim), b)

		var te *TruncatedStreamError
		assert.ErrorAs(err, &te)
		var ae *ArchiveError
		assert.ErrorAs(err, &ae)
		assert.Equal(int64(len(base)), ae.Offset)
	})
}

func TestReaderCompressed(t *testing.T) {
	assert := assert.New(t)

	payload := testPayload(Skyrim, "c", 3)
	packed, err := deflate([]byte(payload))
	require.NoError(t, err)

	g := raw("TEST", string(packed))
	g.Flags = FlagCompressed
	b := archive(t, Skyrim, rec(g))

	t.Run("Read", func(t *testing.T) {
		db := newTestDB(Skyrim)
		res, err := read(t, db, b)
		require.NoError(t, err)
		assert.Equal(1, res.Absorbed)

		r, err := db.tests.Get("c")
		assert.NoError(err)
		assert.Equal(uint32(3), r.Value)
		assert.True(r.Compressed())
	})

	t.Run("Rewrite", func(t *testing.T) {
		db := newTestDB(Skyrim)
		r := newTestRecord(Skyrim, "d", 4)
		r.Flags = FlagCompressed
		enc, err := EncodeRecord(Skyrim, r)
		require.NoError(t, err)

		b := append(archive(t, Skyrim), enc...)
		_, err = read(t, db, b)
		require.NoError(t, err)
		got, err := db.tests.Get("d")
		assert.NoError(err)
		assert.True(got.Equal(r))
	})

	t.Run("Bad_Size", func(t *testing.T) {
		bad := bytes.Clone(packed)
		binary.LittleEndian.PutUint32(bad, uint32(len(payload)+1))
		g := raw("TEST", string(bad))
		g.Flags = FlagCompressed

		_, err := read(t, newTestDB(Skyrim), archive(t, Skyrim, rec(g)))
		var le *LengthMismatchError
		assert.ErrorAs(err, &le)
	})
}

func TestReaderDeleted(t *testing.T) {
	assert := assert.New(t)

	g := raw("TEST", "")
	g.Flags = FlagDeleted
	g.FormID = 0x10
	db := newTestDB(Skyrim)

	res, err := read(t, db, archive(t, Skyrim, rec(g)))
	require.NoError(t, err)
	assert.Equal(1, res.Records)
	// Deleted records without payload have no ID and are discarded.
	assert.Equal(0, res.Absorbed)
	assert.Equal(0, db.tests.Len())
}

func TestReadFile(t *testing.T) {
	assert := assert.New(t)
	path := t.TempDir() + "/test.esp"

	doc := &Document{Header: &testHeader{Count: 2}}
	doc.Append(newTestRecord(Morrowind, "a", 1), newTestRecord(Morrowind, "b", 2))
	require.NoError(t, WriteFile(path, Morrowind, doc))

	fam, err := Detect(path)
	assert.NoError(err)
	assert.Equal(Morrowind, fam)

	db := newTestDB(Morrowind)
	rd, err := NewReader(db)
	require.NoError(t, err)

	hdr, err := rd.ReadHeader(path)
	assert.NoError(err)
	assert.Equal(uint32(2), hdr.RecordCount())

	results, err := rd.ReadAll([]string{path, path})
	assert.NoError(err)
	assert.Len(results, 2)
	assert.Equal(2, results[0].Absorbed)
	assert.Equal(0, results[1].Absorbed)
	assert.Equal(path, results[0].Path)

	_, err = rd.ReadAll([]string{path, path + ".missing"})
	var ae *ArchiveError
	assert.ErrorAs(err, &ae)
	assert.True(errors.Is(err, ae.Err))
}
