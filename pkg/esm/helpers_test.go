package esm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	tagTEST = Tag("TEST")
	tagNAME = Tag("NAME")
	tagDATA = Tag("DATA")
	tagHEDR = Tag("HEDR")
)

// testRecord is a minimal record: NAME (id) followed by DATA (uint32).
type testRecord struct {
	RecordHeader

	ID    string
	Value uint32

	fam *Family
}

func newTestRecord(fam *Family, id string, v uint32) *testRecord {
	return &testRecord{ID: id, Value: v, fam: fam}
}

func (r *testRecord) Tag() FourCC {
	return tagTEST
}

func (r *testRecord) Decode(fr *FieldReader) error {
	var err error
	if r.ID, err = fr.ReadBoundedString(tagNAME, MaxIDLength); err != nil {
		return err
	}
	r.Value, err = fr.ReadUint32(tagDATA)
	return err
}

func (r *testRecord) WriteSize() uint32 {
	return r.fam.StringSize(r.ID) + r.fam.FieldSize(4)
}

func (r *testRecord) Encode(w *FieldWriter) error {
	w.String(tagNAME, r.ID)
	w.Uint32(tagDATA, r.Value)
	return w.Err()
}

func (r *testRecord) Equal(other Record) bool {
	o, ok := other.(*testRecord)
	return ok && r.ID == o.ID && r.Value == o.Value
}

// testHeader is an archive header holding a record count in HEDR.
type testHeader struct {
	RecordHeader

	Count uint32
}

func (h *testHeader) Tag() FourCC { return TagTES3 }
func (h *testHeader) IsMaster() bool { return false }
func (h *testHeader) Localized() bool { return h.Flags&FlagLocalized != 0 }
func (h *testHeader) Masters() []Master { return nil }
func (h *testHeader) RecordCount() uint32 { return h.Count }
func (h *testHeader) SetRecordCount(n uint32) { h.Count = n }

func (h *testHeader) Decode(r *FieldReader) error {
	var err error
	h.Count, err = r.ReadUint32(tagHEDR)
	return err
}

func (h *testHeader) WriteSize() uint32 {
	return Morrowind.FieldSize(4)
}

func (h *testHeader) Encode(w *FieldWriter) error {
	w.Uint32(tagHEDR, h.Count)
	return w.Err()
}

func (h *testHeader) Equal(other Record) bool {
	o, ok := other.(*testHeader)
	return ok && h.Count == o.Count
}

// skyrimHeaderRecord is testHeader framed for skyrim archives.
type skyrimHeaderRecord struct {
	testHeader
}

func (h *skyrimHeaderRecord) Tag() FourCC { return TagTES4 }

func (h *skyrimHeaderRecord) WriteSize() uint32 {
	return Skyrim.FieldSize(4)
}

type testDB struct {
	fam   *Family
	reg   *Registry
	tests *Store[string, *testRecord]
}

func newTestDB(fam *Family) *testDB {
	db := &testDB{
		fam:   fam,
		reg:   NewRegistry(),
		tests: NewIDStore(tagTEST, func(r *testRecord) string { return r.ID }),
	}
	Register(db.reg, db.tests, func() *testRecord { return &testRecord{fam: fam} })
	return db
}

func (db *testDB) Family() *Family {
	return db.fam
}

func (db *testDB) NewHeader() ArchiveHeader {
	if db.fam == Skyrim {
		return &skyrimHeaderRecord{}
	}
	return &testHeader{}
}

func (db *testDB) Registry() *Registry {
	return db.reg
}

// raw returns a generic record with a literal payload.
func raw(tag string, payload string) *GenericRecord {
	g := NewGenericRecord(Tag(tag))
	g.Data = []byte(payload)
	return g
}

// testPayload encodes the payload of a testRecord for fam.
func testPayload(fam *Family, id string, v uint32) string {
	w := NewFieldWriter(fam, tagTEST)
	w.String(tagNAME, id)
	w.Uint32(tagDATA, v)
	return string(w.Payload())
}

// testRaw returns a testRecord as a generic record so the archive can be
// built without size bookkeeping.
func testRaw(fam *Family, id string, v uint32) *GenericRecord {
	return raw("TEST", testPayload(fam, id, v))
}

// archive encodes the header followed by entries.
func archive(t *testing.T, fam *Family, entries ...Entry) []byte {
	t.Helper()

	hdr := raw(fam.Magic.String(), "HEDR"+lenField(fam, 4)+"\x07\x00\x00\x00")
	var buf bytes.Buffer
	w := NewWriter(&buf, fam)
	require.NoError(t, w.WriteDocument(&Document{Header: headerRecord{hdr}, Entries: entries}))
	return buf.Bytes()
}

// headerRecord lets a GenericRecord stand in as archive header.
type headerRecord struct {
	*GenericRecord
}

func (h headerRecord) IsMaster() bool { return false }
func (h headerRecord) Localized() bool { return false }
func (h headerRecord) Masters() []Master { return nil }
func (h headerRecord) RecordCount() uint32 { return 0 }
func (h headerRecord) SetRecordCount(uint32) {}

func lenField(fam *Family, n int) string {
	if fam.LengthWidth == 2 {
		return string([]byte{byte(n), byte(n >> 8)})
	}
	return string([]byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)})
}

func rec(r Record) Entry {
	return Entry{Record: r}
}

func grp(label string, typ int32, entries ...Entry) Entry {
	return Entry{Group: &Group{Header: GroupHeader{Label: Tag(label), Type: typ}, Entries: entries}}
}
