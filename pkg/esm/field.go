package esm

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	// MaxIDLength bounds morrowind record IDs and most of its strings.
	MaxIDLength = 255
	// MaxEditorIDLength bounds skyrim editor IDs and path strings.
	MaxEditorIDLength = 511
)

// FieldReader walks the sub-records of one record payload. Next positions the
// reader on a sub-record; the typed accessors then validate and decode it.
type FieldReader struct {
	// Localized is set for archives whose strings live in string tables.
	Localized bool

	record FourCC
	width  int
	buf    []byte
	pos    int

	tag  FourCC
	data []byte
}

// NewFieldReader returns a reader over the payload of a record of type record.
func NewFieldReader(fam *Family, record FourCC, payload []byte) *FieldReader {
	return &FieldReader{
		record: record,
		width:  fam.LengthWidth,
		buf:    payload,
	}
}

// Record returns the type of the record being decoded.
func (r *FieldReader) Record() FourCC {
	return r.record
}

// Size returns the length of the whole payload.
func (r *FieldReader) Size() int {
	return len(r.buf)
}

// Remaining returns the number of payload bytes not consumed yet.
func (r *FieldReader) Remaining() int {
	return len(r.buf) - r.pos
}

// More reports whether another sub-record follows.
func (r *FieldReader) More() bool {
	return r.pos < len(r.buf)
}

// Peek returns the tag of the next sub-record without consuming it.
func (r *FieldReader) Peek() (FourCC, bool) {
	var tag FourCC
	if r.Remaining() < 4 {
		return tag, false
	}
	copy(tag[:], r.buf[r.pos:])
	return tag, true
}

// Next reads the tag and length of the next sub-record and makes its data
// current.
func (r *FieldReader) Next() (FourCC, error) {
	head := 4 + r.width
	if r.Remaining() < head {
		return FourCC{}, &TruncatedStreamError{Tag: r.record, Want: head, Got: r.Remaining()}
	}

	var tag FourCC
	copy(tag[:], r.buf[r.pos:])
	var n int
	if r.width == 2 {
		n = int(binary.LittleEndian.Uint16(r.buf[r.pos+4:]))
	} else {
		n = int(binary.LittleEndian.Uint32(r.buf[r.pos+4:]))
	}
	r.pos += head

	if n > r.Remaining() {
		return tag, &TruncatedStreamError{Tag: tag, Want: n, Got: r.Remaining()}
	}
	r.tag = tag
	r.data = r.buf[r.pos : r.pos+n]
	r.pos += n

	return tag, nil
}

// Tag returns the tag of the current sub-record.
func (r *FieldReader) Tag() FourCC {
	return r.tag
}

// Len returns the declared length of the current sub-record.
func (r *FieldReader) Len() int {
	return len(r.data)
}

func (r *FieldReader) mismatch(want int) error {
	return &LengthMismatchError{Record: r.record, Tag: r.tag, Want: want, Got: len(r.data)}
}

// Fixed returns the current sub-record data, which must be exactly n bytes.
// The slice aliases the payload.
func (r *FieldReader) Fixed(n int) ([]byte, error) {
	if len(r.data) != n {
		return nil, r.mismatch(n)
	}
	return r.data, nil
}

func (r *FieldReader) Uint8() (uint8, error) {
	b, err := r.Fixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *FieldReader) Uint32() (uint32, error) {
	b, err := r.Fixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *FieldReader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *FieldReader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

func (r *FieldReader) Int64() (int64, error) {
	b, err := r.Fixed(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// String decodes the current sub-record as text of at most max bytes. The
// text ends at the first NUL.
func (r *FieldReader) String(max int) (string, error) {
	if len(r.data) > max {
		return "", &LengthMismatchError{Record: r.record, Tag: r.tag, Want: max, Got: len(r.data), Bound: true}
	}
	return CString(r.data), nil
}

// Bytes returns a copy of the current sub-record data.
func (r *FieldReader) Bytes() []byte {
	return bytes.Clone(r.data)
}

// Uint32Array decodes count little-endian uint32 values.
func (r *FieldReader) Uint32Array(count int) ([]uint32, error) {
	b, err := r.Fixed(4 * count)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return out, nil
}

// Rest consumes and returns a copy of everything left in the payload.
func (r *FieldReader) Rest() []byte {
	out := bytes.Clone(r.buf[r.pos:])
	r.pos = len(r.buf)
	return out
}

// Expect reads the next sub-record and fails unless its tag is tag.
func (r *FieldReader) Expect(tag FourCC) error {
	got, err := r.Next()
	if err != nil {
		return err
	}
	if got != tag {
		return Unexpected(r.record, got, tag)
	}
	return nil
}

// ReadFixed reads a sub-record tagged tag that must be exactly n bytes long.
func (r *FieldReader) ReadFixed(tag FourCC, n int) ([]byte, error) {
	if err := r.Expect(tag); err != nil {
		return nil, err
	}
	return r.Fixed(n)
}

// ReadBoundedString reads a string sub-record tagged tag of at most max bytes.
func (r *FieldReader) ReadBoundedString(tag FourCC, max int) (string, error) {
	if err := r.Expect(tag); err != nil {
		return "", err
	}
	return r.String(max)
}

// ReadCountedArray reads a sub-record tagged tag holding count elements of
// elemSize bytes each.
func (r *FieldReader) ReadCountedArray(tag FourCC, elemSize, count int) ([]byte, error) {
	if err := r.Expect(tag); err != nil {
		return nil, err
	}
	return r.Fixed(elemSize * count)
}

func (r *FieldReader) ReadUint32(tag FourCC) (uint32, error) {
	if err := r.Expect(tag); err != nil {
		return 0, err
	}
	return r.Uint32()
}

// CString returns the text in b up to the first NUL.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// FieldWriter encodes sub-records for one record payload. Errors are sticky
// and reported by Err.
type FieldWriter struct {
	record FourCC
	width  int
	buf    bytes.Buffer
	err    error
}

// NewFieldWriter returns a writer for the payload of a record of type record.
func NewFieldWriter(fam *Family, record FourCC) *FieldWriter {
	return &FieldWriter{record: record, width: fam.LengthWidth}
}

func (w *FieldWriter) head(tag FourCC, n int) bool {
	if w.err != nil {
		return false
	}
	limit := int64(math.MaxUint32)
	if w.width == 2 {
		limit = math.MaxUint16
	}
	if int64(n) > limit {
		w.err = &LengthMismatchError{Record: w.record, Tag: tag, Want: int(limit), Got: n, Bound: true}
		return false
	}

	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(n))
	w.buf.Write(tag[:])
	w.buf.Write(l[:w.width])
	return true
}

// Fixed writes b verbatim as the data of a sub-record.
func (w *FieldWriter) Fixed(tag FourCC, b []byte) {
	if w.head(tag, len(b)) {
		w.buf.Write(b)
	}
}

// Bytes writes opaque data.
func (w *FieldWriter) Bytes(tag FourCC, b []byte) {
	w.Fixed(tag, b)
}

func (w *FieldWriter) Uint8(tag FourCC, v uint8) {
	w.Fixed(tag, []byte{v})
}

func (w *FieldWriter) Uint32(tag FourCC, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Fixed(tag, b[:])
}

func (w *FieldWriter) Float32(tag FourCC, v float32) {
	w.Uint32(tag, math.Float32bits(v))
}

func (w *FieldWriter) Int64(tag FourCC, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.Fixed(tag, b[:])
}

// String writes s followed by a terminating NUL.
func (w *FieldWriter) String(tag FourCC, s string) {
	if w.head(tag, len(s)+1) {
		w.buf.WriteString(s)
		w.buf.WriteByte(0)
	}
}

func (w *FieldWriter) Uint32Array(tag FourCC, vs []uint32) {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	w.Fixed(tag, b)
}

// Raw appends b to the payload without a sub-record head.
func (w *FieldWriter) Raw(b []byte) {
	if w.err == nil {
		w.buf.Write(b)
	}
}

// Fail records err unless an earlier error is already pending.
func (w *FieldWriter) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *FieldWriter) Err() error {
	return w.err
}

// Len returns the number of payload bytes written so far.
func (w *FieldWriter) Len() int {
	return w.buf.Len()
}

// Payload returns the encoded payload.
func (w *FieldWriter) Payload() []byte {
	return w.buf.Bytes()
}
