package esm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// Record is implemented by every decoded record type.
//
// Decode consumes the whole payload of the record. WriteSize returns the exact
// number of payload bytes Encode produces; Encode writes sub-records only, the
// tag and header are written by EncodeRecord. Equal compares decoded content
// and ignores header bookkeeping.
type Record interface {
	Tag() FourCC
	Header() *RecordHeader
	Decode(r *FieldReader) error
	WriteSize() uint32
	Encode(w *FieldWriter) error
	Equal(other Record) bool
}

// Master names an archive the current archive depends on, with the size it had
// when the dependent archive was saved.
type Master struct {
	Name string `yaml:"name" cbor:"1,keyasint"`
	Size int64  `yaml:"size" cbor:"2,keyasint"`
}

// ArchiveHeader is the first record of every archive.
type ArchiveHeader interface {
	Record

	IsMaster() bool
	Localized() bool
	Masters() []Master
	RecordCount() uint32
	SetRecordCount(n uint32)
}

// EncodeRecord encodes rec with its tag and header. The header size is taken
// from the encoded payload, which must match rec.WriteSize().
func EncodeRecord(fam *Family, rec Record) ([]byte, error) {
	var (
		hdr     = *rec.Header()
		tag     = rec.Tag()
		payload []byte
	)

	switch g, ok := rec.(*GenericRecord); {
	case ok:
		payload = g.Data
	case fam.EmptyDeleted && hdr.Deleted():
		payload = nil
	default:
		fw := NewFieldWriter(fam, tag)
		if err := rec.Encode(fw); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", tag, err)
		}
		if err := fw.Err(); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", tag, err)
		}
		if want := int(rec.WriteSize()); fw.Len() != want {
			return nil, &LengthMismatchError{Record: tag, Tag: tag, Want: want, Got: fw.Len()}
		}
		payload = fw.Payload()

		if fam.Compression && hdr.Compressed() {
			var err error
			if payload, err = deflate(payload); err != nil {
				return nil, fmt.Errorf("compressing %s: %w", tag, err)
			}
		}
	}

	hdr.Size = uint32(len(payload))
	buf := bytes.NewBuffer(make([]byte, 0, 4+fam.HeaderSize+len(payload)))
	buf.Write(tag[:])
	if err := fam.encodeHeader(buf, hdr); err != nil {
		return nil, err
	}
	buf.Write(payload)

	return buf.Bytes(), nil
}

// inflate decodes a compressed payload: a uint32 holding the decompressed size
// followed by a zlib stream.
func inflate(tag FourCC, payload []byte, limit uint32) ([]byte, error) {
	if len(payload) < 4 {
		return nil, &TruncatedStreamError{Tag: tag, Want: 4, Got: len(payload)}
	}
	size := binary.LittleEndian.Uint32(payload)
	if size > limit {
		return nil, &FormatError{Tag: tag, Reason: fmt.Sprintf("decompressed size %d exceeds limit %d", size, limit)}
	}

	zr, err := zlib.NewReader(bytes.NewReader(payload[4:]))
	if err != nil {
		return nil, fmt.Errorf("opening zlib stream of %s: %w", tag, err)
	}
	defer zr.Close()

	out := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := io.Copy(out, io.LimitReader(zr, int64(size)+1)); err != nil {
		return nil, fmt.Errorf("inflating %s: %w", tag, err)
	}
	if out.Len() != int(size) {
		return nil, &LengthMismatchError{Record: tag, Tag: tag, Want: int(size), Got: out.Len()}
	}

	return out.Bytes(), nil
}

func deflate(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(payload))); err != nil {
		return nil, err
	}

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeRecord decodes a whole record as produced by EncodeRecord into rec.
// Compressed payloads are inflated first. Strings of localized archives are
// read as string table indexes.
func DecodeRecord(fam *Family, rec Record, b []byte, localized bool) error {
	tag := rec.Tag()
	if len(b) < 4+fam.HeaderSize {
		return &TruncatedStreamError{Tag: tag, Want: 4 + fam.HeaderSize, Got: len(b)}
	}
	if got := FourCC(b[:4]); got != tag {
		return Unexpected(tag, got, tag)
	}

	h, err := fam.decodeHeader(b[4 : 4+fam.HeaderSize])
	if err != nil {
		return err
	}
	payload := b[4+fam.HeaderSize:]
	switch n := len(payload); {
	case n < int(h.Size):
		return &TruncatedStreamError{Tag: tag, Want: int(h.Size), Got: n}
	case n > int(h.Size):
		return &LengthMismatchError{Record: tag, Tag: tag, Want: int(h.Size), Got: n}
	}
	if fam.Compression && h.Compressed() && len(payload) > 0 {
		if payload, err = inflate(tag, payload, math.MaxInt32); err != nil {
			return err
		}
	}

	*rec.Header() = h
	fr := NewFieldReader(fam, tag, payload)
	fr.Localized = localized
	return DecodeFields(rec, fr)
}
