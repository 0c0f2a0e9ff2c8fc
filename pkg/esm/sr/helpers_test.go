package sr

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mr-karan/esmkit/pkg/esm"
)

// sub encodes a sub-record with a 16 bit length.
func sub(tag string, data string) string {
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(data)))
	return tag + string(n[:]) + data
}

// u32 returns v as four little-endian bytes.
func u32(v uint32) string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return string(b[:])
}

// record frames payload with a 24 byte record header.
func record(tag string, flags, formID uint32, payload string) string {
	return tag + u32(uint32(len(payload))) + u32(flags) + u32(formID) +
		u32(0) + "\x28\x00\x00\x00" + payload
}

// decode decodes a whole record of a non-localized archive.
func decode(t *testing.T, rec esm.Record, data string) error {
	t.Helper()
	return esm.DecodeRecord(fam, rec, []byte(data), false)
}

// encode encodes rec and fails the test on error.
func encode(t *testing.T, rec esm.Record) string {
	t.Helper()
	b, err := esm.EncodeRecord(fam, rec)
	require.NoError(t, err)
	return string(b)
}
