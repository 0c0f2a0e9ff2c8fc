package esm

import (
	"errors"
	"fmt"

	"github.com/mr-karan/esmkit/internal/datafile"
)

var (
	// ErrEmptyKey marks a record without identity. Stores drop such records
	// silently, so it only shows up in debug logs.
	ErrEmptyKey = errors.New("empty key")
	// ErrNotFound is returned by lookups for keys that are not in a store.
	ErrNotFound = errors.New("record not found")
	// ErrLocked is returned when another process is writing the same archive.
	ErrLocked = datafile.ErrLocked
)

// FormatError reports a structural problem: bad magic, bad header length,
// an unexpected sub-record or an implausible length.
type FormatError struct {
	Tag    FourCC
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in %s: %s", e.Tag, e.Reason)
}

// TruncatedStreamError reports that the data ended before a declared length
// was satisfied.
type TruncatedStreamError struct {
	Tag  FourCC
	Want int
	Got  int
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("truncated %s: want %d bytes, only %d left", e.Tag, e.Want, e.Got)
}

// LengthMismatchError reports a declared sub-record length that does not fit
// the shape being decoded. When Bound is set Want is an upper limit.
type LengthMismatchError struct {
	Record FourCC
	Tag    FourCC
	Want   int
	Got    int
	Bound  bool
}

func (e *LengthMismatchError) Error() string {
	if e.Bound {
		return fmt.Sprintf("%s of %s: length %d exceeds %d", e.Tag, e.Record, e.Got, e.Want)
	}
	return fmt.Sprintf("%s of %s: length %d, want %d", e.Tag, e.Record, e.Got, e.Want)
}

// DuplicateSubRecordError reports a second occurrence of a sub-record that may
// appear only once.
type DuplicateSubRecordError struct {
	Record FourCC
	Tag    FourCC
}

func (e *DuplicateSubRecordError) Error() string {
	return fmt.Sprintf("%s has more than one %s sub-record", e.Record, e.Tag)
}

// MissingRequiredSubRecordError reports a mandatory sub-record absent at the
// end of the payload.
type MissingRequiredSubRecordError struct {
	Record FourCC
	Tag    FourCC
}

func (e *MissingRequiredSubRecordError) Error() string {
	return fmt.Sprintf("%s is missing required sub-record %s", e.Record, e.Tag)
}

// UnknownRecordTypeError is returned for unregistered record types when the
// reader runs with UnknownFail.
type UnknownRecordTypeError struct {
	Tag FourCC
}

func (e *UnknownRecordTypeError) Error() string {
	return fmt.Sprintf("unknown record type %s", e.Tag)
}

// ArchiveError wraps a read or write failure with the archive path and the
// offset just past the last record that was processed successfully.
type ArchiveError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ArchiveError) Error() string {
	path := e.Path
	if path == "" {
		path = "archive"
	}
	return fmt.Sprintf("%s: last good offset %d: %v", path, e.Offset, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// Unexpected builds the error for a sub-record that is not allowed at the
// current position of a record.
func Unexpected(record, got FourCC, want ...FourCC) error {
	if len(want) == 0 {
		return &FormatError{Tag: record, Reason: fmt.Sprintf("unexpected sub-record %s", got)}
	}
	return &FormatError{Tag: record, Reason: fmt.Sprintf("unexpected sub-record %s, want %v", got, want)}
}
