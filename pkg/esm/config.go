package esm

import (
	"fmt"
	"os"
	"time"

	"github.com/zerodha/logf"
)

const (
	// DefaultMaxRecordSize bounds the payload of a single record.
	DefaultMaxRecordSize = uint32(1 << 24) // 16MB.
)

// Unknown selects what the reader does with unregistered record types.
type Unknown int

const (
	// UnknownSkip seeks past the record using its declared length.
	UnknownSkip Unknown = iota
	// UnknownKeep keeps the record as a GenericRecord.
	UnknownKeep
	// UnknownFail aborts the read with UnknownRecordTypeError.
	UnknownFail
)

// ParseUnknown parses "skip", "keep" or "fail".
func ParseUnknown(s string) (Unknown, error) {
	switch s {
	case "", "skip":
		return UnknownSkip, nil
	case "keep":
		return UnknownKeep, nil
	case "fail":
		return UnknownFail, nil
	}
	return UnknownSkip, fmt.Errorf("invalid unknown record policy %q", s)
}

func (u Unknown) String() string {
	switch u {
	case UnknownKeep:
		return "keep"
	case UnknownFail:
		return "fail"
	}
	return "skip"
}

// GroupFilter decides whether a group is opened. parents are the enclosing
// groups, outermost first.
type GroupFilter func(g GroupHeader, parents []GroupHeader) bool

// Options represents configuration for reading and writing archives.
type Options struct {
	unknown       Unknown     // Policy for unregistered record types.
	capture       bool        // Keep a Document of everything read.
	maxRecordSize uint32      // Upper bound for record payloads.
	groupFilter   GroupFilter // Overrides the default group selection.
	modTime       time.Time   // Modification time set on written archives.
	lo            logf.Logger
}

// Config is a function on the Options for readers and writers.
// These are used to configure particular options.
type Config func(*Options) error

func DefaultOptions() *Options {
	return &Options{
		unknown:       UnknownSkip,
		maxRecordSize: DefaultMaxRecordSize,
		lo:            logf.New(logf.Opts{Writer: os.Stderr, Level: logf.InfoLevel, EnableCaller: true}),
	}
}

func buildOptions(cfgs []Config) (*Options, error) {
	opts := DefaultOptions()
	for _, cfg := range cfgs {
		if err := cfg(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func WithUnknown(u Unknown) Config {
	return func(o *Options) error {
		if o.capture && u != UnknownKeep {
			return fmt.Errorf("capture requires the keep policy, got %s", u)
		}
		o.unknown = u
		return nil
	}
}

// WithCapture keeps every record and group read in Result.Document so the
// archive can be written back. Unknown records are kept.
func WithCapture() Config {
	return func(o *Options) error {
		o.capture = true
		o.unknown = UnknownKeep
		return nil
	}
}

func WithMaxRecordSize(size uint32) Config {
	return func(o *Options) error {
		if size == 0 {
			return fmt.Errorf("max record size must be positive")
		}
		o.maxRecordSize = size
		return nil
	}
}

func WithGroupFilter(fn GroupFilter) Config {
	return func(o *Options) error {
		o.groupFilter = fn
		return nil
	}
}

// WithModTime sets the modification time of written archives, which decides
// their position in the load order.
func WithModTime(t time.Time) Config {
	return func(o *Options) error {
		o.modTime = t
		return nil
	}
}

func WithLogger(lo logf.Logger) Config {
	return func(o *Options) error {
		o.lo = lo
		return nil
	}
}
