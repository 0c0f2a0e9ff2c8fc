package esm

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mr-karan/esmkit/internal/datafile"
	"github.com/zerodha/logf"
)

// Result summarises the read of one archive.
type Result struct {
	Path     string
	Header   ArchiveHeader
	Absorbed int            // New or changed records merged into stores.
	Records  int            // Records seen, decoded or not.
	Skipped  int            // Records and groups skipped by length.
	Groups   int            // Groups seen, opened or not.
	Counts   map[FourCC]int // Records seen per type.
	LastGood int64          // Offset after the last fully processed record.
	Document *Document      // Everything read, with WithCapture.
}

// Reader walks archives of one game and feeds their records to the handlers
// of the game's registry. Archives are read strictly one after the other;
// a Reader is not safe for concurrent use.
type Reader struct {
	db   Database
	fam  *Family
	reg  *Registry
	opts *Options
	lo   logf.Logger
}

// NewReader returns a reader for the archives of db.
func NewReader(db Database, cfgs ...Config) (*Reader, error) {
	opts, err := buildOptions(cfgs)
	if err != nil {
		return nil, err
	}

	return &Reader{
		db:   db,
		fam:  db.Family(),
		reg:  db.Registry(),
		opts: opts,
		lo:   opts.lo,
	}, nil
}

// scan is the state of one archive read.
type scan struct {
	src  io.ReadSeeker
	size int64
	pos  int64

	// Open groups and their end offsets, outermost first.
	groups []GroupHeader
	ends   []int64

	localized bool
}

// limit returns the offset reads must not cross: the end of the innermost
// open group, or the end of the file.
func (s *scan) limit() int64 {
	if len(s.ends) > 0 {
		return s.ends[len(s.ends)-1]
	}
	return s.size
}

func (s *scan) read(tag FourCC, n int) ([]byte, error) {
	if left := s.limit() - s.pos; int64(n) > left {
		return nil, &TruncatedStreamError{Tag: tag, Want: n, Got: int(left)}
	}

	b := make([]byte, n)
	got, err := io.ReadFull(s.src, b)
	s.pos += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &TruncatedStreamError{Tag: tag, Want: n, Got: got}
		}
		return nil, err
	}
	return b, nil
}

// skip seeks forward n bytes. It never seeks backward or past the limit.
func (s *scan) skip(tag FourCC, n int64) error {
	if left := s.limit() - s.pos; n < 0 || n > left {
		return &TruncatedStreamError{Tag: tag, Want: int(n), Got: int(left)}
	}
	if _, err := s.src.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("error skipping %s: %w", tag, err)
	}
	s.pos += n
	return nil
}

func (s *scan) enclosing() []GroupHeader {
	if len(s.groups) == 0 {
		return nil
	}
	return append([]GroupHeader(nil), s.groups...)
}

// ReadFile reads the archive at path.
func (rd *Reader) ReadFile(path string) (*Result, error) {
	df, err := datafile.Open(path)
	if err != nil {
		return nil, &ArchiveError{Path: path, Err: err}
	}
	defer df.Close()

	return rd.read(path, df, df.Size())
}

// Read reads an archive of size bytes from src.
func (rd *Reader) Read(src io.ReadSeeker, size int64) (*Result, error) {
	return rd.read("", src, size)
}

// ReadAll reads the archives in order and stops at the first failure. The
// results of the archives read so far are returned with the error.
func (rd *Reader) ReadAll(paths []string) ([]*Result, error) {
	results := make([]*Result, 0, len(paths))
	for _, p := range paths {
		res, err := rd.ReadFile(p)
		if err != nil {
			return results, err
		}
		rd.lo.Info("loaded archive", "path", p, "records", res.Records, "absorbed", res.Absorbed)
		results = append(results, res)
	}
	return results, nil
}

// ReadHeader decodes only the header of the archive at path.
func (rd *Reader) ReadHeader(path string) (ArchiveHeader, error) {
	df, err := datafile.Open(path)
	if err != nil {
		return nil, &ArchiveError{Path: path, Err: err}
	}
	defer df.Close()

	hdr, err := rd.readHeader(&scan{src: df, size: df.Size()})
	if err != nil {
		return nil, &ArchiveError{Path: path, Err: err}
	}
	return hdr, nil
}

func (rd *Reader) read(path string, src io.ReadSeeker, size int64) (*Result, error) {
	var (
		s   = &scan{src: src, size: size}
		res = &Result{Path: path, Counts: make(map[FourCC]int)}
	)

	hdr, err := rd.readHeader(s)
	if err != nil {
		return res, &ArchiveError{Path: path, Err: err}
	}
	res.Header = hdr
	res.LastGood = s.pos
	s.localized = hdr.Localized()

	var sink *[]Entry
	if rd.opts.capture {
		res.Document = &Document{Header: hdr}
		sink = &res.Document.Entries
	}

	for s.pos < s.size {
		n, err := rd.next(s, res, sink)
		if err != nil {
			rd.lo.Debug("archive read failed", "path", path, "offset", res.LastGood, "error", err)
			return res, &ArchiveError{Path: path, Offset: res.LastGood, Err: err}
		}
		res.Absorbed += n
	}

	rd.lo.Debug("read archive", "path", path, "records", res.Records, "groups", res.Groups,
		"skipped", res.Skipped, "absorbed", res.Absorbed)

	return res, nil
}

func (rd *Reader) readHeader(s *scan) (ArchiveHeader, error) {
	magic := rd.fam.Magic
	if s.size < int64(4+rd.fam.HeaderSize) {
		return nil, &FormatError{Tag: magic, Reason: fmt.Sprintf("archive of %d bytes is too short", s.size)}
	}

	b, err := s.read(magic, 4)
	if err != nil {
		return nil, err
	}
	var tag FourCC
	copy(tag[:], b)
	if tag != magic {
		return nil, &FormatError{Tag: tag, Reason: fmt.Sprintf("bad magic, want %s", magic)}
	}

	h, err := rd.readRecordHeader(s, tag)
	if err != nil {
		return nil, err
	}
	payload, err := s.read(tag, int(h.Size))
	if err != nil {
		return nil, err
	}

	hdr := rd.db.NewHeader()
	*hdr.Header() = h
	if err := DecodeFields(hdr, NewFieldReader(rd.fam, tag, payload)); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}

	return hdr, nil
}

func (rd *Reader) readRecordHeader(s *scan, tag FourCC) (RecordHeader, error) {
	b, err := s.read(tag, rd.fam.HeaderSize)
	if err != nil {
		return RecordHeader{}, err
	}
	h, err := rd.fam.decodeHeader(b)
	if err != nil {
		return RecordHeader{}, err
	}
	if h.Size > math.MaxInt32 {
		return RecordHeader{}, &FormatError{Tag: tag, Reason: fmt.Sprintf("implausible record length %d", int32(h.Size))}
	}
	return h, nil
}

// next processes the record or group at the current position.
func (rd *Reader) next(s *scan, res *Result, sink *[]Entry) (int, error) {
	b, err := s.read(rd.fam.Magic, 4)
	if err != nil {
		return 0, err
	}
	var tag FourCC
	copy(tag[:], b)

	var n int
	if rd.fam.Groups && tag == TagGRUP {
		n, err = rd.group(s, res, sink)
	} else {
		n, err = rd.record(s, tag, res, sink)
	}
	if err != nil {
		return n, err
	}
	res.LastGood = s.pos

	return n, nil
}

func (rd *Reader) record(s *scan, tag FourCC, res *Result, sink *[]Entry) (int, error) {
	hdr, err := rd.readRecordHeader(s, tag)
	if err != nil {
		return 0, err
	}
	res.Records++
	res.Counts[tag]++

	h, known := rd.reg.Handler(tag)
	if !known {
		switch rd.opts.unknown {
		case UnknownFail:
			return 0, &UnknownRecordTypeError{Tag: tag}
		case UnknownSkip:
			res.Skipped++
			return 0, s.skip(tag, int64(hdr.Size))
		}
	}

	if hdr.Size > rd.opts.maxRecordSize {
		return 0, &FormatError{Tag: tag, Reason: fmt.Sprintf("record size %d exceeds limit %d", hdr.Size, rd.opts.maxRecordSize)}
	}
	payload, err := s.read(tag, int(hdr.Size))
	if err != nil {
		return 0, err
	}

	if !known {
		g := NewGenericRecord(tag)
		g.RecordHeader = hdr
		g.Data = payload
		if sink != nil {
			*sink = append(*sink, Entry{Record: g})
		}
		return 0, nil
	}

	if rd.fam.Compression && hdr.Compressed() && len(payload) > 0 {
		if payload, err = inflate(tag, payload, rd.opts.maxRecordSize); err != nil {
			return 0, err
		}
	}

	fr := NewFieldReader(rd.fam, tag, payload)
	fr.Localized = s.localized
	rec, outcome, err := h.Absorb(&Input{Header: hdr, Fields: fr, Groups: s.enclosing()})
	if err != nil {
		return 0, fmt.Errorf("decoding %s record: %w", tag, err)
	}
	if sink != nil {
		*sink = append(*sink, Entry{Record: rec})
	}

	return outcome.Count(), nil
}

func (rd *Reader) group(s *scan, res *Result, sink *[]Entry) (int, error) {
	start := s.pos - 4
	b, err := s.read(TagGRUP, GroupHeaderSize-4)
	if err != nil {
		return 0, err
	}
	gh, err := decodeGroupHeader(b)
	if err != nil {
		return 0, err
	}
	if gh.Size < GroupHeaderSize {
		return 0, &FormatError{Tag: TagGRUP, Reason: fmt.Sprintf("group size %d is below header size", gh.Size)}
	}
	end := start + int64(gh.Size)
	if end > s.limit() {
		return 0, &TruncatedStreamError{Tag: TagGRUP, Want: int(gh.Size), Got: int(s.limit() - start)}
	}
	res.Groups++

	if !rd.needGroup(gh, s.groups) {
		res.Skipped++
		return 0, s.skip(TagGRUP, end-s.pos)
	}

	var child *[]Entry
	if sink != nil {
		g := &Group{Header: gh}
		*sink = append(*sink, Entry{Group: g})
		child = &g.Entries
	}

	s.groups = append(s.groups, gh)
	s.ends = append(s.ends, end)
	defer func() {
		s.groups = s.groups[:len(s.groups)-1]
		s.ends = s.ends[:len(s.ends)-1]
	}()

	total := 0
	for s.pos < end {
		n, err := rd.next(s, res, child)
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// needGroup decides whether a group is opened. Without a filter, top level
// groups of unregistered types are skipped unless unknown records are kept
// or fail the read.
func (rd *Reader) needGroup(g GroupHeader, parents []GroupHeader) bool {
	if rd.opts.groupFilter != nil {
		return rd.opts.groupFilter(g, parents)
	}
	if rd.opts.unknown != UnknownSkip || !g.IsTop() {
		return true
	}
	return rd.reg.Has(g.Label)
}

// Detect returns the family of the archive at path from its magic.
func Detect(path string) (*Family, error) {
	df, err := datafile.Open(path)
	if err != nil {
		return nil, err
	}
	defer df.Close()

	var magic FourCC
	if _, err := io.ReadFull(df, magic[:]); err != nil {
		return nil, &FormatError{Tag: magic, Reason: "archive too short"}
	}
	return FamilyByMagic(magic)
}
