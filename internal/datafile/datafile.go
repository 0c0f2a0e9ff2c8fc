package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	readBufferSize = 64 << 10
)

// DataFile is a read handle on an archive. It buffers reads, tracks the
// current offset and turns short forward seeks into buffer discards.
type DataFile struct {
	reader *os.File
	br     *bufio.Reader
	path   string

	size    int64
	modTime time.Time
	offset  int64
}

// Open opens the archive at path for reading.
func Open(path string) (*DataFile, error) {
	reader, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file for reading: %w", err)
	}

	// Get the size of the file, reads stop there.
	stat, err := reader.Stat()
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("error fetching file stats: %w", err)
	}

	df := &DataFile{
		reader:  reader,
		br:      bufio.NewReaderSize(reader, readBufferSize),
		path:    path,
		size:    stat.Size(),
		modTime: stat.ModTime(),
	}

	return df, nil
}

// Name returns the path the file was opened with.
func (d *DataFile) Name() string {
	return d.path
}

// Size returns the size of the file in bytes at open time.
func (d *DataFile) Size() int64 {
	return d.size
}

// ModTime returns the modification time of the file at open time.
func (d *DataFile) ModTime() time.Time {
	return d.modTime
}

// Offset returns the current read position.
func (d *DataFile) Offset() int64 {
	return d.offset
}

func (d *DataFile) Read(p []byte) (int, error) {
	n, err := d.br.Read(p)
	d.offset += int64(n)
	return n, err
}

// Seek moves the read position. Forward seeks that stay within the buffered
// data do not touch the file.
func (d *DataFile) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = d.offset + offset
	case io.SeekEnd:
		target = d.size + offset
	default:
		return d.offset, errors.New("invalid whence")
	}
	if target < 0 {
		return d.offset, errors.New("negative position")
	}

	if delta := target - d.offset; delta >= 0 && delta <= int64(d.br.Buffered()) {
		if _, err := d.br.Discard(int(delta)); err != nil {
			return d.offset, err
		}
		d.offset = target
		return target, nil
	}

	if _, err := d.reader.Seek(target, io.SeekStart); err != nil {
		return d.offset, err
	}
	d.br.Reset(d.reader)
	d.offset = target

	return target, nil
}

// Close closes the underlying file descriptor.
func (d *DataFile) Close() error {
	return d.reader.Close()
}
