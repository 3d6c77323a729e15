package trace

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Options controls how a trace file is opened.
type Options struct {
	// SkipLengthCheck accepts files whose record area is shorter than the
	// header declares. Missing records then fail when replay reaches them.
	SkipLengthCheck bool
}

// Trace is a trace file mapped read-only into the process.
type Trace struct {
	*View
	path    string
	mapping []byte
}

// Open maps the trace file at path. The mapping stays valid until Close.
func Open(path string, opts Options) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}
	size := info.Size()
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, header needs %d", ErrTruncated, path, size, HeaderSize)
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap failed: %s is too large to map (%d bytes)", path, size)
	}

	mapping, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	view, err := NewView(mapping, !opts.SkipLengthCheck)
	if err != nil {
		unix.Munmap(mapping)
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Trace{View: view, path: path, mapping: mapping}, nil
}

// Path returns the file the trace was opened from.
func (t *Trace) Path() string {
	return t.path
}

// Size returns the mapped size in bytes.
func (t *Trace) Size() int {
	return len(t.mapping)
}

// Close unmaps the file. The Trace must not be used afterwards.
func (t *Trace) Close() error {
	if t.mapping == nil {
		return nil
	}
	err := unix.Munmap(t.mapping)
	t.mapping = nil
	t.View = nil
	return err
}
