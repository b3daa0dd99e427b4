package vfat

import (
	"io"
	"syscall"

	fserrors "github.com/vfatfs/gofat32/errors"
)

// File is a read-only handle to a FAT32 file's data. A File is not safe
// for concurrent use.
type File struct {
	name         string
	firstCluster ClusterID
	metadata     Metadata
	size         uint32
	vfat         *VFat

	pos  uint32
	data []byte // lazily populated by chain reads
}

var _ Entry = (*File)(nil)

func (f *File) Name() string       { return f.name }
func (f *File) Metadata() Metadata { return f.metadata }
func (f *File) Size() int64        { return int64(f.size) }

func (f *File) AsFile() (*File, bool) { return f, true }
func (f *File) AsDir() (*Dir, bool)   { return nil, false }

func (f *File) load() error {
	if f.data != nil || f.size == 0 {
		return nil
	}
	data, err := f.vfat.readChain(f.firstCluster)
	if err != nil {
		return err
	}
	f.data = data
	return nil
}

// Read implements io.Reader. A read at or past end-of-file returns
// (0, io.EOF).
func (f *File) Read(p []byte) (int, error) {
	if f.pos >= f.size {
		return 0, io.EOF
	}

	if err := f.load(); err != nil {
		return 0, err
	}

	remaining := f.size - f.pos
	n := uint32(len(p))
	if n > remaining {
		n = remaining
	}

	copy(p, f.data[f.pos:f.pos+n])
	f.pos += n

	var err error
	if f.pos >= f.size {
		err = io.EOF
	}
	return int(n), err
}

// Seek implements io.Seeker. A seek to the end of the file is allowed; a
// seek before the start or beyond the end returns an invalid-argument error.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var target int64

	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(f.pos) + offset
	case io.SeekEnd:
		target = int64(f.size) + offset
	default:
		return 0, fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "vfat: invalid whence")
	}

	if target < 0 || target > int64(f.size) {
		return 0, fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "vfat: invalid seek position")
	}

	f.pos = uint32(target)
	return target, nil
}
