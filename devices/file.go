package devices

import (
	"io"
	"os"
)

// OpenFile opens path read-only and returns a StreamDevice over it with the
// given physical sector size. The total sector count is derived from the
// file's size, rounded down.
func OpenFile(path string, sectorSize uint32) (*StreamDevice, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, err
	}

	totalSectors := uint64(size) / uint64(sectorSize)
	return NewStreamDevice(f, sectorSize, totalSectors), f, nil
}
