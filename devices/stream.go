// Package devices provides gofat32.BlockDevice implementations: one over
// an os.File, and (via the testing package) one over an in-memory buffer.
// Both are built on StreamDevice, which adapts any io.ReadWriteSeeker with
// a fixed sector size to the BlockDevice surface.
package devices

import (
	"fmt"
	"io"
)

// StreamDevice adapts an io.ReadWriteSeeker to gofat32.BlockDevice, treating
// it as a flat sequence of fixed-size physical sectors.
type StreamDevice struct {
	sectorSize   uint32
	totalSectors uint64
	stream       io.ReadWriteSeeker
}

// NewStreamDevice wraps stream as a BlockDevice with the given sector size.
// totalSectors is used only for bounds checking; pass 0 to disable it.
func NewStreamDevice(stream io.ReadWriteSeeker, sectorSize uint32, totalSectors uint64) *StreamDevice {
	return &StreamDevice{
		sectorSize:   sectorSize,
		totalSectors: totalSectors,
		stream:       stream,
	}
}

func (d *StreamDevice) SectorSize() uint32 { return d.sectorSize }

func (d *StreamDevice) checkBounds(n uint64) error {
	if d.totalSectors != 0 && n >= d.totalSectors {
		return fmt.Errorf("sector %d out of range [0, %d)", n, d.totalSectors)
	}
	return nil
}

func (d *StreamDevice) seekToSector(n uint64) error {
	offset := int64(n) * int64(d.sectorSize)
	_, err := d.stream.Seek(offset, io.SeekStart)
	return err
}

// ReadSector reads exactly SectorSize() bytes starting at physical sector n
// into buf, which must be at least that long.
func (d *StreamDevice) ReadSector(n uint64, buf []byte) (int, error) {
	if err := d.checkBounds(n); err != nil {
		return 0, err
	}
	if uint32(len(buf)) < d.sectorSize {
		return 0, fmt.Errorf("buffer too small: need %d bytes, got %d", d.sectorSize, len(buf))
	}
	if err := d.seekToSector(n); err != nil {
		return 0, err
	}
	return io.ReadFull(d.stream, buf[:d.sectorSize])
}

// ReadAllSector reads sector n and appends it to buf.
func (d *StreamDevice) ReadAllSector(n uint64, buf *[]byte) error {
	sector := make([]byte, d.sectorSize)
	if _, err := d.ReadSector(n, sector); err != nil {
		return err
	}
	*buf = append(*buf, sector...)
	return nil
}

// WriteSector writes one sector's worth of buf at physical sector n. Nothing
// in gofat32's core ever calls this; it exists so a StreamDevice can be
// shared with a writable consumer outside this module.
func (d *StreamDevice) WriteSector(n uint64, buf []byte) (int, error) {
	if err := d.checkBounds(n); err != nil {
		return 0, err
	}
	if uint32(len(buf)) < d.sectorSize {
		return 0, fmt.Errorf("buffer too small: need %d bytes, got %d", d.sectorSize, len(buf))
	}
	if err := d.seekToSector(n); err != nil {
		return 0, err
	}
	return d.stream.Write(buf[:d.sectorSize])
}
