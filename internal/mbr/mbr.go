// Package mbr parses the Master Boot Record: the 512-byte partition table
// at sector 0 of a block device. Fields are decoded explicitly,
// little-endian byte range by byte range, rather than via an unsafe
// struct overlay.
package mbr

import (
	"encoding/binary"
	"syscall"

	fserrors "github.com/vfatfs/gofat32/errors"
)

// sectorReader is the minimal slice of vfat.BlockDevice the MBR parser
// needs. Any BlockDevice implementation satisfies it automatically.
type sectorReader interface {
	ReadSector(n uint64, buf []byte) (int, error)
}

const (
	sectorSize        = 512
	bootstrapSize     = 436
	diskIDSize        = 10
	partitionEntrySize = 16
	partitionCount    = 4

	// FAT32 partition type bytes.
	PartitionTypeFAT32CHS = 0x0B
	PartitionTypeFAT32LBA = 0x0C
)

// PartitionEntry is one of the four 16-byte slots in the MBR partition
// table.
type PartitionEntry struct {
	BootIndicator  byte
	StartCHS       [3]byte
	PartitionType  byte
	EndCHS         [3]byte
	RelativeSector uint32
	TotalSectors   uint32
}

// IsFAT32 reports whether this entry's partition type marks it as a FAT32
// partition (type 0x0B or 0x0C).
func (p *PartitionEntry) IsFAT32() bool {
	return p.PartitionType == PartitionTypeFAT32CHS || p.PartitionType == PartitionTypeFAT32LBA
}

// MBR is the parsed contents of sector 0.
type MBR struct {
	DiskID         [diskIDSize]byte
	PartitionTable [partitionCount]PartitionEntry
}

// Parse reads and validates sector 0 of device. It fails with a
// *errors.DriverError carrying EIO on a read failure, EINVAL (via
// NewUnknownBootIndicatorError) if a partition's boot indicator is neither
// 0x00 nor 0x80, and EINVAL if the trailing 0x55 0xAA signature is missing.
func Parse(device sectorReader) (*MBR, error) {
	buf := make([]byte, sectorSize)
	if _, err := device.ReadSector(0, buf); err != nil {
		return nil, fserrors.NewDriverErrorWithMessage(syscall.EIO, "mbr: "+err.Error())
	}

	if buf[510] != 0x55 || buf[511] != 0xAA {
		return nil, fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "mbr: bad signature")
	}

	m := &MBR{}
	copy(m.DiskID[:], buf[bootstrapSize:bootstrapSize+diskIDSize])

	tableStart := bootstrapSize + diskIDSize
	for i := 0; i < partitionCount; i++ {
		entryBuf := buf[tableStart+i*partitionEntrySize : tableStart+(i+1)*partitionEntrySize]

		bootIndicator := entryBuf[0]
		if bootIndicator != 0x00 && bootIndicator != 0x80 {
			return nil, fserrors.NewUnknownBootIndicatorError(i)
		}

		entry := PartitionEntry{
			BootIndicator: bootIndicator,
			PartitionType: entryBuf[4],
		}
		copy(entry.StartCHS[:], entryBuf[1:4])
		copy(entry.EndCHS[:], entryBuf[5:8])
		entry.RelativeSector = binary.LittleEndian.Uint32(entryBuf[8:12])
		entry.TotalSectors = binary.LittleEndian.Uint32(entryBuf[12:16])

		m.PartitionTable[i] = entry
	}

	return m, nil
}

// FirstFAT32 returns the first partition table entry marked as FAT32, or nil
// if none exists.
func (m *MBR) FirstFAT32() *PartitionEntry {
	for i := range m.PartitionTable {
		if m.PartitionTable[i].IsFAT32() {
			return &m.PartitionTable[i]
		}
	}
	return nil
}
