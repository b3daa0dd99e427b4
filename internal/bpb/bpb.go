// Package bpb parses the FAT32 BIOS Parameter Block / Extended BPB: the
// 512-byte boot sector at the start of a FAT32 partition.
package bpb

import (
	"encoding/binary"
	"fmt"
	"syscall"

	fserrors "github.com/vfatfs/gofat32/errors"
	multierror "github.com/hashicorp/go-multierror"
)

// sectorReader is the minimal slice of vfat.BlockDevice the BPB parser
// needs.
type sectorReader interface {
	ReadSector(n uint64, buf []byte) (int, error)
}

const sectorSize = 512

// EBPB holds the fields of the boot sector that gofat32 needs to compute
// partition geometry.
type EBPB struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	NumReservedSectors uint16
	NumFAT            uint8
	sectorsPerFAT16   uint16
	sectorsPerFAT32   uint32
	RootCluster       uint32
}

// SectorsPerFAT returns the 16-bit field when it is nonzero (FAT12/16
// layout reused by some FAT32 formatters), otherwise the 32-bit field.
func (e *EBPB) SectorsPerFAT() uint32 {
	if e.sectorsPerFAT16 != 0 {
		return uint32(e.sectorsPerFAT16)
	}
	return e.sectorsPerFAT32
}

// Parse reads and validates the boot sector at `sector` of device.
func Parse(device sectorReader, sector uint64) (*EBPB, error) {
	buf := make([]byte, sectorSize)
	if _, err := device.ReadSector(sector, buf); err != nil {
		return nil, fserrors.NewDriverErrorWithMessage(syscall.EIO, "bpb: "+err.Error())
	}

	if buf[510] != 0x55 || buf[511] != 0xAA {
		return nil, fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "bpb: bad signature")
	}

	e := &EBPB{
		BytesPerSector:     binary.LittleEndian.Uint16(buf[11:13]),
		SectorsPerCluster:  buf[13],
		NumReservedSectors: binary.LittleEndian.Uint16(buf[14:16]),
		NumFAT:             buf[16],
		sectorsPerFAT16:    binary.LittleEndian.Uint16(buf[22:24]),
		sectorsPerFAT32:    binary.LittleEndian.Uint32(buf[36:40]),
		RootCluster:        binary.LittleEndian.Uint32(buf[44:48]),
	}

	return e, nil
}

// ValidateGeometry checks the invariants a BPB must satisfy combined
// with the partition's logical sector size and the device's physical
// sector size. Every violation is collected via
// github.com/hashicorp/go-multierror so a single malformed boot sector
// reports everything wrong with it, not just the first problem found.
func ValidateGeometry(e *EBPB, physicalSectorSize uint32) error {
	var result *multierror.Error

	if !isPowerOfTwo(uint32(e.BytesPerSector)) || e.BytesPerSector < 512 {
		result = multierror.Append(result, fmt.Errorf(
			"bytes_per_sector must be a power of two >= 512, got %d", e.BytesPerSector))
	}

	if !isPowerOfTwo(uint32(e.SectorsPerCluster)) {
		result = multierror.Append(result, fmt.Errorf(
			"sectors_per_cluster must be a power of two, got %d", e.SectorsPerCluster))
	}

	if uint32(e.BytesPerSector) < physicalSectorSize {
		result = multierror.Append(result, fmt.Errorf(
			"partition logical sector size %d is smaller than device physical sector size %d",
			e.BytesPerSector, physicalSectorSize))
	} else if physicalSectorSize > 0 && uint32(e.BytesPerSector)%physicalSectorSize != 0 {
		result = multierror.Append(result, fmt.Errorf(
			"partition logical sector size %d is not a multiple of device physical sector size %d",
			e.BytesPerSector, physicalSectorSize))
	}

	if e.NumFAT == 0 {
		result = multierror.Append(result, fmt.Errorf("num_fat must be nonzero"))
	}

	if result != nil {
		return fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "bpb: "+result.Error())
	}
	return nil
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}
