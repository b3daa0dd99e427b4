// Package gofat32 mounts a raw block device as a read-only FAT32 file
// system: it locates the first FAT32 partition via the Master Boot Record,
// parses that partition's BIOS Parameter Block, and exposes a
// path-addressed view of the files and directories it contains.
//
// Writing (files, directories, timestamps), FAT12/FAT16, journaling, and
// concurrent multi-mount access are out of scope; see the vfat package for
// the implementation.
package gofat32

import "github.com/vfatfs/gofat32/vfat"

// BlockDevice is everything gofat32 needs from the underlying storage. It
// reads and, optionally, writes whole physical sectors; gofat32 itself never
// calls WriteSector since it never mutates a mounted volume. Defined in
// package vfat (the package that actually consumes it); aliased here so
// callers can write gofat32.BlockDevice without reaching into the
// subpackage.
type BlockDevice = vfat.BlockDevice

// Entry is anything found by Open or yielded by a directory's Entries: a
// File or a Dir.
type Entry = vfat.Entry

// File is a read-only handle to a regular file's contents.
type File = vfat.File

// Dir is a read-only handle to a directory's children.
type Dir = vfat.Dir

// VFat is a mounted volume, returned by Mount.
type VFat = vfat.VFat

// Mount parses device's MBR, locates its first FAT32 partition, and returns
// a handle to the volume's root directory context. It fails with a
// *errors.DriverError if the MBR signature is invalid, a partition's boot
// indicator is unrecognized, no FAT32 partition exists, or the partition's
// BPB is malformed.
func Mount(device BlockDevice) (*vfat.VFat, error) {
	return vfat.Mount(device)
}
