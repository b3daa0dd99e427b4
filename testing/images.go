// Package testing provides fixtures for building synthetic FAT32 disk
// images in memory, for use by this module's own tests. Rather than
// loading a prebuilt disk image from disk, it synthesizes a minimal image
// byte-for-byte so each test controls exactly the geometry, FAT chains,
// and directory entries it exercises.
package testing

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/vfatfs/gofat32/devices"
)

const (
	SectorSize = 512

	mbrPartitionTableOffset = 446
	mbrPartitionEntrySize   = 16
)

// ImageBuilder accumulates the pieces of a synthetic FAT32 disk image:
// one MBR, one partition starting right after it, a BPB/EBPB, NumFAT
// copies of the FAT, and a data region the caller populates cluster by
// cluster.
type ImageBuilder struct {
	t *testing.T

	bytesPerSector    uint16
	sectorsPerCluster uint8
	numFAT            uint8
	reservedSectors   uint16
	rootCluster       uint32

	partitionStartSector uint32
	fatStartSector       uint32
	sectorsPerFAT        uint32
	dataStartSector      uint32

	data []byte
}

// NewImageBuilder creates a builder for an image with the given geometry.
// totalClusters bounds the size of the FAT and the data region the builder
// allocates.
func NewImageBuilder(t *testing.T, sectorsPerCluster uint8, numFAT uint8, totalClusters uint32) *ImageBuilder {
	const bytesPerSector = SectorSize
	const reservedSectors = 32

	sectorsPerFAT := (totalClusters*4 + bytesPerSector - 1) / bytesPerSector
	if sectorsPerFAT == 0 {
		sectorsPerFAT = 1
	}

	partitionStart := uint32(1)
	fatStart := partitionStart + uint32(reservedSectors)
	dataStart := fatStart + uint32(numFAT)*sectorsPerFAT

	totalSectors := dataStart + totalClusters*uint32(sectorsPerCluster)
	data := make([]byte, uint64(totalSectors)*uint64(bytesPerSector))

	b := &ImageBuilder{
		t:                    t,
		bytesPerSector:       bytesPerSector,
		sectorsPerCluster:    sectorsPerCluster,
		numFAT:               numFAT,
		reservedSectors:      reservedSectors,
		rootCluster:          2,
		partitionStartSector: partitionStart,
		fatStartSector:       fatStart,
		sectorsPerFAT:        sectorsPerFAT,
		dataStartSector:      dataStart,
		data:                 data,
	}

	b.writeMBR()
	b.writeBPB()
	b.setFATEntry(b.rootCluster, 0x0FFFFFF8)
	return b
}

func (b *ImageBuilder) sector(n uint32) []byte {
	start := uint64(n) * uint64(b.bytesPerSector)
	return b.data[start : start+uint64(b.bytesPerSector)]
}

func (b *ImageBuilder) writeMBR() {
	sec := b.sector(0)
	sec[510] = 0x55
	sec[511] = 0xAA

	entry := sec[mbrPartitionTableOffset : mbrPartitionTableOffset+mbrPartitionEntrySize]
	entry[0] = 0x80 // boot indicator
	entry[4] = 0x0C // FAT32 LBA
	binary.LittleEndian.PutUint32(entry[8:12], b.partitionStartSector)
	binary.LittleEndian.PutUint32(entry[12:16], uint32(len(b.data))/uint32(b.bytesPerSector)-b.partitionStartSector)
}

func (b *ImageBuilder) writeBPB() {
	sec := b.sector(b.partitionStartSector)
	sec[510] = 0x55
	sec[511] = 0xAA

	binary.LittleEndian.PutUint16(sec[11:13], b.bytesPerSector)
	sec[13] = b.sectorsPerCluster
	binary.LittleEndian.PutUint16(sec[14:16], b.reservedSectors)
	sec[16] = b.numFAT
	binary.LittleEndian.PutUint16(sec[22:24], 0) // sectors_per_fat16, unused
	binary.LittleEndian.PutUint32(sec[36:40], b.sectorsPerFAT)
	binary.LittleEndian.PutUint32(sec[44:48], b.rootCluster)
}

// setFATEntry writes a raw 32-bit FAT entry for cluster in every FAT copy.
func (b *ImageBuilder) setFATEntry(cluster uint32, raw uint32) {
	entriesPerSector := uint32(b.bytesPerSector) / 4
	sectorOffset := cluster / entriesPerSector
	indexInSector := cluster % entriesPerSector

	for fat := uint8(0); fat < b.numFAT; fat++ {
		sectorNum := b.fatStartSector + uint32(fat)*b.sectorsPerFAT + sectorOffset
		sec := b.sector(sectorNum)
		binary.LittleEndian.PutUint32(sec[indexInSector*4:indexInSector*4+4], raw&0x0FFFFFFF)
	}
}

// LinkCluster marks cluster "from" as continuing to cluster "to" in the FAT.
func (b *ImageBuilder) LinkCluster(from, to uint32) {
	b.setFATEntry(from, to)
}

// TerminateChain marks cluster as the last in its chain (EOC).
func (b *ImageBuilder) TerminateChain(cluster uint32) {
	b.setFATEntry(cluster, 0x0FFFFFFF)
}

// ClusterData returns a mutable view of cluster's raw bytes in the data
// region, for the caller to populate with directory entries or file
// contents.
func (b *ImageBuilder) ClusterData(cluster uint32) []byte {
	require.GreaterOrEqual(b.t, cluster, uint32(2), "cluster 0 and 1 are reserved")
	clusterSize := uint64(b.sectorsPerCluster) * uint64(b.bytesPerSector)
	start := uint64(b.dataStartSector)*uint64(b.bytesPerSector) + uint64(cluster-2)*clusterSize
	return b.data[start : start+clusterSize]
}

// PackedDate packs a calendar date into the on-disk FAT32 representation.
func PackedDate(t time.Time) uint16 {
	return uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day())
}

// PackedTime packs a clock time into the on-disk FAT32 representation.
func PackedTime(t time.Time) uint16 {
	return uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
}

// WriteShortDirent writes one 32-byte regular (non-LFN) directory entry at
// entries[index*32:] with the given 8.3 name (exactly 11 bytes, space
// padded), attribute byte, starting cluster, and file size.
func WriteShortDirent(entries []byte, index int, name11 string, attr byte, cluster uint32, size uint32, when time.Time) {
	if len(name11) != 11 {
		panic("WriteShortDirent: name11 must be exactly 11 bytes")
	}
	slot := entries[index*32 : index*32+32]

	copy(slot[0:11], name11)
	slot[11] = attr

	date := PackedDate(when)
	clock := PackedTime(when)

	binary.LittleEndian.PutUint16(slot[14:16], clock) // ctime
	binary.LittleEndian.PutUint16(slot[16:18], date)  // cdate
	binary.LittleEndian.PutUint16(slot[18:20], date)  // adate
	binary.LittleEndian.PutUint16(slot[20:22], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(slot[22:24], clock) // mtime
	binary.LittleEndian.PutUint16(slot[24:26], date)  // mdate
	binary.LittleEndian.PutUint16(slot[26:28], uint16(cluster&0xFFFF))
	binary.LittleEndian.PutUint32(slot[28:32], size)
}

// Stream wraps the finished image as an io.ReadWriteSeeker backed by the
// in-memory buffer.
func (b *ImageBuilder) Stream() io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(b.data)
}

// Bytes returns the raw image bytes.
func (b *ImageBuilder) Bytes() []byte {
	return b.data
}

// Device wraps the finished image as a gofat32.BlockDevice with 512-byte
// physical sectors.
func (b *ImageBuilder) Device() *devices.StreamDevice {
	totalSectors := uint64(len(b.data)) / SectorSize
	return devices.NewStreamDevice(b.Stream(), SectorSize, totalSectors)
}
