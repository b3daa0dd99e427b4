// Package vfat is the core of gofat32: the FAT engine, cluster I/O,
// directory decoder, file/directory facade, path resolver, and the VFat
// mount facade that owns them all. It implements read-only FAT32 with
// long file name support.
package vfat

import (
	"syscall"

	"github.com/vfatfs/gofat32/internal/bpb"
	"github.com/vfatfs/gofat32/internal/mbr"
	"github.com/vfatfs/gofat32/internal/sectorcache"

	fserrors "github.com/vfatfs/gofat32/errors"
)

// VFat owns the sector cache and partition geometry, and mediates every
// cluster, FAT, and directory request made against the mounted volume.
// Files and Directories hold a pointer back to it rather than owning any
// device resources themselves.
type VFat struct {
	cache *sectorcache.Cache
	fat   fatEngine

	bytesPerSector    uint32
	sectorsPerCluster uint8
	sectorsPerFAT     uint32
	fatStart          uint64
	dataStart         uint64
	rootDirCluster    ClusterID
	numFAT            uint8
	totalClusters     uint32
}

// Mount parses device's MBR, locates its first FAT32 partition, parses that
// partition's BPB, computes geometry, and constructs the sector cache.
func Mount(device BlockDevice) (*VFat, error) {
	m, err := mbr.Parse(device)
	if err != nil {
		return nil, err
	}

	partition := m.FirstFAT32()
	if partition == nil {
		return nil, fserrors.NewDriverErrorWithMessage(syscall.ENOENT, "vfat: no FAT32 partition found")
	}

	e, err := bpb.Parse(device, uint64(partition.RelativeSector))
	if err != nil {
		return nil, err
	}

	if err := bpb.ValidateGeometry(e, device.SectorSize()); err != nil {
		return nil, err
	}

	cache, err := sectorcache.New(device, sectorcache.Partition{
		Start:      uint64(partition.RelativeSector),
		SectorSize: uint32(e.BytesPerSector),
	})
	if err != nil {
		return nil, fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "vfat: "+err.Error())
	}

	fatStart := uint64(partition.RelativeSector) + uint64(e.NumReservedSectors)
	sectorsPerFAT := e.SectorsPerFAT()
	dataStart := fatStart + uint64(e.NumFAT)*uint64(sectorsPerFAT)

	totalPartitionSectors := uint64(partition.TotalSectors)
	var totalDataSectors uint64
	if totalPartitionSectors > dataStart-uint64(partition.RelativeSector) {
		totalDataSectors = totalPartitionSectors - (dataStart - uint64(partition.RelativeSector))
	}
	totalClusters := uint32(0)
	if e.SectorsPerCluster > 0 {
		totalClusters = uint32(totalDataSectors / uint64(e.SectorsPerCluster))
	}

	return &VFat{
		cache: cache,
		fat: fatEngine{
			cache:          cache,
			bytesPerSector: uint32(e.BytesPerSector),
			fatStart:       fatStart,
		},
		bytesPerSector:    uint32(e.BytesPerSector),
		sectorsPerCluster: e.SectorsPerCluster,
		sectorsPerFAT:     sectorsPerFAT,
		fatStart:          fatStart,
		dataStart:         dataStart,
		rootDirCluster:    ClusterID(e.RootCluster),
		numFAT:            e.NumFAT,
		totalClusters:     totalClusters,
	}, nil
}

// clusterSector returns the logical sector at which cluster c begins:
// data_start + (c-2) * sectors_per_cluster.
func (v *VFat) clusterSector(c ClusterID) uint64 {
	return v.dataStart + uint64(c.DataIndex())*uint64(v.sectorsPerCluster)
}

// Root returns a handle to the volume's root directory.
func (v *VFat) Root() *Dir {
	return &Dir{
		name:         "/",
		firstCluster: v.rootDirCluster,
		metadata:     Metadata{},
		vfat:         v,
	}
}

// Open resolves a slash-separated path starting from the root directory.
func (v *VFat) Open(path string) (Entry, error) {
	return open(v, path)
}

// CreateFile always fails: gofat32 is a read-only driver.
func (v *VFat) CreateFile(path string) (*File, error) {
	return nil, fserrors.ErrReadOnlyFileSystem
}

// CreateDir always fails: gofat32 is a read-only driver.
func (v *VFat) CreateDir(path string) (*Dir, error) {
	return nil, fserrors.ErrReadOnlyFileSystem
}

// Rename always fails: gofat32 is a read-only driver.
func (v *VFat) Rename(oldPath, newPath string) error {
	return fserrors.ErrReadOnlyFileSystem
}

// Remove always fails: gofat32 is a read-only driver.
func (v *VFat) Remove(path string) error {
	return fserrors.ErrReadOnlyFileSystem
}
