package vfat

import (
	"encoding/binary"
	"fmt"
	"syscall"

	"github.com/boljen/go-bitmap"
	fserrors "github.com/vfatfs/gofat32/errors"
)

// Status classifies a FAT entry's low 28 bits.
type Status int

const (
	StatusUnused Status = iota
	StatusReserved
	StatusData
	StatusBad
	StatusEoc
)

// FatEntry is a decoded 32-bit FAT table entry.
type FatEntry struct {
	Status Status

	// Next is the next cluster in the chain; only meaningful when
	// Status == StatusData.
	Next ClusterID

	// EocMarker is the raw low-28-bit value that signaled end-of-chain;
	// only meaningful when Status == StatusEoc.
	EocMarker uint32
}

// decodeFatEntry classifies the low 28 bits of a raw 32-bit FAT word.
func decodeFatEntry(raw uint32) FatEntry {
	low28 := raw & 0x0FFFFFFF

	switch {
	case low28 == 0x0000000:
		return FatEntry{Status: StatusUnused}
	case low28 == 0x0000001:
		return FatEntry{Status: StatusReserved}
	case low28 >= 0x0000002 && low28 <= 0x0FFFFFEF:
		return FatEntry{Status: StatusData, Next: ClusterID(low28)}
	case low28 >= 0x0FFFFFF0 && low28 <= 0x0FFFFFF6:
		return FatEntry{Status: StatusReserved}
	case low28 == 0x0FFFFFF7:
		return FatEntry{Status: StatusBad}
	default: // 0x0FFFFFF8 ..= 0x0FFFFFFF
		return FatEntry{Status: StatusEoc, EocMarker: low28}
	}
}

// fatEngine decodes FAT32 table entries through the sector cache and walks
// cluster chains.
type fatEngine struct {
	cache          sectorGetter
	bytesPerSector uint32
	fatStart       uint64
}

// sectorGetter is the slice of the sector cache the FAT engine needs.
type sectorGetter interface {
	Get(v uint64) ([]byte, error)
}

// entriesPerSector is bytes_per_sector / 4: each FAT32 entry is 4 bytes.
func (e *fatEngine) entriesPerSector() uint32 {
	return e.bytesPerSector / 4
}

// fatEntry looks up the FAT entry for cluster c.
func (e *fatEngine) fatEntry(c ClusterID) (FatEntry, error) {
	entriesPerSector := e.entriesPerSector()
	sector := e.fatStart + uint64(uint32(c)/entriesPerSector)
	index := uint32(c) % entriesPerSector

	data, err := e.cache.Get(sector)
	if err != nil {
		return FatEntry{}, fserrors.NewDriverErrorWithMessage(syscall.EIO, "fat: "+err.Error())
	}

	offset := index * 4
	raw := binary.LittleEndian.Uint32(data[offset : offset+4])
	return decodeFatEntry(raw), nil
}

// chainClusters walks the cluster chain starting at `start`, calling visit
// for each cluster in order, and stops at the first Eoc entry. A Bad or
// Reserved entry reached mid-chain fails with an unreadable-cluster error.
// A `visited` bitmap, allocated on each call and sized to totalClusters+2
// (cluster numbers 0 through totalClusters+1), guards against a corrupt
// FAT looping back on itself; total cluster count comes from the mounted
// volume's geometry.
func (e *fatEngine) chainClusters(start ClusterID, totalClusters uint32, visit func(ClusterID) error) error {
	visited := bitmap.New(int(totalClusters) + 2)
	cur := start

	for {
		idx := int(cur)
		if idx >= 0 && idx < int(totalClusters)+2 {
			if visited.Get(idx) {
				return fserrors.NewDriverErrorWithMessage(syscall.EIO,
					fmt.Sprintf("fat: cluster chain revisits cluster %d (corrupt FAT)", cur))
			}
			visited.Set(idx, true)
		}

		if err := visit(cur); err != nil {
			return err
		}

		entry, err := e.fatEntry(cur)
		if err != nil {
			return err
		}

		switch entry.Status {
		case StatusData:
			cur = entry.Next
		case StatusEoc:
			return nil
		default:
			return fserrors.NewDriverErrorWithMessage(syscall.EIO,
				fmt.Sprintf("fat: cluster %d is unreadable (status %d)", cur, entry.Status))
		}
	}
}
