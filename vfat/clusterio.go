package vfat

import (
	"syscall"

	"github.com/noxer/bytewriter"
	fserrors "github.com/vfatfs/gofat32/errors"
)

// clusterSize is the number of bytes in one cluster.
func (v *VFat) clusterSize() int {
	return int(v.sectorsPerCluster) * int(v.bytesPerSector)
}

// readCluster copies one whole cluster's bytes into dst, which must be
// exactly clusterSize() bytes long.
func (v *VFat) readCluster(c ClusterID, dst []byte) error {
	if len(dst) != v.clusterSize() {
		return fserrors.NewDriverErrorWithMessage(syscall.EINVAL, "vfat: readCluster buffer has wrong size")
	}

	w := bytewriter.New(dst)
	start := v.clusterSector(c)

	for i := uint8(0); i < v.sectorsPerCluster; i++ {
		sector, err := v.cache.Get(start + uint64(i))
		if err != nil {
			return fserrors.NewDriverErrorWithMessage(syscall.EIO, "vfat: "+err.Error())
		}
		if _, err := w.Write(sector); err != nil {
			return fserrors.NewDriverErrorWithMessage(syscall.EIO, "vfat: "+err.Error())
		}
	}
	return nil
}

// readChain reads every cluster in the chain starting at start, in order,
// concatenating their bytes. It is the basis for both file
// reads and directory enumeration. The result always spans whole clusters:
// file reads stop at the file's recorded size, and directory parsing stops
// at the end-of-directory marker.
func (v *VFat) readChain(start ClusterID) ([]byte, error) {
	var out []byte
	clusterSize := v.clusterSize()

	err := v.fat.chainClusters(start, v.totalClusters, func(c ClusterID) error {
		chunk := make([]byte, clusterSize)
		if err := v.readCluster(c, chunk); err != nil {
			return err
		}
		out = append(out, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
