package vfat

// ClusterID is an opaque FAT32 cluster number. 0 and 1 are reserved; the
// first data cluster is 2.
type ClusterID uint32

// DataIndex converts a cluster number to its zero-based index into the data
// region (cluster 2 is data index 0).
func (c ClusterID) DataIndex() uint32 {
	return uint32(c) - 2
}
