package vfat

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFatEntry(t *testing.T) {
	cases := []struct {
		name   string
		raw    uint32
		status Status
	}{
		{"unused", 0x00000000, StatusUnused},
		{"reserved low", 0x00000001, StatusReserved},
		{"data", 0x00000005, StatusData},
		{"reserved high range", 0x0FFFFFF0, StatusReserved},
		{"bad", 0x0FFFFFF7, StatusBad},
		{"eoc", 0x0FFFFFFF, StatusEoc},
		{"eoc ignores top 4 bits", 0xFFFFFFFF, StatusEoc},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			entry := decodeFatEntry(c.raw)
			assert.Equal(t, c.status, entry.Status)
		})
	}
}

func TestDecodeFatEntry_DataCarriesNextCluster(t *testing.T) {
	entry := decodeFatEntry(42)
	assert.Equal(t, StatusData, entry.Status)
	assert.EqualValues(t, 42, entry.Next)
}

type fakeSectorCache struct {
	sectors map[uint64][]byte
}

func (f *fakeSectorCache) Get(v uint64) ([]byte, error) {
	return f.sectors[v], nil
}

func newFatSector(entries ...uint32) []byte {
	buf := make([]byte, 512)
	for i, e := range entries {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], e)
	}
	return buf
}

func TestChainClusters_WalksUntilEoc(t *testing.T) {
	fat := newFatSector(0, 0, 3, 4, 0x0FFFFFFF)
	e := &fatEngine{
		cache:          &fakeSectorCache{sectors: map[uint64][]byte{0: fat}},
		bytesPerSector: 512,
		fatStart:       0,
	}

	var visited []ClusterID
	err := e.chainClusters(2, 10, func(c ClusterID) error {
		visited = append(visited, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []ClusterID{2, 3, 4}, visited)
}

func TestChainClusters_DetectsCycle(t *testing.T) {
	// Cluster 2 points to 3, cluster 3 points back to 2: a corrupt loop.
	fat := newFatSector(0, 0, 3, 2)
	e := &fatEngine{
		cache:          &fakeSectorCache{sectors: map[uint64][]byte{0: fat}},
		bytesPerSector: 512,
		fatStart:       0,
	}

	err := e.chainClusters(2, 10, func(c ClusterID) error { return nil })
	require.Error(t, err)
}

func TestChainClusters_BadClusterIsUnreadable(t *testing.T) {
	fat := newFatSector(0, 0, 0x0FFFFFF7)
	e := &fatEngine{
		cache:          &fakeSectorCache{sectors: map[uint64][]byte{0: fat}},
		bytesPerSector: 512,
		fatStart:       0,
	}

	err := e.chainClusters(2, 10, func(c ClusterID) error { return nil })
	require.Error(t, err)
}
