package bpb

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/vfatfs/gofat32/errors"
)

type fakeSectorReader struct {
	sectors map[uint64][]byte
}

func (f *fakeSectorReader) ReadSector(n uint64, buf []byte) (int, error) {
	sec := f.sectors[n]
	copy(buf, sec)
	return len(buf), nil
}

func validBootSector() []byte {
	sec := make([]byte, sectorSize)
	sec[510] = 0x55
	sec[511] = 0xAA
	binary.LittleEndian.PutUint16(sec[11:13], 512) // bytes_per_sector
	sec[13] = 8                                    // sectors_per_cluster
	binary.LittleEndian.PutUint16(sec[14:16], 32)  // num_reserved_sectors
	sec[16] = 2                                    // num_fat
	binary.LittleEndian.PutUint32(sec[36:40], 1000) // sectors_per_fat32
	binary.LittleEndian.PutUint32(sec[44:48], 2)    // root_cluster
	return sec
}

func TestParse_ValidBootSector(t *testing.T) {
	device := &fakeSectorReader{sectors: map[uint64][]byte{10: validBootSector()}}
	e, err := Parse(device, 10)
	require.NoError(t, err)

	assert.EqualValues(t, 512, e.BytesPerSector)
	assert.EqualValues(t, 8, e.SectorsPerCluster)
	assert.EqualValues(t, 32, e.NumReservedSectors)
	assert.EqualValues(t, 2, e.NumFAT)
	assert.EqualValues(t, 1000, e.SectorsPerFAT())
	assert.EqualValues(t, 2, e.RootCluster)
}

func TestParse_RejectsBadSignature(t *testing.T) {
	sec := validBootSector()
	sec[511] = 0x00
	device := &fakeSectorReader{sectors: map[uint64][]byte{0: sec}}
	_, err := Parse(device, 0)
	require.Error(t, err)
}

func TestSectorsPerFAT_PrefersFAT16FieldWhenNonzero(t *testing.T) {
	sec := validBootSector()
	binary.LittleEndian.PutUint16(sec[22:24], 42)
	device := &fakeSectorReader{sectors: map[uint64][]byte{0: sec}}
	e, err := Parse(device, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 42, e.SectorsPerFAT())
}

func TestValidateGeometry_AggregatesAllViolations(t *testing.T) {
	device := &fakeSectorReader{sectors: map[uint64][]byte{0: validBootSector()}}
	e, err := Parse(device, 0)
	require.NoError(t, err)

	e.BytesPerSector = 300 // not a power of two, below 512
	e.SectorsPerCluster = 3 // not a power of two
	e.NumFAT = 0

	err = ValidateGeometry(e, 512)
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.Contains(msg, "bytes_per_sector"))
	assert.True(t, strings.Contains(msg, "sectors_per_cluster"))
	assert.True(t, strings.Contains(msg, "num_fat"))
}

func TestValidateGeometry_AcceptsValidGeometry(t *testing.T) {
	device := &fakeSectorReader{sectors: map[uint64][]byte{0: validBootSector()}}
	e, err := Parse(device, 0)
	require.NoError(t, err)

	require.NoError(t, ValidateGeometry(e, 512))
}

func TestValidateGeometry_RejectsLogicalSmallerThanPhysical(t *testing.T) {
	device := &fakeSectorReader{sectors: map[uint64][]byte{0: validBootSector()}}
	e, err := Parse(device, 0)
	require.NoError(t, err)

	err = ValidateGeometry(e, 4096)
	require.Error(t, err)

	var de *fserrors.DriverError
	require.ErrorAs(t, err, &de)
}
