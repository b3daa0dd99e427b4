package devices

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStream(sectorCount int, sectorSize uint32) (*StreamDevice, *bytes.Reader) {
	data := make([]byte, int(sectorSize)*sectorCount)
	for i := range data {
		data[i] = byte(i)
	}
	r := bytes.NewReader(data)
	return NewStreamDevice(&seekableBuffer{data: data}, sectorSize, uint64(sectorCount)), r
}

// seekableBuffer is a minimal io.ReadWriteSeeker over a []byte, used only
// by this package's own tests.
type seekableBuffer struct {
	data []byte
	pos  int64
}

func (s *seekableBuffer) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, errEOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *seekableBuffer) Write(p []byte) (int, error) {
	n := copy(s.data[s.pos:], p)
	s.pos += int64(n)
	return n, nil
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		s.pos = offset
	case 1:
		s.pos += offset
	case 2:
		s.pos = int64(len(s.data)) + offset
	}
	return s.pos, nil
}

var errEOF = &eofError{}

type eofError struct{}

func (e *eofError) Error() string { return "EOF" }

func TestStreamDevice_ReadSectorReadsCorrectOffset(t *testing.T) {
	dev, _ := newTestStream(4, 16)

	buf := make([]byte, 16)
	n, err := dev.ReadSector(2, buf)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, byte(32), buf[0]) // sector 2 starts at byte offset 32
}

func TestStreamDevice_ReadSectorRejectsOutOfBounds(t *testing.T) {
	dev, _ := newTestStream(4, 16)
	_, err := dev.ReadSector(10, make([]byte, 16))
	require.Error(t, err)
}

func TestStreamDevice_ReadSectorRejectsUndersizedBuffer(t *testing.T) {
	dev, _ := newTestStream(4, 16)
	_, err := dev.ReadSector(0, make([]byte, 4))
	require.Error(t, err)
}

func TestStreamDevice_WriteThenReadRoundTrips(t *testing.T) {
	dev, _ := newTestStream(4, 16)

	payload := bytes.Repeat([]byte{0xAB}, 16)
	_, err := dev.WriteSector(1, payload)
	require.NoError(t, err)

	buf := make([]byte, 16)
	_, err = dev.ReadSector(1, buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf)
}
