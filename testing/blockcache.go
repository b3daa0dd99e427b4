package testing

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateRandomImage returns bytesPerBlock*totalBlocks random bytes, useful
// for building device fixtures where the exact content doesn't matter (MBR
// parsing failure tests, sector cache tests, etc.). It is guaranteed to
// either return a valid slice or fail the test and abort.
func CreateRandomImage(bytesPerBlock, totalBlocks uint, t *testing.T) []byte {
	backingData := make([]byte, bytesPerBlock*totalBlocks)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		totalBlocks,
		bytesPerBlock,
	)
	return backingData
}
