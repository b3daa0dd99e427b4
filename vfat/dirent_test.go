package vfat

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLFNSlot constructs one 32-byte LFN directory entry slot carrying up
// to 13 UTF-16LE code units of name at the given 1-based sequence number.
func buildLFNSlot(seq byte, units [13]uint16) []byte {
	slot := make([]byte, 32)
	slot[0] = seq
	for i := 0; i < 5; i++ {
		binary.LittleEndian.PutUint16(slot[1+i*2:], units[i])
	}
	slot[11] = byte(attrLFN)
	for i := 0; i < 6; i++ {
		binary.LittleEndian.PutUint16(slot[14+i*2:], units[5+i])
	}
	for i := 0; i < 2; i++ {
		binary.LittleEndian.PutUint16(slot[28+i*2:], units[11+i])
	}
	return slot
}

func utf16Units(s string, total int) [13]uint16 {
	var out [13]uint16
	for i := range out {
		out[i] = 0xFFFF
	}
	for i, r := range []rune(s) {
		if i >= total {
			break
		}
		out[i] = uint16(r)
	}
	return out
}

func buildShortSlot(name11 string, attr byte) []byte {
	slot := make([]byte, 32)
	copy(slot[0:11], name11)
	slot[11] = attr
	return slot
}

func TestParseDirents_ReassemblesLFNAcrossTwoSlots(t *testing.T) {
	name := "hello-world.txt"
	// slot 2 (seq 0x42 = last-in-order flag | 2) carries the tail.
	tailUnits := utf16Units(name[13:], 13)
	headUnits := utf16Units(name[:13], 13)

	data := append([]byte{}, buildLFNSlot(0x42, tailUnits)...)
	data = append(data, buildLFNSlot(0x01, headUnits)...)
	data = append(data, buildShortSlot("HELLO~1 TXT", 0x20)...)

	var got []string
	err := parseDirents(data, func(name string, e rawDirent) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, name, got[0])
}

func TestParseDirents_LFNOrderIndependent(t *testing.T) {
	name := "shuffled.txt"
	headUnits := utf16Units(name, 13)
	tailUnits := utf16Units("", 13)

	// Physical order reversed relative to the test above: still must
	// reassemble to the same string because position comes from seq, not
	// arrival order.
	data := append([]byte{}, buildLFNSlot(0x01, headUnits)...)
	data = append(data, buildLFNSlot(0x42, tailUnits)...)
	data = append(data, buildShortSlot("SHUFFLE TXT", 0x20)...)

	var got []string
	err := parseDirents(data, func(name string, e rawDirent) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, name, got[0])
}

func TestParseDirents_StopsAtFreeListTerminator(t *testing.T) {
	data := append([]byte{}, buildShortSlot("ONE     TXT", 0x20)...)
	terminator := make([]byte, 32) // seq == 0x00
	data = append(data, terminator...)
	data = append(data, buildShortSlot("TWO     TXT", 0x20)...)

	var got []string
	err := parseDirents(data, func(name string, e rawDirent) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ONE.TXT"}, got)
}

func TestParseDirents_SkipsTombstonedSlots(t *testing.T) {
	tombstone := buildShortSlot("DEL     TXT", 0x20)
	tombstone[0] = 0xE5

	data := append([]byte{}, tombstone...)
	data = append(data, buildShortSlot("LIVE    TXT", 0x20)...)

	var got []string
	err := parseDirents(data, func(name string, e rawDirent) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"LIVE.TXT"}, got)
}

func TestParseDirents_ShortNameTrimsTrailingSpaces(t *testing.T) {
	data := buildShortSlot("README  TXT", 0x20)

	var got []string
	err := parseDirents(data, func(name string, e rawDirent) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.TXT"}, got)
}

func TestParseDirents_ShortNameWithNoExtension(t *testing.T) {
	data := buildShortSlot("NOEXT      ", 0x10)

	var got []string
	err := parseDirents(data, func(name string, e rawDirent) error {
		got = append(got, name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NOEXT"}, got)
}
