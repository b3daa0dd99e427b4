package vfat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// direntSize is the fixed size of every FAT directory entry slot.
const direntSize = 32

// rawDirent is one undecoded 32-byte directory entry slot.
type rawDirent []byte

func (r rawDirent) seq() byte   { return r[0] }
func (r rawDirent) attr() Attributes { return Attributes(r[11]) }

// isLFN reports whether this slot is a long-file-name fragment.
func (r rawDirent) isLFN() bool { return r.attr().isLFN() }

// lfnChars returns this slot's 13 UTF-16 code units, in order, drawn from
// the three discontiguous byte ranges an LFN slot packs them into (5 + 6 +
// 2 units).
func (r rawDirent) lfnChars() [13]uint16 {
	var out [13]uint16
	for i := 0; i < 5; i++ {
		out[i] = binary.LittleEndian.Uint16(r[1+i*2:])
	}
	for i := 0; i < 6; i++ {
		out[5+i] = binary.LittleEndian.Uint16(r[14+i*2:])
	}
	for i := 0; i < 2; i++ {
		out[11+i] = binary.LittleEndian.Uint16(r[28+i*2:])
	}
	return out
}

// lfnSeqIndex returns the zero-based slot position encoded in the low 5
// bits of seq, (seq & 0x1F) - 1; the slot's code units start at unit
// position * 13 of the reassembled name.
func (r rawDirent) lfnSeqIndex() int {
	return int(r.seq()&0x1F) - 1
}

func (r rawDirent) shortName() string {
	base := strings.TrimRight(string(r[0:8]), " ")
	ext := strings.TrimRight(string(r[8:11]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func (r rawDirent) clusterNumber() ClusterID {
	hi := binary.LittleEndian.Uint16(r[20:22])
	lo := binary.LittleEndian.Uint16(r[26:28])
	return ClusterID(uint32(hi)<<16 | uint32(lo))
}

func (r rawDirent) fileSize() uint32 {
	return binary.LittleEndian.Uint32(r[28:32])
}

func (r rawDirent) metadata() Metadata {
	ctime := Time(binary.LittleEndian.Uint16(r[14:16]))
	cdate := Date(binary.LittleEndian.Uint16(r[16:18]))
	adate := Date(binary.LittleEndian.Uint16(r[18:20]))
	mtime := Time(binary.LittleEndian.Uint16(r[22:24]))
	mdate := Date(binary.LittleEndian.Uint16(r[24:26]))

	return Metadata{
		Attr:     r.attr(),
		Size:     r.fileSize(),
		Created:  cdate.toTime(ctime),
		Accessed: adate.toMidnight(),
		Modified: mdate.toTime(mtime),
	}
}

var utf16leDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// decodeLFN transcodes a reassembled sequence of UTF-16LE code units,
// truncated at the first NUL or 0xFFFF pad unit, into a UTF-8 string. It
// fails if the truncated sequence contains an unpaired surrogate.
func decodeLFN(units []uint16) (string, error) {
	cut := len(units)
	for i, u := range units {
		if u == 0x0000 || u == 0xFFFF {
			cut = i
			break
		}
	}
	units = units[:cut]

	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xDC00 && u <= 0xDFFF {
			return "", fmt.Errorf("vfat: unpaired low surrogate at unit %d", i)
		}
		if u >= 0xD800 && u <= 0xDBFF {
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] > 0xDFFF {
				return "", fmt.Errorf("vfat: unpaired high surrogate at unit %d", i)
			}
			i++
		}
	}

	var buf bytes.Buffer
	for _, u := range units {
		if err := binary.Write(&buf, binary.LittleEndian, u); err != nil {
			return "", err
		}
	}

	out, err := utf16leDecoder.Bytes(buf.Bytes())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// parseDirents walks raw 32-byte directory entry slots starting at offset 0
// of data, reassembling any preceding run of LFN slots with the regular
// entry slot that terminates them, and calls visit with each resulting
// (name, rawDirent) pair. It stops at the first free-list terminator
// (seq == 0x00) and skips tombstoned slots (seq == 0xE5).
func parseDirents(data []byte, visit func(name string, entry rawDirent) error) error {
	const maxLFNUnits = 13 * 31
	lfnUnits := make([]uint16, maxLFNUnits)
	hasLFN := false

	for offset := 0; offset+direntSize <= len(data); offset += direntSize {
		entry := rawDirent(data[offset : offset+direntSize])

		if entry.seq() == 0x00 {
			return nil
		}
		if entry.seq() == 0xE5 {
			continue
		}

		if entry.isLFN() {
			hasLFN = true
			idx := entry.lfnSeqIndex()
			if idx >= 0 && idx < 31 {
				chars := entry.lfnChars()
				copy(lfnUnits[idx*13:idx*13+13], chars[:])
			}
			continue
		}

		name := entry.shortName()
		skip := false
		if hasLFN {
			decoded, err := decodeLFN(lfnUnits)
			if err != nil {
				// Invalid UTF-16 in the accumulated LFN slots: skip this
				// entry entirely rather than fail the whole listing.
				skip = true
			} else {
				name = decoded
			}
		}

		if !skip {
			if err := visit(name, entry); err != nil {
				return err
			}
		}

		hasLFN = false
		for i := range lfnUnits {
			lfnUnits[i] = 0
		}
	}
	return nil
}
