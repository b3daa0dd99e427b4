package vfat

import (
	"syscall"

	fserrors "github.com/vfatfs/gofat32/errors"
)

// asciiEqualFold compares a and b ASCII-case-insensitively, leaving any
// non-ASCII bytes exact. LFN entries can contain arbitrary Unicode, and
// strings.EqualFold's Unicode-aware folding would be too permissive here.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Dir is a read-only handle to a FAT32 directory.
type Dir struct {
	name         string
	firstCluster ClusterID
	metadata     Metadata
	vfat         *VFat
}

var _ Entry = (*Dir)(nil)

func (d *Dir) Name() string       { return d.name }
func (d *Dir) Metadata() Metadata { return d.metadata }

func (d *Dir) AsFile() (*File, bool) { return nil, false }
func (d *Dir) AsDir() (*Dir, bool)   { return d, true }

// Entries returns every non-deleted entry in the directory, in on-disk
// order, with long file names reassembled.
func (d *Dir) Entries() ([]Entry, error) {
	data, err := d.vfat.readChain(d.firstCluster)
	if err != nil {
		return nil, err
	}

	var out []Entry
	err = parseDirents(data, func(name string, raw rawDirent) error {
		meta := raw.metadata()
		cluster := raw.clusterNumber()

		if raw.attr().Directory() {
			out = append(out, &Dir{
				name:         name,
				firstCluster: cluster,
				metadata:     meta,
				vfat:         d.vfat,
			})
		} else {
			out = append(out, &File{
				name:         name,
				firstCluster: cluster,
				metadata:     meta,
				size:         raw.fileSize(),
				vfat:         d.vfat,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Find looks up name among the directory's entries, case-insensitively
// (ASCII case-folding only). It returns NotFound if no entry matches.
func (d *Dir) Find(name string) (Entry, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if asciiEqualFold(e.Name(), name) {
			return e, nil
		}
	}

	return nil, fserrors.NewDriverErrorWithMessage(syscall.ENOENT, "vfat: "+name+": not found")
}
