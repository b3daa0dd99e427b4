package vfat

import (
	"strings"
	"syscall"

	fserrors "github.com/vfatfs/gofat32/errors"
)

// open resolves a slash-separated path against v's root directory. An
// empty path, or "/", resolves to the root directory itself.
// Each intermediate component must name a directory; the last component
// may be a file or a directory.
func open(v *VFat, path string) (Entry, error) {
	components := splitPath(path)

	var current Entry = v.Root()
	for _, component := range components {
		if component == "." || component == ".." {
			return nil, fserrors.NewDriverErrorWithMessage(syscall.EINVAL,
				"vfat: \"current\" and \"parent\" path components are not supported")
		}

		dir, ok := current.AsDir()
		if !ok {
			return nil, fserrors.NewDriverErrorWithMessage(syscall.ENOENT,
				"vfat: "+component+": not found")
		}

		next, err := dir.Find(component)
		if err != nil {
			return nil, err
		}

		current = next
	}

	return current, nil
}

func splitPath(path string) []string {
	var out []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
