// Command gofat32ls mounts a raw FAT32 disk image and lists or dumps the
// files inside it, without ever writing to the image.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"

	"github.com/vfatfs/gofat32"
	"github.com/vfatfs/gofat32/devices"
)

// entryRow is one line of `ls --format=csv` output.
type entryRow struct {
	Name      string `csv:"name"`
	Directory bool   `csv:"directory"`
	SizeBytes uint32 `csv:"size_bytes"`
	ReadOnly  bool   `csv:"read_only"`
	Hidden    bool   `csv:"hidden"`
	Modified  string `csv:"modified"`
}

func main() {
	app := &cli.App{
		Name:  "gofat32ls",
		Usage: "Inspect a raw FAT32 disk image read-only",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Required: true, Usage: "path to the raw disk image"},
			&cli.Uint64Flag{Name: "sector-size", Value: 512, Usage: "physical sector size of the image"},
		},
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "list a directory's children",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "text", Usage: "text or csv"},
				},
				Action: listDirectory,
			},
			{
				Name:      "cat",
				Usage:     "print a file's contents to stdout",
				ArgsUsage: "PATH",
				Action:    catFile,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("gofat32ls: %s", err.Error())
	}
}

func mountFromContext(c *cli.Context) (*gofat32.VFat, *os.File, error) {
	imagePath := c.String("image")
	sectorSize := uint32(c.Uint64("sector-size"))

	device, f, err := devices.OpenFile(imagePath, sectorSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", imagePath, err)
	}

	vfat, err := gofat32.Mount(device)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mount %s: %w", imagePath, err)
	}
	return vfat, f, nil
}

func listDirectory(c *cli.Context) error {
	path := c.Args().First()

	vfat, f, err := mountFromContext(c)
	if err != nil {
		return err
	}
	defer f.Close()

	var target gofat32.Entry
	if path == "" || path == "/" {
		target = vfat.Root()
	} else {
		target, err = vfat.Open(path)
		if err != nil {
			return err
		}
	}

	dir, ok := target.AsDir()
	if !ok {
		return fmt.Errorf("%s: not a directory", path)
	}

	entries, err := dir.Entries()
	if err != nil {
		return err
	}

	if c.String("format") == "csv" {
		rows := make([]*entryRow, 0, len(entries))
		for _, e := range entries {
			meta := e.Metadata()
			_, isDir := e.AsDir()
			rows = append(rows, &entryRow{
				Name:      e.Name(),
				Directory: isDir,
				SizeBytes: meta.Size,
				ReadOnly:  meta.ReadOnly(),
				Hidden:    meta.Hidden(),
				Modified:  meta.Modified.Format("2006-01-02 15:04:05"),
			})
		}
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	for _, e := range entries {
		kind := "-"
		if _, ok := e.AsDir(); ok {
			kind = "d"
		}
		fmt.Printf("%s %10d %s\n", kind, e.Metadata().Size, e.Name())
	}
	return nil
}

func catFile(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("cat requires a path")
	}

	vfat, f, err := mountFromContext(c)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := vfat.Open(path)
	if err != nil {
		return err
	}

	file, ok := entry.AsFile()
	if !ok {
		return fmt.Errorf("%s: is a directory", path)
	}

	_, err = io.Copy(os.Stdout, file)
	return err
}
