// Package sectorcache bridges a block device's physical sector size to a
// FAT32 partition's (possibly larger) logical sector size, and memoizes
// reads so the FAT engine and directory decoder don't re-read the same
// physical sectors on every lookup.
//
// The cache itself is demand-loaded, one entry per virtual sector: a
// FAT32 partition can span many gigabytes, and preallocating a buffer for
// every logical sector up front isn't viable.
package sectorcache

import "fmt"

// Device is the minimal physical-sector I/O the cache needs.
type Device interface {
	SectorSize() uint32
	ReadSector(n uint64, buf []byte) (int, error)
}

// Partition describes where, on the physical device, the mounted partition
// begins, and the logical sector size it uses.
type Partition struct {
	// Start is the first physical sector of the partition (the MBR's
	// relative_sector field).
	Start uint64
	// SectorSize is the partition's logical sector size, in bytes.
	SectorSize uint32
}

type cacheEntry struct {
	data  []byte
	dirty bool
}

// Cache holds demand-loaded logical sectors for a single mounted partition.
type Cache struct {
	device             Device
	partition          Partition
	physicalSectorSize uint32
	entries            map[uint64]*cacheEntry
}

// New constructs a Cache. It refuses construction if the partition's
// logical sector size is smaller than the device's physical sector size.
func New(device Device, partition Partition) (*Cache, error) {
	physical := device.SectorSize()
	if partition.SectorSize < physical {
		return nil, fmt.Errorf(
			"logical sector size %d is smaller than physical sector size %d",
			partition.SectorSize, physical)
	}

	return &Cache{
		device:             device,
		partition:          partition,
		physicalSectorSize: physical,
		entries:            make(map[uint64]*cacheEntry),
	}, nil
}

// translate maps a virtual (logical) sector number to the physical sector
// range backing it.
func (c *Cache) translate(virtual uint64) (physicalStart uint64, span uint32) {
	if c.physicalSectorSize == c.partition.SectorSize || virtual < c.partition.Start {
		return virtual, 1
	}

	factor := c.partition.SectorSize / c.physicalSectorSize
	logicalOffset := virtual - c.partition.Start
	physicalOffset := logicalOffset * uint64(factor)
	return c.partition.Start + physicalOffset, factor
}

func (c *Cache) load(virtual uint64) (*cacheEntry, error) {
	if entry, ok := c.entries[virtual]; ok {
		return entry, nil
	}

	physicalStart, span := c.translate(virtual)
	buf := make([]byte, c.partition.SectorSize)

	if span == 1 {
		if _, err := c.device.ReadSector(physicalStart, buf); err != nil {
			return nil, err
		}
	} else {
		for i := uint32(0); i < span; i++ {
			offset := uint64(i) * uint64(c.physicalSectorSize)
			if _, err := c.device.ReadSector(physicalStart+uint64(i), buf[offset:offset+uint64(c.physicalSectorSize)]); err != nil {
				return nil, err
			}
		}
	}

	entry := &cacheEntry{data: buf}
	c.entries[virtual] = entry
	return entry, nil
}

// Get returns the cached logical sector buffer for virtual sector v,
// reading it from the device on a cache miss.
func (c *Cache) Get(v uint64) ([]byte, error) {
	entry, err := c.load(v)
	if err != nil {
		return nil, err
	}
	return entry.data, nil
}

// GetMut is identical to Get, except it marks the entry dirty. The
// read-only driver never flushes dirty sectors back to the device;
// dirtiness is recorded only for forward compatibility with a future
// write path.
func (c *Cache) GetMut(v uint64) ([]byte, error) {
	entry, err := c.load(v)
	if err != nil {
		return nil, err
	}
	entry.dirty = true
	return entry.data, nil
}

// LogicalSectorSize returns the partition's logical sector size.
func (c *Cache) LogicalSectorSize() uint32 {
	return c.partition.SectorSize
}

// BlockDevice adapts the cache to the vfat.BlockDevice surface: reads copy
// min(len(buf), sector size) bytes, writes refuse buffers smaller than the
// logical sector.
type BlockDevice struct {
	Cache *Cache
}

func (d BlockDevice) SectorSize() uint32 { return d.Cache.LogicalSectorSize() }

func (d BlockDevice) ReadSector(n uint64, buf []byte) (int, error) {
	sector, err := d.Cache.Get(n)
	if err != nil {
		return 0, err
	}
	nCopy := len(buf)
	if len(sector) < nCopy {
		nCopy = len(sector)
	}
	copy(buf, sector[:nCopy])
	return nCopy, nil
}

func (d BlockDevice) ReadAllSector(n uint64, buf *[]byte) error {
	sector, err := d.Cache.Get(n)
	if err != nil {
		return err
	}
	*buf = append(*buf, sector...)
	return nil
}

func (d BlockDevice) WriteSector(n uint64, buf []byte) (int, error) {
	if uint32(len(buf)) < d.Cache.LogicalSectorSize() {
		return 0, fmt.Errorf("buffer smaller than logical sector size %d", d.Cache.LogicalSectorSize())
	}
	sector, err := d.Cache.GetMut(n)
	if err != nil {
		return 0, err
	}
	copy(sector, buf)
	return len(sector), nil
}
