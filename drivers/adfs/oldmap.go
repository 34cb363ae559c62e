package adfs

import (
	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/disks"
	"github.com/dargueta/adfuse/drivers/common"
)

// OldMapSectorSize is the unit old map discs use for disc addresses, no matter
// what the physical sector size is.
const OldMapSectorSize = 256

// The free space map occupies the first two 256-byte sectors. Sector 0 holds
// the start addresses of free regions, sector 1 their lengths.
const (
	oldMapMaxFreeEntries  = 82
	oldMapDiscNameOffset0 = 0xF7
	oldMapDiscNameOffset1 = 0xF6
	oldMapDiscSizeOffset  = 0xFC
	oldMapDiscIDOffset    = 0xFB
	oldMapBootOffset      = 0xFD
	oldMapFreeEndOffset   = 0xFE
	oldMapChecksumOffset  = 0xFF
)

type oldAllocationMap struct {
	device *common.BlockStream
}

func (m oldAllocationMap) readObject(address uint32, length int) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	return m.device.ReadBytes(int64(address)*OldMapSectorSize, length)
}

// openOldMap reads the free space map, fills in the disc's geometry, and
// returns the disc address of the root directory.
func (d *decoder) openOldMap(disc *Disc, newDirectories bool) (uint32, error) {
	freeSpaceMap, err := d.device.Read(0, 2)
	if err != nil {
		return 0, adfuse.ErrInvalidFileSystem.Wrap(err)
	}

	sector0 := freeSpaceMap[:OldMapSectorSize]
	sector1 := freeSpaceMap[OldMapSectorSize:]

	if checksum := OldMapChecksum(sector0); checksum != sector0[oldMapChecksumOffset] {
		d.problem(
			"free space map sector 0: checksum is %#02x, expected %#02x",
			sector0[oldMapChecksumOffset],
			checksum)
	}
	if checksum := OldMapChecksum(sector1); checksum != sector1[oldMapChecksumOffset] {
		d.problem(
			"free space map sector 1: checksum is %#02x, expected %#02x",
			sector1[oldMapChecksumOffset],
			checksum)
	}

	freeEnd := int(sector1[oldMapFreeEndOffset])
	if freeEnd%3 != 0 || freeEnd/3 > oldMapMaxFreeEntries {
		d.problem("free space map: invalid end of list pointer %#02x", freeEnd)
		freeEnd = 0
	}
	for i := 0; i < freeEnd; i += 3 {
		disc.FreeSpace += uint64(ReadUint(sector1, i, 3)) * OldMapSectorSize
	}

	disc.DiscName = oldMapDiscName(sector0, sector1)
	disc.DiscID = uint16(ReadUint(sector1, oldMapDiscIDOffset, 2))
	disc.BootOption = sector1[oldMapBootOffset]

	discSectors := uint(ReadUint(sector0, oldMapDiscSizeOffset, 3))
	imageSectors := uint(d.device.Size() / OldMapSectorSize)
	if discSectors == 0 {
		d.problem("free space map: disc size is zero")
		discSectors = imageSectors
	} else if discSectors > imageSectors {
		d.problem(
			"image holds %d sectors but the disc is %d sectors long",
			imageSectors,
			discSectors)
	}

	d.objects = oldAllocationMap{device: d.device}

	if newDirectories {
		geometry, _ := disks.FindGeometryByDiscType("adD")
		d.layout = newDirectoryLayout
		applyGeometry(disc, geometry)
		return uint32(geometry.RootDirectory / OldMapSectorSize), nil
	}

	d.layout = oldDirectoryLayout
	geometry, found := disks.FindOldMapGeometryBySize(discSectors)
	if found {
		applyGeometry(disc, geometry)
	} else {
		disc.DiscType = "adf"
		disc.SectorSize = OldMapSectorSize
		disc.SectorsPerTrack = 16
		disc.Tracks = (discSectors + 15) / 16
		disc.Heads = 1
	}
	return 0x200 / OldMapSectorSize, nil
}

func applyGeometry(disc *Disc, geometry disks.DiskGeometry) {
	disc.DiscType = geometry.DiscType
	disc.SectorSize = geometry.BytesPerSector
	disc.SectorsPerTrack = geometry.SectorsPerTrack
	disc.Tracks = geometry.TotalTracks
	disc.Heads = geometry.Heads
}

// oldMapDiscName reassembles the disc name, whose characters alternate between
// the two map sectors.
func oldMapDiscName(sector0, sector1 []byte) string {
	raw := make([]byte, 0, 10)
	for i := 0; i < 5; i++ {
		raw = append(raw, sector0[oldMapDiscNameOffset0+i], sector1[oldMapDiscNameOffset1+i])
	}
	return readName(raw, 0, len(raw), true)
}
