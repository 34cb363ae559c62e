package adfs

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/common"
)

// DiscRecordSize is the size of a disc record, in bytes.
const DiscRecordSize = 60

const discRecordBits = DiscRecordSize * 8

// Offsets of a disc record in a disc image. E format floppies store it in the
// first zone of the map at the start of the disc, everything larger stores it
// in the boot block.
const (
	ZoneZeroDiscRecordOffset  = 4
	BootBlockDiscRecordOffset = 0xC00 + 0x1C0
)

// DiscRecord describes the geometry and allocation map layout of a new map
// disc.
type DiscRecord struct {
	Log2SectorSize     uint8
	SectorsPerTrack    uint8
	Heads              uint8
	Density            uint8
	IDLen              uint8
	Log2BytesPerMapBit uint8
	Skew               uint8
	BootOption         uint8
	LowSector          uint8
	NZones             uint
	ZoneSpare          uint
	Root               uint32
	DiscSize           uint64
	DiscID             uint16
	DiscName           string
	DiscType           uint32
	Log2ShareSize      uint8
	BigFlag            bool
}

// ParseDiscRecord decodes a raw disc record. Missing bytes read as zero.
func ParseDiscRecord(raw []byte) DiscRecord {
	record := DiscRecord{
		NZones:    uint(ReadUint(raw, 0x09, 1)) | uint(ReadUint(raw, 0x2A, 1))<<8,
		ZoneSpare: uint(ReadUint(raw, 0x0A, 2)),
		Root:      ReadUint(raw, 0x0C, 4),
		DiscSize:  uint64(ReadUint(raw, 0x10, 4)) | uint64(ReadUint(raw, 0x24, 4))<<32,
		DiscID:    uint16(ReadUint(raw, 0x14, 2)),
		DiscName:  readName(raw, 0x16, 10, false),
		DiscType:  ReadUint(raw, 0x20, 4),
	}
	fields := []*uint8{
		&record.Log2SectorSize,
		&record.SectorsPerTrack,
		&record.Heads,
		&record.Density,
		&record.IDLen,
		&record.Log2BytesPerMapBit,
		&record.Skew,
		&record.BootOption,
		&record.LowSector,
	}
	for i, field := range fields {
		*field = uint8(ReadUint(raw, i, 1))
	}
	record.Log2ShareSize = uint8(ReadUint(raw, 0x28, 1) & 0x0F)
	record.BigFlag = ReadUint(raw, 0x29, 1)&1 != 0
	return record
}

// SectorSize gives the size of a sector in bytes.
func (r *DiscRecord) SectorSize() uint {
	return 1 << r.Log2SectorSize
}

// ZoneBits gives the number of map bits in each zone available for
// allocation, including the part of zone 0 taken up by the disc record.
func (r *DiscRecord) ZoneBits() uint {
	return r.SectorSize()*8 - r.ZoneSpare
}

// MapAddress gives the byte offset of the first zone of the map.
func (r *DiscRecord) MapAddress() int64 {
	mapBits := int64(r.NZones>>1) * int64(r.ZoneBits())
	if r.NZones > 1 {
		mapBits -= discRecordBits
	}
	return mapBits << r.Log2BytesPerMapBit
}

func (r *DiscRecord) plausible() bool {
	if r.Log2SectorSize < 8 || r.Log2SectorSize > 12 {
		return false
	}
	if r.IDLen < 8 || r.IDLen > 21 || r.Log2BytesPerMapBit > 16 {
		return false
	}
	if r.NZones == 0 || r.DiscSize == 0 || r.SectorsPerTrack == 0 {
		return false
	}
	return r.ZoneSpare+32+discRecordBits < r.SectorSize()*8
}

////////////////////////////////////////////////////////////////////////////////

// fragment is a run of allocation units owned by a single object. Objects
// larger than a fragment have several, all with the same ID.
type fragment struct {
	id     uint32
	unit   uint64
	length uint64
}

type newAllocationMap struct {
	device    *common.BlockStream
	record    DiscRecord
	raw       []byte
	zones     [][]fragment
	freeBytes uint64
	problems  []error
}

func loadNewMap(device *common.BlockStream, record DiscRecord) (*newAllocationMap, error) {
	sectorSize := int(record.SectorSize())
	raw, err := device.ReadBytes(record.MapAddress(), int(record.NZones)*sectorSize)
	if err != nil {
		return nil, err
	}

	m := &newAllocationMap{
		device: device,
		record: record,
		raw:    raw,
		zones:  make([][]fragment, record.NZones),
	}

	for zone := 0; zone < int(record.NZones); zone++ {
		zoneData := raw[zone*sectorSize : (zone+1)*sectorSize]
		if check := ZoneCheck(zoneData); check != zoneData[0] {
			m.problem("zone %d: check byte is %#02x, expected %#02x", zone, zoneData[0], check)
		}
		m.scanZone(zone)
	}

	if cross := CrossCheck(raw, sectorSize); cross != 0xFF {
		m.problem("map cross check is %#02x, expected 0xff", cross)
	}
	return m, nil
}

func (m *newAllocationMap) problem(format string, args ...any) {
	m.problems = append(
		m.problems,
		adfuse.ErrFileSystemCorrupted.WithMessage(fmt.Sprintf(format, args...)))
}

// scanZone splits a zone into fragments. Free fragments are chained together
// starting from the zone header; each one's ID field holds the distance in bits
// to the next.
func (m *newAllocationMap) scanZone(zone int) {
	sectorSize := int(m.record.SectorSize())
	zoneData := m.raw[zone*sectorSize : (zone+1)*sectorSize]
	zoneBits := int(m.record.ZoneBits())
	idLen := int(m.record.IDLen)
	totalUnits := m.record.DiscSize >> m.record.Log2BytesPerMapBit

	startBit := 32
	startUnit := uint64(zone*zoneBits - discRecordBits)
	if zone == 0 {
		startBit += discRecordBits
		startUnit = 0
	}
	if startUnit >= totalUnits {
		return
	}

	endBit := 32 + zoneBits
	if remaining := totalUnits - startUnit; uint64(endBit-startBit) > remaining {
		endBit = startBit + int(remaining)
	}

	freeLink := -1
	if link := readBits(zoneData, 8, 15); link != 0 {
		freeLink = 8 + int(link)
	}

	for start := startBit; start < endBit; {
		id := readBits(zoneData, start, idLen)
		fragmentEnd := nextSetBit(zoneData, start+idLen, endBit)
		if fragmentEnd < 0 {
			m.problem("zone %d: fragment at bit %d has no end marker", zone, start)
			return
		}

		length := fragmentEnd + 1 - start
		if start == freeLink {
			if offset := id & 0x7FFF; offset != 0 {
				freeLink += int(offset)
			} else {
				freeLink = -1
			}
			m.freeBytes += uint64(length) << m.record.Log2BytesPerMapBit
		} else {
			m.zones[zone] = append(m.zones[zone], fragment{
				id:     id,
				unit:   startUnit + uint64(start-startBit),
				length: uint64(length),
			})
		}
		start = fragmentEnd + 1
	}
}

// fragmentsOf returns the fragments belonging to `id`, in the order they're
// searched: starting with the zone the ID is allocated from and wrapping
// around.
func (m *newAllocationMap) fragmentsOf(id uint32) []fragment {
	nZones := len(m.zones)
	startZone := 0
	idsPerZone := int(m.record.ZoneBits()) / (int(m.record.IDLen) + 1)
	if idsPerZone > 0 {
		startZone = int(id) / idsPerZone
	}
	if startZone >= nZones {
		startZone = 0
	}

	var result []fragment
	for i := 0; i < nZones; i++ {
		for _, frag := range m.zones[(startZone+i)%nZones] {
			if frag.id == id {
				result = append(result, frag)
			}
		}
	}
	return result
}

// readObject reads an object given its indirect disc address, which is the
// fragment ID shifted left by 8 bits plus a sharing offset in the low byte.
// Small objects can share a fragment, in which case a nonzero sharing offset
// selects a position within it.
func (m *newAllocationMap) readObject(address uint32, length int) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	fragmentID := address >> 8
	fragments := m.fragmentsOf(fragmentID)
	if len(fragments) == 0 {
		return nil, adfuse.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("fragment %#x for object at %#x isn't in the map", fragmentID, address))
	}

	var skip uint64
	if share := address & 0xFF; share != 0 {
		skip = uint64(share-1) << m.record.Log2ShareSize << m.record.Log2SectorSize
	}

	// The recorded length can't be trusted, so the buffer is sized by what the
	// fragments can actually hold.
	var capacity uint64
	for _, frag := range fragments {
		capacity += frag.length << m.record.Log2BytesPerMapBit
	}
	capacity = min(capacity-min(capacity, skip), uint64(length))

	result := make([]byte, 0, capacity)
	remaining := uint64(length)
	for _, frag := range fragments {
		if remaining == 0 {
			break
		}

		size := frag.length << m.record.Log2BytesPerMapBit
		if skip >= size {
			skip -= size
			continue
		}

		readSize := min(size-skip, remaining)
		offset := int64(frag.unit<<m.record.Log2BytesPerMapBit + skip)
		skip = 0

		chunk, err := m.device.ReadBytes(offset, int(readSize))
		result = append(result, chunk...)
		if err != nil {
			return result, err
		}
		remaining -= readSize
	}

	if remaining > 0 {
		return result, adfuse.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"object at %#x is %d bytes longer than its fragments",
				address,
				remaining))
	}
	return result, nil
}

// readBits reads an `n`-bit little-endian value starting at bit `position`.
func readBits(data []byte, position, n int) uint32 {
	var value uint32
	for i := 0; i < n; i++ {
		bit := position + i
		if bit < len(data)*8 && bitmap.Get(data, bit) {
			value |= 1 << i
		}
	}
	return value
}

// nextSetBit returns the index of the first set bit in [from, end), or -1.
func nextSetBit(data []byte, from, end int) int {
	if limit := len(data) * 8; end > limit {
		end = limit
	}
	for i := from; i < end; i++ {
		if bitmap.Get(data, i) {
			return i
		}
	}
	return -1
}

////////////////////////////////////////////////////////////////////////////////

// openNewMap looks for a disc record first in zone 0 and then in the boot
// block. The first one whose map leads to a valid root directory wins.
func (d *decoder) openNewMap(disc *Disc) (uint32, error) {
	for _, recordOffset := range []int64{ZoneZeroDiscRecordOffset, BootBlockDiscRecordOffset} {
		raw, err := d.device.ReadBytes(recordOffset, DiscRecordSize)
		if err != nil {
			continue
		}

		record := ParseDiscRecord(raw)
		if !record.plausible() {
			continue
		}

		allocations, err := loadNewMap(d.device, record)
		if err != nil {
			continue
		}

		root, err := allocations.readObject(record.Root, newDirectoryLayout.size)
		if err != nil || !hasSignature(root, 1) {
			continue
		}

		for _, problem := range allocations.problems {
			d.fail(problem)
		}
		if imageSize := uint64(d.device.Size()); imageSize < record.DiscSize {
			d.problem(
				"image is %d bytes but the disc is %d bytes long",
				imageSize,
				record.DiscSize)
		}

		d.objects = allocations
		d.layout = newDirectoryLayout

		disc.DiscType = "adE"
		if recordOffset == BootBlockDiscRecordOffset {
			disc.DiscType = "adEbig"
		}
		disc.DiscName = record.DiscName
		disc.DiscID = record.DiscID
		disc.BootOption = record.BootOption
		disc.SectorSize = record.SectorSize()
		disc.SectorsPerTrack = uint(record.SectorsPerTrack)
		disc.Heads = uint(record.Heads)
		disc.Tracks = uint(record.DiscSize / uint64(disc.SectorSize*disc.SectorsPerTrack))
		disc.FreeSpace = allocations.freeBytes
		return record.Root, nil
	}

	return 0, adfuse.ErrInvalidFileSystem.WithMessage(
		"no old map directory or usable disc record found")
}
