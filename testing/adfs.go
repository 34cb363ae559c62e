package testing

import (
	"testing"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/adfuse/disks"
	"github.com/dargueta/adfuse/drivers/adfs"
	"github.com/stretchr/testify/require"
)

// ImageEntry describes a file or directory to put on a synthetic disc image.
type ImageEntry struct {
	Name        string
	LoadAddress uint32
	ExecAddress uint32
	Data        []byte
	// Children makes this entry a directory. Use an empty, non-nil slice for
	// an empty directory.
	Children []ImageEntry
	// Attributes defaults to owner read/write, plus the directory bit for
	// directories.
	Attributes adfs.Attributes
}

// File creates an ImageEntry for a file.
func File(name string, loadAddress, execAddress uint32, data []byte) ImageEntry {
	return ImageEntry{
		Name:        name,
		LoadAddress: loadAddress,
		ExecAddress: execAddress,
		Data:        data,
	}
}

// Dir creates an ImageEntry for a directory.
func Dir(name string, children ...ImageEntry) ImageEntry {
	if children == nil {
		children = []ImageEntry{}
	}
	return ImageEntry{Name: name, Children: children}
}

func (e *ImageEntry) isDirectory() bool {
	return e.Children != nil
}

func (e *ImageEntry) attributes() adfs.Attributes {
	attributes := e.Attributes
	if attributes == 0 {
		attributes = adfs.AttrOwnerRead | adfs.AttrOwnerWrite
	}
	if e.isDirectory() {
		attributes |= adfs.AttrDirectory
	}
	return attributes
}

////////////////////////////////////////////////////////////////////////////////

type directoryFormat struct {
	size               int
	oldStyle           bool
	parentOffset       int
	titleOffset        int
	nameOffset         int
	endSequenceOffset  int
	endSignatureOffset int
}

var oldDirectoryFormat = directoryFormat{
	size:               0x500,
	oldStyle:           true,
	nameOffset:         0x4CC,
	parentOffset:       0x4D6,
	titleOffset:        0x4D9,
	endSequenceOffset:  0x4FA,
	endSignatureOffset: 0x4FB,
}

var newDirectoryFormat = directoryFormat{
	size:               0x800,
	parentOffset:       0x7DA,
	titleOffset:        0x7DD,
	nameOffset:         0x7F0,
	endSequenceOffset:  0x7FA,
	endSignatureOffset: 0x7FB,
}

func putUint(data []byte, offset, size int, value uint32) {
	for i := 0; i < size; i++ {
		data[offset+i] = byte(value >> (8 * i))
	}
}

func putString(data []byte, offset, size int, value string) {
	for i := 0; i < size; i++ {
		if i < len(value) {
			data[offset+i] = value[i]
		} else {
			data[offset+i] = 0x0D
		}
	}
}

// encodeDirectory builds the raw bytes of a directory. `addresses` holds the
// disc address of each child.
func encodeDirectory(
	format directoryFormat,
	name string,
	parent uint32,
	children []ImageEntry,
	addresses []uint32,
) []byte {
	raw := make([]byte, format.size)
	raw[0] = 1
	copy(raw[1:5], "Hugo")

	for i := range children {
		child := &children[i]
		entry := raw[5+i*26 : 5+(i+1)*26]
		putString(entry, 0, 10, child.Name)
		putUint(entry, 10, 4, child.LoadAddress)
		putUint(entry, 14, 4, child.ExecAddress)
		if child.isDirectory() {
			putUint(entry, 18, 4, uint32(format.size))
		} else {
			putUint(entry, 18, 4, uint32(len(child.Data)))
		}
		putUint(entry, 22, 3, addresses[i])

		attributes := child.attributes()
		if format.oldStyle {
			order := []adfs.Attributes{
				adfs.AttrOwnerRead,
				adfs.AttrOwnerWrite,
				adfs.AttrLocked,
				adfs.AttrDirectory,
				adfs.AttrExecuteOnly,
				adfs.AttrPublicRead,
				adfs.AttrPublicWrite,
			}
			for bit, flag := range order {
				if attributes&flag != 0 {
					entry[bit] |= 0x80
				}
			}
		} else {
			entry[25] = byte(attributes)
		}
	}

	putString(raw, format.nameOffset, 10, name)
	putUint(raw, format.parentOffset, 3, parent)
	putString(raw, format.titleOffset, 19, name)
	raw[format.endSequenceOffset] = 1
	copy(raw[format.endSignatureOffset:], "Hugo")
	return raw
}

////////////////////////////////////////////////////////////////////////////////
// Old map

type oldMapBuilder struct {
	image      []byte
	format     directoryFormat
	nextSector uint32
}

func (b *oldMapBuilder) allocate(size int) uint32 {
	address := b.nextSector
	b.nextSector += uint32((size + adfs.OldMapSectorSize - 1) / adfs.OldMapSectorSize)
	return address
}

func (b *oldMapBuilder) writeDirectory(
	t *testing.T, address, parent uint32, name string, children []ImageEntry,
) {
	addresses := make([]uint32, len(children))
	for i := range children {
		if children[i].isDirectory() {
			addresses[i] = b.allocate(b.format.size)
		} else {
			addresses[i] = b.allocate(len(children[i].Data))
		}
	}

	raw := encodeDirectory(b.format, name, parent, children, addresses)
	b.write(t, addresses, children, address, raw)
}

func (b *oldMapBuilder) write(
	t *testing.T, addresses []uint32, children []ImageEntry, address uint32, raw []byte,
) {
	offset := int(address) * adfs.OldMapSectorSize
	require.LessOrEqual(t, offset+len(raw), len(b.image), "directory doesn't fit on disc")
	copy(b.image[offset:], raw)

	for i := range children {
		child := &children[i]
		if child.isDirectory() {
			b.writeDirectory(t, addresses[i], address, child.Name, child.Children)
			continue
		}
		start := int(addresses[i]) * adfs.OldMapSectorSize
		require.LessOrEqual(t, start+len(child.Data), len(b.image), "file doesn't fit on disc")
		copy(b.image[start:], child.Data)
	}
}

// BuildOldMapImage creates a valid old map disc image for the geometry named
// by `slug` (e.g. "adfs-s" or "adfs-d") containing `root`.
func BuildOldMapImage(t *testing.T, slug, discName string, root ...ImageEntry) []byte {
	geometry, err := disks.GetPredefinedDiskGeometry(slug)
	require.NoError(t, err)
	require.NotZero(t, geometry.RootDirectory, "%s isn't an old map format", slug)

	builder := oldMapBuilder{
		image:  make([]byte, geometry.TotalSizeBytes()),
		format: oldDirectoryFormat,
	}
	if geometry.DirectorySize == int64(newDirectoryFormat.size) {
		builder.format = newDirectoryFormat
	}

	rootAddress := uint32(geometry.RootDirectory / adfs.OldMapSectorSize)
	builder.nextSector = rootAddress
	builder.allocate(builder.format.size)
	builder.writeDirectory(t, rootAddress, rootAddress, "$", root)

	totalSectors := uint32(len(builder.image) / adfs.OldMapSectorSize)
	require.Less(t, builder.nextSector, totalSectors, "disc is full")

	sector0 := builder.image[:adfs.OldMapSectorSize]
	sector1 := builder.image[adfs.OldMapSectorSize : 2*adfs.OldMapSectorSize]

	putUint(sector0, 0, 3, builder.nextSector)
	putUint(sector1, 0, 3, totalSectors-builder.nextSector)
	sector1[0xFE] = 3

	for i := 0; i < 5; i++ {
		if 2*i < len(discName) {
			sector0[0xF7+i] = discName[2*i]
		}
		if 2*i+1 < len(discName) {
			sector1[0xF6+i] = discName[2*i+1]
		}
	}
	putUint(sector0, 0xFC, 3, totalSectors)
	putUint(sector1, 0xFB, 2, 0x1234)

	sector0[0xFF] = adfs.OldMapChecksum(sector0)
	sector1[0xFF] = adfs.OldMapChecksum(sector1)
	return builder.image
}

////////////////////////////////////////////////////////////////////////////////
// New map

// Parameters of the E format's disc record.
const (
	NewMapSectorSize   = 1024
	NewMapLog2BPMB     = 7
	NewMapIDLen        = 15
	NewMapZoneSpare    = 1056
	NewMapRootAddress  = 0x203
	newMapBytesPerUnit = 1 << NewMapLog2BPMB
	newMapFirstMapBit  = 32 + adfs.DiscRecordSize*8
)

type newMapFragment struct {
	id     uint32
	unit   int
	length int
}

type newMapBuilder struct {
	image     []byte
	fragments []newMapFragment
	nextUnit  int
	nextID    uint32
}

// allocate reserves a fragment for an object of `size` bytes and returns the
// object's indirect disc address.
func (b *newMapBuilder) allocate(size int) uint32 {
	units := (size + newMapBytesPerUnit - 1) / newMapBytesPerUnit
	if units < NewMapIDLen+1 {
		units = NewMapIDLen + 1
	}

	id := b.nextID
	b.nextID++
	b.fragments = append(b.fragments, newMapFragment{id: id, unit: b.nextUnit, length: units})
	b.nextUnit += units
	return id << 8
}

func (b *newMapBuilder) offsetOf(address uint32) int {
	for _, frag := range b.fragments {
		if frag.id == address>>8 {
			return frag.unit * newMapBytesPerUnit
		}
	}
	panic("unknown fragment")
}

func (b *newMapBuilder) writeDirectory(
	t *testing.T, offset int, parent uint32, name string, children []ImageEntry,
) {
	addresses := make([]uint32, len(children))
	for i := range children {
		if children[i].isDirectory() {
			addresses[i] = b.allocate(newDirectoryFormat.size)
		} else {
			addresses[i] = b.allocate(len(children[i].Data))
		}
	}

	raw := encodeDirectory(newDirectoryFormat, name, parent, children, addresses)
	require.LessOrEqual(t, offset+len(raw), len(b.image), "directory doesn't fit on disc")
	copy(b.image[offset:], raw)

	for i := range children {
		child := &children[i]
		childOffset := b.offsetOf(addresses[i])
		if child.isDirectory() {
			b.writeDirectory(t, childOffset, addresses[i], child.Name, child.Children)
			continue
		}
		require.LessOrEqual(t, childOffset+len(child.Data), len(b.image), "file doesn't fit on disc")
		copy(b.image[childOffset:], child.Data)
	}
}

func setBits(data []byte, position, n int, value uint32) {
	for i := 0; i < n; i++ {
		bitmap.Set(data, position+i, (value>>i)&1 != 0)
	}
}

// BuildNewMapImage creates a valid single-zone E format disc image containing
// `root`. The map and its copy fill the first two sectors, the root directory
// the next two. Everything else is allocated in order, with the rest of the
// disc left as one free fragment.
func BuildNewMapImage(t *testing.T, discName string, root ...ImageEntry) []byte {
	geometry, err := disks.GetPredefinedDiskGeometry("adfs-e")
	require.NoError(t, err)

	totalSize := int(geometry.TotalSizeBytes())
	builder := newMapBuilder{
		image:  make([]byte, totalSize),
		nextID: 3,
		fragments: []newMapFragment{
			{id: 2, unit: 0, length: 4 * NewMapSectorSize / newMapBytesPerUnit},
		},
		nextUnit: 4 * NewMapSectorSize / newMapBytesPerUnit,
	}
	builder.writeDirectory(t, 2*NewMapSectorSize, NewMapRootAddress, "$", root)

	zone := make([]byte, NewMapSectorSize)
	for _, frag := range builder.fragments {
		start := newMapFirstMapBit + frag.unit
		setBits(zone, start, NewMapIDLen, frag.id)
		bitmap.Set(zone, start+frag.length-1, true)
	}

	endBit := newMapFirstMapBit + totalSize/newMapBytesPerUnit
	freeStart := newMapFirstMapBit + builder.nextUnit
	require.LessOrEqual(t, freeStart+NewMapIDLen+1, endBit, "disc is full")
	setBits(zone, 8, 15, uint32(freeStart-8))
	bitmap.Set(zone, endBit-1, true)

	record := zone[4 : 4+adfs.DiscRecordSize]
	record[0x00] = 10
	record[0x01] = byte(geometry.SectorsPerTrack)
	record[0x02] = byte(geometry.Heads)
	record[0x03] = 2
	record[0x04] = NewMapIDLen
	record[0x05] = NewMapLog2BPMB
	record[0x09] = 1
	putUint(record, 0x0A, 2, NewMapZoneSpare)
	putUint(record, 0x0C, 4, NewMapRootAddress)
	putUint(record, 0x10, 4, uint32(totalSize))
	putUint(record, 0x14, 2, 0x4321)
	copy(record[0x16:0x20], discName)

	zone[3] = 0xFF
	zone[0] = adfs.ZoneCheck(zone)

	copy(builder.image[0:], zone)
	copy(builder.image[NewMapSectorSize:], zone)
	return builder.image
}
