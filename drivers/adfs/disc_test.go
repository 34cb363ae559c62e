package adfs_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/adfs"
	dt "github.com/dargueta/adfuse/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func sampleTree() []dt.ImageEntry {
	return []dt.ImageEntry{
		dt.File("A", 0xFFFFFF12, 0x34567890, []byte("hello")),
		dt.Dir(
			"B",
			dt.File("C", 0x00001900, 0x00008023, bytes.Repeat([]byte{0xAA}, 700)),
			dt.Dir("D"),
		),
		dt.File("Empty", 0, 0, []byte{}),
	}
}

func openImage(t *testing.T, image []byte, verify bool) *adfs.Disc {
	disc, err := adfs.NewDisc(bytesextra.NewReadWriteSeeker(image), verify)
	require.NoError(t, err)
	require.NotNil(t, disc)
	return disc
}

func requireFile(t *testing.T, entry adfs.Entry) *adfs.FileEntry {
	file, ok := entry.(*adfs.FileEntry)
	require.Truef(t, ok, "%q should be a file, got %T", entry.RawName(), entry)
	return file
}

func requireDirectory(t *testing.T, entry adfs.Entry) *adfs.DirectoryEntry {
	directory, ok := entry.(*adfs.DirectoryEntry)
	require.Truef(t, ok, "%q should be a directory, got %T", entry.RawName(), entry)
	return directory
}

// checkSampleTree verifies a disc built from [sampleTree].
func checkSampleTree(t *testing.T, root []adfs.Entry) {
	require.Len(t, root, 3)

	a := requireFile(t, root[0])
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, []byte("hello"), a.Data)
	assert.EqualValues(t, 0xFFFFFF12, a.LoadAddress)
	assert.EqualValues(t, 0x34567890, a.ExecAddress)
	assert.EqualValues(t, 5, a.Length)
	assert.Equal(t, adfs.AttrOwnerRead|adfs.AttrOwnerWrite, a.Attributes)

	b := requireDirectory(t, root[1])
	assert.Equal(t, "B", b.Name)
	assert.Equal(t, "B", b.Title)
	assert.True(t, b.Attributes.IsDirectory())
	require.Len(t, b.Children, 2)

	c := requireFile(t, b.Children[0])
	assert.Equal(t, "C", c.Name)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 700), c.Data)

	d := requireDirectory(t, b.Children[1])
	assert.Empty(t, d.Children)

	empty := requireFile(t, root[2])
	assert.Equal(t, "Empty", empty.Name)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)
}

func TestIsExtendedDiscType(t *testing.T) {
	assert.True(t, adfs.IsExtendedDiscType("adE"))
	assert.True(t, adfs.IsExtendedDiscType("adEbig"))
	assert.False(t, adfs.IsExtendedDiscType("adD"))
	assert.False(t, adfs.IsExtendedDiscType("adl"))
	assert.False(t, adfs.IsExtendedDiscType(""))
}

func TestNewDisc__OldMapS(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-s", "TESTDISC", sampleTree()...)
	disc := openImage(t, image, true)

	assert.Equal(t, "ads", disc.DiscType)
	assert.False(t, disc.IsExtended())
	assert.EqualValues(t, 256, disc.SectorSize)
	assert.EqualValues(t, 16, disc.SectorsPerTrack)
	assert.EqualValues(t, 40, disc.Tracks)
	assert.EqualValues(t, 640, disc.TotalSectors())
	assert.Equal(t, "TESTDISC", disc.DiscName)
	assert.EqualValues(t, 0x1234, disc.DiscID)
	assert.Equal(t, "$", disc.RootTitle)
	assert.Empty(t, disc.Problems)
	assert.Positive(t, disc.FreeSpace)
	assert.Less(t, disc.FreeSpace, uint64(len(image)))

	checkSampleTree(t, disc.Root)
}

func TestNewDisc__OldMapL(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-l", "BIG", sampleTree()...)
	disc := openImage(t, image, true)

	assert.Equal(t, "adl", disc.DiscType)
	assert.EqualValues(t, 2560, disc.TotalSectors())
	assert.EqualValues(t, 2, disc.Heads)
	checkSampleTree(t, disc.Root)
}

func TestNewDisc__OldMapD(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-d", "ARTHUR", sampleTree()...)
	disc := openImage(t, image, true)

	assert.Equal(t, "adD", disc.DiscType)
	assert.False(t, disc.IsExtended())
	assert.EqualValues(t, 1024, disc.SectorSize)
	assert.EqualValues(t, 800, disc.TotalSectors())
	checkSampleTree(t, disc.Root)
}

func TestNewDisc__NewMapE(t *testing.T) {
	image := dt.BuildNewMapImage(t, "RISCOS", sampleTree()...)
	disc := openImage(t, image, true)

	assert.Equal(t, "adE", disc.DiscType)
	assert.True(t, disc.IsExtended())
	assert.EqualValues(t, 1024, disc.SectorSize)
	assert.EqualValues(t, 5, disc.SectorsPerTrack)
	assert.EqualValues(t, 160, disc.Tracks)
	assert.EqualValues(t, 2, disc.Heads)
	assert.Equal(t, "RISCOS", disc.DiscName)
	assert.EqualValues(t, 0x4321, disc.DiscID)
	assert.Empty(t, disc.Problems)
	assert.Positive(t, disc.FreeSpace)

	checkSampleTree(t, disc.Root)
}

func TestNewDisc__NewMapMultipleSectorFile(t *testing.T) {
	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	image := dt.BuildNewMapImage(
		t,
		"",
		dt.File("Small", 0xFFFFF000, 0, []byte{1, 2, 3}),
		dt.File("Large", 0xFFFFFD00, 0, data),
	)
	disc := openImage(t, image, true)

	require.Len(t, disc.Root, 2)
	assert.Equal(t, []byte{1, 2, 3}, requireFile(t, disc.Root[0]).Data)
	assert.Equal(t, data, requireFile(t, disc.Root[1]).Data)
	assert.EqualValues(t, 0xFFD, requireFile(t, disc.Root[1]).FileType())
	assert.True(t, requireFile(t, disc.Root[1]).HasFileType())
}

func TestNewDisc__CompressedImage(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-m", "PACKED", sampleTree()...)
	compressed := dt.CompressDiskImage(t, image)
	assert.Less(t, len(compressed), len(image))

	stream := dt.LoadDiskImage(t, compressed, int64(len(image)))
	disc, err := adfs.NewDisc(stream, true)
	require.NoError(t, err)
	assert.Equal(t, "adm", disc.DiscType)
	checkSampleTree(t, disc.Root)
}

////////////////////////////////////////////////////////////////////////////////
// Damaged images

func TestNewDisc__UnrecognizedImage(t *testing.T) {
	for _, verify := range []bool{true, false} {
		_, err := adfs.NewDisc(bytes.NewReader(make([]byte, 819200)), verify)
		assert.ErrorIs(t, err, adfuse.ErrInvalidFileSystem)
	}

	_, err := adfs.NewDisc(bytes.NewReader(dt.CreateRandomImage(256, 640, t)), false)
	assert.ErrorIs(t, err, adfuse.ErrInvalidFileSystem)

	_, err = adfs.NewDisc(bytes.NewReader([]byte{}), false)
	assert.ErrorIs(t, err, adfuse.ErrInvalidFileSystem)
}

func TestNewDisc__BadOldMapChecksum(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-s", "", sampleTree()...)
	image[0xFF] ^= 0x5A

	_, err := adfs.NewDisc(bytes.NewReader(image), true)
	assert.ErrorIs(t, err, adfuse.ErrFileSystemCorrupted)

	disc := openImage(t, image, false)
	assert.Len(t, disc.Problems, 1)
	checkSampleTree(t, disc.Root)
}

func TestNewDisc__BadZoneCheck(t *testing.T) {
	image := dt.BuildNewMapImage(t, "", sampleTree()...)
	// This byte is past the end of the allocation bits, so only the check byte
	// notices.
	image[1000] ^= 0x01

	_, err := adfs.NewDisc(bytes.NewReader(image), true)
	assert.ErrorIs(t, err, adfuse.ErrFileSystemCorrupted)

	disc := openImage(t, image, false)
	assert.Len(t, disc.Problems, 1)
	checkSampleTree(t, disc.Root)
}

func TestNewDisc__TruncatedImage(t *testing.T) {
	image := dt.BuildOldMapImage(
		t, "adfs-s", "", dt.File("A", 0, 0, bytes.Repeat([]byte{'x'}, 20)))

	// The root directory ends at sector 7, which is where the file starts.
	truncated := image[:7*256+10]

	_, err := adfs.NewDisc(bytes.NewReader(truncated), true)
	assert.ErrorIs(t, err, adfuse.ErrFileSystemCorrupted)

	disc := openImage(t, truncated, false)
	require.Len(t, disc.Root, 1)
	file := requireFile(t, disc.Root[0])
	assert.EqualValues(t, 20, file.Length)
	assert.Equal(t, bytes.Repeat([]byte{'x'}, 10), file.Data)
	assert.NotEmpty(t, disc.Problems)
}

func TestNewDisc__NewMapLengthPastFragments(t *testing.T) {
	image := dt.BuildNewMapImage(t, "", sampleTree()...)

	// The root directory starts at the third sector. "A" is its first entry,
	// stored in a fragment of the minimum size.
	lengthOffset := 2*dt.NewMapSectorSize + 5 + 18
	binary.LittleEndian.PutUint32(image[lengthOffset:], 0xF0000000)

	_, err := adfs.NewDisc(bytes.NewReader(image), true)
	assert.ErrorIs(t, err, adfuse.ErrFileSystemCorrupted)

	disc := openImage(t, image, false)
	require.Len(t, disc.Root, 3)
	a := requireFile(t, disc.Root[0])
	assert.EqualValues(t, 0xF0000000, a.Length)
	assert.Len(t, a.Data, (dt.NewMapIDLen+1)<<dt.NewMapLog2BPMB)
	assert.Equal(t, []byte("hello"), a.Data[:5])
	assert.Len(t, disc.Problems, 1)

	b := requireDirectory(t, disc.Root[1])
	assert.Len(t, b.Children, 2)
}

func TestNewDisc__BrokenDirectorySignature(t *testing.T) {
	image := dt.BuildNewMapImage(t, "", dt.Dir("B", dt.File("C", 0, 0, []byte("c"))))

	// B is the first object allocated after the map and root directory.
	offset := 4 * dt.NewMapSectorSize
	copy(image[offset+1:], "XXXX")

	_, err := adfs.NewDisc(bytes.NewReader(image), true)
	assert.ErrorIs(t, err, adfuse.ErrFileSystemCorrupted)

	disc := openImage(t, image, false)
	require.Len(t, disc.Root, 1)
	assert.Empty(t, requireDirectory(t, disc.Root[0]).Children)
	assert.Len(t, disc.Problems, 1)
}

func TestNewDisc__DirectoryCycle(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-s", "", dt.Dir("Loop"))

	// Point the first entry of the root directory back at the root.
	entryOffset := 0x200 + 5
	image[entryOffset+22] = 2
	image[entryOffset+23] = 0
	image[entryOffset+24] = 0

	_, err := adfs.NewDisc(bytes.NewReader(image), true)
	assert.ErrorIs(t, err, adfuse.ErrFileSystemCorrupted)

	disc := openImage(t, image, false)
	require.Len(t, disc.Root, 1)
	assert.Empty(t, requireDirectory(t, disc.Root[0]).Children)
	assert.Len(t, disc.Problems, 1)
}
