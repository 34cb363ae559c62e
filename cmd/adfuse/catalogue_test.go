package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/namespace"
	dt "github.com/dargueta/adfuse/testing"
	"github.com/dargueta/adfuse/utilities/compression"
)

func sampleTree() []dt.ImageEntry {
	return []dt.ImageEntry{
		dt.File("A", 0xFFFFFF12, 0x34567890, []byte("hello")),
		dt.Dir(
			"B",
			dt.File("C", 0x00001900, 0x00008023, bytes.Repeat([]byte{0xAA}, 700)),
			dt.Dir("D"),
		),
	}
}

func writeImage(t *testing.T, name string, image []byte) string {
	imagePath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(imagePath, image, 0o644))
	return imagePath
}

func TestOpenDisc(t *testing.T) {
	imagePath := writeImage(t, "disc.adf", dt.BuildOldMapImage(t, "adfs-m", "PLAIN", sampleTree()...))

	disc, err := openDisc(imagePath, true)
	require.NoError(t, err)
	assert.Equal(t, "adm", disc.DiscType)
	assert.Len(t, disc.Root, 2)
}

func TestOpenDisc__Compressed(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-s", "SQUASHED", sampleTree()...)
	imagePath := writeImage(t, "disc.adf"+compression.CompressedImageSuffix, dt.CompressDiskImage(t, image))

	disc, err := openDisc(imagePath, true)
	require.NoError(t, err)
	assert.Equal(t, "ads", disc.DiscType)
	assert.Len(t, disc.Root, 2)
}

func TestOpenDisc__Errors(t *testing.T) {
	_, err := openDisc(filepath.Join(t.TempDir(), "missing.adf"), true)
	assert.ErrorIs(t, err, os.ErrNotExist)

	imagePath := writeImage(t, "zeros.adf", make([]byte, 819200))
	_, err = openDisc(imagePath, true)
	assert.ErrorIs(t, err, adfuse.ErrInvalidFileSystem)
}

func TestCatalogue__NewMap(t *testing.T) {
	imagePath := writeImage(t, "disc.adf", dt.BuildNewMapImage(t, "CATALOGUE", sampleTree()...))
	disc, err := openDisc(imagePath, true)
	require.NoError(t, err)

	rows := Catalogue(namespace.FromDisc(disc, namespace.Options{}))

	var paths []string
	for _, row := range rows {
		paths = append(paths, row.Path)
	}
	require.Equal(t, []string{"/A.fff", "/B", "/B/C.019", "/B/D"}, paths)

	assert.Equal(t, "file", rows[0].Kind)
	assert.Equal(t, "FFFFFF12", rows[0].LoadAddress)
	assert.Equal(t, "34567890", rows[0].ExecAddress)
	assert.EqualValues(t, 5, rows[0].Length)
	assert.Equal(t, "FFF", rows[0].FileType)
	assert.Equal(t, "text/plain", rows[0].MIME)
	assert.Equal(t, "directory", rows[1].Kind)
	assert.EqualValues(t, 700, rows[2].Length)
}

func TestWriteCatalogue__OldMap(t *testing.T) {
	imagePath := writeImage(t, "disc.adf", dt.BuildOldMapImage(t, "adfs-s", "CSV", sampleTree()...))
	disc, err := openDisc(imagePath, true)
	require.NoError(t, err)

	var output bytes.Buffer
	require.NoError(t, WriteCatalogue(namespace.FromDisc(disc, namespace.Options{}), &output))

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(
		t,
		"path,kind,load_address,exec_address,length,attributes,file_type,mime_type,modified",
		lines[0],
	)
	assert.True(t, strings.HasPrefix(lines[1], "/A,file,FFFFFF12,34567890,5,WR/,FFF,text/plain,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "/B/C,file,00001900,00008023,700,WR/,,,"), lines[3])
}

func TestConvertFile__RoundTrip(t *testing.T) {
	image := dt.BuildOldMapImage(t, "adfs-s", "ROUNDTRIP", sampleTree()...)
	sourcePath := writeImage(t, "disc.adf", image)
	compressedPath := sourcePath + compression.CompressedImageSuffix
	expandedPath := sourcePath + ".out"

	require.NoError(t, convertFile(sourcePath, compressedPath, compression.CompressImage))
	require.NoError(t, convertFile(compressedPath, expandedPath, compression.DecompressImage))

	expanded, err := os.ReadFile(expandedPath)
	require.NoError(t, err)
	assert.Equal(t, image, expanded)
}
