package testing

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dargueta/adfuse/utilities/compression"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// CreateRandomImage creates an image with the given number of blocks and bytes
// per block, filled with random data. It is guaranteed to either return a
// valid slice or fail the test and abort.
func CreateRandomImage(bytesPerBlock, totalBlocks uint, t *testing.T) []byte {
	backingData := make([]byte, bytesPerBlock*totalBlocks)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		totalBlocks,
		bytesPerBlock,
	)
	return backingData
}

// LoadDiskImage takes a compressed disk image and returns a stream to access the
// uncompressed data.
//
//   - Writes to the stream do not affect `compressedImageBytes`.
//   - The uncompressed image must be exactly `expectedSize` bytes, or the test
//     fails.
func LoadDiskImage(
	t *testing.T, compressedImageBytes []byte, expectedSize int64,
) io.ReadSeeker {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImageToBytes(
		bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)

	require.EqualValues(
		t,
		expectedSize,
		len(imageBytes),
		"uncompressed image is wrong size",
	)
	return bytesextra.NewReadWriteSeeker(imageBytes)
}

// CompressDiskImage is the inverse of [LoadDiskImage].
func CompressDiskImage(t *testing.T, image []byte) []byte {
	output := bytes.Buffer{}
	_, err := compression.CompressImage(bytes.NewReader(image), &output)
	require.NoError(t, err)
	return output.Bytes()
}
