package common_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/adfuse"
	c "github.com/dargueta/adfuse/drivers/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func makeSequentialData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestNewBlockStream__Geometry(t *testing.T) {
	data := makeSequentialData(1000)
	stream, err := c.NewBlockStream(bytesextra.NewReadWriteSeeker(data), 256, 0)
	require.NoError(t, err)

	assert.EqualValues(t, 256, stream.BytesPerBlock)
	assert.EqualValues(t, 3, stream.TotalBlocks, "partial trailing block must not count")
	assert.EqualValues(t, 1000, stream.Size())
}

func TestNewBlockStream__ZeroBlockSize(t *testing.T) {
	_, err := c.NewBlockStream(bytes.NewReader(nil), 0, 0)
	assert.ErrorIs(t, err, adfuse.ErrInvalidArgument)
}

func TestNewBlockStream__StartOffsetPastEnd(t *testing.T) {
	_, err := c.NewBlockStream(bytes.NewReader(make([]byte, 16)), 8, 17)
	assert.ErrorIs(t, err, adfuse.ErrInvalidArgument)
}

func TestBlockStreamRead__WholeBlocks(t *testing.T) {
	data := makeSequentialData(1024)
	stream, err := c.NewBlockStream(bytes.NewReader(data), 256, 0)
	require.NoError(t, err)

	blocks, err := stream.Read(1, 2)
	require.NoError(t, err)
	assert.Equal(t, data[256:768], blocks)
}

func TestBlockStreamRead__OutOfBounds(t *testing.T) {
	stream, err := c.NewBlockStream(bytes.NewReader(make([]byte, 1024)), 256, 0)
	require.NoError(t, err)

	_, err = stream.Read(4, 1)
	assert.ErrorIs(t, err, adfuse.ErrArgumentOutOfRange)

	_, err = stream.Read(3, 2)
	assert.ErrorIs(t, err, adfuse.ErrArgumentOutOfRange)
}

func TestBlockStreamReadBytes__StartOffset(t *testing.T) {
	data := makeSequentialData(64)
	stream, err := c.NewBlockStream(bytes.NewReader(data), 16, 8)
	require.NoError(t, err)

	result, err := stream.ReadBytes(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{8, 9, 10, 11}, result)

	blocks, err := stream.Read(2, 1)
	require.NoError(t, err)
	assert.Equal(t, data[40:56], blocks)
}

func TestBlockStreamReadBytes__ShortRead(t *testing.T) {
	data := makeSequentialData(100)
	stream, err := c.NewBlockStream(bytes.NewReader(data), 10, 0)
	require.NoError(t, err)

	result, err := stream.ReadBytes(90, 20)
	assert.ErrorIs(t, err, adfuse.ErrIOFailed)
	assert.Equal(t, data[90:], result, "partial data should still be returned")

	result, err = stream.ReadBytes(100, 0)
	assert.NoError(t, err)
	assert.Empty(t, result)

	_, err = stream.ReadBytes(101, 1)
	assert.ErrorIs(t, err, adfuse.ErrIOFailed)
}
