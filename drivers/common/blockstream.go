package common

import (
	"fmt"
	"io"

	"github.com/dargueta/adfuse"
)

// BlockStream is a read-only abstraction layer around a stream to make it look
// like a block device, e.g. a disc image that is addressed in multiples of its
// fundamental unit, a "block", or by absolute byte offset.
//
// The exposed fields are for informational purposes only and should never be
// changed.
type BlockStream struct {
	// BytesPerBlock gives the size of a block on this device, in bytes.
	BytesPerBlock uint
	// TotalBlocks is the total number of whole blocks in this stream.
	TotalBlocks uint
	// StartOffset is an offset from the beginning of the stream, in bytes, that
	// will be considered the beginning of block 0 for the device. This is useful
	// for skipping over headers prepended by imaging tools.
	StartOffset int64
	size        int64
	stream      io.ReadSeeker
}

// NewBlockStream wraps `stream`. The size of the device is determined by
// seeking to the end of the stream, so the stream must support [io.SeekEnd].
func NewBlockStream(
	stream io.ReadSeeker, blockSize uint, startOffset int64,
) (*BlockStream, error) {
	if blockSize == 0 {
		return nil, adfuse.ErrInvalidArgument.WithMessage("block size can't be 0")
	}

	end, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, adfuse.ErrIOFailed.Wrap(err)
	}
	if startOffset < 0 || startOffset > end {
		return nil, adfuse.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("start offset %d not in [0, %d]", startOffset, end))
	}

	size := end - startOffset
	return &BlockStream{
		BytesPerBlock: blockSize,
		TotalBlocks:   uint(size / int64(blockSize)),
		StartOffset:   startOffset,
		size:          size,
		stream:        stream,
	}, nil
}

// Size returns the number of bytes in the device, including any trailing
// partial block.
func (device *BlockStream) Size() int64 {
	return device.size
}

// CheckIOBounds checks to see if `count` blocks can be read starting from
// `blockID`. If the bounds check fails, it returns an error indicating exactly
// what went wrong.
func (device *BlockStream) CheckIOBounds(blockID LogicalBlock, count uint) error {
	if uint(blockID) >= device.TotalBlocks {
		return adfuse.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"invalid block ID %d: not in range [0, %d)",
				blockID,
				device.TotalBlocks))
	}

	if uint(blockID)+count > device.TotalBlocks {
		return adfuse.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"block %d plus %d blocks of data extends past end of image",
				blockID,
				count))
	}
	return nil
}

// Read reads `count` whole blocks starting from `blockID`.
func (device *BlockStream) Read(blockID LogicalBlock, count uint) ([]byte, error) {
	err := device.CheckIOBounds(blockID, count)
	if err != nil {
		return nil, err
	}

	offset := int64(blockID) * int64(device.BytesPerBlock)
	return device.ReadBytes(offset, int(count*device.BytesPerBlock))
}

// ReadBytes reads `length` bytes starting at byte `offset` from the beginning
// of the device.
//
// If the range runs past the end of the device, the bytes that do exist are
// returned along with an error matching [adfuse.ErrIOFailed]. Callers that
// tolerate truncated images can use the partial data.
func (device *BlockStream) ReadBytes(offset int64, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, adfuse.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("can't read %d bytes at offset %d", length, offset))
	}
	if offset > device.size {
		return nil, adfuse.ErrIOFailed.WithMessage(
			fmt.Sprintf("offset %d is past the end of the image (%d bytes)", offset, device.size))
	}

	available := device.size - offset
	readSize := int64(length)
	if readSize > available {
		readSize = available
	}

	_, err := device.stream.Seek(device.StartOffset+offset, io.SeekStart)
	if err != nil {
		return nil, adfuse.ErrIOFailed.Wrap(err)
	}

	buffer := make([]byte, readSize)
	_, err = io.ReadFull(device.stream, buffer)
	if err != nil {
		return nil, adfuse.ErrIOFailed.Wrap(err)
	}

	if readSize < int64(length) {
		return buffer, adfuse.ErrIOFailed.WithMessage(
			fmt.Sprintf(
				"short read: wanted %d bytes at offset %d, image ends after %d",
				length,
				offset,
				readSize))
	}
	return buffer, nil
}
