package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
)

// CompressedImageSuffix is the file name suffix of images compressed with
// [CompressImage].
const CompressedImageSuffix = ".rle.gz"

// IsCompressedImageName returns true if `path` names a compressed image.
func IsCompressedImageName(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), CompressedImageSuffix)
}

type countingWriter struct {
	output io.Writer
	total  int64
}

func (w *countingWriter) Write(data []byte) (int, error) {
	n, err := w.output.Write(data)
	w.total += int64(n)
	return n, err
}

// CompressImage compresses a disc image using RLE8 and gzip.
//
// The returned int64 gives the number of compressed bytes written to the
// output stream. If an error occurred, the value is undefined and should not
// be used.
func CompressImage(input io.Reader, output io.Writer) (int64, error) {
	counter := &countingWriter{output: output}

	// The images aren't that huge, so we won't notice much of a speed
	// difference between the default and highest levels.
	gzWriter, err := gzip.NewWriterLevel(counter, gzip.BestCompression)
	if err != nil {
		return 0, err
	}

	_, err = CompressRLE8(input, gzWriter)
	if err != nil {
		gzWriter.Close()
		return counter.total, err
	}

	err = gzWriter.Close()
	return counter.total, err
}

// DecompressImage takes a gzipped, RLE8-encoded disc image and decompresses it
// to the original raw bytes.
//
// The returned int64 gives the number of bytes written to the output (i.e. the
// decompressed size of the image). If an error occurred, the value is undefined
// and should not be used.
func DecompressImage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()
	return DecompressRLE8(gzReader, output)
}

// DecompressImageToBytes works like [DecompressImage] but returns the image in
// a new byte slice.
func DecompressImageToBytes(input io.Reader) ([]byte, error) {
	buffer := bytes.NewBuffer(make([]byte, 0, 4096))
	_, err := DecompressImage(input, buffer)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
