package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/xaionaro-go/bytesextra"

	"github.com/dargueta/adfuse/drivers/adfs"
	"github.com/dargueta/adfuse/namespace"
	"github.com/dargueta/adfuse/utilities/compression"
)

// openDisc decodes the image at `imagePath`, expanding it first if its name
// says it's compressed. The decoder reads everything it needs up front, so the
// file is closed before returning.
func openDisc(imagePath string, verify bool) (*adfs.Disc, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var stream io.ReadSeeker = file
	if compression.IsCompressedImageName(imagePath) {
		data, err := compression.DecompressImageToBytes(file)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", imagePath, err)
		}
		stream = bytesextra.NewReadWriteSeeker(data)
	}

	disc, err := adfs.NewDisc(stream, verify)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagePath, err)
	}
	return disc, nil
}

func openNamespace(c *cli.Context, imagePath string, options namespace.Options) (*adfs.Disc, *namespace.Namespace, error) {
	disc, err := openDisc(imagePath, !c.Bool("no-verify"))
	if err != nil {
		return nil, nil, err
	}

	options.Uid = uint32(os.Getuid())
	options.Gid = uint32(os.Getgid())
	return disc, namespace.FromDisc(disc, options), nil
}
