package namespace

import (
	"fmt"
	"strings"

	"github.com/dargueta/adfuse/drivers/adfs"
)

// NameEncoder turns raw RISC OS names into names that are legal in a POSIX
// path.
type NameEncoder struct {
	extended bool
	sniffers Registry
}

// NewNameEncoder creates an encoder for a disc of type `discType`. `sniffers`
// may be nil, in which case filetypes are taken from load addresses as-is.
func NewNameEncoder(discType string, sniffers Registry) NameEncoder {
	return NameEncoder{
		extended: adfs.IsExtendedDiscType(discType),
		sniffers: sniffers,
	}
}

// Extended returns true if the encoder adds filetype suffixes.
func (e NameEncoder) Extended() bool {
	return e.extended
}

// Encode returns the display name of `entry`. Every "/" becomes ".". On
// extended discs, files whose names have no "." get a suffix with their
// filetype, e.g. "Notes.fff".
func (e NameEncoder) Encode(entry adfs.Entry) string {
	name := strings.ReplaceAll(entry.RawName(), "/", ".")

	file, isFile := entry.(*adfs.FileEntry)
	if !e.extended || !isFile || strings.Contains(name, ".") {
		return name
	}
	return fmt.Sprintf("%s.%03x", name, e.FileType(file).Code)
}

// FileType returns the filetype of `file` from its load address, refined by
// the sniffer registered for it.
func (e NameEncoder) FileType(file *adfs.FileEntry) FileType {
	code := file.FileType()
	guess := FileType{
		Code:   code,
		MIME:   MIMETypeFor(code),
		Length: int64(file.Length),
	}

	sniffer, ok := e.sniffers[file.LoadAddress&0xFFF00]
	if !ok {
		return guess
	}
	return sniffer(file, guess)
}
