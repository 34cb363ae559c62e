package namespace

import "github.com/dargueta/adfuse/drivers/adfs"

// FileType is what's known about the contents of a file: its 12-bit RISC OS
// filetype, a MIME type hint if one is known, and the length of the data it
// represents.
type FileType struct {
	Code   uint16
	MIME   string
	Length int64
}

// A Sniffer refines the filetype of a file by looking at its contents. It's
// given the default guess derived from the file's load address and returns the
// refined one.
type Sniffer func(file *adfs.FileEntry, guess FileType) FileType

// Registry maps a masked load address (`load & 0xFFF00`) to the sniffer for
// that filetype. It must not be modified once in use.
type Registry map[uint32]Sniffer

const (
	SquashFileType = 0xFCA
	SparkFileType  = 0xDDC
)

// RegistryKey gives the key a sniffer for `fileType` is registered under.
func RegistryKey(fileType uint16) uint32 {
	return uint32(fileType) << 8
}

// DefaultRegistry returns a new registry with every built-in sniffer.
func DefaultRegistry() Registry {
	return Registry{
		RegistryKey(SquashFileType): SniffSquash,
		RegistryKey(SparkFileType):  SniffSpark,
	}
}

// SniffSquash looks inside a Squash compressed file. Its header gives the
// length of the uncompressed data at offset 4 and the original load address
// at offset 8. The MIME type is left empty since it depends on the compressed
// data.
func SniffSquash(file *adfs.FileEntry, guess FileType) FileType {
	result := FileType{Code: SquashFileType, Length: guess.Length}
	if len(file.Data) >= 8 {
		result.Length = int64(adfs.ReadUint(file.Data, 4, 4))
	}
	if len(file.Data) >= 12 {
		result.Code = uint16((adfs.ReadUint(file.Data, 8, 4) >> 8) & 0xFFF)
	}
	return result
}

// SniffSpark returns the guess unchanged. Spark archives aren't inspected.
func SniffSpark(_ *adfs.FileEntry, guess FileType) FileType {
	return guess
}
