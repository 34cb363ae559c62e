package adfs

import (
	"fmt"
	"io"
	"strings"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/common"
	"github.com/dargueta/adfuse/logging"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Disc is a fully decoded ADFS disc.
//
// The exposed fields are for informational purposes only and should never be
// changed.
type Disc struct {
	// Root holds the entries of the root directory in the order they're
	// stored on the disc.
	Root      []Entry
	RootTitle string
	// DiscType identifies the layout of the disc: "ads", "adm", "adl" or "adf"
	// for old map discs with old directories, "adD" for old map discs with new
	// directories, and "adE" or "adEbig" for new map discs.
	DiscType        string
	DiscName        string
	DiscID          uint16
	BootOption      uint8
	SectorSize      uint
	SectorsPerTrack uint
	Tracks          uint
	Heads           uint
	// FreeSpace is the number of bytes the allocation map says are free.
	FreeSpace uint64
	// Problems lists every inconsistency found while decoding. When the disc
	// is opened without verification these are tolerated, otherwise any
	// problem makes [NewDisc] fail.
	Problems []error
}

// TotalSectors gives the number of sectors on the disc according to its
// geometry.
func (disc *Disc) TotalSectors() uint {
	return disc.Tracks * disc.SectorsPerTrack
}

// IsExtendedDiscType returns true for the new map disc types, whose files
// carry a filetype in their load address and need no `.inf` sidecars.
func IsExtendedDiscType(discType string) bool {
	return strings.HasPrefix(discType, "adE")
}

func (disc *Disc) IsExtended() bool {
	return IsExtendedDiscType(disc.DiscType)
}

// allocationMap turns disc addresses stored in directory entries into bytes.
type allocationMap interface {
	// readObject returns `length` bytes of the object at `address`. If the
	// object can only be partially read, the bytes that could be read are
	// returned along with an error.
	readObject(address uint32, length int) ([]byte, error)
}

type decoder struct {
	device   *common.BlockStream
	objects  allocationMap
	layout   directoryLayout
	problems *multierror.Error
	visited  map[uint32]bool
}

// NewDisc decodes the entire disc image in `stream`.
//
// If `verify` is set, any structural inconsistency (bad map checksums, broken
// directories, data past the end of the image, and so on) makes this fail with
// an error matching [adfuse.ErrFileSystemCorrupted]. Otherwise they're logged
// and recorded in [Disc.Problems], and whatever data is reachable is kept.
//
// Images that aren't recognizable as ADFS at all fail with an error matching
// [adfuse.ErrInvalidFileSystem] regardless of `verify`.
func NewDisc(stream io.ReadSeeker, verify bool) (*Disc, error) {
	device, err := common.NewBlockStream(stream, 256, 0)
	if err != nil {
		return nil, err
	}

	d := decoder{
		device:  device,
		visited: make(map[uint32]bool),
	}
	disc := &Disc{}

	// The header is allowed to be short; the format checks below look at
	// what's there.
	header, _ := device.ReadBytes(0, 0x800)

	var rootAddress uint32
	switch {
	case hasSignature(header, 0x201):
		rootAddress, err = d.openOldMap(disc, false)
	case hasSignature(header, 0x401):
		rootAddress, err = d.openOldMap(disc, true)
	default:
		rootAddress, err = d.openNewMap(disc)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug(
		"detected disc format",
		zap.String("disc_type", disc.DiscType),
		zap.Uint("sector_size", disc.SectorSize),
		zap.Uint32("root_address", rootAddress),
	)

	root := d.readDirectory(rootAddress, "$")
	disc.Root = root.Children
	disc.RootTitle = root.Title

	if d.problems != nil {
		disc.Problems = d.problems.Errors
	}
	if len(disc.Problems) > 0 {
		if verify {
			return nil, adfuse.ErrFileSystemCorrupted.Wrap(d.problems.ErrorOrNil())
		}
		for _, problem := range disc.Problems {
			logging.Warn("ignoring inconsistency in disc image", zap.Error(problem))
		}
	}
	return disc, nil
}

// problem records a structural inconsistency.
func (d *decoder) problem(format string, args ...any) {
	d.fail(adfuse.ErrFileSystemCorrupted.WithMessage(fmt.Sprintf(format, args...)))
}

func (d *decoder) fail(err error) {
	d.problems = multierror.Append(d.problems, err)
}
