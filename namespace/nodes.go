package namespace

import (
	"iter"
	"time"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/adfs"
)

// DefaultBlockSize is the block size reported for every object.
const DefaultBlockSize = 512

// Node is a resolved object in the namespace: either a [*File] or a
// [*Directory].
type Node interface {
	// Name gives the encoded name of the object, or "/" for the root.
	Name() string
	Attributes() adfuse.FileStat
	isNode()
}

// File is a regular file, either stored on the disc or synthesized from the
// metadata of one.
type File struct {
	name    string
	owner   *Options
	Content []byte
	// Entry is the entry the file was resolved from. For a synthetic sidecar
	// it's a made-up entry holding the sidecar's own content.
	Entry       *adfs.FileEntry
	IsSynthetic bool
}

func (f *File) Name() string {
	return f.name
}

func (*File) isNode() {}

// Attributes gives the stat for the file. Files are read-only for their owner
// and are timestamped from their load and execution addresses.
func (f *File) Attributes() adfuse.FileStat {
	size := int64(len(f.Content))
	return adfuse.FileStat{
		Nlinks:       1,
		ModeFlags:    adfuse.S_IFREG | adfuse.S_IRUSR,
		Uid:          f.owner.Uid,
		Gid:          f.owner.Gid,
		Size:         size,
		BlockSize:    DefaultBlockSize,
		NumBlocks:    (size + DefaultBlockSize - 1) / DefaultBlockSize,
		LastModified: RISCOSTime(f.Entry.LoadAddress, f.Entry.ExecAddress),
	}
}

// ReadAt returns at most `length` bytes of the file's content starting at
// `offset`. Reading at or past the end of the file, or at a negative offset,
// gives an empty slice. The returned slice must not be modified.
func (f *File) ReadAt(length int, offset int64) []byte {
	size := int64(len(f.Content))
	if offset < 0 || offset >= size || length <= 0 {
		return []byte{}
	}

	end := offset + int64(length)
	if end > size {
		end = size
	}
	return f.Content[offset:end]
}

// Directory is a directory stored on the disc, or the root.
type Directory struct {
	name    string
	ns      *Namespace
	Entries []adfs.Entry
}

func (d *Directory) Name() string {
	return d.name
}

func (*Directory) isNode() {}

// Attributes gives the stat for the directory. Directories keep no timestamp
// of their own, so they all show the time the namespace was created.
func (d *Directory) Attributes() adfuse.FileStat {
	return adfuse.FileStat{
		Nlinks:       2,
		ModeFlags:    adfuse.S_IFDIR | adfuse.S_IRUSR | adfuse.S_IXUSR,
		Uid:          d.ns.options.Uid,
		Gid:          d.ns.options.Gid,
		BlockSize:    DefaultBlockSize,
		LastModified: d.ns.options.MountTime,
	}
}

// Children yields the immediate children of the directory under their encoded
// names, in the order they're stored. Where two children encode to the same
// name only the first is yielded, matching what [Namespace.Resolve] returns
// for that name. Names that can't appear in a POSIX listing are skipped.
func (d *Directory) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		seen := make(map[string]struct{}, len(d.Entries))
		emit := func(node Node) bool {
			name := node.Name()
			if name == "" || name == "." || name == ".." {
				return true
			}
			if _, exists := seen[name]; exists {
				return true
			}
			seen[name] = struct{}{}
			return yield(node)
		}

		listSidecars := d.ns.options.ListSidecars && !d.ns.encoder.Extended()
		for _, entry := range d.Entries {
			name := d.ns.encoder.Encode(entry)
			if !emit(d.ns.nodeFor(name, entry)) {
				return
			}

			file, isFile := entry.(*adfs.FileEntry)
			if listSidecars && isFile {
				if !emit(d.ns.sidecarFor(name, file)) {
					return
				}
			}
		}
	}
}

// ChildNames collects the names [Directory.Children] yields.
func (d *Directory) ChildNames() []string {
	var names []string
	for child := range d.Children() {
		names = append(names, child.Name())
	}
	return names
}

var (
	_ Node = (*File)(nil)
	_ Node = (*Directory)(nil)
)

// Options control how a namespace presents a disc.
type Options struct {
	// Sniffers refine filetypes on extended discs. If nil, [DefaultRegistry]
	// is used.
	Sniffers Registry
	// MountTime is the modification time shown for directories. If zero, the
	// time the namespace is created is used.
	MountTime time.Time
	Uid       uint32
	Gid       uint32
	// ListSidecars includes the ".inf" sidecars of files in directory
	// listings on discs that don't record filetypes. They can be resolved
	// whether or not they're listed.
	ListSidecars bool
}
