package namespace

import (
	"fmt"
	"strings"
	"time"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/adfs"
)

// SidecarSuffix is appended to a file's name to get the name of its sidecar.
const SidecarSuffix = ".inf"

// Namespace resolves slash-separated paths against the directory tree of a
// disc. It's immutable and safe to use from multiple goroutines.
type Namespace struct {
	root     []adfs.Entry
	discType string
	encoder  NameEncoder
	options  Options
}

// New creates a namespace over `root`, the entries of the root directory of a
// disc of type `discType`.
func New(root []adfs.Entry, discType string, options Options) *Namespace {
	if options.Sniffers == nil {
		options.Sniffers = DefaultRegistry()
	}
	if options.MountTime.IsZero() {
		options.MountTime = time.Now()
	}
	return &Namespace{
		root:     root,
		discType: discType,
		encoder:  NewNameEncoder(discType, options.Sniffers),
		options:  options,
	}
}

// FromDisc creates a namespace over a decoded disc.
func FromDisc(disc *adfs.Disc, options Options) *Namespace {
	return New(disc.Root, disc.DiscType, options)
}

func (ns *Namespace) DiscType() string {
	return ns.discType
}

func (ns *Namespace) Encoder() NameEncoder {
	return ns.encoder
}

// Root returns the root directory.
func (ns *Namespace) Root() *Directory {
	return ns.directory("/", ns.root)
}

// SplitPath splits a path on "/", dropping empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Resolve finds the object at `path`, which is relative to the root whether or
// not it starts with "/". If nothing matches, it returns [adfuse.ErrNotFound].
func (ns *Namespace) Resolve(path string) (Node, error) {
	return ns.ResolveIn(SplitPath(path), ns.root)
}

// ResolveIn finds the object at `segments` below a directory holding
// `entries`. An empty `segments` resolves to the root.
//
// Entries are checked in the order they're stored, and the first match wins.
// A file matches if its encoded name is the next segment. On discs without
// filetypes, "<name>.inf" also matches a file and resolves to its sidecar.
// Neither can have anything below them.
func (ns *Namespace) ResolveIn(segments []string, entries []adfs.Entry) (Node, error) {
	if len(segments) == 0 {
		return ns.directory("/", entries), nil
	}

	head := segments[0]
	last := len(segments) == 1

	for _, entry := range entries {
		name := ns.encoder.Encode(entry)

		switch e := entry.(type) {
		case *adfs.FileEntry:
			if name == head {
				if last {
					return ns.file(name, e), nil
				}
				return nil, notFound(segments)
			}
			if !ns.encoder.Extended() && head == name+SidecarSuffix {
				if last {
					return ns.sidecarFor(name, e), nil
				}
				return nil, notFound(segments)
			}
		case *adfs.DirectoryEntry:
			if name == head {
				if last {
					return ns.directory(name, e.Children), nil
				}
				return ns.ResolveIn(segments[1:], e.Children)
			}
		}
	}
	return nil, notFound(segments)
}

// CountFiles gives the number of files stored on the disc, not counting
// sidecars.
func (ns *Namespace) CountFiles() uint64 {
	return countFiles(ns.root)
}

func countFiles(entries []adfs.Entry) uint64 {
	var total uint64
	for _, entry := range entries {
		switch e := entry.(type) {
		case *adfs.FileEntry:
			total++
		case *adfs.DirectoryEntry:
			total += countFiles(e.Children)
		}
	}
	return total
}

// SidecarContent gives the text of the sidecar for `file`, shown as `name`:
// the name, load address, execution address and length, tab-separated in
// uppercase hex.
func SidecarContent(name string, file *adfs.FileEntry) []byte {
	return []byte(
		fmt.Sprintf(
			"%s\t%X\t%X\t%X\n",
			name,
			file.LoadAddress,
			file.ExecAddress,
			file.Length,
		),
	)
}

func (ns *Namespace) nodeFor(name string, entry adfs.Entry) Node {
	switch e := entry.(type) {
	case *adfs.FileEntry:
		return ns.file(name, e)
	case *adfs.DirectoryEntry:
		return ns.directory(name, e.Children)
	}
	panic(fmt.Sprintf("unexpected entry type %T", entry))
}

func (ns *Namespace) file(name string, entry *adfs.FileEntry) *File {
	return &File{
		name:    name,
		owner:   &ns.options,
		Content: entry.Data,
		Entry:   entry,
	}
}

func (ns *Namespace) sidecarFor(name string, entry *adfs.FileEntry) *File {
	content := SidecarContent(name, entry)
	sidecarName := name + SidecarSuffix
	return &File{
		name:    sidecarName,
		owner:   &ns.options,
		Content: content,
		Entry: &adfs.FileEntry{
			Name:   sidecarName,
			Data:   content,
			Length: uint32(len(content)),
		},
		IsSynthetic: true,
	}
}

func (ns *Namespace) directory(name string, entries []adfs.Entry) *Directory {
	return &Directory{name: name, ns: ns, Entries: entries}
}

func notFound(segments []string) error {
	return adfuse.ErrNotFound.WithMessage(strings.Join(segments, "/"))
}
