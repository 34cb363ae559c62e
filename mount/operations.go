// Package mount serves a [namespace.Namespace] over FUSE.
//
// [Operations] is the call boundary: one method per file system call, taking
// paths and returning [adfuse.DriverError] values. It has no dependency on the
// kernel and is what the tests exercise. [Node] binds it to go-fuse.
package mount

import (
	"time"

	"go.uber.org/zap"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/adfs"
	"github.com/dargueta/adfuse/logging"
	"github.com/dargueta/adfuse/namespace"
)

// MaxNameLength is the longest name reported by statfs.
const MaxNameLength = 255

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	Name string
	// Ino is always 0, leaving the host to assign inode numbers.
	Ino  uint64
	Mode uint32
}

// Operations answers file system calls against a read-only namespace. Every
// call resolves its path from scratch. It's safe for concurrent use.
type Operations struct {
	ns   *namespace.Namespace
	disc *adfs.Disc
}

// NewOperations creates the call boundary for `ns`, which must have been built
// from `disc`.
func NewOperations(ns *namespace.Namespace, disc *adfs.Disc) *Operations {
	return &Operations{ns: ns, disc: disc}
}

func (o *Operations) Namespace() *namespace.Namespace {
	return o.ns
}

func trace(op, path string, err error, fields ...zap.Field) {
	fields = append(fields, logging.String("op", op), logging.String("path", path))
	if err != nil {
		fields = append(fields, logging.String("errno", ToErrno(err).Error()), logging.Err(err))
	}
	logging.Debug("fuse call", fields...)
}

func (o *Operations) Getattr(path string) (adfuse.FileStat, error) {
	node, err := o.ns.Resolve(path)
	trace("getattr", path, err)
	if err != nil {
		return adfuse.FileStat{}, err
	}
	return node.Attributes(), nil
}

// Readdir lists the directory at `path`.
func (o *Operations) Readdir(path string) ([]DirEntry, error) {
	node, err := o.ns.Resolve(path)
	if err == nil {
		if _, isDir := node.(*namespace.Directory); !isDir {
			err = adfuse.ErrNotADirectory.WithMessage(path)
		}
	}
	trace("readdir", path, err)
	if err != nil {
		return nil, err
	}

	entries := []DirEntry{}
	for child := range node.(*namespace.Directory).Children() {
		entries = append(
			entries,
			DirEntry{
				Name: child.Name(),
				Mode: child.Attributes().ModeFlags,
			},
		)
	}
	return entries, nil
}

// Open checks that the file at `path` can be opened with `flags`. Any flag
// that could modify the file is refused. The handle is always 0.
func (o *Operations) Open(path string, flags adfuse.IOFlags) (uint64, error) {
	var err error
	if flags.RequiresWritePerm() {
		err = adfuse.ErrPermissionDenied.WithMessage("the file system is read-only")
	} else {
		var node namespace.Node
		node, err = o.ns.Resolve(path)
		if _, isDir := node.(*namespace.Directory); err == nil && isDir {
			err = adfuse.ErrIsADirectory.WithMessage(path)
		}
	}

	trace("open", path, err, zap.Int("flags", int(flags)))
	return 0, err
}

// Read returns at most `length` bytes of the file at `path`, starting at
// `offset`.
func (o *Operations) Read(path string, length int, offset int64) ([]byte, error) {
	node, err := o.ns.Resolve(path)
	if err == nil {
		if _, isFile := node.(*namespace.File); !isFile {
			err = adfuse.ErrNotFound.WithMessage(path + " is not a file")
		}
	}
	trace("read", path, err, logging.Int("length", length), logging.Int64("offset", offset))
	if err != nil {
		return nil, err
	}
	return node.(*namespace.File).ReadAt(length, offset), nil
}

// Statfs reports the size of the disc in sectors and the number of files on
// it. Nothing is ever free.
func (o *Operations) Statfs() adfuse.FSStat {
	trace("statfs", "/", nil)
	return adfuse.FSStat{
		BlockSize:   int64(o.disc.SectorSize),
		TotalBlocks: uint64(o.disc.TotalSectors()),
		BlocksFree:  0,
		Files:       o.ns.CountFiles(),
		FilesFree:   0,
		MaxNameLen:  MaxNameLength,
	}
}

func (o *Operations) Release(path string) error {
	trace("release", path, nil)
	return nil
}

func (o *Operations) Fsync(path string) error {
	trace("fsync", path, nil)
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// Calls that would modify the image

func readOnly(op, path string) error {
	err := adfuse.ErrPermissionDenied.WithMessage(op + ": the file system is read-only")
	trace(op, path, err)
	return err
}

func (o *Operations) Write(path string, data []byte, offset int64) (int, error) {
	return 0, readOnly("write", path)
}

func (o *Operations) Truncate(path string, size int64) error {
	return readOnly("truncate", path)
}

func (o *Operations) Unlink(path string) error {
	return readOnly("unlink", path)
}

func (o *Operations) Rmdir(path string) error {
	return readOnly("rmdir", path)
}

func (o *Operations) Rename(oldPath, newPath string) error {
	return readOnly("rename", oldPath)
}

func (o *Operations) Chmod(path string, mode uint32) error {
	return readOnly("chmod", path)
}

func (o *Operations) Chown(path string, uid, gid uint32) error {
	return readOnly("chown", path)
}

func (o *Operations) Utime(path string, atime, mtime time.Time) error {
	return readOnly("utime", path)
}

func (o *Operations) Mknod(path string, mode, dev uint32) error {
	return readOnly("mknod", path)
}

func (o *Operations) Mkdir(path string, mode uint32) error {
	return readOnly("mkdir", path)
}

func (o *Operations) Create(path string, flags adfuse.IOFlags, mode uint32) error {
	return readOnly("create", path)
}

// Setattr refuses attribute changes not covered by a more specific call.
func (o *Operations) Setattr(path string) error {
	return readOnly("setattr", path)
}

////////////////////////////////////////////////////////////////////////////////
// Links

func notSupported(op, path string) error {
	err := adfuse.ErrNotSupported.WithMessage(op + ": ADFS has no links")
	trace(op, path, err)
	return err
}

func (o *Operations) Symlink(target, path string) error {
	return notSupported("symlink", path)
}

func (o *Operations) Link(target, path string) error {
	return notSupported("link", path)
}

func (o *Operations) Readlink(path string) (string, error) {
	return "", notSupported("readlink", path)
}
