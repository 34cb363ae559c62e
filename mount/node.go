package mount

import (
	"context"
	"path"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"

	"github.com/dargueta/adfuse"
)

// Node is a go-fuse inode for one path in the namespace. It holds nothing but
// the path; every call goes through [Operations].
type Node struct {
	fs.Inode

	ops  *Operations
	path string
}

// NewRoot creates the root node for a mount.
func NewRoot(ops *Operations) *Node {
	return &Node{ops: ops, path: "/"}
}

var _ fs.InodeEmbedder = (*Node)(nil)
var _ fs.NodeGetattrer = (*Node)(nil)
var _ fs.NodeLookuper = (*Node)(nil)
var _ fs.NodeReaddirer = (*Node)(nil)
var _ fs.NodeOpener = (*Node)(nil)
var _ fs.NodeReader = (*Node)(nil)
var _ fs.NodeStatfser = (*Node)(nil)
var _ fs.NodeReleaser = (*Node)(nil)
var _ fs.NodeFsyncer = (*Node)(nil)
var _ fs.NodeSetattrer = (*Node)(nil)
var _ fs.NodeWriter = (*Node)(nil)
var _ fs.NodeCreater = (*Node)(nil)
var _ fs.NodeMkdirer = (*Node)(nil)
var _ fs.NodeMknoder = (*Node)(nil)
var _ fs.NodeUnlinker = (*Node)(nil)
var _ fs.NodeRmdirer = (*Node)(nil)
var _ fs.NodeRenamer = (*Node)(nil)
var _ fs.NodeSymlinker = (*Node)(nil)
var _ fs.NodeLinker = (*Node)(nil)
var _ fs.NodeReadlinker = (*Node)(nil)

func (n *Node) child(name string) string {
	return path.Join(n.path, name)
}

func pathOf(node fs.InodeEmbedder) string {
	if other, ok := node.(*Node); ok {
		return other.path
	}
	return "/"
}

func fillAttr(stat adfuse.FileStat, out *gofuse.Attr) {
	out.Ino = stat.InodeNumber
	out.Mode = stat.ModeFlags
	out.Nlink = uint32(stat.Nlinks)
	out.Uid = stat.Uid
	out.Gid = stat.Gid
	out.Size = uint64(stat.Size)
	out.Blocks = uint64(stat.NumBlocks)
	out.Blksize = uint32(stat.BlockSize)

	mtime := stat.LastModified
	out.SetTimes(&mtime, &mtime, &mtime)
}

func (n *Node) Getattr(ctx context.Context, fh fs.FileHandle, out *gofuse.AttrOut) syscall.Errno {
	stat, err := n.ops.Getattr(n.path)
	if err != nil {
		return ToErrno(err)
	}
	fillAttr(stat, &out.Attr)
	return 0
}

func (n *Node) Lookup(ctx context.Context, name string, out *gofuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := n.child(name)
	stat, err := n.ops.Getattr(childPath)
	if err != nil {
		return nil, ToErrno(err)
	}
	fillAttr(stat, &out.Attr)

	child := &Node{ops: n.ops, path: childPath}
	stableAttr := fs.StableAttr{Mode: stat.ModeFlags & syscall.S_IFMT}
	return n.NewInode(ctx, child, stableAttr), 0
}

func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	children, err := n.ops.Readdir(n.path)
	if err != nil {
		return nil, ToErrno(err)
	}

	entries := make([]gofuse.DirEntry, 0, len(children))
	for _, child := range children {
		entries = append(entries, gofuse.DirEntry{
			Name: child.Name,
			Ino:  child.Ino,
			Mode: child.Mode,
		})
	}
	return fs.NewListDirStream(entries), 0
}

// Open never returns a file handle. Reads go straight to [Node.Read], and the
// kernel may cache them since the image never changes.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	_, err := n.ops.Open(n.path, adfuse.IOFlags(flags))
	if err != nil {
		return nil, 0, ToErrno(err)
	}
	return nil, gofuse.FOPEN_KEEP_CACHE, 0
}

func (n *Node) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (gofuse.ReadResult, syscall.Errno) {
	data, err := n.ops.Read(n.path, len(dest), off)
	if err != nil {
		return nil, ToErrno(err)
	}
	return gofuse.ReadResultData(data), 0
}

func (n *Node) Statfs(ctx context.Context, out *gofuse.StatfsOut) syscall.Errno {
	stat := n.ops.Statfs()
	out.Bsize = uint32(stat.BlockSize)
	out.Frsize = uint32(stat.BlockSize)
	out.Blocks = stat.TotalBlocks
	out.Bfree = stat.BlocksFree
	out.Bavail = stat.BlocksFree
	out.Files = stat.Files
	out.Ffree = stat.FilesFree
	out.NameLen = uint32(stat.MaxNameLen)
	return 0
}

func (n *Node) Release(ctx context.Context, fh fs.FileHandle) syscall.Errno {
	return ToErrno(n.ops.Release(n.path))
}

func (n *Node) Fsync(ctx context.Context, fh fs.FileHandle, flags uint32) syscall.Errno {
	return ToErrno(n.ops.Fsync(n.path))
}

// Setattr dispatches to the call matching the attribute being changed, all of
// which fail.
func (n *Node) Setattr(ctx context.Context, fh fs.FileHandle, in *gofuse.SetAttrIn, out *gofuse.AttrOut) syscall.Errno {
	size, hasSize := in.GetSize()
	mode, hasMode := in.GetMode()
	uid, hasUID := in.GetUID()
	gid, hasGID := in.GetGID()
	atime, hasATime := in.GetATime()
	mtime, hasMTime := in.GetMTime()

	var err error
	switch {
	case hasSize:
		err = n.ops.Truncate(n.path, int64(size))
	case hasMode:
		err = n.ops.Chmod(n.path, mode)
	case hasUID || hasGID:
		err = n.ops.Chown(n.path, uid, gid)
	case hasATime || hasMTime:
		err = n.ops.Utime(n.path, atime, mtime)
	default:
		err = n.ops.Setattr(n.path)
	}
	return ToErrno(err)
}

func (n *Node) Write(ctx context.Context, fh fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.ops.Write(n.path, data, off)
	return uint32(written), ToErrno(err)
}

func (n *Node) Create(
	ctx context.Context,
	name string,
	flags uint32,
	mode uint32,
	out *gofuse.EntryOut,
) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	err := n.ops.Create(n.child(name), adfuse.IOFlags(flags), mode)
	return nil, nil, 0, ToErrno(err)
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *gofuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, ToErrno(n.ops.Mkdir(n.child(name), mode))
}

func (n *Node) Mknod(ctx context.Context, name string, mode, dev uint32, out *gofuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, ToErrno(n.ops.Mknod(n.child(name), mode, dev))
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return ToErrno(n.ops.Unlink(n.child(name)))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return ToErrno(n.ops.Rmdir(n.child(name)))
}

func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	newPath := path.Join(pathOf(newParent), newName)
	return ToErrno(n.ops.Rename(n.child(name), newPath))
}

func (n *Node) Symlink(ctx context.Context, target, name string, out *gofuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, ToErrno(n.ops.Symlink(target, n.child(name)))
}

func (n *Node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *gofuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, ToErrno(n.ops.Link(pathOf(target), n.child(name)))
}

func (n *Node) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	target, err := n.ops.Readlink(n.path)
	if err != nil {
		return nil, ToErrno(err)
	}
	return []byte(target), 0
}
