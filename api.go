package adfuse

import (
	"os"
	"time"
)

// FileStat is the consolidated set of POSIX attributes for a single object in
// the namespace. It replaces the positional stat tuple a host would otherwise
// expect.
//
// File systems that don't track a field leave it at its zero value, except for
// `Nlinks` which must be at least 1.
type FileStat struct {
	InodeNumber  uint64
	Nlinks       uint64
	ModeFlags    uint32
	Uid          uint32
	Gid          uint32
	Size         int64
	BlockSize    int64
	NumBlocks    int64
	LastModified time.Time
}

// IsDir returns true if the stat describes a directory.
func (stat *FileStat) IsDir() bool {
	return stat.ModeFlags&S_IFMT == S_IFDIR
}

// IsFile returns true if the stat describes a regular file.
func (stat *FileStat) IsFile() bool {
	return stat.ModeFlags&S_IFMT == S_IFREG
}

// FileMode converts the POSIX mode flags into an [os.FileMode].
func (stat *FileStat) FileMode() os.FileMode {
	mode := os.FileMode(stat.ModeFlags & 0o777)
	if stat.IsDir() {
		mode |= os.ModeDir
	}
	return mode
}

// FSStat is the result of a statfs(2) call on a mounted image.
type FSStat struct {
	BlockSize   int64
	TotalBlocks uint64
	BlocksFree  uint64
	Files       uint64
	FilesFree   uint64
	MaxNameLen  int64
}

// DirectoryEntry is a single named object in a directory listing. It
// implements [os.FileInfo].
type DirectoryEntry struct {
	name string
	Stat FileStat
}

// NewDirectoryEntry creates a [DirectoryEntry] for an object shown as `name`.
func NewDirectoryEntry(name string, stat FileStat) DirectoryEntry {
	return DirectoryEntry{name: name, Stat: stat}
}

// Name returns the base name of the directory entry on the file system.
func (d DirectoryEntry) Name() string {
	return d.name
}

// Size returns the size of the object in bytes.
func (d DirectoryEntry) Size() int64 {
	return d.Stat.Size
}

// ModTime returns the timestamp of the DirectoryEntry.
func (d DirectoryEntry) ModTime() time.Time {
	return d.Stat.LastModified
}

// Mode returns the file system mode of the directory as an os.FileMode. If you need more
// detailed information, see DirectoryEntry.Stat.
func (d DirectoryEntry) Mode() os.FileMode {
	return d.Stat.FileMode()
}

// IsDir returns true if it's a directory.
func (d DirectoryEntry) IsDir() bool {
	return d.Stat.IsDir()
}

// Sys returns a copy of the [FileStat] backing this directory entry.
func (d DirectoryEntry) Sys() any {
	return d.Stat
}
