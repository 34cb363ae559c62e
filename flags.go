package adfuse

import "os"

const (
	S_IXOTH = 1 << iota // 00001
	S_IWOTH = 1 << iota // 00002
	S_IROTH = 1 << iota
	S_IXGRP = 1 << iota
	S_IWGRP = 1 << iota // 00010
	S_IRGRP = 1 << iota
	S_IXUSR = 1 << iota
	S_IWUSR = 1 << iota
	S_IRUSR = 1 << iota // 00100
	S_ISVTX = 1 << iota
	S_ISGID = 1 << iota
	S_ISUID = 1 << iota
	S_IFIFO = 1 << iota // 01000
	S_IFCHR = 1 << iota // 02000
	S_IFDIR = 1 << iota // 04000
	S_IFREG = 1 << iota // 08000
)

const S_IFLNK = 0xa000 // 1010 0000 0000 0000
const S_IFMT = 0xf000

// IOFlags are the flags passed to open(2), as delivered by the host.
type IOFlags int

const O_RDONLY = IOFlags(os.O_RDONLY)
const O_WRONLY = IOFlags(os.O_WRONLY)
const O_RDWR = IOFlags(os.O_RDWR)
const O_APPEND = IOFlags(os.O_APPEND)
const O_CREATE = IOFlags(os.O_CREATE)
const O_TRUNC = IOFlags(os.O_TRUNC)

// RequiresWritePerm returns true if a file opened with these flags could
// modify the file system.
func (flags IOFlags) RequiresWritePerm() bool {
	return flags&(O_WRONLY|O_RDWR|O_APPEND|O_CREATE|O_TRUNC) != 0
}
