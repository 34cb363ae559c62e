package mount

import (
	"errors"
	"syscall"

	"github.com/dargueta/adfuse"
)

// hostErrnos translates portable error codes to the host's. EUCLEAN and
// EMEDIUMTYPE aren't defined everywhere, so they're reported as EIO.
var hostErrnos = map[adfuse.Errno]syscall.Errno{
	adfuse.EOK:          0,
	adfuse.EPERM:        syscall.EPERM,
	adfuse.ENOENT:       syscall.ENOENT,
	adfuse.EIO:          syscall.EIO,
	adfuse.EBADF:        syscall.EBADF,
	adfuse.EACCES:       syscall.EACCES,
	adfuse.EBUSY:        syscall.EBUSY,
	adfuse.EEXIST:       syscall.EEXIST,
	adfuse.ENOTDIR:      syscall.ENOTDIR,
	adfuse.EISDIR:       syscall.EISDIR,
	adfuse.EINVAL:       syscall.EINVAL,
	adfuse.EFBIG:        syscall.EFBIG,
	adfuse.EROFS:        syscall.EROFS,
	adfuse.ERANGE:       syscall.ERANGE,
	adfuse.ENAMETOOLONG: syscall.ENAMETOOLONG,
	adfuse.ENOSYS:       syscall.ENOSYS,
	adfuse.ENOTEMPTY:    syscall.ENOTEMPTY,
	adfuse.ELOOP:        syscall.ELOOP,
	adfuse.ENOTSUP:      syscall.ENOTSUP,
	adfuse.EALREADY:     syscall.EALREADY,
	adfuse.EUCLEAN:      syscall.EIO,
	adfuse.EMEDIUMTYPE:  syscall.EIO,
}

// ToErrno converts an error returned by [Operations] to the code reported to
// the kernel. Errors that aren't a [adfuse.DriverError] become EIO.
func ToErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	var driverErr adfuse.DriverError
	if errors.As(err, &driverErr) {
		if code, ok := hostErrnos[driverErr.Errno()]; ok {
			return code
		}
	}
	return syscall.EIO
}
