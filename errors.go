package adfuse

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Errno is a portable POSIX error code. The syscall package doesn't define
// all the values we need on all systems, particularly things like EUCLEAN, so
// translating these to host codes is left to the call boundary.
type Errno int

const (
	EOK Errno = iota
	EPERM
	ENOENT
	EIO
	EBADF
	EACCES
	EBUSY
	EEXIST
	ENOTDIR
	EISDIR
	EINVAL
	EFBIG
	EROFS
	ERANGE
	ENAMETOOLONG
	ENOSYS
	ENOTEMPTY
	ELOOP
	ENOTSUP
	EALREADY
	EUCLEAN
	EMEDIUMTYPE
)

var errorMessagesByCode = map[Errno]string{
	EOK:          "Success",
	EPERM:        "Operation not permitted",
	ENOENT:       "No such file or directory",
	EIO:          "Input/output error",
	EBADF:        "Bad file descriptor",
	EACCES:       "Permission denied",
	EBUSY:        "Device or resource busy",
	EEXIST:       "File exists",
	ENOTDIR:      "Not a directory",
	EISDIR:       "Is a directory",
	EINVAL:       "Invalid argument",
	EFBIG:        "File too large",
	EROFS:        "Read-only file system",
	ERANGE:       "Numerical result out of range",
	ENAMETOOLONG: "File name too long",
	ENOSYS:       "Function not implemented",
	ENOTEMPTY:    "Directory not empty",
	ELOOP:        "Too many levels of symbolic links",
	ENOTSUP:      "Operation not supported",
	EALREADY:     "Operation already in progress",
	EUCLEAN:      "Structure needs cleaning",
	EMEDIUMTYPE:  "Wrong medium type",
}

// StrError returns the POSIX message for an error code.
func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}

// DriverError is a wrapper around an [Errno] code, with a customizable error
// message. Every error produced by this module that can cross the call
// boundary is a DriverError, so the boundary can always recover a code.
type DriverError interface {
	error
	Errno() Errno
	Unwrap() error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

var ErrAlreadyInProgress = New(EALREADY)
var ErrArgumentOutOfRange = New(ERANGE)
var ErrBusy = New(EBUSY)
var ErrDirectoryNotEmpty = New(ENOTEMPTY)
var ErrExists = New(EEXIST)
var ErrFileSystemCorrupted = New(EUCLEAN)
var ErrFileTooLarge = New(EFBIG)
var ErrInvalidArgument = New(EINVAL)
var ErrInvalidFileDescriptor = New(EBADF)
var ErrInvalidFileSystem = New(EMEDIUMTYPE)
var ErrIOFailed = New(EIO)
var ErrIsADirectory = New(EISDIR)
var ErrLinkCycleDetected = New(ELOOP)
var ErrNameTooLong = New(ENAMETOOLONG)
var ErrNotADirectory = New(ENOTDIR)
var ErrNotFound = New(ENOENT)
var ErrNotImplemented = New(ENOSYS)
var ErrNotPermitted = New(EPERM)
var ErrNotSupported = New(ENOTSUP)
var ErrPermissionDenied = New(EACCES)
var ErrReadOnlyFileSystem = New(EROFS)

type driverError struct {
	errno         Errno
	message       string
	originalError error
}

// New creates a new [DriverError] with a default message derived from the
// error code.
func New(code Errno) DriverError {
	return driverError{
		errno:   code,
		message: StrError(code),
	}
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e driverError) Error() string {
	return e.message
}

func (e driverError) Errno() Errno {
	return e.errno
}

func (e driverError) Unwrap() error {
	return e.originalError
}

// WithMessage returns a copy of the error with `message` appended. The result
// still matches the receiver with [errors.Is].
func (e driverError) WithMessage(message string) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

// Wrap returns a new error with the same code as the receiver whose causes are
// both the receiver and `err`.
func (e driverError) Wrap(err error) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.message, err.Error()),
		originalError: multierror.Append(e, err),
	}
}
