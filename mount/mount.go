package mount

import (
	"fmt"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	gofuse "github.com/hanwen/go-fuse/v2/fuse"

	"github.com/dargueta/adfuse/logging"
)

// DefaultTimeout is how long the kernel may cache entries and attributes.
const DefaultTimeout = 10 * time.Second

// Options control how an image is mounted.
type Options struct {
	// FsName is shown as the source of the mount, usually the image path.
	FsName     string
	AllowOther bool
	// Debug logs every FUSE request and reply.
	Debug bool
	// Timeout overrides [DefaultTimeout] for entry, attribute and negative
	// lookups.
	Timeout time.Duration
}

// Mount serves `ops` read-only at `mountPoint`, which must be an existing
// directory. The caller should Wait() on the returned server and Unmount() it
// when done.
func Mount(mountPoint string, ops *Operations, options Options) (*gofuse.Server, error) {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	fsName := options.FsName
	if fsName == "" {
		fsName = "adfs"
	}

	opts := &fs.Options{
		EntryTimeout:    &timeout,
		AttrTimeout:     &timeout,
		NegativeTimeout: &timeout,
		MountOptions: gofuse.MountOptions{
			AllowOther: options.AllowOther,
			Debug:      options.Debug,
			FsName:     fsName,
			Name:       "adfs",
			Options:    []string{"ro"},
		},
	}

	server, err := fs.Mount(mountPoint, NewRoot(ops), opts)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", mountPoint, err)
	}

	logging.Info(
		"mounted image",
		logging.String("mountpoint", mountPoint),
		logging.String("source", fsName),
		logging.String("disc_type", ops.Namespace().DiscType()),
	)
	return server, nil
}
