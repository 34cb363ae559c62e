package mount_test

import (
	"testing"
	"time"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/drivers/adfs"
	"github.com/dargueta/adfuse/mount"
	"github.com/dargueta/adfuse/namespace"
	dt "github.com/dargueta/adfuse/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

var mountTime = time.Date(2005, 4, 9, 0, 0, 0, 0, time.UTC)

// newOperations decodes an old map S image holding "/A" and "/B/C".
func newOperations(t *testing.T, options namespace.Options) *mount.Operations {
	image := dt.BuildOldMapImage(
		t,
		"adfs-s",
		"MOUNTTEST",
		dt.File("A", 0, 0, []byte("hi")),
		dt.Dir("B", dt.File("C", 0xFFFFFF33, 0x6E996A00, []byte("0123456789"))),
	)
	disc, err := adfs.NewDisc(bytesextra.NewReadWriteSeeker(image), true)
	require.NoError(t, err)

	options.MountTime = mountTime
	return mount.NewOperations(namespace.FromDisc(disc, options), disc)
}

func TestGetattr(t *testing.T) {
	ops := newOperations(t, namespace.Options{Uid: 501, Gid: 20})

	stat, err := ops.Getattr("/")
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
	assert.Equal(t, mountTime, stat.LastModified)
	assert.EqualValues(t, 501, stat.Uid)

	stat, err = ops.Getattr("/B/C")
	require.NoError(t, err)
	assert.True(t, stat.IsFile())
	assert.EqualValues(t, 10, stat.Size)
	assert.EqualValues(t, adfuse.S_IFREG|adfuse.S_IRUSR, stat.ModeFlags)
	assert.Equal(t, time.Unix(0, 0), stat.LastModified)
	assert.EqualValues(t, 20, stat.Gid)

	stat, err = ops.Getattr("/A.inf")
	require.NoError(t, err)
	assert.EqualValues(t, len("A\t0\t0\t2\n"), stat.Size)

	_, err = ops.Getattr("/B/C/D")
	assert.ErrorIs(t, err, adfuse.ErrNotFound)
}

func TestReaddir(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	entries, err := ops.Readdir("/")
	require.NoError(t, err)
	assert.Equal(
		t,
		[]mount.DirEntry{
			{Name: "A", Mode: adfuse.S_IFREG | adfuse.S_IRUSR},
			{Name: "B", Mode: adfuse.S_IFDIR | adfuse.S_IRUSR | adfuse.S_IXUSR},
		},
		entries,
	)

	entries, err = ops.Readdir("/B")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "C", entries[0].Name)
	assert.Zero(t, entries[0].Ino)
}

func TestReaddir__Sidecars(t *testing.T) {
	ops := newOperations(t, namespace.Options{ListSidecars: true})

	entries, err := ops.Readdir("/")
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"A", "A.inf", "B"}, names)
}

func TestReaddir__Errors(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	_, err := ops.Readdir("/A")
	assert.ErrorIs(t, err, adfuse.ErrNotADirectory)

	_, err = ops.Readdir("/Nope")
	assert.ErrorIs(t, err, adfuse.ErrNotFound)
}

func TestOpen(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	handle, err := ops.Open("/A", adfuse.O_RDONLY)
	assert.NoError(t, err)
	assert.Zero(t, handle)

	_, err = ops.Open("/A.inf", adfuse.O_RDONLY)
	assert.NoError(t, err)

	_, err = ops.Open("/B", adfuse.O_RDONLY)
	assert.ErrorIs(t, err, adfuse.ErrIsADirectory)

	_, err = ops.Open("/Z", adfuse.O_RDONLY)
	assert.ErrorIs(t, err, adfuse.ErrNotFound)
}

func TestOpen__WriteIntentRefused(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	for _, flags := range []adfuse.IOFlags{
		adfuse.O_WRONLY,
		adfuse.O_RDWR,
		adfuse.O_RDONLY | adfuse.O_APPEND,
		adfuse.O_RDONLY | adfuse.O_TRUNC,
		adfuse.O_WRONLY | adfuse.O_CREATE,
	} {
		_, err := ops.Open("/A", flags)
		assert.ErrorIs(t, err, adfuse.ErrPermissionDenied, "flags %#x", flags)

		_, err = ops.Open("/does-not-exist", flags)
		assert.ErrorIs(t, err, adfuse.ErrPermissionDenied, "flags %#x", flags)
	}
}

func TestRead(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	data, err := ops.Read("/B/C", 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("3456"), data)

	data, err = ops.Read("/B/C", 100, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("89"), data)

	data, err = ops.Read("/B/C", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = ops.Read("/A.inf", 100, 0)
	require.NoError(t, err)
	assert.Equal(t, "A\t0\t0\t2\n", string(data))
}

func TestRead__Errors(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	_, err := ops.Read("/B", 10, 0)
	assert.ErrorIs(t, err, adfuse.ErrNotFound)

	_, err = ops.Read("/B/Z", 10, 0)
	assert.ErrorIs(t, err, adfuse.ErrNotFound)
}

func TestStatfs(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	assert.Equal(
		t,
		adfuse.FSStat{
			BlockSize:   256,
			TotalBlocks: 640,
			BlocksFree:  0,
			Files:       2,
			FilesFree:   0,
			MaxNameLen:  mount.MaxNameLength,
		},
		ops.Statfs(),
	)
}

func TestStatfs__LiteralDisc(t *testing.T) {
	disc := &adfs.Disc{DiscType: "adE", SectorSize: 1024, SectorsPerTrack: 5, Tracks: 160}
	ns := namespace.FromDisc(disc, namespace.Options{})
	stat := mount.NewOperations(ns, disc).Statfs()

	assert.EqualValues(t, 1024, stat.BlockSize)
	assert.EqualValues(t, 800, stat.TotalBlocks)
	assert.Zero(t, stat.Files)
}

func TestReleaseAndFsync(t *testing.T) {
	ops := newOperations(t, namespace.Options{})
	assert.NoError(t, ops.Release("/A"))
	assert.NoError(t, ops.Fsync("/A"))
}

func TestModifyingCallsRefused(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	_, err := ops.Write("/A", []byte("x"), 0)
	assert.ErrorIs(t, err, adfuse.ErrPermissionDenied)

	for name, call := range map[string]func() error{
		"truncate": func() error { return ops.Truncate("/A", 0) },
		"unlink":   func() error { return ops.Unlink("/A") },
		"rmdir":    func() error { return ops.Rmdir("/B") },
		"rename":   func() error { return ops.Rename("/A", "/Z") },
		"chmod":    func() error { return ops.Chmod("/A", 0o777) },
		"chown":    func() error { return ops.Chown("/A", 0, 0) },
		"utime":    func() error { return ops.Utime("/A", time.Now(), time.Now()) },
		"mknod":    func() error { return ops.Mknod("/N", 0o644, 0) },
		"mkdir":    func() error { return ops.Mkdir("/N", 0o755) },
		"create":   func() error { return ops.Create("/N", adfuse.O_WRONLY|adfuse.O_CREATE, 0o644) },
		"setattr":  func() error { return ops.Setattr("/A") },
	} {
		assert.ErrorIs(t, call(), adfuse.ErrPermissionDenied, name)
	}
}

func TestLinksNotSupported(t *testing.T) {
	ops := newOperations(t, namespace.Options{})

	assert.ErrorIs(t, ops.Symlink("/A", "/L"), adfuse.ErrNotSupported)
	assert.ErrorIs(t, ops.Link("/A", "/L"), adfuse.ErrNotSupported)

	target, err := ops.Readlink("/A")
	assert.ErrorIs(t, err, adfuse.ErrNotSupported)
	assert.Empty(t, target)
}
