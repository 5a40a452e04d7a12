//go:build unix

package fdscope

import (
	"path/filepath"
	"testing"

	"github.com/hupe1980/fdscope/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestAdopt_Stderr(t *testing.T) {
	p := newPool(t)

	f := Stderr(p)
	assert.Equal(t, 2, f.Fd())
	assert.Equal(t, BlockingUnknown, f.Blocking())
	assert.NoError(t, f.EOF())
	assert.True(t, f.Inherited())
	assert.False(t, f.Owned())
	assert.False(t, f.Buffered())
	assert.Empty(t, f.Name())
	assert.Equal(t, 0, p.Cleanups())

	require.NoError(t, f.Close())
	assert.Equal(t, -1, f.Fd())

	// Descriptor 2 was not closed.
	_, err := fs.Default.CloseOnExec(unix.Stderr)
	assert.NoError(t, err)
}

func TestAdopt_FreshHandles(t *testing.T) {
	p := newPool(t)

	a, b := Stdout(p), Stdout(p)
	assert.NotSame(t, a, b)
	assert.Equal(t, unix.Stdout, a.Fd())
	assert.Equal(t, unix.Stdin, Stdin(p).Fd())

	require.NoError(t, a.Close())
	assert.True(t, b.IsOpen())
}

func TestAdopt_Pipe(t *testing.T) {
	p := newPool(t)

	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	w := PutOS(p, fds[1])
	n, err := w.WriteString("ping")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.NoError(t, w.Close())

	buf := make([]byte, 8)
	n, err = unix.Read(fds[0], buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	// Still writable after the handle was closed.
	_, err = unix.Write(fds[1], []byte("x"))
	assert.NoError(t, err)
}

func TestAdopt_WithOwnership(t *testing.T) {
	p := newPool(t)
	ffs := fs.NewFaultyFS(nil)

	fd, err := unix.Open(filepath.Join(t.TempDir(), "owned"), unix.O_CREAT|unix.O_WRONLY|unix.O_CLOEXEC, 0o600)
	require.NoError(t, err)

	f := Adopt(p, fd, WithOwnership(), withFS(ffs))
	assert.True(t, f.Owned())
	assert.False(t, f.Inherited())
	assert.True(t, p.Registered(f))
	assert.Equal(t, []int{fd}, OpenDescriptors(p))

	p.Clear()
	assert.False(t, f.IsOpen())
	assert.Equal(t, 1, ffs.Closes())
	assert.Empty(t, OpenDescriptors(p))
}

func TestAdopt_ClosedDescriptor(t *testing.T) {
	p := newPool(t)

	f := Adopt(p, -1, WithOwnership())
	assert.False(t, f.IsOpen())
	assert.False(t, f.Owned())
	assert.Equal(t, 0, p.Cleanups())
	assert.NoError(t, f.Close())
}
