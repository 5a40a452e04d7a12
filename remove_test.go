//go:build unix

package fdscope

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/fdscope/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	require.NoError(t, Remove(path))

	err := Remove(path)
	assert.ErrorIs(t, err, iofs.ErrNotExist)

	var pe *os.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "remove", pe.Op)
	assert.Equal(t, unix.ENOENT, pe.Err)
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "from")
	to := filepath.Join(dir, "to")
	require.NoError(t, os.WriteFile(from, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(to, []byte("old"), 0o600))

	require.NoError(t, Rename(from, to))
	data, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	err = Rename(from, to)
	var le *os.LinkError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "rename", le.Op)
	assert.ErrorIs(t, err, iofs.ErrNotExist)
}

func TestRemove_OpenHandle(t *testing.T) {
	p := newPool(t)
	ffs := fs.NewFaultyFS(nil)
	path := filepath.Join(t.TempDir(), "busy")

	f, err := Open(p, path, Read|Write|Create, OSDefault, withFS(ffs))
	require.NoError(t, err)

	require.NoError(t, remove(ffs, path))
	assert.Equal(t, 1, ffs.Unlinks())

	_, err = f.WriteString("unlinked but open")
	assert.NoError(t, err)
	require.NoError(t, f.Close())
}
