//go:build unix

package fdscope

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/hupe1980/fdscope/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_OpenClose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := newPool(t)
	path := filepath.Join(t.TempDir(), "logged")

	f, err := Open(p, path, Write|Create, OSDefault, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out := buf.String()
	assert.Contains(t, out, `"msg":"opened"`)
	assert.Contains(t, out, `"flags":"WRITE|CREATE"`)
	assert.Contains(t, out, `"msg":"closed"`)
	assert.Contains(t, out, path)
}

func TestLogger_Failures(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	p := newPool(t)
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("sticky", fs.Fault{FailAfterBytes: -1, CloseFailures: 1})

	_, err := Open(p, "x", 0, OSDefault, WithLogger(logger))
	require.Error(t, err)
	// Open failures log at debug level.
	assert.Empty(t, buf.String())

	f, err := Open(p, filepath.Join(t.TempDir(), "sticky"), Write|Create, OSDefault, WithLogger(logger), withFS(ffs))
	require.NoError(t, err)
	require.Error(t, f.Close())
	assert.Contains(t, buf.String(), "close failed")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil)).WithPath("/tmp/a").WithFD(7)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "path=/tmp/a")
	assert.Contains(t, buf.String(), "fd=7")
}

func TestWithLogger_Nil(t *testing.T) {
	o := defaultOptions()
	WithLogger(nil)(&o)
	assert.NotNil(t, o.logger)
}
