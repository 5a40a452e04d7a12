package htdigest

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/fdscope"
	"github.com/hupe1980/fdscope/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prompter(answers ...string) (PromptFunc, *[]string) {
	var prompts []string
	return func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", errors.New("no more answers")
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}, &prompts
}

func newPool(t *testing.T) *pool.Pool {
	t.Helper()
	p := pool.New(nil)
	t.Cleanup(p.Destroy)
	return p
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "b1726872c344b6dc8365b774f8fd6412", Digest("alice", "example.com", "secret"))
	assert.Equal(t, "alice:example.com:b1726872c344b6dc8365b774f8fd6412", Record("alice", "example.com", "secret"))
}

func TestRun_Create(t *testing.T) {
	p := newPool(t)
	path := filepath.Join(t.TempDir(), "htdigest")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o600))

	prompt, prompts := prompter("secret", "secret")
	var out bytes.Buffer

	err := Run(p, Options{Create: true, File: path, Realm: "example.com", User: "alice", Prompt: prompt, Out: &out})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice:example.com:b1726872c344b6dc8365b774f8fd6412\n", string(data))
	assert.Equal(t, "Adding password for alice in realm example.com.\n", out.String())
	assert.Equal(t, []string{promptNew, promptRetype}, *prompts)

	// Everything Run opened was released with its subpool.
	assert.Equal(t, 0, p.Cleanups())
	assert.Empty(t, fdscope.OpenDescriptors(p))
}

func TestRun_Replace(t *testing.T) {
	p := newPool(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "htdigest")

	original := "# users\n" +
		"bob:example.com:a12787ba78bece5b857ffe9599f9aa87\n" +
		"\n" +
		"alice:example.com:b1726872c344b6dc8365b774f8fd6412\n" +
		"alice:other.org:0123\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	prompt, _ := prompter("changed", "changed")
	var out bytes.Buffer

	err := Run(p, Options{File: path, Realm: "example.com", User: "alice", Prompt: prompt, Out: &out})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# users\n"+
		"bob:example.com:a12787ba78bece5b857ffe9599f9aa87\n"+
		"\n"+
		"alice:example.com:74e5fe8d27ffe2bfd5f9ace287c356f1\n"+
		"alice:other.org:0123\n", string(data))
	assert.Equal(t, "Changing password for user alice in realm example.com\n", out.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_Append(t *testing.T) {
	p := newPool(t)
	path := filepath.Join(t.TempDir(), "htdigest")
	require.NoError(t, os.WriteFile(path, []byte("bob:example.com:a12787ba78bece5b857ffe9599f9aa87"), 0o600))

	prompt, _ := prompter("secret", "secret")
	var out bytes.Buffer

	err := Run(p, Options{File: path, Realm: "example.com", User: "alice", Prompt: prompt, Out: &out})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bob:example.com:a12787ba78bece5b857ffe9599f9aa87\n"+
		"alice:example.com:b1726872c344b6dc8365b774f8fd6412\n", string(data))
	assert.Equal(t, "Adding user alice in realm example.com\n", out.String())
}

func TestRun_Mismatch(t *testing.T) {
	p := newPool(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "htdigest")
	original := "bob:example.com:a12787ba78bece5b857ffe9599f9aa87\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	prompt, _ := prompter("one", "two")

	err := Run(p, Options{File: path, Realm: "example.com", User: "alice", Prompt: prompt})
	assert.ErrorIs(t, err, ErrMismatch)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))

	// The staging file was removed.
	_, err = os.Stat(tempName(path))
	assert.ErrorIs(t, err, iofs.ErrNotExist)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_CreateMismatch(t *testing.T) {
	p := newPool(t)
	path := filepath.Join(t.TempDir(), "htdigest")

	prompt, _ := prompter("one", "two")

	err := Run(p, Options{Create: true, File: path, Realm: "r", User: "u", Prompt: prompt})
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, iofs.ErrNotExist)
}

func TestRun_MissingFile(t *testing.T) {
	p := newPool(t)
	path := filepath.Join(t.TempDir(), "missing")

	prompt, prompts := prompter("x", "x")

	err := Run(p, Options{File: path, Realm: "r", User: "u", Prompt: prompt})
	assert.ErrorIs(t, err, iofs.ErrNotExist)
	assert.Contains(t, err.Error(), "use -c")
	assert.Empty(t, *prompts)
}

func TestRun_InvalidFields(t *testing.T) {
	p := newPool(t)
	prompt, _ := prompter("x", "x")

	for _, o := range []Options{
		{File: "f", Realm: "r", User: "a:b", Prompt: prompt},
		{File: "f", Realm: "r\n", User: "u", Prompt: prompt},
	} {
		assert.ErrorIs(t, Run(p, o), ErrInvalidField)
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, matches("alice:example.com:hash", "alice", "example.com"))
	assert.True(t, matches("alice:example.com", "alice", "example.com"))
	assert.False(t, matches("alice:example.org:hash", "alice", "example.com"))
	assert.False(t, matches("#alice:example.com:hash", "#alice", "example.com"))
	assert.False(t, matches("", "", ""))
}
