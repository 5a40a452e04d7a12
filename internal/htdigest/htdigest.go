// Package htdigest maintains digest-authentication password files.
//
// A password file holds one record per line in the form
//
//	user:realm:md5hex(user:realm:password)
//
// Lines starting with '#' and empty lines are copied unchanged.
package htdigest

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/fdscope"
	"github.com/hupe1980/fdscope/pool"
)

var (
	// ErrMismatch is returned when the two password entries differ.
	ErrMismatch = errors.New("htdigest: passwords don't match")

	// ErrInvalidField is returned when user or realm contains ':' or a newline.
	ErrInvalidField = errors.New("htdigest: user and realm must not contain ':' or newlines")
)

const (
	promptNew    = "New password: "
	promptRetype = "Re-type new password: "
)

// PromptFunc reads a password after showing prompt.
type PromptFunc func(prompt string) (string, error)

// Options configures Run.
type Options struct {
	// Create truncates File and writes a single record instead of updating it.
	Create bool
	File   string
	Realm  string
	User   string

	// Prompt reads the password. It is called twice.
	Prompt PromptFunc

	// Out receives status lines. Nil discards them.
	Out io.Writer

	// Logger is passed to every handle Run opens.
	Logger *fdscope.Logger
}

// Digest returns the hex MD5 of user:realm:password.
func Digest(user, realm, password string) string {
	sum := md5.Sum([]byte(user + ":" + realm + ":" + password))
	return hex.EncodeToString(sum[:])
}

// Record returns the password file line for the given credentials, without
// the trailing newline.
func Record(user, realm, password string) string {
	return user + ":" + realm + ":" + Digest(user, realm, password)
}

// Run adds or replaces the record for o.User in o.Realm.
//
// Every handle is opened in a subpool of p that is destroyed before Run
// returns. Updates are written to a sibling temporary file that replaces
// o.File on success and is removed on failure, including when p is destroyed
// while Run is in progress.
func Run(p *pool.Pool, o Options) error {
	if err := validate(o.User); err != nil {
		return err
	}
	if err := validate(o.Realm); err != nil {
		return err
	}
	if o.Out == nil {
		o.Out = io.Discard
	}

	sub := pool.New(p)
	defer sub.Destroy()

	if o.Create {
		return create(sub, o)
	}
	return update(sub, o)
}

func validate(field string) error {
	if strings.ContainsAny(field, ":\r\n") {
		return ErrInvalidField
	}
	return nil
}

func (o Options) openOpts() []fdscope.Option {
	if o.Logger == nil {
		return nil
	}
	return []fdscope.Option{fdscope.WithLogger(o.Logger)}
}

func readPassword(prompt PromptFunc) (string, error) {
	if prompt == nil {
		return "", errors.New("htdigest: no password prompt configured")
	}
	pw, err := prompt(promptNew)
	if err != nil {
		return "", err
	}
	again, err := prompt(promptRetype)
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", ErrMismatch
	}
	return pw, nil
}

const fileMode = fdscope.UserRead | fdscope.UserWrite | fdscope.GroupRead | fdscope.WorldRead

func create(p *pool.Pool, o Options) error {
	fmt.Fprintf(o.Out, "Adding password for %s in realm %s.\n", o.User, o.Realm)

	pw, err := readPassword(o.Prompt)
	if err != nil {
		return err
	}

	f, err := fdscope.Open(p, o.File, fdscope.Write|fdscope.Create|fdscope.Truncate|fdscope.Buffered, fileMode, o.openOpts()...)
	if err != nil {
		return fmt.Errorf("could not open passwd file %s for writing: %w", o.File, err)
	}
	if _, err := f.WriteString(Record(o.User, o.Realm, pw) + "\n"); err != nil {
		return err
	}
	return f.Close()
}

// tempName returns the sibling file updates are staged in.
func tempName(file string) string {
	dir, base := filepath.Split(file)
	return filepath.Join(dir, "."+base+".htdigest-"+strconv.Itoa(os.Getpid()))
}

type tempFile struct {
	name      string
	committed bool
}

func removeTemp(key any) error {
	t := key.(*tempFile)
	if t.committed {
		return nil
	}
	return fdscope.Remove(t.name)
}

func update(p *pool.Pool, o Options) error {
	src, err := fdscope.Open(p, o.File, fdscope.Read|fdscope.Buffered, fdscope.OSDefault, o.openOpts()...)
	if err != nil {
		return fmt.Errorf("could not open passwd file %s for reading (use -c to create it): %w", o.File, err)
	}

	tmp := &tempFile{name: tempName(o.File)}
	dst, err := fdscope.Open(p, tmp.name, fdscope.Write|fdscope.Create|fdscope.Exclusive|fdscope.Buffered, fileMode, o.openOpts()...)
	if err != nil {
		return fmt.Errorf("could not open temp file: %w", err)
	}
	// Registered after dst, so the handle is closed before the file is removed.
	p.RegisterCleanup(tmp, removeTemp, pool.CleanupNull)

	found, err := copyRecords(src, dst, o)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(o.Out, "Adding user %s in realm %s\n", o.User, o.Realm)
		if err := writeRecord(dst, o); err != nil {
			return err
		}
	}

	if err := src.Close(); err != nil {
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	if err := fdscope.Rename(tmp.name, o.File); err != nil {
		return err
	}
	tmp.committed = true
	return nil
}

// copyRecords copies src to dst, replacing the first record for o.User in
// o.Realm. It reports whether such a record was found.
func copyRecords(src, dst *fdscope.File, o Options) (bool, error) {
	found := false
	for {
		line, err := src.ReadLine()
		if err == io.EOF {
			return found, nil
		}
		if err != nil {
			return found, err
		}

		if !found && matches(line, o.User, o.Realm) {
			fmt.Fprintf(o.Out, "Changing password for user %s in realm %s\n", o.User, o.Realm)
			if err := writeRecord(dst, o); err != nil {
				return found, err
			}
			found = true
			continue
		}

		if _, err := dst.WriteString(line + "\n"); err != nil {
			return found, err
		}
	}
}

func matches(line, user, realm string) bool {
	if line == "" || line[0] == '#' {
		return false
	}
	u, rest, _ := strings.Cut(line, ":")
	r, _, _ := strings.Cut(rest, ":")
	return u == user && r == realm
}

func writeRecord(dst *fdscope.File, o Options) error {
	pw, err := readPassword(o.Prompt)
	if err != nil {
		return err
	}
	_, err = dst.WriteString(Record(o.User, o.Realm, pw) + "\n")
	return err
}
