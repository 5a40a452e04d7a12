package fdscope

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrNoAccessMode is the reason for a FlagError when neither Read nor
	// Write was requested.
	ErrNoAccessMode = errors.New("neither read nor write requested")

	// ErrExclusiveWithoutCreate is the reason for a FlagError when Exclusive
	// was requested without Create.
	ErrExclusiveWithoutCreate = errors.New("exclusive requires create")

	// ErrPushbackFull is returned by UnreadByte when a byte is already pushed
	// back or nothing has been read yet.
	ErrPushbackFull = errors.New("fdscope: no byte available to unread")
)

// FlagError reports an invalid flag combination. It is returned before any
// syscall is made.
//
// FlagError matches its Reason and unix.EACCES with errors.Is, so callers can
// test for either the precise cause or fs.ErrPermission.
type FlagError struct {
	Flag   Flag
	Reason error
}

func (e *FlagError) Error() string {
	return fmt.Sprintf("fdscope: invalid open flags %s: %v", e.Flag, e.Reason)
}

func (e *FlagError) Unwrap() []error { return []error{e.Reason, unix.EACCES} }
