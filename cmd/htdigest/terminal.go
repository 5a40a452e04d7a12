package main

import (
	"fmt"
	"sync"

	"github.com/hupe1980/fdscope"
	"golang.org/x/sys/unix"
)

// terminal reads passwords from in with echo disabled when in is a terminal.
type terminal struct {
	in  *fdscope.File
	out *fdscope.File

	mu    sync.Mutex
	saved *unix.Termios
}

func newTerminal(in, out *fdscope.File) *terminal {
	return &terminal{in: in, out: out}
}

func (t *terminal) password(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)

	if err := t.disableEcho(); err != nil {
		return "", err
	}
	line, err := t.in.ReadLine()
	t.restore()
	fmt.Fprintln(t.out)

	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}

// disableEcho is a no-op when in is not a terminal.
func (t *terminal) disableEcho() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, err := unix.IoctlGetTermios(t.in.Fd(), ioctlReadTermios)
	if err != nil {
		return nil
	}
	saved := *state
	state.Lflag &^= unix.ECHO
	state.Lflag |= unix.ICANON | unix.ISIG
	if err := unix.IoctlSetTermios(t.in.Fd(), ioctlWriteTermios, state); err != nil {
		return fmt.Errorf("disable echo: %w", err)
	}
	t.saved = &saved
	return nil
}

func (t *terminal) restore() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved == nil {
		return
	}
	_ = unix.IoctlSetTermios(t.in.Fd(), ioctlWriteTermios, t.saved)
	t.saved = nil
}
