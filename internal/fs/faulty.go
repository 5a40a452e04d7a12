//go:build unix

package fs

import (
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Fault defines specific failure behavior.
type Fault struct {
	FailOpen       bool  // Open fails without touching the OS.
	FailAfterBytes int64 // Fail writes after this many bytes written to the descriptor. -1 to disable.
	CloseFailures  int   // Number of close calls that fail, leaving the descriptor open.
	Err            error // Injected error. Defaults to unix.EIO.
}

// FaultyFS is a FileSystem wrapper that can inject errors and counts calls.
type FaultyFS struct {
	FS FileSystem

	mu      sync.Mutex
	rules   map[string]Fault // Filename pattern -> Fault
	byFD    map[int]*fdState
	opens   int
	closes  int
	unlinks int
}

type fdState struct {
	fault   Fault
	written int64
}

// NewFaultyFS creates a new FaultyFS wrapping fs (or Default if nil).
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{
		FS:    fs,
		rules: make(map[string]Fault),
		byFD:  make(map[int]*fdState),
	}
}

// AddRule adds a fault for every name containing pattern. The last matching
// rule wins.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// Adopt attaches a fault to a descriptor that was not opened through f.
func (f *FaultyFS) Adopt(fd int, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byFD[fd] = &fdState{fault: fault}
}

// Opens returns the number of Open calls that reached this wrapper.
func (f *FaultyFS) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

// Closes returns the number of Close calls that reached this wrapper.
func (f *FaultyFS) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// Unlinks returns the number of Unlink calls that reached this wrapper.
func (f *FaultyFS) Unlinks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unlinks
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	fault := Fault{FailAfterBytes: -1}
	found := false
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
			found = true
		}
	}
	if fault.Err == nil {
		fault.Err = unix.EIO
	}
	return fault, found
}

func (f *FaultyFS) Open(name string, flag int, mode uint32) (int, error) {
	f.mu.Lock()
	f.opens++
	fault, found := f.match(name)
	f.mu.Unlock()

	if fault.FailOpen {
		return -1, fault.Err
	}

	fd, err := f.FS.Open(name, flag, mode)
	if err != nil {
		return fd, err
	}
	if found {
		f.mu.Lock()
		f.byFD[fd] = &fdState{fault: fault}
		f.mu.Unlock()
	}
	return fd, nil
}

func (f *FaultyFS) Close(fd int) error {
	f.mu.Lock()
	f.closes++
	st := f.byFD[fd]
	if st != nil && st.fault.CloseFailures > 0 {
		st.fault.CloseFailures--
		err := st.fault.Err
		f.mu.Unlock()
		return err
	}
	delete(f.byFD, fd)
	f.mu.Unlock()

	return f.FS.Close(fd)
}

func (f *FaultyFS) Read(fd int, p []byte) (int, error) {
	return f.FS.Read(fd, p)
}

func (f *FaultyFS) Write(fd int, p []byte) (int, error) {
	f.mu.Lock()
	st := f.byFD[fd]
	if st != nil && st.fault.FailAfterBytes >= 0 && st.written+int64(len(p)) > st.fault.FailAfterBytes {
		err := st.fault.Err
		f.mu.Unlock()
		return 0, err
	}
	f.mu.Unlock()

	n, err := f.FS.Write(fd, p)
	if n > 0 && st != nil {
		f.mu.Lock()
		st.written += int64(n)
		f.mu.Unlock()
	}
	return n, err
}

func (f *FaultyFS) Seek(fd int, offset int64, whence int) (int64, error) {
	return f.FS.Seek(fd, offset, whence)
}

func (f *FaultyFS) Unlink(name string) error {
	f.mu.Lock()
	f.unlinks++
	f.mu.Unlock()
	return f.FS.Unlink(name)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) SetCloseOnExec(fd int, on bool) error {
	return f.FS.SetCloseOnExec(fd, on)
}

func (f *FaultyFS) CloseOnExec(fd int) (bool, error) {
	return f.FS.CloseOnExec(fd)
}
