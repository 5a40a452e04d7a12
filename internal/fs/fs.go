//go:build unix

package fs

import (
	"golang.org/x/sys/unix"
)

// FileSystem abstracts descriptor syscalls for testability.
type FileSystem interface {
	Open(name string, flag int, mode uint32) (int, error)
	Close(fd int) error
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	Seek(fd int, offset int64, whence int) (int64, error)
	Unlink(name string) error
	Rename(oldpath, newpath string) error
	SetCloseOnExec(fd int, on bool) error
	CloseOnExec(fd int) (bool, error)
}

// LocalFS implements FileSystem with direct syscalls.
type LocalFS struct{}

func (LocalFS) Open(name string, flag int, mode uint32) (int, error) {
	for {
		fd, err := unix.Open(name, flag, mode)
		if err != unix.EINTR {
			return fd, err
		}
	}
}

func (LocalFS) Close(fd int) error { return unix.Close(fd) }

func (LocalFS) Read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err != unix.EINTR {
			return n, err
		}
	}
}

func (LocalFS) Write(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Write(fd, p)
		if err != unix.EINTR {
			return n, err
		}
	}
}

func (LocalFS) Seek(fd int, offset int64, whence int) (int64, error) {
	return unix.Seek(fd, offset, whence)
}

func (LocalFS) Unlink(name string) error             { return unix.Unlink(name) }
func (LocalFS) Rename(oldpath, newpath string) error { return unix.Rename(oldpath, newpath) }

func (LocalFS) SetCloseOnExec(fd int, on bool) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return err
	}
	if on {
		flags |= unix.FD_CLOEXEC
	} else {
		flags &^= unix.FD_CLOEXEC
	}
	_, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags)
	return err
}

func (LocalFS) CloseOnExec(fd int) (bool, error) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		return false, err
	}
	return flags&unix.FD_CLOEXEC != 0, nil
}

// Default is the default descriptor file system.
var Default FileSystem = LocalFS{}
