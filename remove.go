package fdscope

import (
	"os"

	"github.com/hupe1980/fdscope/internal/fs"
)

// Remove unlinks name. It is independent of any open handle.
func Remove(name string) error {
	return remove(fs.Default, name)
}

// Rename renames oldpath to newpath, replacing newpath if it exists.
func Rename(oldpath, newpath string) error {
	return rename(fs.Default, oldpath, newpath)
}

func remove(fsys fs.FileSystem, name string) error {
	if err := fsys.Unlink(name); err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	return nil
}

func rename(fsys fs.FileSystem, oldpath, newpath string) error {
	if err := fsys.Rename(oldpath, newpath); err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	return nil
}
