package fdscope

import (
	"os"
)

// SetInherit keeps the descriptor open across exec. An owned handle stays
// registered with its pool but teardown and the exec pass no longer close it.
// Calling SetInherit on an inheritable handle does nothing.
func (f *File) SetInherit() error {
	return f.setInherit(true)
}

// UnsetInherit marks the descriptor close-on-exec and makes pool teardown
// close it again. Calling UnsetInherit on a non-inheritable handle does
// nothing.
func (f *File) UnsetInherit() error {
	return f.setInherit(false)
}

func (f *File) setInherit(on bool) error {
	f.lock()
	defer f.unlock()

	if f.inherit == on {
		return nil
	}

	if f.fd >= 0 {
		if err := f.fsys.SetCloseOnExec(f.fd, !on); err != nil {
			err = &os.PathError{Op: "fcntl", Path: f.displayName(), Err: err}
			f.logger.LogInherit(f.fd, on, err)
			return err
		}
	}
	f.inherit = on

	if f.registered {
		fn := f.cleanupFunc()
		if !f.pool.SetCleanup(f, fn, fn) {
			// The pool already ran the registration during teardown.
			f.registered = false
		}
	}

	f.logger.LogInherit(f.fd, on, nil)
	return nil
}
