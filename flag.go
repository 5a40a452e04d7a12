package fdscope

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Flag is the portable open-flag set.
type Flag uint32

const (
	// Read opens the file for reading.
	Read Flag = 1 << iota
	// Write opens the file for writing.
	Write
	// Create creates the file if it does not exist.
	Create
	// Exclusive fails if the file exists. Requires Create.
	Exclusive
	// Append positions every write at the end of the file.
	Append
	// Truncate empties the file on open.
	Truncate
	// Buffered gives the handle a private buffer guarded by a mutex.
	Buffered
	// DeleteOnClose unlinks the name right after a successful open.
	DeleteOnClose
	// Inherit keeps the descriptor open across exec and exempts it from
	// automatic close on pool teardown.
	Inherit
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{Read, "READ"},
	{Write, "WRITE"},
	{Create, "CREATE"},
	{Exclusive, "EXCLUSIVE"},
	{Append, "APPEND"},
	{Truncate, "TRUNCATE"},
	{Buffered, "BUFFERED"},
	{DeleteOnClose, "DELETE_ON_CLOSE"},
	{Inherit, "INHERIT"},
}

// Has reports whether every bit of x is set in f.
func (f Flag) Has(x Flag) bool {
	return f&x == x
}

func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// policy is the validated, named form of a Flag set.
type policy struct {
	read          bool
	write         bool
	create        bool
	exclusive     bool
	append        bool
	truncate      bool
	buffered      bool
	deleteOnClose bool
	inherit       bool
}

// newPolicy validates flag. It performs no I/O.
func newPolicy(flag Flag) (policy, error) {
	p := policy{
		read:          flag.Has(Read),
		write:         flag.Has(Write),
		create:        flag.Has(Create),
		exclusive:     flag.Has(Exclusive),
		append:        flag.Has(Append),
		truncate:      flag.Has(Truncate),
		buffered:      flag.Has(Buffered),
		deleteOnClose: flag.Has(DeleteOnClose),
		inherit:       flag.Has(Inherit),
	}
	if !p.read && !p.write {
		return policy{}, &FlagError{Flag: flag, Reason: ErrNoAccessMode}
	}
	if p.exclusive && !p.create {
		return policy{}, &FlagError{Flag: flag, Reason: ErrExclusiveWithoutCreate}
	}
	return p, nil
}

// oflags maps the policy to open(2) flags.
func (p policy) oflags() int {
	var o int
	switch {
	case p.read && p.write:
		o = unix.O_RDWR
	case p.write:
		o = unix.O_WRONLY
	default:
		o = unix.O_RDONLY
	}
	if p.create {
		o |= unix.O_CREAT
		if p.exclusive {
			o |= unix.O_EXCL
		}
	}
	if p.append {
		o |= unix.O_APPEND
	}
	if p.truncate {
		o |= unix.O_TRUNC
	}
	if !p.inherit {
		o |= unix.O_CLOEXEC
	}
	return o
}
