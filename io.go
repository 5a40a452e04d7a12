package fdscope

import (
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

func (f *File) lock() {
	if f.mu != nil {
		f.mu.Lock()
	}
}

func (f *File) unlock() {
	if f.mu != nil {
		f.mu.Unlock()
	}
}

func (f *File) pathErr(op string, err error) error {
	return &os.PathError{Op: op, Path: f.displayName(), Err: err}
}

// Read reads up to len(p) bytes. When a read observes end of stream the
// sticky EOF flag is set and io.EOF is returned.
func (f *File) Read(p []byte) (int, error) {
	f.lock()
	defer f.unlock()

	f.lastByte = -1
	return f.readLocked(p)
}

func (f *File) readLocked(p []byte) (int, error) {
	if f.fd < 0 {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	if f.ungetc >= 0 {
		p[0] = byte(f.ungetc)
		f.ungetc = -1
		n = 1
		if len(p) == 1 {
			return 1, nil
		}
	}

	var (
		m   int
		err error
	)
	if f.buffered {
		m, err = f.readBuffered(p[n:])
	} else {
		m, err = f.readRaw(p[n:])
	}
	n += m
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

func (f *File) readBuffered(p []byte) (int, error) {
	if f.dir == dirWrite {
		if err := f.flushLocked(); err != nil {
			return 0, err
		}
		f.dir = dirRead
		f.bufpos, f.dataRead = 0, 0
	}

	if f.bufpos >= f.dataRead {
		f.bufpos, f.dataRead = 0, 0
		m, err := f.readRaw(f.buffer)
		if err != nil {
			return 0, err
		}
		f.dataRead = m
	}

	n := copy(p, f.buffer[f.bufpos:f.dataRead])
	f.bufpos += n
	return n, nil
}

func (f *File) readRaw(p []byte) (int, error) {
	if err := f.pool.AcquireIO(context.Background(), len(p)); err != nil {
		return 0, err
	}
	n, err := f.fsys.Read(f.fd, p)
	if err != nil {
		return 0, f.pathErr("read", err)
	}
	if n == 0 {
		f.eof = true
		return 0, io.EOF
	}
	return n, nil
}

// ReadByte reads a single byte.
func (f *File) ReadByte() (byte, error) {
	f.lock()
	defer f.unlock()
	return f.readByteLocked()
}

func (f *File) readByteLocked() (byte, error) {
	var b [1]byte
	if _, err := f.readLocked(b[:]); err != nil {
		f.lastByte = -1
		return 0, err
	}
	f.lastByte = int(b[0])
	return b[0], nil
}

// UnreadByte pushes the byte returned by the last ReadByte back onto the
// handle. At most one byte can be pushed back.
func (f *File) UnreadByte() error {
	f.lock()
	defer f.unlock()

	if f.fd < 0 {
		return os.ErrClosed
	}
	if f.lastByte < 0 || f.ungetc >= 0 {
		return ErrPushbackFull
	}
	f.ungetc = f.lastByte
	f.lastByte = -1
	return nil
}

// ReadString reads until the first occurrence of delim and returns the data
// including the delimiter. If end of stream comes first, it returns the data
// read so far and io.EOF.
func (f *File) ReadString(delim byte) (string, error) {
	f.lock()
	defer f.unlock()

	var line []byte
	for {
		c, err := f.readByteLocked()
		if err != nil {
			return string(line), err
		}
		line = append(line, c)
		if c == delim {
			return string(line), nil
		}
	}
}

// Write writes p. Buffered handles copy into the buffer and write it out
// when full; unbuffered handles write through.
func (f *File) Write(p []byte) (int, error) {
	f.lock()
	defer f.unlock()
	return f.writeLocked(p)
}

// WriteString writes s.
func (f *File) WriteString(s string) (int, error) {
	f.lock()
	defer f.unlock()
	return f.writeLocked([]byte(s))
}

// WriteByte writes a single byte.
func (f *File) WriteByte(c byte) error {
	f.lock()
	defer f.unlock()
	_, err := f.writeLocked([]byte{c})
	return err
}

func (f *File) writeLocked(p []byte) (int, error) {
	if f.fd < 0 {
		return 0, os.ErrClosed
	}
	f.lastByte = -1

	if f.dir == dirRead {
		if err := f.dropReadAhead(); err != nil {
			return 0, err
		}
	}
	if !f.buffered {
		return f.writeRaw(p)
	}
	f.dir = dirWrite

	n := 0
	for n < len(p) {
		if f.bufpos == len(f.buffer) {
			if err := f.flushLocked(); err != nil {
				return n, err
			}
		}
		c := copy(f.buffer[f.bufpos:], p[n:])
		f.bufpos += c
		n += c
	}
	return n, nil
}

// dropReadAhead discards buffered and pushed-back bytes and moves the OS
// offset back to the logical position.
func (f *File) dropReadAhead() error {
	unread := f.dataRead - f.bufpos
	if f.ungetc >= 0 {
		unread++
	}
	f.bufpos, f.dataRead = 0, 0
	f.ungetc = -1

	if unread > 0 {
		if _, err := f.fsys.Seek(f.fd, -int64(unread), unix.SEEK_CUR); err != nil {
			return f.pathErr("seek", err)
		}
	}
	return nil
}

func (f *File) writeRaw(p []byte) (int, error) {
	if err := f.pool.AcquireIO(context.Background(), len(p)); err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) {
		m, err := f.fsys.Write(f.fd, p[n:])
		if err != nil {
			return n, f.pathErr("write", err)
		}
		if m == 0 {
			return n, io.ErrShortWrite
		}
		n += m
	}
	return n, nil
}

// Flush writes out pending buffered data. It is a no-op for unbuffered handles.
func (f *File) Flush() error {
	f.lock()
	defer f.unlock()

	if f.fd < 0 {
		return os.ErrClosed
	}
	return f.flushLocked()
}

func (f *File) flushLocked() error {
	if f.dir != dirWrite || f.bufpos == 0 {
		return nil
	}
	n, err := f.writeRaw(f.buffer[:f.bufpos])
	if err != nil {
		// Keep the unwritten tail so a later flush can retry it.
		f.bufpos = copy(f.buffer, f.buffer[n:f.bufpos])
		return err
	}
	f.bufpos = 0
	return nil
}

// Seek sets the offset for the next Read or Write. Pending writes are
// flushed and read-ahead is discarded first. The EOF flag is not cleared.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.lock()
	defer f.unlock()

	if f.fd < 0 {
		return 0, os.ErrClosed
	}
	f.lastByte = -1

	if f.dir == dirWrite {
		if err := f.flushLocked(); err != nil {
			return 0, err
		}
		f.dir = dirRead
	} else if err := f.dropReadAhead(); err != nil {
		return 0, err
	}

	pos, err := f.fsys.Seek(f.fd, offset, whence)
	if err != nil {
		return 0, f.pathErr("seek", err)
	}
	return pos, nil
}

// ReadLine reads one line and returns it without the trailing "\n" or
// "\r\n". A final line without a newline is returned with a nil error; the
// next call returns io.EOF.
func (f *File) ReadLine() (string, error) {
	line, err := f.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}
