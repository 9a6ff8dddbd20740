/*
 * vtape - Backing store handle table.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package store

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Number of slots in a handle table.
const TableSize = 10

// Supported seek origins.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
)

var (
	ErrTableFull = errors.New("handle table full")        // No free slot.
	ErrSlotInUse = errors.New("handle slot in use")       // Slot already open.
	ErrBadHandle = errors.New("invalid handle")           // Slot out of range or not open.
	ErrWhence    = errors.New("seek origin not supported") // Only start and current.
)

// Table holds the open backing files of one tape.
type Table struct {
	mu    sync.Mutex
	files [TableSize]*os.File
	names [TableSize]string
}

// Create an empty handle table.
func NewTable() *Table {
	return &Table{}
}

// Open file in first free slot.
func (t *Table) Open(path string, flags int) (int, error) {
	t.mu.Lock()
	slot := -1
	for i, f := range t.files {
		if f == nil {
			slot = i
			break
		}
	}
	t.mu.Unlock()
	if slot < 0 {
		return -1, ErrTableFull
	}
	return slot, t.OpenAt(slot, path, flags)
}

// Open file into a given slot, an occupied slot is rejected.
func (t *Table) OpenAt(slot int, path string, flags int) error {
	if slot < 0 || slot >= TableSize {
		return ErrBadHandle
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.files[slot] != nil {
		return errors.Wrapf(ErrSlotInUse, "slot %d holds %s", slot, t.names[slot])
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return errors.Wrap(err, "open backing store")
	}

	// Writers get the file to themselves.
	if flags&(os.O_WRONLY|os.O_RDWR) != 0 {
		if err := lockFile(file); err != nil {
			file.Close()
			return errors.Wrapf(err, "lock %s", path)
		}
	}
	t.files[slot] = file
	t.names[slot] = path
	return nil
}

func (t *Table) get(handle int) (*os.File, error) {
	if handle < 0 || handle >= TableSize {
		return nil, ErrBadHandle
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	file := t.files[handle]
	if file == nil {
		return nil, ErrBadHandle
	}
	return file, nil
}

// Read up to len(buf) bytes. A short read at end of file returns the count and no error.
func (t *Table) Read(handle int, buf []byte) (int, error) {
	file, err := t.get(handle)
	if err != nil {
		return 0, err
	}
	n, err := io.ReadFull(file, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	if err != nil {
		return n, errors.Wrap(err, "read backing store")
	}
	return n, nil
}

// Write buf at current position.
func (t *Table) Write(handle int, buf []byte) (int, error) {
	file, err := t.get(handle)
	if err != nil {
		return 0, err
	}
	n, err := file.Write(buf)
	if err != nil {
		return n, errors.Wrap(err, "write backing store")
	}
	return n, nil
}

// Move file position, returns new absolute offset.
func (t *Table) Seek(handle int, offset int64, whence int) (int64, error) {
	if whence != SeekStart && whence != SeekCurrent {
		return 0, ErrWhence
	}
	file, err := t.get(handle)
	if err != nil {
		return 0, err
	}
	pos, err := file.Seek(offset, whence)
	if err != nil {
		return pos, errors.Wrap(err, "seek backing store")
	}
	return pos, nil
}

// Flush file contents to disk.
func (t *Table) Sync(handle int) error {
	file, err := t.get(handle)
	if err != nil {
		return err
	}
	return errors.Wrap(syncFile(file), "sync backing store")
}

// Name of file open in slot.
func (t *Table) Name(handle int) string {
	if handle < 0 || handle >= TableSize {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.names[handle]
}

// Close slot, closing a free slot does nothing.
func (t *Table) Close(handle int) {
	if handle < 0 || handle >= TableSize {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	file := t.files[handle]
	if file == nil {
		return
	}
	_ = unlockFile(file)
	file.Close()
	t.files[handle] = nil
	t.names[handle] = ""
}

// Close every open slot.
func (t *Table) CloseAll() {
	for i := range TableSize {
		t.Close(i)
	}
}
