/*
 * vtape - Tape position tracker.
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

package tape

import (
	"fmt"

	"github.com/rcornwell/vtape/util/store"
)

// Backing store collaborator, satisfied by *store.Table.
type Store interface {
	Read(handle int, buf []byte) (int, error)
	Write(handle int, buf []byte) (int, error)
	Seek(handle int, offset int64, whence int) (int64, error)
}

// Position tracks where the tape head is. Offset is authoritative for I/O,
// the record index is only reported to callers.
type Position struct {
	store       Store  // Backing store
	handle      int    // Handle of tape file in store
	offset      int64  // Byte offset into backing store
	recordIndex uint32 // Marks written since start of tape
}

// Create tracker over an open store handle, positioned at load point.
func NewPosition(st Store, handle int) *Position {
	return &Position{store: st, handle: handle}
}

// Move to load point. Record index is left alone.
func (pos *Position) Rewind() error {
	return pos.SetAbsolute(0)
}

// Move relative to current position.
func (pos *Position) Advance(delta int64) error {
	if delta == 0 {
		return nil
	}
	off, err := pos.store.Seek(pos.handle, delta, store.SeekCurrent)
	if err != nil {
		return fmt.Errorf("advance %d: %w", delta, err)
	}
	pos.offset = off
	return nil
}

// Move to absolute offset.
func (pos *Position) SetAbsolute(offset int64) error {
	off, err := pos.store.Seek(pos.handle, offset, store.SeekStart)
	if err != nil {
		return fmt.Errorf("seek %d: %w", offset, err)
	}
	pos.offset = off
	return nil
}

// Current byte offset.
func (pos *Position) Offset() int64 {
	return pos.offset
}

// At start of tape.
func (pos *Position) AtLoadPoint() bool {
	return pos.offset == 0
}

// Current record counter.
func (pos *Position) RecordIndex() uint32 {
	return pos.recordIndex
}

// Restore record counter, used when a volume is reattached.
func (pos *Position) SetRecordIndex(index uint32) {
	pos.recordIndex = index
}

// Count one mark written.
func (pos *Position) NoteMark() {
	pos.recordIndex++
}

// First and last block for read position. Both report the record counter.
func (pos *Position) ReportPosition() (uint32, uint32) {
	return pos.recordIndex, pos.recordIndex
}

func (pos *Position) read(buf []byte) (int, error) {
	n, err := pos.store.Read(pos.handle, buf)
	pos.offset += int64(n)
	return n, err
}

func (pos *Position) write(buf []byte) (int, error) {
	n, err := pos.store.Write(pos.handle, buf)
	pos.offset += int64(n)
	return n, err
}
