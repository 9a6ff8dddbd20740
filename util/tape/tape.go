/*
 * vtape - Tape record codec.
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
	"encoding/binary"
	"errors"
	"fmt"

	debug "github.com/rcornwell/vtape/util/debug"
)

// Mark sentinel byte values. Only Filemark and Setmark are written.
type MarkKind uint8

const (
	NotMark MarkKind = iota
	Filemark
	Setmark
	Datamark
)

const (
	// Size of record length prefix.
	headerLen = 4

	// Length value of a mark record.
	markLen = 1
)

const (
	// Debug options.
	debugRecord = 1 << iota
	debugMark
	debugDetail
)

var debugOption = map[string]int{
	"RECORD": debugRecord,
	"MARK":   debugMark,
	"DETAIL": debugDetail,
}

var debugMsk int

var (
	ErrEndOfData      = errors.New("end of data")         // Zero length prefix.
	ErrEndOfPartition = errors.New("end of partition")    // Length prefix could not be read.
	ErrShortWrite     = errors.New("short write")         // Store took fewer bytes than given.
	ErrBadMark        = errors.New("mark kind not valid") // Only filemark and setmark can be written.
)

var byteOrder = binary.LittleEndian

// Name of mark kind.
func (kind MarkKind) String() string {
	switch kind {
	case NotMark:
		return "data"
	case Filemark:
		return "filemark"
	case Setmark:
		return "setmark"
	case Datamark:
		return "datamark"
	}
	return fmt.Sprintf("mark(%d)", uint8(kind))
}

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("tape debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Codec reads and writes records at the tracked position.
type Codec struct {
	pos *Position
}

// Create codec over a position tracker.
func NewCodec(pos *Position) *Codec {
	return &Codec{pos: pos}
}

// Position tracker used by codec.
func (codec *Codec) Position() *Position {
	return codec.pos
}

// Read length prefix of next record. On end of data or end of partition the
// tape is left in front of the prefix.
func (codec *Codec) ReadRecordLength() (int32, error) {
	hdr := [headerLen]byte{}
	start := codec.pos.Offset()
	n, err := codec.pos.read(hdr[:])
	if err != nil {
		return 0, err
	}
	if n < headerLen {
		debug.Debugf("TAPE", debugMsk, debugRecord, "end of partition at %d", start)
		return 0, errors.Join(ErrEndOfPartition, codec.pos.SetAbsolute(start))
	}

	length := int32(byteOrder.Uint32(hdr[:]))
	switch {
	case length == 0:
		debug.Debugf("TAPE", debugMsk, debugRecord, "end of data at %d", start)
		return 0, errors.Join(ErrEndOfData, codec.pos.SetAbsolute(start))
	case length < 0:
		debug.Debugf("TAPE", debugMsk, debugRecord, "bad length %d at %d", length, start)
		return 0, errors.Join(ErrEndOfPartition, codec.pos.SetAbsolute(start))
	}
	debug.Debugf("TAPE", debugMsk, debugDetail, "record %d bytes at %d", length, start)
	return length, nil
}

// Copy up to len(buf) payload bytes of current record. The rest of the
// record is not skipped.
func (codec *Codec) ReadPayload(buf []byte) (int, error) {
	n, err := codec.pos.read(buf)
	if err != nil {
		return n, err
	}
	debug.Debugf("TAPE", debugMsk, debugDetail, "payload %d of %d bytes", n, len(buf))
	return n, nil
}

// Move over payload without transferring it.
func (codec *Codec) SkipRecord(length int32) error {
	return codec.pos.Advance(int64(length))
}

// Read marker byte of a length one record.
func (codec *Codec) ReadMark() (MarkKind, byte, error) {
	data := [markLen]byte{}
	n, err := codec.pos.read(data[:])
	if err != nil {
		return NotMark, 0, err
	}
	if n != markLen {
		return NotMark, 0, ErrEndOfPartition
	}
	kind := MarkKind(data[0])
	switch kind {
	case Filemark, Setmark:
		debug.Debugf("TAPE", debugMsk, debugMark, "%s at %d", kind, codec.pos.Offset()-headerLen-markLen)
		return kind, data[0], nil
	}
	return NotMark, data[0], nil
}

// Write one record, prefix and payload in one store call.
func (codec *Codec) WriteRecord(payload []byte) error {
	buf := make([]byte, headerLen+len(payload))
	byteOrder.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerLen:], payload)
	return codec.put(buf)
}

// Write length prefix of a record whose payload follows in WritePayload calls.
func (codec *Codec) WriteRecordHeader(length int32) error {
	hdr := [headerLen]byte{}
	byteOrder.PutUint32(hdr[:], uint32(length))
	debug.Debugf("TAPE", debugMsk, debugRecord, "write record %d bytes at %d", length, codec.pos.Offset())
	return codec.put(hdr[:])
}

// Write payload bytes of current record.
func (codec *Codec) WritePayload(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return codec.put(data)
}

// Write a filemark or setmark and count it.
func (codec *Codec) WriteMark(kind MarkKind) error {
	if kind != Filemark && kind != Setmark {
		return ErrBadMark
	}
	buf := [headerLen + markLen]byte{}
	byteOrder.PutUint32(buf[:], markLen)
	buf[headerLen] = byte(kind)
	debug.Debugf("TAPE", debugMsk, debugMark, "write %s at %d", kind, codec.pos.Offset())
	if err := codec.put(buf[:]); err != nil {
		return err
	}
	codec.pos.NoteMark()
	return nil
}

func (codec *Codec) put(buf []byte) error {
	n, err := codec.pos.write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(buf))
	}
	return nil
}
