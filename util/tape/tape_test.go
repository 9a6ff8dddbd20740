/*
 * vtape - Tape record codec tests.
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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/vtape/util/store"
)

// Open a fresh tape file, returns codec and file name.
func newTape(t *testing.T) (*Codec, *store.Table, string) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "tape.dat")
	table := store.NewTable()
	h, err := table.Open(name, os.O_RDWR|os.O_CREATE)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(table.CloseAll)
	return NewCodec(NewPosition(table, h)), table, name
}

func testRecord(i int) []byte {
	return []byte(fmt.Sprintf("%05d ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", i))
}

// Read one whole data record.
func readRecord(codec *Codec) ([]byte, error) {
	length, err := codec.ReadRecordLength()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	n, err := codec.ReadPayload(buf)
	return buf[:n], err
}

// Records read back equal records written.
func TestRoundTrip(t *testing.T) {
	codec, _, _ := newTape(t)
	for i := range 50 {
		if err := codec.WriteRecord(testRecord(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := codec.Position().Rewind(); err != nil {
		t.Fatal(err)
	}
	for i := range 50 {
		rec, err := readRecord(codec)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if !bytes.Equal(rec, testRecord(i)) {
			t.Errorf("Read got: %s expected: %s", rec, testRecord(i))
		}
	}
	_, err := codec.ReadRecordLength()
	if !errors.Is(err, ErrEndOfPartition) {
		t.Errorf("Expected end of partition got: %v", err)
	}
}

// Rewind reproduces same records after more writes.
func TestRewindRepeat(t *testing.T) {
	codec, _, _ := newTape(t)
	_ = codec.WriteRecord([]byte("first"))
	_ = codec.WriteMark(Filemark)
	_ = codec.WriteRecord([]byte("second"))

	for pass := range 3 {
		if err := codec.Position().Rewind(); err != nil {
			t.Fatal(err)
		}
		rec, err := readRecord(codec)
		if err != nil || string(rec) != "first" {
			t.Errorf("Pass %d first record: %q %v", pass, rec, err)
		}
		length, err := codec.ReadRecordLength()
		if err != nil || length != 1 {
			t.Fatalf("Pass %d expected mark length got: %d %v", pass, length, err)
		}
		kind, _, err := codec.ReadMark()
		if err != nil || kind != Filemark {
			t.Errorf("Pass %d expected filemark got: %s %v", pass, kind, err)
		}
		rec, err = readRecord(codec)
		if err != nil || string(rec) != "second" {
			t.Errorf("Pass %d second record: %q %v", pass, rec, err)
		}
	}
}

// On media layout of a data record.
func TestRecordLayout(t *testing.T) {
	codec, _, name := newTape(t)
	if err := codec.WriteRecord([]byte("ABC")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	expect := []byte{0x03, 0x00, 0x00, 0x00, 0x41, 0x42, 0x43}
	if !bytes.Equal(data, expect) {
		t.Errorf("Record layout got: % x expected: % x", data, expect)
	}
	if codec.Position().Offset() != 7 {
		t.Errorf("Position after write: %d", codec.Position().Offset())
	}
}

// On media layout of marks, and record counter.
func TestMarkLayout(t *testing.T) {
	codec, _, name := newTape(t)
	if err := codec.WriteMark(Filemark); err != nil {
		t.Fatal(err)
	}
	if err := codec.WriteMark(Setmark); err != nil {
		t.Fatal(err)
	}
	if err := codec.WriteMark(Datamark); !errors.Is(err, ErrBadMark) {
		t.Errorf("Datamark write not rejected: %v", err)
	}
	data, _ := os.ReadFile(name)
	expect := []byte{1, 0, 0, 0, byte(Filemark), 1, 0, 0, 0, byte(Setmark)}
	if !bytes.Equal(data, expect) {
		t.Errorf("Mark layout got: % x expected: % x", data, expect)
	}
	if codec.Position().RecordIndex() != 2 {
		t.Errorf("Record index got: %d expected: 2", codec.Position().RecordIndex())
	}
	first, last := codec.Position().ReportPosition()
	if first != 2 || last != 2 {
		t.Errorf("Report position got: %d %d", first, last)
	}
}

// Zero length prefix is end of data, tape does not move.
func TestEndOfData(t *testing.T) {
	codec, table, _ := newTape(t)
	_ = codec.WriteRecord([]byte("data"))
	_, _ = table.Write(0, []byte{0, 0, 0, 0, 9, 9})
	_ = codec.Position().Rewind()

	if _, err := readRecord(codec); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		_, err := codec.ReadRecordLength()
		if !errors.Is(err, ErrEndOfData) {
			t.Errorf("Expected end of data got: %v", err)
		}
		if codec.Position().Offset() != 8 {
			t.Errorf("End of data moved tape to: %d", codec.Position().Offset())
		}
	}
}

// Short length prefix is end of partition, tape does not move.
func TestEndOfPartition(t *testing.T) {
	codec, table, _ := newTape(t)
	_, _ = table.Write(0, []byte{5, 0})
	_ = codec.Position().Rewind()

	_, err := codec.ReadRecordLength()
	if !errors.Is(err, ErrEndOfPartition) {
		t.Errorf("Expected end of partition got: %v", err)
	}
	if codec.Position().Offset() != 0 {
		t.Errorf("End of partition moved tape to: %d", codec.Position().Offset())
	}
}

// Short read of payload leaves tape in the middle of the record.
func TestUnderRead(t *testing.T) {
	codec, _, _ := newTape(t)
	_ = codec.WriteRecord([]byte("0123456789"))
	_ = codec.Position().Rewind()

	length, err := codec.ReadRecordLength()
	if err != nil || length != 10 {
		t.Fatalf("Length got: %d %v", length, err)
	}
	buf := make([]byte, 4)
	n, err := codec.ReadPayload(buf)
	if err != nil || n != 4 || string(buf) != "0123" {
		t.Errorf("Payload got: %q %d %v", buf, n, err)
	}
	if codec.Position().Offset() != 8 {
		t.Errorf("Position after under read: %d", codec.Position().Offset())
	}

	// Skip the remainder to reach next record.
	if err := codec.SkipRecord(length - int32(n)); err != nil {
		t.Fatal(err)
	}
	if codec.Position().Offset() != 14 {
		t.Errorf("Position after skip: %d", codec.Position().Offset())
	}
}

// Length one record holding something other than a mark.
func TestOddByteRecord(t *testing.T) {
	codec, table, _ := newTape(t)
	_, _ = table.Write(0, []byte{1, 0, 0, 0, 0x41})
	_ = codec.Position().Rewind()

	length, err := codec.ReadRecordLength()
	if err != nil || length != 1 {
		t.Fatalf("Length got: %d %v", length, err)
	}
	kind, data, err := codec.ReadMark()
	if err != nil || kind != NotMark || data != 0x41 {
		t.Errorf("Mark got: %s %02x %v", kind, data, err)
	}
	_, _, err = codec.ReadMark()
	if !errors.Is(err, ErrEndOfPartition) {
		t.Errorf("Expected end of partition got: %v", err)
	}
}

// Streamed record equals a single write record.
func TestStreamedRecord(t *testing.T) {
	codec, _, name := newTape(t)
	if err := codec.WriteRecordHeader(6); err != nil {
		t.Fatal(err)
	}
	_ = codec.WritePayload([]byte("abc"))
	_ = codec.WritePayload(nil)
	_ = codec.WritePayload([]byte("def"))

	data, _ := os.ReadFile(name)
	expect := []byte{6, 0, 0, 0, 'a', 'b', 'c', 'd', 'e', 'f'}
	if !bytes.Equal(data, expect) {
		t.Errorf("Streamed layout got: % x", data)
	}
}

func TestDebugOption(t *testing.T) {
	if err := Debug("RECORD"); err != nil {
		t.Error(err)
	}
	if err := Debug("BOGUS"); err == nil {
		t.Error("Invalid debug option accepted")
	}
	debugMsk = 0
}
