/*
 * vtape - Virtual tape drive data commands.
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

package modelTape

import (
	"math"

	D "github.com/rcornwell/vtape/emu/device"
	debug "github.com/rcornwell/vtape/util/debug"
	"github.com/rcornwell/vtape/util/scsi"
	"github.com/rcornwell/vtape/util/tape"
)

// Walks a scatter list as one stream.
type cursor struct {
	bufs [][]byte
	seg  int
	off  int
}

// Next chunk of at most n bytes, nil when the list is used up.
func (cur *cursor) chunk(n int) []byte {
	for cur.seg < len(cur.bufs) && cur.off >= len(cur.bufs[cur.seg]) {
		cur.seg++
		cur.off = 0
	}
	if cur.seg >= len(cur.bufs) || n <= 0 {
		return nil
	}
	b := cur.bufs[cur.seg][cur.off:]
	if len(b) > n {
		b = b[:n]
	}
	cur.off += len(b)
	return b
}

// Read n payload bytes of current record into the scatter list.
func (drive *Drive) readPayload(cur *cursor, n int) (int, error) {
	got := 0
	for got < n {
		b := cur.chunk(n - got)
		if b == nil {
			break
		}
		m, err := drive.codec.ReadPayload(b)
		got += m
		if err != nil {
			return got, err
		}
		if m < len(b) {
			// Backing file ends inside the record.
			break
		}
	}
	return got, nil
}

// Pull records into the caller buffers until full or a mark or end is hit.
func (drive *Drive) read(cmd *D.Command) D.Result {
	total := cmd.CDB.TransferBytes()
	space := min(total, D.BufferLen(cmd.Buffers))
	cur := &cursor{bufs: cmd.Buffers}
	res := D.Good(0)

	for space > 0 {
		length, err := drive.codec.ReadRecordLength()
		if err != nil {
			res.Residual = total - res.Transferred
			return drive.stop("read", err, res)
		}

		if length == 1 {
			kind, b, err := drive.codec.ReadMark()
			if err != nil {
				res.Residual = total - res.Transferred
				return drive.stop("read", err, res)
			}
			if kind != tape.NotMark {
				res.Residual = total - res.Transferred
				res.Sense = scsi.MarkSense(cmd.CDB, res.Residual, kind == tape.Setmark)
				return res
			}
			drive.log.Warn("single byte record read as data", "value", b)
			cur.chunk(1)[0] = b
			res.Transferred++
			space--
			continue
		}

		take := min(int(length), space)
		n, err := drive.readPayload(cur, take)
		res.Transferred += n
		space -= n
		debug.DebugUnitf(drive.unit, drive.debugMsk, debugData, "read record %d bytes, took %d", length, n)
		if err != nil {
			res.Residual = total - res.Transferred
			return drive.stop("read", err, res)
		}
		if n < take {
			break
		}
		if take < int(length) {
			if drive.policy == PolicyDiscard {
				if err := drive.codec.SkipRecord(length - int32(n)); err != nil {
					res.Residual = total - res.Transferred
					return drive.stop("read", err, res)
				}
			}
			break
		}
	}
	res.Residual = total - res.Transferred
	return res
}

// Write whole transfer as one record.
func (drive *Drive) write(cmd *D.Command) D.Result {
	total := cmd.CDB.TransferBytes()
	if total == 0 {
		return D.Good(0)
	}
	if drive.readOnly {
		return writeProtected()
	}
	if total > math.MaxInt32 {
		return D.Check(scsi.CheckSense(scsi.IllegalRequest, scsi.AscInvalidFieldInCDB, 0))
	}

	// Buffers must hold the whole record, nothing is written otherwise.
	if have := D.BufferLen(cmd.Buffers); have < total {
		drive.log.Warn("write buffers short", "length", total, "buffers", have)
		res := D.Check(scsi.CheckSense(scsi.IllegalRequest, scsi.AscInvalidFieldInCDB, 0))
		res.Residual = total
		return res
	}

	res := D.Good(0)
	if err := drive.codec.WriteRecordHeader(int32(total)); err != nil {
		res.Residual = total
		return drive.stop("write", err, res)
	}
	cur := &cursor{bufs: cmd.Buffers}
	for res.Transferred < total {
		b := cur.chunk(total - res.Transferred)
		if b == nil {
			break
		}
		if err := drive.codec.WritePayload(b); err != nil {
			res.Residual = total - res.Transferred
			return drive.stop("write", err, res)
		}
		res.Transferred += len(b)
	}
	res.Residual = total - res.Transferred
	debug.DebugUnitf(drive.unit, drive.debugMsk, debugData, "write record %d bytes", total)
	return res
}

func (drive *Drive) space(cmd *D.Command) D.Result {
	switch code := cmd.CDB.SpaceCode(); code {
	case scsi.SpaceBlocks:
		return drive.spaceBlocks(cmd.CDB)
	case scsi.SpaceFilemarks:
		return drive.spaceFilemarks(cmd.CDB)
	default:
		drive.log.Warn("unsupported space type", "code", code)
		return D.Good(0)
	}
}

// Skip count records, stopping on a mark.
func (drive *Drive) spaceBlocks(cdb scsi.CDB) D.Result {
	remaining := cdb.Count()
	res := D.Good(0)
	for remaining > 0 {
		length, err := drive.codec.ReadRecordLength()
		if err != nil {
			res.Residual = remaining
			return drive.stop("space", err, res)
		}
		if length == 1 {
			kind, _, err := drive.codec.ReadMark()
			if err != nil {
				res.Residual = remaining
				return drive.stop("space", err, res)
			}
			if kind != tape.NotMark {
				res.Residual = remaining
				res.Sense = scsi.MarkSense(cdb, remaining, kind == tape.Setmark)
				return res
			}
			remaining--
			continue
		}
		if err := drive.codec.SkipRecord(length); err != nil {
			res.Residual = remaining
			return drive.stop("space", err, res)
		}
		remaining--
	}
	return res
}

// Skip forward past count filemarks.
func (drive *Drive) spaceFilemarks(cdb scsi.CDB) D.Result {
	remaining := cdb.Count()
	res := D.Good(0)
	for remaining > 0 {
		length, err := drive.codec.ReadRecordLength()
		if err != nil {
			res.Residual = remaining
			return drive.stop("space", err, res)
		}
		if length > 1 {
			if err := drive.codec.SkipRecord(length); err != nil {
				res.Residual = remaining
				return drive.stop("space", err, res)
			}
			continue
		}
		kind, _, err := drive.codec.ReadMark()
		if err != nil {
			res.Residual = remaining
			return drive.stop("space", err, res)
		}
		switch kind {
		case tape.Filemark:
			remaining--
		case tape.Setmark:
			drive.log.Warn("setmark found spacing filemarks", "remaining", remaining)
			res.Residual = remaining
			return res
		}
	}
	return res
}
