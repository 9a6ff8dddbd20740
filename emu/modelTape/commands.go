/*
 * vtape - Virtual tape drive control commands.
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
	"encoding/binary"
	"errors"

	D "github.com/rcornwell/vtape/emu/device"
	debug "github.com/rcornwell/vtape/util/debug"
	"github.com/rcornwell/vtape/util/scsi"
	"github.com/rcornwell/vtape/util/tape"
)

const (
	inquiryLen      = 36
	modeSenseLen    = 12
	blockLimitsLen  = 6
	readPositionLen = 20

	vendor   = "virtual "
	product  = "vtape sequential"
	revision = "0200"

	modeWriteProtect = 0x80 // Device specific parameter, write protected
	positionBOP      = 0x80 // Beginning of partition
)

// Truncate response to allocation length, zero means no limit.
func allocate(cdb scsi.CDB, data []byte) []byte {
	if alloc := cdb.AllocLength(); alloc > 0 && alloc < len(data) {
		return data[:alloc]
	}
	return data
}

// Stop command on backing store error.
func (drive *Drive) stop(name string, err error, res D.Result) D.Result {
	if errors.Is(err, tape.ErrEndOfData) || errors.Is(err, tape.ErrEndOfPartition) {
		debug.DebugUnitf(drive.unit, drive.debugMsk, debugDetail, "%s stopped: %v", name, err)
		return res
	}
	drive.log.Error(name+" failed", "error", err)
	res.Sense = scsi.CheckSense(scsi.MediumError, scsi.AscNoAdditionalSense, 0)
	return res
}

// Rejection of writes to a protected volume.
func writeProtected() D.Result {
	return D.Check(scsi.CheckSense(scsi.DataProtect, scsi.AscWriteProtected, 0))
}

func (drive *Drive) testUnitReady(_ *D.Command) D.Result {
	return D.Good(0)
}

func (drive *Drive) erase(_ *D.Command) D.Result {
	return D.Good(0)
}

func (drive *Drive) rewind(_ *D.Command) D.Result {
	if err := drive.pos.Rewind(); err != nil {
		return drive.stop("rewind", err, D.Good(0))
	}
	return D.Good(0)
}

// Standard data or vital product pages 0x00 and 0x80.
func (drive *Drive) inquiry(cmd *D.Command) D.Result {
	var data []byte
	evpd, page := cmd.CDB.VitalPage()
	if evpd {
		switch page {
		case 0x00:
			data = []byte{0x01, 0x00, 0x00, 0x02, 0x00, 0x80}
		case 0x80:
			data = append([]byte{0x01, 0x80, 0x00, byte(len(drive.serial))}, drive.serial...)
		default:
			return D.Check(scsi.CheckSense(scsi.IllegalRequest, scsi.AscInvalidFieldInCDB, 0))
		}
	} else {
		data = make([]byte, inquiryLen)
		data[0] = 0x01 // Sequential access
		data[1] = 0x80 // Removable
		data[2] = 0x02 // SCSI-2
		data[3] = 0x02 // Response format
		data[4] = inquiryLen - 5
		data[7] = 0x10 // Sync
		copy(data[8:16], vendor)
		copy(data[16:32], product)
		copy(data[32:36], revision)
	}
	return D.Good(D.Scatter(cmd.Buffers, allocate(cmd.CDB, data)))
}

// Remember block size from block descriptor.
func (drive *Drive) modeSelect(cmd *D.Command) D.Result {
	// Parameter list length of zero transfers nothing.
	params := D.Gather(cmd.Buffers, cmd.CDB.AllocLength())
	if len(params) >= 12 && params[3] == 8 {
		drive.blockSize = int(params[9])<<16 | int(params[10])<<8 | int(params[11])
		drive.log.Info("mode select", "blocksize", drive.blockSize)
	}
	return D.Good(len(params))
}

// Header and one empty block descriptor.
func (drive *Drive) modeSense(cmd *D.Command) D.Result {
	data := make([]byte, modeSenseLen)
	data[0] = modeSenseLen - 1
	if drive.readOnly {
		data[2] = modeWriteProtect
	}
	data[3] = 8
	return D.Good(D.Scatter(cmd.Buffers, allocate(cmd.CDB, data)))
}

func (drive *Drive) readBlockLimits(cmd *D.Command) D.Result {
	data := []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0x01}
	return D.Good(D.Scatter(cmd.Buffers, data))
}

// First and last block both report the record counter.
func (drive *Drive) readPosition(cmd *D.Command) D.Result {
	data := make([]byte, readPositionLen)
	if drive.pos.AtLoadPoint() {
		data[0] = positionBOP
	}
	first, last := drive.pos.ReportPosition()
	binary.BigEndian.PutUint32(data[4:8], first)
	binary.BigEndian.PutUint32(data[8:12], last)
	return D.Good(D.Scatter(cmd.Buffers, data))
}

// Return and clear sense of last command.
func (drive *Drive) requestSense(cmd *D.Command) D.Result {
	sense := drive.lastSense
	if sense == nil {
		sense = scsi.NoSenseData()
	}
	drive.lastSense = nil
	return D.Good(D.Scatter(cmd.Buffers, allocate(cmd.CDB, sense.Bytes())))
}

func (drive *Drive) writeFilemarks(cmd *D.Command) D.Result {
	if drive.readOnly {
		return writeProtected()
	}
	kind := tape.Filemark
	if cmd.CDB.Setmark() {
		kind = tape.Setmark
	}
	count := cmd.CDB.Count()
	res := D.Good(0)
	for i := range count {
		if err := drive.codec.WriteMark(kind); err != nil {
			res.Residual = count - i
			return drive.stop("write filemarks", err, res)
		}
	}
	debug.DebugUnitf(drive.unit, drive.debugMsk, debugData, "wrote %d %s record %d", count, kind, drive.pos.RecordIndex())
	if count != 0 {
		drive.saveIndex()
	}
	return res
}
