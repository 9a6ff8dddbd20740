/*
 * vtape - Sense data generation.
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

package scsi

import (
	"encoding/binary"
	"fmt"
)

// Size of fixed format sense data.
const SenseLen = 18

const (
	senseCurrent = 0xf0 // Valid, current error
	senseFM      = 0x80 // Filemark
	senseEOM     = 0x40 // End of medium
	senseILI     = 0x20 // Incorrect length
	senseKeyMask = 0x0f
)

// Fixed format sense data.
type Sense struct {
	ErrorCode   uint8
	Segment     uint8
	Key         uint8
	Filemark    bool
	EOM         bool
	ILI         bool
	Information int32
	CmdInfo     [4]byte
	ASC         uint8
	ASCQ        uint8
	FRU         uint8
	KeySpecific [3]byte
}

// Pack sense into its 18 byte layout.
func (sense *Sense) Bytes() []byte {
	buf := make([]byte, SenseLen)
	buf[0] = sense.ErrorCode
	buf[1] = sense.Segment
	buf[2] = sense.Key & senseKeyMask
	if sense.Filemark {
		buf[2] |= senseFM
	}
	if sense.EOM {
		buf[2] |= senseEOM
	}
	if sense.ILI {
		buf[2] |= senseILI
	}
	binary.BigEndian.PutUint32(buf[3:7], uint32(sense.Information))
	buf[7] = SenseLen - 8
	copy(buf[8:12], sense.CmdInfo[:])
	buf[12] = sense.ASC
	buf[13] = sense.ASCQ
	buf[14] = sense.FRU
	copy(buf[15:18], sense.KeySpecific[:])
	return buf
}

// Decode sense bytes.
func ParseSense(buf []byte) (*Sense, error) {
	if len(buf) < SenseLen {
		return nil, fmt.Errorf("sense data too short: %d bytes", len(buf))
	}
	sense := &Sense{
		ErrorCode:   buf[0],
		Segment:     buf[1],
		Key:         buf[2] & senseKeyMask,
		Filemark:    buf[2]&senseFM != 0,
		EOM:         buf[2]&senseEOM != 0,
		ILI:         buf[2]&senseILI != 0,
		Information: int32(binary.BigEndian.Uint32(buf[3:7])),
		ASC:         buf[12],
		ASCQ:        buf[13],
		FRU:         buf[14],
	}
	copy(sense.CmdInfo[:], buf[8:12])
	copy(sense.KeySpecific[:], buf[15:18])
	return sense, nil
}

func (sense *Sense) String() string {
	flags := ""
	if sense.Filemark {
		flags += " FM"
	}
	if sense.EOM {
		flags += " EOM"
	}
	if sense.ILI {
		flags += " ILI"
	}
	return fmt.Sprintf("key=%x asc=%02x ascq=%02x info=%d%s",
		sense.Key, sense.ASC, sense.ASCQ, sense.Information, flags)
}

// Residual count reported in the information field when a read or space
// stops on a mark.
func Residual(cdb CDB, remaining int) int32 {
	switch cdb.Opcode() {
	case Read6:
		if cdb.Fixed() {
			return int32(cdb.Count() - remaining/FixedBlockSize)
		}
		return int32(cdb.Count() - remaining)
	case Space:
		return int32(cdb.Count() - remaining)
	}
	return 0
}

// Sense for a filemark or setmark encountered during read or space.
func MarkSense(cdb CDB, remaining int, setmark bool) *Sense {
	sense := &Sense{
		ErrorCode:   senseCurrent,
		Key:         NoSense,
		Filemark:    true,
		ASC:         AscNoAdditionalSense,
		Information: Residual(cdb, remaining),
	}
	if setmark {
		sense.ASCQ = AscqSetmarkDetected
	}
	return sense
}

// Sense with nothing to report.
func NoSenseData() *Sense {
	return &Sense{ErrorCode: senseCurrent, Key: NoSense}
}

// Sense for a rejected command.
func CheckSense(key uint8, asc uint8, ascq uint8) *Sense {
	return &Sense{ErrorCode: senseCurrent, Key: key, ASC: asc, ASCQ: ascq}
}
