/*
 * vtape - SCSI stream device definitions.
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

// SCSI opcodes handled or recognised by the emulator.
const (
	TestUnitReady   = 0x00
	Rewind          = 0x01
	RequestSense    = 0x03
	ReadBlockLimits = 0x05
	Read6           = 0x08
	Write6          = 0x0a
	WriteFilemarks  = 0x10
	Space           = 0x11
	Inquiry         = 0x12
	ModeSelect      = 0x15
	Erase           = 0x19
	ModeSense       = 0x1a
	ReadPosition    = 0x34
)

// Command completion status.
type Status uint8

const (
	SamStatGood           Status = 0x00
	SamStatCheckCondition Status = 0x02
	SamStatBusy           Status = 0x08
)

// Sense keys.
const (
	NoSense        = 0x00
	RecoveredError = 0x01
	NotReady       = 0x02
	MediumError    = 0x03
	HardwareError  = 0x04
	IllegalRequest = 0x05
	UnitAttention  = 0x06
	DataProtect    = 0x07
	BlankCheck     = 0x08
)

// Additional sense codes and qualifiers.
const (
	AscNoAdditionalSense = 0x00
	AscqFilemarkDetected = 0x01
	AscqEndOfPartition   = 0x02
	AscqSetmarkDetected  = 0x03
	AscqEndOfData        = 0x05
	AscInvalidOpcode     = 0x20
	AscInvalidFieldInCDB = 0x24
	AscWriteProtected    = 0x27
)

// Fixed block size used when the fixed bit is set in READ and WRITE.
const FixedBlockSize = 0x8000

// CDB field masks.
const (
	cdbFixed     = 0x01 // READ/WRITE fixed block mode
	cdbSetmark   = 0x20 // WRITE FILEMARKS writes setmarks
	cdbSpaceCode = 0x07 // SPACE type field
	cdbEVPD      = 0x01 // INQUIRY vital product data
)

// Space codes.
const (
	SpaceBlocks    = 0
	SpaceFilemarks = 1
)

// Name of opcode for logging.
func OpName(op uint8) string {
	switch op {
	case TestUnitReady:
		return "TEST UNIT READY"
	case Rewind:
		return "REWIND"
	case RequestSense:
		return "REQUEST SENSE"
	case ReadBlockLimits:
		return "READ BLOCK LIMITS"
	case Read6:
		return "READ"
	case Write6:
		return "WRITE"
	case WriteFilemarks:
		return "WRITE FILEMARKS"
	case Space:
		return "SPACE"
	case Inquiry:
		return "INQUIRY"
	case ModeSelect:
		return "MODE SELECT"
	case Erase:
		return "ERASE"
	case ModeSense:
		return "MODE SENSE"
	case ReadPosition:
		return "READ POSITION"
	}
	return "UNKNOWN"
}

// Name of status.
func (status Status) String() string {
	switch status {
	case SamStatGood:
		return "GOOD"
	case SamStatCheckCondition:
		return "CHECK CONDITION"
	case SamStatBusy:
		return "BUSY"
	}
	return "UNKNOWN"
}
