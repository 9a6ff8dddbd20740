/*
 * vtape - Command descriptor block decoding.
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

// Six byte command descriptor block.
type CDB []byte

// Opcode of command, 0xff for an empty descriptor.
func (cdb CDB) Opcode() uint8 {
	if len(cdb) == 0 {
		return 0xff
	}
	return cdb[0]
}

func (cdb CDB) byteAt(i int) uint8 {
	if i >= len(cdb) {
		return 0
	}
	return cdb[i]
}

// Three byte big endian length or count in bytes 2 to 4.
func (cdb CDB) Count() int {
	return int(cdb.byteAt(2))<<16 | int(cdb.byteAt(3))<<8 | int(cdb.byteAt(4))
}

// Fixed block mode bit of READ and WRITE.
func (cdb CDB) Fixed() bool {
	return cdb.byteAt(1)&cdbFixed != 0
}

// Transfer length in bytes of READ and WRITE.
func (cdb CDB) TransferBytes() int {
	if cdb.Fixed() {
		return cdb.Count() * FixedBlockSize
	}
	return cdb.Count()
}

// Setmark bit of WRITE FILEMARKS.
func (cdb CDB) Setmark() bool {
	return cdb.byteAt(1)&cdbSetmark != 0
}

// Space type of SPACE.
func (cdb CDB) SpaceCode() int {
	return int(cdb.byteAt(1) & cdbSpaceCode)
}

// EVPD bit and page code of INQUIRY.
func (cdb CDB) VitalPage() (bool, uint8) {
	return cdb.byteAt(1)&cdbEVPD != 0, cdb.byteAt(2)
}

// Allocation or parameter list length in byte 4.
func (cdb CDB) AllocLength() int {
	return int(cdb.byteAt(4))
}

// Build a six byte descriptor with a three byte count.
func NewCDB(op uint8, flags uint8, count int) CDB {
	return CDB{op, flags, byte(count >> 16), byte(count >> 8), byte(count), 0}
}
