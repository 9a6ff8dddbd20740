/*
 * vtape - Sense data tests.
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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilemarkSenseLayout(t *testing.T) {
	cdb := NewCDB(Read6, 0, 100)
	sense := MarkSense(cdb, 40, false)
	buf := sense.Bytes()

	require.Len(t, buf, SenseLen)
	assert.Equal(t, byte(0xf0), buf[0])
	assert.Equal(t, byte(0x80), buf[2], "filemark bit with no sense key")
	assert.Equal(t, []byte{0, 0, 0, 60}, buf[3:7])
	assert.Equal(t, byte(10), buf[7])
	assert.Equal(t, byte(0), buf[12])
	assert.Equal(t, byte(0), buf[13])
}

func TestSetmarkSense(t *testing.T) {
	sense := MarkSense(NewCDB(Space, SpaceBlocks, 5), 2, true)
	buf := sense.Bytes()

	assert.Equal(t, byte(0x80), buf[2])
	assert.Equal(t, byte(AscqSetmarkDetected), buf[13])
	assert.Equal(t, []byte{0, 0, 0, 3}, buf[3:7])
}

func TestResidual(t *testing.T) {
	tests := []struct {
		name      string
		cdb       CDB
		remaining int
		want      int32
	}{
		{"variable read", NewCDB(Read6, 0, 512), 12, 500},
		{"fixed read", NewCDB(Read6, 1, 4), 2 * FixedBlockSize, 2},
		{"fixed read partial block", NewCDB(Read6, 1, 4), FixedBlockSize + 10, 3},
		{"space", NewCDB(Space, SpaceFilemarks, 7), 7, 0},
		{"negative", NewCDB(Read6, 0, 1), 5, -4},
		{"other opcode", NewCDB(Write6, 0, 100), 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Residual(tt.cdb, tt.remaining))
		})
	}
}

func TestNegativeInformationField(t *testing.T) {
	sense := MarkSense(NewCDB(Read6, 0, 1), 3, false)
	buf := sense.Bytes()
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xfe}, buf[3:7])

	back, err := ParseSense(buf)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), back.Information)
	assert.True(t, back.Filemark)
}

func TestParseSense(t *testing.T) {
	sense := CheckSense(DataProtect, AscWriteProtected, 0)
	sense.EOM = true
	back, err := ParseSense(sense.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint8(DataProtect), back.Key)
	assert.Equal(t, uint8(AscWriteProtected), back.ASC)
	assert.True(t, back.EOM)
	assert.False(t, back.Filemark)

	_, err = ParseSense(make([]byte, 10))
	assert.Error(t, err)
}

func TestCDBFields(t *testing.T) {
	cdb := NewCDB(Read6, 1, 0x010203)
	assert.Equal(t, uint8(Read6), cdb.Opcode())
	assert.Equal(t, 0x010203, cdb.Count())
	assert.True(t, cdb.Fixed())
	assert.Equal(t, 0x010203*FixedBlockSize, cdb.TransferBytes())
	assert.True(t, bytes.Equal(cdb[:5], []byte{0x08, 0x01, 0x01, 0x02, 0x03}))

	assert.True(t, NewCDB(WriteFilemarks, 0x20, 1).Setmark())
	assert.Equal(t, SpaceFilemarks, NewCDB(Space, 0x09, 1).SpaceCode())
	assert.Equal(t, uint8(0xff), CDB{}.Opcode())
	assert.Equal(t, 0, CDB{Read6}.Count())
}
