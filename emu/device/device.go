/*
 * vtape - Device interface.
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

package device

import (
	"github.com/oklog/ulid/v2"
	"github.com/rcornwell/vtape/util/scsi"
)

// One command from the transport.
type Command struct {
	CDB     scsi.CDB  // Command descriptor block
	Buffers [][]byte  // Scatter list, read into or written from in order
	Tag     ulid.ULID // Identifies command for abort
}

// Completion of a command.
type Result struct {
	Status      scsi.Status // Completion status
	Sense       *scsi.Sense // Sense data when status is check condition
	Transferred int         // Bytes moved to or from Buffers
	Residual    int         // Bytes, or SPACE units, requested but not moved
}

// Called once per submitted command.
type Done func(cmd *Command, res Result)

// Device executes one command to completion.
type Device interface {
	Execute(cmd *Command) Result
	Debug(opt string) error
	Show() string
	Shutdown() error
}

// New command with a fresh tag.
func NewCommand(cdb scsi.CDB, buffers ...[]byte) *Command {
	return &Command{CDB: cdb, Buffers: buffers, Tag: ulid.Make()}
}

// Good completion.
func Good(transferred int) Result {
	return Result{Status: scsi.SamStatGood, Transferred: transferred}
}

// Completion with sense data and check condition status.
func Check(sense *scsi.Sense) Result {
	return Result{Status: scsi.SamStatCheckCondition, Sense: sense}
}
