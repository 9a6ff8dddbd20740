/*
 * vtape - Console commands.
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	command "github.com/rcornwell/vtape/command/command"
	D "github.com/rcornwell/vtape/emu/device"
	"github.com/rcornwell/vtape/util/hex"
	"github.com/rcornwell/vtape/util/scsi"
)

const defaultRead = 1024

var cmdList []cmd

func init() {
	cmdList = []cmd{
		{Name: "unit", Min: 1, Help: "unit [n] select unit", Process: unit, Complete: unitComplete},
		{Name: "tur", Min: 2, Help: "test unit ready", Process: simple(scsi.TestUnitReady)},
		{Name: "inquiry", Min: 2, Help: "show device identity", Process: inquiry},
		{Name: "rewind", Min: 3, Help: "rewind to load point", Process: simple(scsi.Rewind)},
		{Name: "erase", Min: 2, Help: "erase tape", Process: simple(scsi.Erase)},
		{Name: "write", Min: 2, Help: "write \"text\" write one record", Process: write},
		{Name: "weof", Min: 2, Help: "weof [n] write filemarks", Process: marks(false)},
		{Name: "wsm", Min: 2, Help: "wsm [n] write setmarks", Process: marks(true)},
		{Name: "read", Min: 3, Help: "read [n] read up to n bytes", Process: read},
		{Name: "fsr", Min: 3, Help: "fsr [n] space forward records", Process: space(scsi.SpaceBlocks)},
		{Name: "fsf", Min: 3, Help: "fsf [n] space forward filemarks", Process: space(scsi.SpaceFilemarks)},
		{Name: "position", Min: 1, Help: "read position", Process: position},
		{Name: "limits", Min: 1, Help: "read block limits", Process: limits},
		{Name: "modesense", Min: 1, Help: "mode sense", Process: modeSense},
		{Name: "sense", Min: 2, Help: "request sense", Process: sense},
		{Name: "show", Min: 2, Help: "show [n] describe units", Process: show, Complete: unitComplete},
		{Name: "volumes", Min: 1, Help: "list catalogued volumes", Process: volumes},
		{Name: "help", Min: 1, Help: "list commands", Process: help},
		{Name: "quit", Min: 4, Help: "exit", Process: quit},
	}
}

// Submit command to current unit and print its completion.
func execute(session *command.Session, cdb scsi.CDB, bufs ...[]byte) (D.Result, error) {
	res, err := session.Runner.Run(session.Unit, D.NewCommand(cdb, bufs...))
	if err != nil {
		return res, err
	}
	fmt.Fprintf(session.Out, "%s: %s transferred %d residual %d\n",
		scsi.OpName(cdb.Opcode()), res.Status, res.Transferred, res.Residual)
	if res.Sense != nil {
		fmt.Fprintf(session.Out, "sense: %s\n", res.Sense)
	}
	return res, nil
}

// Command with no arguments and no data.
func simple(op uint8) func(*cmdLine, *command.Session) (bool, error) {
	return func(line *cmdLine, session *command.Session) (bool, error) {
		if err := line.checkEOL(); err != nil {
			return false, err
		}
		_, err := execute(session, scsi.NewCDB(op, 0, 0))
		return false, err
	}
}

func unit(line *cmdLine, session *command.Session) (bool, error) {
	line.skipSpace()
	if line.isEOL() {
		fmt.Fprintf(session.Out, "unit %d\n", session.Unit)
		return false, nil
	}
	num, err := line.getNumber()
	if err != nil {
		return false, err
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	session.Unit = num
	slog.Debug("Command Unit", "unit", num)
	return false, nil
}

func inquiry(line *cmdLine, session *command.Session) (bool, error) {
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	buf := make([]byte, 36)
	res, err := execute(session, scsi.NewCDB(scsi.Inquiry, 0, len(buf)), buf)
	if err != nil || res.Sense != nil {
		return false, err
	}
	fmt.Fprintf(session.Out, "vendor: %s product: %s revision: %s\n",
		strings.TrimSpace(string(buf[8:16])), strings.TrimSpace(string(buf[16:32])), string(buf[32:36]))

	serial := make([]byte, 255)
	res, err = execute(session, scsi.NewCDB(scsi.Inquiry, 0x01, 0x80<<16|len(serial)), serial)
	if err == nil && res.Sense == nil && res.Transferred > 4 {
		fmt.Fprintf(session.Out, "serial: %s\n", string(serial[4:4+int(serial[3])]))
	}
	return false, err
}

func write(line *cmdLine, session *command.Session) (bool, error) {
	text, ok := line.parseQuoteString()
	if !ok || text == "" {
		return false, errors.New("write requires text")
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	_, err := execute(session, scsi.NewCDB(scsi.Write6, 0, len(text)), []byte(text))
	return false, err
}

func marks(setmark bool) func(*cmdLine, *command.Session) (bool, error) {
	flags := uint8(0)
	if setmark {
		flags = 0x20
	}
	return func(line *cmdLine, session *command.Session) (bool, error) {
		count, err := line.getCount(1)
		if err != nil {
			return false, err
		}
		if err := line.checkEOL(); err != nil {
			return false, err
		}
		_, err = execute(session, scsi.NewCDB(scsi.WriteFilemarks, flags, count))
		return false, err
	}
}

func read(line *cmdLine, session *command.Session) (bool, error) {
	count, err := line.getCount(defaultRead)
	if err != nil {
		return false, err
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	buf := make([]byte, count)
	res, err := execute(session, scsi.NewCDB(scsi.Read6, 0, count), buf)
	if err != nil {
		return false, err
	}
	fmt.Fprint(session.Out, hex.Dump(buf[:res.Transferred]))
	return false, nil
}

func space(code uint8) func(*cmdLine, *command.Session) (bool, error) {
	return func(line *cmdLine, session *command.Session) (bool, error) {
		count, err := line.getCount(1)
		if err != nil {
			return false, err
		}
		if err := line.checkEOL(); err != nil {
			return false, err
		}
		_, err = execute(session, scsi.NewCDB(scsi.Space, code, count))
		return false, err
	}
}

// Fixed response commands print their data in hex.
func dumpResponse(line *cmdLine, session *command.Session, op uint8, size int) (bool, error) {
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	buf := make([]byte, size)
	res, err := execute(session, scsi.NewCDB(op, 0, size), buf)
	if err != nil {
		return false, err
	}
	fmt.Fprint(session.Out, hex.Dump(buf[:res.Transferred]))
	return false, nil
}

func position(line *cmdLine, session *command.Session) (bool, error) {
	return dumpResponse(line, session, scsi.ReadPosition, 20)
}

func limits(line *cmdLine, session *command.Session) (bool, error) {
	return dumpResponse(line, session, scsi.ReadBlockLimits, 6)
}

func modeSense(line *cmdLine, session *command.Session) (bool, error) {
	return dumpResponse(line, session, scsi.ModeSense, 12)
}

func sense(line *cmdLine, session *command.Session) (bool, error) {
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	buf := make([]byte, scsi.SenseLen)
	if _, err := execute(session, scsi.NewCDB(scsi.RequestSense, 0, len(buf)), buf); err != nil {
		return false, err
	}
	s, err := scsi.ParseSense(buf)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(session.Out, "%s\n", s)
	return false, nil
}

func show(line *cmdLine, session *command.Session) (bool, error) {
	line.skipSpace()
	units := session.Runner.Units()
	if !line.isEOL() {
		num, err := line.getNumber()
		if err != nil {
			return false, err
		}
		units = []int{num}
	}
	if len(units) == 0 {
		fmt.Fprintln(session.Out, "no units attached")
	}
	for _, n := range units {
		desc, err := session.Runner.Show(n)
		if err != nil {
			return false, fmt.Errorf("unit %d: %w", n, err)
		}
		fmt.Fprintln(session.Out, desc)
	}
	return false, nil
}

func volumes(line *cmdLine, session *command.Session) (bool, error) {
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	vols, err := session.Runner.Volumes()
	if err != nil {
		return false, err
	}
	for _, vol := range vols {
		fmt.Fprintf(session.Out, "%s %s record=%d updated=%s\n",
			vol.Serial, vol.Path, vol.RecordIndex, vol.Updated.Format("2006/01/02 15:04:05"))
	}
	return false, nil
}

func help(_ *cmdLine, session *command.Session) (bool, error) {
	for _, c := range cmdList {
		fmt.Fprintf(session.Out, "%-10s %s\n", c.Name, c.Help)
	}
	return false, nil
}

func quit(_ *cmdLine, _ *command.Session) (bool, error) {
	return true, nil
}

// Complete unit numbers.
func unitComplete(line *cmdLine, session *command.Session) []string {
	leading := line.line[:line.pos]
	line.skipSpace()
	prefix := line.line[line.pos:]
	matches := []string{}
	for _, n := range session.Runner.Units() {
		num := strconv.Itoa(n)
		if strings.HasPrefix(num, prefix) {
			matches = append(matches, leading+" "+num)
		}
	}
	return matches
}
