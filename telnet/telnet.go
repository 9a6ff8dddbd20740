/*
 * vtape - Remote console line handling.
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

package telnet

import (
	"bytes"
	"io"
	"net"

	command "github.com/rcornwell/vtape/command/command"
	"github.com/rcornwell/vtape/command/parser"
)

// Telnet protocol constants.
const (
	tnIAC  byte = 255 // protocol delim
	tnDONT byte = 254 // dont
	tnDO   byte = 253 // do
	tnWONT byte = 252 // wont
	tnWILL byte = 251 // will
	tnSB   byte = 250 // Sub negotiations begin
	tnSE   byte = 240 // Sub negotiations end
)

// Telnet line states.
const (
	tnStateData int = iota // normal
	tnStateIAC             // IAC seen
	tnStateSKIP            // skip option byte
	tnStateSB              // in sub negotiation
	tnStateSE              // IAC seen in sub negotiation
)

const maxLine = 1024

const prompt = "vtape> "

type tnState struct {
	state int    // Current line State
	cr    bool   // Last data byte was carriage return
	line  []byte // Line being collected
}

// Strip telnet commands from input, returns completed lines.
func (state *tnState) receive(data []byte) []string {
	var lines []string
	for _, by := range data {
		switch state.state {
		case tnStateData:
			switch by {
			case tnIAC:
				state.state = tnStateIAC
			case '\r':
				lines = append(lines, string(state.line))
				state.line = state.line[:0]
				state.cr = true
				continue
			case '\n':
				if !state.cr {
					lines = append(lines, string(state.line))
					state.line = state.line[:0]
				}
			case 0:
			default:
				if len(state.line) < maxLine {
					state.line = append(state.line, by)
				}
			}
			state.cr = false

		case tnStateIAC:
			switch by {
			case tnIAC:
				state.line = append(state.line, by)
				state.state = tnStateData
			case tnWILL, tnWONT, tnDO, tnDONT:
				state.state = tnStateSKIP
			case tnSB:
				state.state = tnStateSB
			default:
				state.state = tnStateData
			}

		case tnStateSKIP:
			state.state = tnStateData

		case tnStateSB:
			if by == tnIAC {
				state.state = tnStateSE
			}

		case tnStateSE:
			if by == tnSE {
				state.state = tnStateData
			} else {
				state.state = tnStateSB
			}
		}
	}
	return lines
}

// Network terminals expect carriage return before newline.
type crlfWriter struct {
	out io.Writer
}

func (w crlfWriter) Write(p []byte) (int, error) {
	_, err := w.out.Write(bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\r', '\n'}))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Run console commands from one connection until quit or disconnect.
func handleClient(conn net.Conn, runner command.Runner) {
	defer conn.Close()

	out := crlfWriter{out: conn}
	session := &command.Session{Out: out, Runner: runner}
	if units := runner.Units(); len(units) != 0 {
		session.Unit = units[0]
	}

	state := tnState{}
	buf := make([]byte, 512)
	io.WriteString(out, prompt)
	for {
		n, err := conn.Read(buf)
		for _, line := range state.receive(buf[:n]) {
			quit, perr := parser.ProcessCommand(line, session)
			if perr != nil {
				io.WriteString(out, "Error: "+perr.Error()+"\n")
			}
			if quit {
				return
			}
			io.WriteString(out, prompt)
		}
		if err != nil {
			return
		}
	}
}
