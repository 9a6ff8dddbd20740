/*
 * vtape - Log handler tests.
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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	log := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, &debug))

	log.With("unit", 3).Debug("rewind", "offset", 0)
	line := buf.String()
	if !strings.Contains(line, "DEBUG: rewind unit=3 offset=0") {
		t.Errorf("Log line not formatted got: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("Log line not terminated got: %q", line)
	}
}

func TestHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	log := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, &debug))

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Debug message written at info level got: %q", buf.String())
	}
}

func TestJournalKey(t *testing.T) {
	if k := journalKey("unit.serial-1"); k != "UNIT_SERIAL_1" {
		t.Errorf("Journal key got: %s expected: UNIT_SERIAL_1", k)
	}
}

func TestNewFileOnly(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, slog.LevelInfo, false, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("attach")
	if !strings.Contains(buf.String(), "INFO: attach") {
		t.Errorf("Log line missing got: %q", buf.String())
	}
}
