/*
 * vtape - Debug configuration tests.
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

package debugconfig

import (
	"strings"
	"testing"

	config "github.com/rcornwell/vtape/config/configparser"
	"github.com/rcornwell/vtape/emu/bus"
	D "github.com/rcornwell/vtape/emu/device"
)

type debugDev struct {
	opts []string
}

func (d *debugDev) Execute(_ *D.Command) D.Result { return D.Good(0) }
func (d *debugDev) Show() string                 { return "debug" }
func (d *debugDev) Shutdown() error              { return nil }

func (d *debugDev) Debug(opt string) error {
	d.opts = append(d.opts, opt)
	return nil
}

func TestDebugUnit(t *testing.T) {
	dev := &debugDev{}
	if err := bus.Attach(4, dev, 1); err != nil {
		t.Fatal(err)
	}
	defer bus.Detach(4)

	if err := config.LoadConfig(strings.NewReader("debug 4 cmd,data detail\n")); err != nil {
		t.Fatalf("Debug line failed: %v", err)
	}
	if strings.Join(dev.opts, ",") != "CMD,DATA,DETAIL" {
		t.Errorf("Debug options got: %v", dev.opts)
	}
}

func TestDebugTape(t *testing.T) {
	if err := config.LoadConfig(strings.NewReader("debug tape record,mark\n")); err != nil {
		t.Errorf("Debug tape failed: %v", err)
	}
	if err := config.LoadConfig(strings.NewReader("debug tape bogus\n")); err == nil {
		t.Errorf("Debug tape accepted bad option")
	}
}

func TestDebugErrors(t *testing.T) {
	if err := config.LoadConfig(strings.NewReader("debug 9 cmd\n")); err == nil {
		t.Errorf("Debug of missing unit succeeded")
	}
	if err := config.LoadConfig(strings.NewReader("debug printer cmd\n")); err == nil {
		t.Errorf("Debug of unknown device succeeded")
	}
	if err := config.LoadConfig(strings.NewReader("debug tape\n")); err == nil {
		t.Errorf("Debug without options succeeded")
	}
}
