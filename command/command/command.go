/*
 * vtape - Console command interface.
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

package command

import (
	"errors"
	"io"

	"github.com/rcornwell/vtape/emu/bus"
	D "github.com/rcornwell/vtape/emu/device"
	"github.com/rcornwell/vtape/util/catalog"
)

// Runs commands against tape units.
type Runner interface {
	Run(unit int, cmd *D.Command) (D.Result, error) // Submit command and wait.
	Show(unit int) (string, error)                  // Describe unit.
	Units() []int                                   // Attached units.
	Volumes() ([]catalog.Volume, error)             // Catalogued volumes.
}

// Console state.
type Session struct {
	Unit   int       // Unit commands go to.
	Out    io.Writer // Command output.
	Runner Runner    // Where commands are run.
}

var ErrNoCatalog = errors.New("no catalog configured")

// Runner over the unit bus.
type BusRunner struct{}

func (BusRunner) Run(unit int, cmd *D.Command) (D.Result, error) {
	return bus.Run(unit, cmd)
}

func (BusRunner) Show(unit int) (string, error) {
	dev, ok := bus.Get(unit)
	if !ok {
		return "", bus.ErrNoUnit
	}
	return dev.Show(), nil
}

func (BusRunner) Units() []int {
	return bus.Units()
}

func (BusRunner) Volumes() ([]catalog.Volume, error) {
	cat := catalog.Default()
	if cat == nil {
		return nil, ErrNoCatalog
	}
	return cat.List()
}
