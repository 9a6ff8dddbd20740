/*
 * vtape - Debug configuration.
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
	"errors"
	"strings"

	config "github.com/rcornwell/vtape/config/configparser"
	"github.com/rcornwell/vtape/emu/bus"
	"github.com/rcornwell/vtape/util/tape"
)

// register debug option on initialize.
func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// Names of all options and their comma values.
func optionNames(options []config.Option) []string {
	names := []string{}
	for _, opt := range options {
		names = append(names, strings.ToUpper(opt.Name))
		for _, value := range opt.Value {
			names = append(names, strings.ToUpper(value))
		}
	}
	return names
}

// Set debug masks of the tape codec or of one unit.
func setDebug(unit int, device string, options []config.Option) error {
	names := optionNames(options)
	if len(names) == 0 {
		return errors.New("debug requires at least one option")
	}

	var set func(string) error
	switch {
	case strings.ToUpper(device) == "TAPE":
		set = tape.Debug
	case unit != config.NoUnit:
		dev, ok := bus.Get(unit)
		if !ok {
			return errors.New("debug unit not attached: " + device)
		}
		set = dev.Debug
	default:
		return errors.New("debug option invalid: " + device)
	}

	for _, name := range names {
		if err := set(name); err != nil {
			return err
		}
	}
	return nil
}
