/*
 * vtape - Configuration file parser.
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Unit number given to options that are not tied to a tape unit.
const NoUnit = -1

// List of options to pass to create routine.
type Option struct {
	Name     string   // Name of option.
	EqualOpt string   // Value of string after =.
	Value    []string // Comma separated values following option.
}

// Option after model.
type FirstOption struct {
	unit   int    // Value of option if number.
	isUnit bool   // Valid unit number in unit.
	value  string // String value of option.
}

// Current option line being parsed.
type optionLine struct {
	line   string // Current option line.
	pos    int    // Current position in line.
	number int    // Line number in file.
}

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <model> <whitespace> <first> *(<whitespace> <option>)
 * <model> := <string>
 * <first> ::= <number> | <quoteopt>
 * <option> ::= <name> ['=' <quoteopt>] *(',' *(<whitespace>) <name>)
 * <quoteopt> ::= <word> | '"' *(<any> | '""') '"'
 * <name> ::= <letter> *(<letter> | <number>)
 * <word> ::= *(not <whitespace> ',' '#')
 */

const (
	TypeModel   = 1 + iota // Tape unit, requires unit number.
	TypeOption             // Accepts a option parameter.
	TypeOptions            // Accepts a parameter and list of options.
	TypeSwitch             // Option only used to set a flag.
)

// Model creation list.
type modelDef struct {
	create func(int, string, []Option) error
	ty     int
}

var (
	modelsMu sync.Mutex
	models   = map[string]modelDef{}
)

func register(mod string, ty int, fn func(int, string, []Option) error) {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	models[strings.ToUpper(mod)] = modelDef{create: fn, ty: ty}
}

func lookup(mod string) (modelDef, bool) {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	model, ok := models[strings.ToUpper(mod)]
	return model, ok
}

// Register should be called from init functions.
func RegisterModel(mod string, ty int, fn func(int, string, []Option) error) {
	register(mod, ty, fn)
}

// Register should be called from init functions.
func RegisterSwitch(mod string, fn func(int, string, []Option) error) {
	register(mod, TypeSwitch, fn)
}

// Register should be called from init functions.
func RegisterOption(mod string, fn func(int, string, []Option) error) {
	register(mod, TypeOption, fn)
}

// Return type of model or 0 if no model.
func getModel(mod string) int {
	model, ok := lookup(mod)
	if !ok {
		return 0
	}
	return model.ty
}

// Create a tape unit of type model.
func createModel(mod string, first *FirstOption, options []Option) error {
	model, ok := lookup(mod)
	if !ok {
		return errors.New("unknown model: " + mod)
	}
	if model.ty != TypeModel {
		return errors.New("not a device type: " + mod)
	}
	return model.create(first.unit, "", options)
}

// Create a option with one parameter, or a parameter and options.
func createOption(mod string, ty int, first *FirstOption, options []Option) error {
	model, ok := lookup(mod)
	if !ok {
		return errors.New("unknown option: " + mod)
	}
	if model.ty != ty {
		return errors.New("not a option of this type: " + mod)
	}
	unit := NoUnit
	if first.isUnit {
		unit = first.unit
	}
	return model.create(unit, first.value, options)
}

// Create switch option.
func createSwitch(mod string) error {
	model, ok := lookup(mod)
	if !ok {
		return errors.New("unknown switch: " + mod)
	}
	if model.ty != TypeSwitch {
		return errors.New("not a switch type: " + mod)
	}
	return model.create(NoUnit, "", nil)
}

// Load in a configuration file.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return LoadConfig(file)
}

// Load configuration from reader.
func LoadConfig(in io.Reader) error {
	reader := bufio.NewReader(in)
	number := 0
	for {
		text, err := reader.ReadString('\n')
		number++
		if len(text) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		line := optionLine{line: strings.TrimRight(text, "\r\n"), number: number}
		if perr := line.parseLine(); perr != nil {
			return perr
		}
	}
	return nil
}

func (line *optionLine) errorf(format string, a ...interface{}) error {
	return fmt.Errorf(format+", line: %d", append(a, line.number)...)
}

// Parse one line from file.
func (line *optionLine) parseLine() error {
	model := line.parseName()
	if model == "" {
		if !line.isEOL() {
			return line.errorf("invalid model name [%d]", line.pos)
		}
		return nil
	}
	model = strings.ToUpper(model)

	switch ty := getModel(model); ty {
	case TypeModel:
		first, err := line.parseFirst()
		if err != nil {
			return err
		}
		if first == nil || !first.isUnit {
			return line.errorf("device %s requires unit number", model)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return createModel(model, first, options)

	case TypeOption:
		first, err := line.parseFirst()
		if err != nil {
			return err
		}
		line.skipSpace()
		if !line.isEOL() || first == nil {
			return line.errorf("option: %s not followed by value", model)
		}
		return createOption(model, ty, first, nil)

	case TypeOptions:
		first, err := line.parseFirst()
		if err != nil {
			return err
		}
		if first == nil {
			return line.errorf("option: %s not followed by value", model)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return createOption(model, ty, first, options)

	case TypeSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return line.errorf("switch option: %s followed by options", model)
		}
		return createSwitch(model)
	}
	return line.errorf("no type: %s registered", model)
}

// Skip forward over line until none whitespace character found.
func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *optionLine) isEOL() bool {
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

// Peek at current character, 0 at end of line.
func (line *optionLine) peek() byte {
	if line.isEOL() {
		return 0
	}
	return line.line[line.pos]
}

// Grab letter followed by letters, numbers or dashes.
func (line *optionLine) parseName() string {
	line.skipSpace()
	if line.isEOL() || !unicode.IsLetter(rune(line.line[line.pos])) {
		return ""
	}
	start := line.pos
	for !line.isEOL() {
		by := rune(line.line[line.pos])
		if !unicode.IsLetter(by) && !unicode.IsNumber(by) && by != '-' && by != '_' {
			break
		}
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse "string" or a bare word.
func (line *optionLine) parseQuoteString() (string, error) {
	if line.peek() != '"' {
		start := line.pos
		for !line.isEOL() {
			by := line.line[line.pos]
			if unicode.IsSpace(rune(by)) || by == ',' {
				break
			}
			line.pos++
		}
		return line.line[start:line.pos], nil
	}

	// Inside quotes "" is a single quote and # is not a comment.
	line.pos++
	value := strings.Builder{}
	for line.pos < len(line.line) {
		by := line.line[line.pos]
		line.pos++
		if by == '"' {
			if line.pos < len(line.line) && line.line[line.pos] == '"' {
				line.pos++
			} else {
				return value.String(), nil
			}
		}
		value.WriteByte(by)
	}
	return "", line.errorf("invalid quoted string [%d]", line.pos)
}

// Parse first option parameter.
func (line *optionLine) parseFirst() (*FirstOption, error) {
	line.skipSpace()
	if line.isEOL() {
		return nil, nil
	}

	value, err := line.parseQuoteString()
	if err != nil {
		return nil, err
	}
	option := FirstOption{unit: NoUnit, value: value}
	unit, err := strconv.ParseUint(value, 10, 8)
	if err == nil {
		option.unit = int(unit)
		option.isUnit = true
	}
	return &option, nil
}

// Parse options for a line.
func (line *optionLine) parseOption() (*Option, error) {
	value := line.parseName()
	if value == "" {
		if !line.isEOL() {
			return nil, line.errorf("invalid option encountered [%d]", line.pos)
		}
		return nil, nil
	}
	option := Option{Name: value}

	// Check if equals option.
	if line.peek() == '=' {
		line.pos++
		v, err := line.parseQuoteString()
		if err != nil {
			return nil, err
		}
		option.EqualOpt = v
	}

	// Grab all , options
	line.skipSpace()
	for line.peek() == ',' {
		line.pos++
		v := line.parseName()
		if v == "" {
			return nil, line.errorf("missing value after comma [%d]", line.pos)
		}
		option.Value = append(option.Value, v)
		line.skipSpace()
	}
	return &option, nil
}

// Collect all options for line.
func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			break
		}
		options = append(options, *option)
	}
	return options, nil
}
