/*
 * vtape - Configuration file parser tests.
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
	"strings"
	"testing"
)

var (
	testOptions []Option
	testUnit    int
	testValue   string
	testType    string
)

func resetTest() {
	testOptions = []Option{}
	testUnit = 0xff
	testValue = "error"
	testType = ""
}

func cleanUpConfig() {
	modelsMu.Lock()
	models = map[string]modelDef{}
	modelsMu.Unlock()
	resetTest()
}

func record(ty string) func(int, string, []Option) error {
	return func(unit int, value string, options []Option) error {
		testUnit = unit
		testValue = value
		testType = ty
		testOptions = options
		return nil
	}
}

func registerAll() {
	RegisterModel("tape", TypeModel, record("model"))
	RegisterOption("logfile", record("option"))
	RegisterModel("debug", TypeOptions, record("options"))
	RegisterSwitch("quiet", record("switch"))
}

// Test registering a model.
func TestRegisterModel(t *testing.T) {
	cleanUpConfig()

	RegisterModel("testdev", TypeModel, record("model"))
	fTest := FirstOption{unit: 3, isUnit: true, value: "3"}
	err := createModel("test", &fTest, nil)
	if err == nil {
		t.Errorf("Create non existent model succeeded")
	}
	err = createModel("TESTDEV", &fTest, nil)
	if err != nil {
		t.Errorf("Unable to create model: %v", err)
	}
	if testUnit != 3 {
		t.Errorf("Unit number not valid: %d", testUnit)
	}
	if testValue != "" {
		t.Errorf("Value not valid: %s", testValue)
	}
	err = createSwitch("testdev")
	if err == nil {
		t.Errorf("Create device as switch succeeded")
	}
}

// Test register a switch and an option.
func TestRegisterSwitchOption(t *testing.T) {
	cleanUpConfig()

	RegisterSwitch("testswitch", record("switch"))
	RegisterOption("testoption", record("option"))
	if err := createSwitch("test"); err == nil {
		t.Errorf("Create non existent switch succeeded")
	}
	if err := createSwitch("testswitch"); err != nil {
		t.Errorf("Unable to create switch: %v", err)
	}
	if testUnit != NoUnit {
		t.Errorf("Switch unit not valid: %d", testUnit)
	}

	fTest := FirstOption{unit: NoUnit, value: "file.log"}
	if err := createOption("testoption", TypeOption, &fTest, nil); err != nil {
		t.Errorf("Unable to create option: %v", err)
	}
	if testValue != "file.log" {
		t.Errorf("Option value not valid: %s", testValue)
	}
	if err := createOption("testswitch", TypeOption, &fTest, nil); err == nil {
		t.Errorf("Create switch as option succeeded")
	}
}

// Test parsing a tape unit line.
func TestParseModelLine(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: `tape 2 file="/tmp/my tape.dat" queue=16 rw  # unit two`}
	if err := line.parseLine(); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if testType != "model" || testUnit != 2 {
		t.Errorf("ParseLine did not create unit 2: %s %d", testType, testUnit)
	}
	if len(testOptions) != 3 {
		t.Fatalf("ParseLine wrong number of options: %d", len(testOptions))
	}
	if testOptions[0].Name != "file" || testOptions[0].EqualOpt != "/tmp/my tape.dat" {
		t.Errorf("File option not valid: %+v", testOptions[0])
	}
	if testOptions[1].Name != "queue" || testOptions[1].EqualOpt != "16" {
		t.Errorf("Queue option not valid: %+v", testOptions[1])
	}
	if testOptions[2].Name != "rw" || testOptions[2].EqualOpt != "" {
		t.Errorf("Switch option not valid: %+v", testOptions[2])
	}
}

// Unit number is required for models.
func TestParseModelNoUnit(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: `tape file=x`}
	if err := line.parseLine(); err == nil {
		t.Errorf("ParseLine accepted tape without unit")
	}
}

// Test option with quoted value.
func TestParseOptionLine(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: `logfile "log ""one"".txt"`}
	if err := line.parseLine(); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if testType != "option" || testValue != `log "one".txt` {
		t.Errorf("Option not created: %s %q", testType, testValue)
	}

	line = optionLine{line: `logfile "unterminated`}
	if err := line.parseLine(); err == nil {
		t.Errorf("ParseLine accepted unterminated string")
	}

	line = optionLine{line: `logfile a b`}
	if err := line.parseLine(); err == nil {
		t.Errorf("ParseLine accepted extra values")
	}
}

// Test option with list of values.
func TestParseOptionsLine(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: `debug tape record, mark ,detail`}
	if err := line.parseLine(); err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if testType != "options" || testValue != "tape" || testUnit != NoUnit {
		t.Errorf("Options not created: %s %s %d", testType, testValue, testUnit)
	}
	if len(testOptions) != 1 {
		t.Fatalf("Wrong number of options: %d", len(testOptions))
	}
	opt := testOptions[0]
	if opt.Name != "record" || len(opt.Value) != 2 || opt.Value[0] != "mark" || opt.Value[1] != "detail" {
		t.Errorf("Option values not valid: %+v", opt)
	}
}

// Test switch lines.
func TestParseSwitchLine(t *testing.T) {
	cleanUpConfig()
	registerAll()

	line := optionLine{line: "  quiet   "}
	if err := line.parseLine(); err != nil {
		t.Errorf("ParseLine failed to parse switch: %v", err)
	}
	if testType != "switch" {
		t.Errorf("ParseLine did not create a switch")
	}
	line = optionLine{line: "quiet now"}
	if err := line.parseLine(); err == nil {
		t.Errorf("ParseLine accepted switch with options")
	}
}

// Test loading a whole file.
func TestLoadConfig(t *testing.T) {
	cleanUpConfig()
	registerAll()

	units := []int{}
	RegisterModel("tape", TypeModel, func(unit int, _ string, _ []Option) error {
		units = append(units, unit)
		return nil
	})
	cfg := "# test configuration\n\n" +
		"logfile out.log\r\n" +
		"tape 0 file=a.dat\n" +
		"tape 1 file=b.dat ro\n"
	if err := LoadConfig(strings.NewReader(cfg)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(units) != 2 || units[0] != 0 || units[1] != 1 {
		t.Errorf("LoadConfig created wrong units: %v", units)
	}

	err := LoadConfig(strings.NewReader("tape 0\nbogus 1\n"))
	if err == nil || !strings.Contains(err.Error(), "line: 2") {
		t.Errorf("LoadConfig error does not name line: %v", err)
	}
}
