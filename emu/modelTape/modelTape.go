/*
 * vtape - Virtual tape drive.
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

package modelTape

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	config "github.com/rcornwell/vtape/config/configparser"
	"github.com/rcornwell/vtape/emu/bus"
	D "github.com/rcornwell/vtape/emu/device"
	"github.com/rcornwell/vtape/util/catalog"
	debug "github.com/rcornwell/vtape/util/debug"
	"github.com/rcornwell/vtape/util/scsi"
	"github.com/rcornwell/vtape/util/store"
	"github.com/rcornwell/vtape/util/tape"
)

const (
	// Debug options.
	debugCmd = 1 << iota
	debugData
	debugDetail
)

var debugOption = map[string]int{
	"CMD":    debugCmd,
	"DATA":   debugData,
	"DETAIL": debugDetail,
}

// What READ does with the part of a record that did not fit.
type ReadPolicy int

const (
	PolicyCompat  ReadPolicy = iota // Leave tape inside the record
	PolicyDiscard                   // Skip rest of the record
)

func (policy ReadPolicy) String() string {
	if policy == PolicyDiscard {
		return "discard"
	}
	return "compat"
}

// Parse read policy name.
func ParsePolicy(name string) (ReadPolicy, error) {
	switch strings.ToUpper(name) {
	case "COMPAT", "":
		return PolicyCompat, nil
	case "DISCARD":
		return PolicyDiscard, nil
	}
	return PolicyCompat, errors.New("invalid read policy: " + name)
}

// Drive settings.
type Options struct {
	ReadOnly bool             // Reject writes
	Policy   ReadPolicy       // Under read handling
	Catalog  *catalog.Catalog // Volume catalog, may be nil
	Log      *slog.Logger     // Defaults to slog.Default
}

// One virtual tape drive over a backing file. mu is held while a command
// runs, so console requests see state between commands only.
type Drive struct {
	mu        sync.Mutex
	unit      int              // Unit number
	path      string           // Backing file
	table     *store.Table     // Handle table of this drive
	handle    int              // Handle of backing file
	pos       *tape.Position   // Current position
	codec     *tape.Codec      // Record reader/writer
	readOnly  bool             // Write protected
	policy    ReadPolicy       // Under read handling
	blockSize int              // Block size from last mode select
	serial    string           // Volume serial
	cat       *catalog.Catalog // Catalog holding serial, nil if none
	lastSense *scsi.Sense      // Sense of last command for REQUEST SENSE
	debugMsk  int              // Debug options mask
	log       *slog.Logger
}

// Command handler, one per supported opcode.
type handler interface {
	run(drive *Drive, cmd *D.Command) D.Result
}

type handlerFunc func(drive *Drive, cmd *D.Command) D.Result

func (fn handlerFunc) run(drive *Drive, cmd *D.Command) D.Result {
	return fn(drive, cmd)
}

var dispatch = map[uint8]handler{
	scsi.TestUnitReady:   handlerFunc((*Drive).testUnitReady),
	scsi.Rewind:          handlerFunc((*Drive).rewind),
	scsi.RequestSense:    handlerFunc((*Drive).requestSense),
	scsi.ReadBlockLimits: handlerFunc((*Drive).readBlockLimits),
	scsi.Read6:           handlerFunc((*Drive).read),
	scsi.Write6:          handlerFunc((*Drive).write),
	scsi.WriteFilemarks:  handlerFunc((*Drive).writeFilemarks),
	scsi.Space:           handlerFunc((*Drive).space),
	scsi.Inquiry:         handlerFunc((*Drive).inquiry),
	scsi.ModeSelect:      handlerFunc((*Drive).modeSelect),
	scsi.Erase:           handlerFunc((*Drive).erase),
	scsi.ModeSense:       handlerFunc((*Drive).modeSense),
	scsi.ReadPosition:    handlerFunc((*Drive).readPosition),
}

// Open backing file and create drive positioned at load point.
func New(unit int, path string, opts Options) (*Drive, error) {
	flags := os.O_RDWR | os.O_CREATE
	if opts.ReadOnly {
		flags = os.O_RDONLY
	}
	table := store.NewTable()
	handle, err := table.Open(path, flags)
	if err != nil {
		return nil, fmt.Errorf("tape %d: %w", unit, err)
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	drive := &Drive{
		unit:     unit,
		path:     path,
		table:    table,
		handle:   handle,
		readOnly: opts.ReadOnly,
		policy:   opts.Policy,
		cat:      opts.Catalog,
		log:      log.With("unit", unit),
	}
	drive.pos = tape.NewPosition(table, handle)
	drive.codec = tape.NewCodec(drive.pos)

	drive.serial = ulid.Make().String()
	if drive.cat != nil {
		vol, err := drive.cat.Lookup(path)
		if err != nil {
			table.CloseAll()
			return nil, fmt.Errorf("tape %d: %w", unit, err)
		}
		drive.serial = vol.Serial
		drive.pos.SetRecordIndex(vol.RecordIndex)
	}
	drive.log.Info("tape attached", "file", path, "serial", drive.serial, "readonly", drive.readOnly)
	return drive, nil
}

// Run one command to completion.
func (drive *Drive) Execute(cmd *D.Command) D.Result {
	drive.mu.Lock()
	defer drive.mu.Unlock()

	op := cmd.CDB.Opcode()
	debug.DebugUnitf(drive.unit, drive.debugMsk, debugCmd, "%s tag %s cdb % x", scsi.OpName(op), cmd.Tag, []byte(cmd.CDB))

	h, ok := dispatch[op]
	if !ok {
		drive.log.Warn("unsupported command", "opcode", fmt.Sprintf("0x%02x", op))
		drive.lastSense = nil
		return D.Good(0)
	}

	res := h.run(drive, cmd)
	if res.Sense != nil {
		res.Status = scsi.SamStatCheckCondition
	}
	if op != scsi.RequestSense {
		drive.lastSense = res.Sense
	}
	debug.DebugUnitf(drive.unit, drive.debugMsk, debugCmd, "%s status %s transferred %d residual %d",
		scsi.OpName(op), res.Status, res.Transferred, res.Residual)
	if res.Sense != nil {
		debug.DebugUnitf(drive.unit, drive.debugMsk, debugDetail, "sense %s", res.Sense)
	}
	return res
}

// Enable debug options.
func (drive *Drive) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("tape debug option invalid: " + opt)
	}
	drive.mu.Lock()
	drive.debugMsk |= flag
	drive.mu.Unlock()
	return nil
}

// Volume serial.
func (drive *Drive) Serial() string {
	return drive.serial
}

// Current position.
func (drive *Drive) Position() *tape.Position {
	return drive.pos
}

// One line description of drive state.
func (drive *Drive) Show() string {
	drive.mu.Lock()
	defer drive.mu.Unlock()
	mode := "rw"
	if drive.readOnly {
		mode = "ro"
	}
	block := "variable"
	if drive.blockSize != 0 {
		block = strconv.Itoa(drive.blockSize)
	}
	return fmt.Sprintf("tape %d %s %s serial=%s offset=%d record=%d block=%s readpolicy=%s",
		drive.unit, drive.path, mode, drive.serial, drive.pos.Offset(), drive.pos.RecordIndex(),
		block, drive.policy)
}

// Save catalog state and close backing file.
func (drive *Drive) Shutdown() error {
	drive.mu.Lock()
	defer drive.mu.Unlock()
	drive.saveIndex()
	if !drive.readOnly {
		if err := drive.table.Sync(drive.handle); err != nil {
			drive.log.Warn("sync failed", "error", err)
		}
	}
	drive.table.CloseAll()
	drive.log.Info("tape detached", "file", drive.path)
	return nil
}

// Persist record counter.
func (drive *Drive) saveIndex() {
	if drive.cat == nil {
		return
	}
	if err := drive.cat.SaveIndex(drive.serial, drive.pos.RecordIndex()); err != nil {
		drive.log.Warn("catalog update failed", "error", err)
	}
}

// register a device on initialize.
func init() {
	config.RegisterModel("TAPE", config.TypeModel, create)
}

// Create a tape drive from a configuration line.
func create(unit int, _ string, options []config.Option) error {
	path := ""
	depth := bus.DefaultQueue
	opts := Options{Catalog: catalog.Default()}
	for _, option := range options {
		switch strings.ToUpper(option.Name) {
		case "FILE":
			if option.EqualOpt == "" {
				return errors.New("file option missing filename")
			}
			path = option.EqualOpt

		case "QUEUE":
			n, err := strconv.Atoi(option.EqualOpt)
			if err != nil || n < 1 {
				return errors.New("invalid queue depth: " + option.EqualOpt)
			}
			depth = n

		case "READPOLICY":
			policy, err := ParsePolicy(option.EqualOpt)
			if err != nil {
				return err
			}
			opts.Policy = policy

		case "RO", "NORING":
			opts.ReadOnly = true

		case "RW", "RING":
			opts.ReadOnly = false

		default:
			return errors.New("tape invalid option " + option.Name)
		}
		if option.Value != nil {
			return errors.New("extra options not supported on: " + option.Name)
		}
	}
	if path == "" {
		return fmt.Errorf("tape %d requires file option", unit)
	}

	drive, err := New(unit, path, opts)
	if err != nil {
		return err
	}
	if err := bus.Attach(unit, drive, depth); err != nil {
		drive.Shutdown()
		return fmt.Errorf("unable to create tape %d: %w", unit, err)
	}
	return nil
}
