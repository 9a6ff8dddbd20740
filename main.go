/*
 * vtape - Main process.
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	command "github.com/rcornwell/vtape/command/command"
	reader "github.com/rcornwell/vtape/command/reader"
	config "github.com/rcornwell/vtape/config/configparser"
	"github.com/rcornwell/vtape/emu/bus"
	telnet "github.com/rcornwell/vtape/telnet"
	"github.com/rcornwell/vtape/util/catalog"
	logger "github.com/rcornwell/vtape/util/logger"

	_ "github.com/rcornwell/vtape/config/debugconfig"
	_ "github.com/rcornwell/vtape/emu/modelTape"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "vtape.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optJournal := getopt.BoolLong("journal", 'j', "Also log to systemd journal")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var out io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			slog.Error("unable to create log file", "file", *optLogFile, "error", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	log, err := logger.New(out, programLevel, *optDebug, *optJournal)
	slog.SetDefault(log)
	if err != nil {
		log.Warn("systemd journal not available", "error", err)
	}

	log.Info("vtape started")
	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		log.Error("configuration file can't be found", "file", *optConfig)
		os.Exit(1)
	}

	if err := config.LoadConfigFile(*optConfig); err != nil {
		log.Error(err.Error())
		shutdown()
		os.Exit(1)
	}

	session := &command.Session{Out: os.Stdout, Runner: command.BusRunner{}}
	if units := bus.Units(); len(units) != 0 {
		session.Unit = units[0]
	}
	reader.ConsoleReader(session)

	shutdown()
	log.Info("vtape stopped")
}

// Stop remote consoles, drain and detach all units, then close the catalog.
func shutdown() {
	telnet.Stop()
	if err := bus.Shutdown(); err != nil {
		slog.Error("shutdown: " + err.Error())
	}
	if err := catalog.CloseDefault(); err != nil {
		slog.Error("catalog close: " + err.Error())
	}
}
