// Command osim runs the paged-memory, priority-MLQ operating-system
// simulator described by SPEC_FULL.md: it parses a configuration file,
// builds the harness, and runs the workload to completion.
package main

/*
 * osim - Main process.
 *
 * Copyright 2026, osim contributors
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

import (
	"log/slog"
	"os"
	"path/filepath"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/osim/internal/command"
	"github.com/rcornwell/osim/internal/config"
	"github.com/rcornwell/osim/internal/harness"
	logger "github.com/rcornwell/osim/internal/util/logger"
)

// ConfigDir is where configuration file names passed on the command line
// are resolved, per spec.md §6.
const ConfigDir = "input"

func main() {
	optConfig := getopt.StringLong("config", 'c', "osim.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optBatch := getopt.BoolLong("batch", 'b', "Disable the interactive console")
	optDump := getopt.BoolLong("dump-pagetable", 0, "Dump each process's page table after every ALLOC")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("could not create log file", "path", *optLogFile, "err", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	log := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, false))
	slog.SetDefault(log)

	log.Info("osim started")

	path := filepath.Join(ConfigDir, *optConfig)
	cfg, err := config.Load(path)
	if err != nil {
		log.Error("failed to load configuration", "path", path, "err", err)
		os.Exit(1)
	}

	h := harness.New(cfg)
	h.Debug.PageTableDump = *optDump

	if !*optBatch {
		go command.Run(h)
	}

	h.Run()
	log.Info("osim shut down cleanly")
}
