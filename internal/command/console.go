// Package command implements osim's optional interactive console
// (SPEC_FULL.md §2.5): a peterh/liner-based REPL for inspecting a running
// simulation, grounded on the teacher's command/reader + command/parser
// packages but scaled down to the handful of read-only commands this
// simulator exposes.
package command

/*
 * osim - Interactive console
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
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/osim/internal/harness"
)

// cmd is one console command: a name, a minimum unambiguous prefix length
// (mirroring the teacher parser's match-by-prefix rule), and a handler.
type cmd struct {
	name    string
	min     int
	process func(h *harness.Harness, args []string) (quit bool, err error)
}

var cmdList = []cmd{
	{name: "dump", min: 2, process: dumpCmd},
	{name: "status", min: 1, process: statusCmd},
	{name: "help", min: 1, process: helpCmd},
	{name: "quit", min: 1, process: quitCmd},
}

// matchCommand reports whether name is an unambiguous prefix of c.name of
// at least c.min characters, the same rule the teacher's matchCommand uses.
func matchCommand(c cmd, name string) bool {
	if len(name) < c.min || len(name) > len(c.name) {
		return false
	}
	return strings.HasPrefix(c.name, name)
}

func matchList(name string) []cmd {
	var matches []cmd
	for _, c := range cmdList {
		if matchCommand(c, name) {
			matches = append(matches, c)
		}
	}
	return matches
}

// ProcessCommand parses and executes one console line.
func ProcessCommand(line string, h *harness.Harness) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])

	match := matchList(name)
	switch len(match) {
	case 0:
		return false, fmt.Errorf("command not found: %s", name)
	case 1:
		return match[0].process(h, fields[1:])
	default:
		return false, fmt.Errorf("ambiguous command: %s", name)
	}
}

func dumpCmd(h *harness.Harness, args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("usage: dump ram|swap<n>")
	}
	target := strings.ToLower(args[0])
	if target == "ram" {
		h.Dump()
		return false, nil
	}
	if idx, ok := strings.CutPrefix(target, "swap"); ok {
		n, err := strconv.Atoi(idx)
		if err != nil {
			return false, fmt.Errorf("usage: dump ram|swap<n>: %w", err)
		}
		return false, h.DumpSwap(n)
	}
	return false, errors.New("usage: dump ram|swap<n>")
}

func statusCmd(h *harness.Harness, _ []string) (bool, error) {
	fmt.Printf("scheduler queues empty: %v\n", h.Sched.QueueEmpty())
	return false, nil
}

func helpCmd(_ *harness.Harness, _ []string) (bool, error) {
	fmt.Println("commands: dump ram|swap<n>, status, quit, help")
	return false, nil
}

func quitCmd(_ *harness.Harness, _ []string) (bool, error) {
	return true, nil
}

// completeCmd offers prefix completions of the top-level command name only;
// osim's commands take few enough argument shapes that per-command argument
// completion (the teacher's scanOptions/scanDevice machinery) would be pure
// overhead here.
func completeCmd(line string) []string {
	fields := strings.Fields(line)
	if len(fields) > 1 || (len(fields) == 1 && strings.HasSuffix(line, " ")) {
		return nil
	}
	name := ""
	if len(fields) == 1 {
		name = strings.ToLower(fields[0])
	}
	var matches []string
	for _, c := range cmdList {
		if strings.HasPrefix(c.name, name) {
			matches = append(matches, c.name)
		}
	}
	return matches
}

// Run starts the interactive console and blocks until the user quits or
// aborts the prompt (Ctrl-D / Ctrl-C), mirroring command/reader.ConsoleReader.
func Run(h *harness.Harness) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCmd)

	for {
		command, err := line.Prompt("osim> ")
		if err == nil {
			line.AppendHistory(command)
			quit, err := ProcessCommand(command, h)
			if err != nil {
				fmt.Println("Error: " + err.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("console: error reading line", "err", err)
		return
	}
}
