// Package config parses osim's configuration file: spec.md §6's
// line-oriented grammar (time slot / CPU count / process count, an
// optional memory-sizing line, then one line per workload process).
// Grounded on the teacher's config/configparser line reader, scaled down
// from its registered-model grammar to this system's fixed line shapes.
package config

/*
 * osim - Configuration file parser
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
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Memory holds the optional second configuration line: RAM size plus up
// to four swap device sizes, all in bytes.
type Memory struct {
	RAMBytes   int
	SwapBytes  [4]int
	NumSwap    int
}

// Process is one workload line: the tick at which the program arrives,
// the basename resolved under input/proc/, and its fixed MLQ priority.
type Process struct {
	StartTick    int
	ProgBasename string
	Priority     int
}

// Config is the fully parsed configuration file.
type Config struct {
	TimeSlot      int
	NumCPUs       int
	NumProcesses  int
	Memory        *Memory // nil when the file carries no memory line.
	Processes     []Process
}

// Load reads and parses the configuration file at path. A malformed or
// missing configuration is reported as a plain error; spec.md §7 requires
// the caller to treat this as a terminate-before-spawn condition.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lines := make([]string, 0, 8)
	for scanner.Scan() {
		t := strings.TrimSpace(scanner.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		lines = append(lines, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(lines) == 0 {
		return nil, errors.New("config: empty configuration file")
	}

	cfg := &Config{}
	head := strings.Fields(lines[0])
	if len(head) != 3 {
		return nil, fmt.Errorf("config: line 1: expected 3 fields, got %d", len(head))
	}
	if cfg.TimeSlot, err = strconv.Atoi(head[0]); err != nil {
		return nil, fmt.Errorf("config: line 1: time_slot: %w", err)
	}
	if cfg.NumCPUs, err = strconv.Atoi(head[1]); err != nil {
		return nil, fmt.Errorf("config: line 1: num_cpus: %w", err)
	}
	if cfg.NumProcesses, err = strconv.Atoi(head[2]); err != nil {
		return nil, fmt.Errorf("config: line 1: num_processes: %w", err)
	}

	rest := lines[1:]
	if len(rest) > 0 {
		fields := strings.Fields(rest[0])
		if mem, ok := parseMemoryLine(fields); ok {
			cfg.Memory = mem
			rest = rest[1:]
		}
	}

	if len(rest) != cfg.NumProcesses {
		return nil, fmt.Errorf("config: expected %d process lines, found %d", cfg.NumProcesses, len(rest))
	}
	cfg.Processes = make([]Process, 0, cfg.NumProcesses)
	for i, line := range rest {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("config: process line %d: expected 2 or 3 fields, got %d", i+1, len(fields))
		}
		var p Process
		if p.StartTick, err = strconv.Atoi(fields[0]); err != nil {
			return nil, fmt.Errorf("config: process line %d: start_tick: %w", i+1, err)
		}
		p.ProgBasename = fields[1]
		if len(fields) == 3 {
			if p.Priority, err = strconv.Atoi(fields[2]); err != nil {
				return nil, fmt.Errorf("config: process line %d: priority: %w", i+1, err)
			}
		}
		cfg.Processes = append(cfg.Processes, p)
	}
	return cfg, nil
}

// parseMemoryLine recognizes the optional five-integer memory line;
// anything else (wrong field count, non-numeric) means the line is in
// fact the first process line, per spec.md §6.
func parseMemoryLine(fields []string) (*Memory, bool) {
	if len(fields) != 5 {
		return nil, false
	}
	vals := make([]int, 5)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	mem := &Memory{RAMBytes: vals[0], NumSwap: 4}
	copy(mem.SwapBytes[:], vals[1:5])
	return mem, true
}
