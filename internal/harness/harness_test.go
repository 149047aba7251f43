package harness

/*
 * osim - OS harness
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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcornwell/osim/internal/config"
)

// writeProgram drops a guest program file under dir/input/proc/name.
func writeProgram(t *testing.T, dir, name, body string) {
	t.Helper()
	procDir := filepath.Join(dir, ProgramDir)
	if err := os.MkdirAll(procDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(procDir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// chdirTemp switches the working directory to a fresh temp dir for the
// duration of the test, restoring it on cleanup. Harness resolves program
// paths relative to the current directory (spec.md §6), so this is the
// simplest way to drive it end to end without touching the real input/
// tree.
func chdirTemp(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func runWithTimeout(t *testing.T, h *Harness, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("Run() did not return before the timeout")
	}
}

// TestRunSingleProcessNoPaging drives end-to-end scenario 1: a single
// CALC-only process on two CPUs with time_slot=2 must run to completion
// and let Run() return once the scheduler drains.
func TestRunSingleProcessNoPaging(t *testing.T) {
	dir := chdirTemp(t)
	writeProgram(t, dir, "calc4", "CALC\nCALC\nCALC\nCALC\n")

	cfg := &config.Config{
		TimeSlot:     2,
		NumCPUs:      2,
		NumProcesses: 1,
		Processes:    []config.Process{{StartTick: 0, ProgBasename: "calc4", Priority: 0}},
	}

	h := New(cfg)
	runWithTimeout(t, h, 5*time.Second)
}

// TestRunAllocReadWriteWithinOnePage drives end-to-end scenario 2: a
// single page's worth of alloc/write/read must complete without forcing
// a page fault.
func TestRunAllocReadWriteWithinOnePage(t *testing.T) {
	dir := chdirTemp(t)
	writeProgram(t, dir, "allocrw", "ALLOC 40 0 1\nWRITE 85 0 10\nREAD 0 10 2\n")

	cfg := &config.Config{
		TimeSlot:     4,
		NumCPUs:      1,
		NumProcesses: 1,
		Memory: &config.Memory{
			RAMBytes:  256,
			SwapBytes: [4]int{256, 0, 0, 0},
			NumSwap:   1,
		},
		Processes: []config.Process{{StartTick: 0, ProgBasename: "allocrw", Priority: 0}},
	}

	h := New(cfg)
	runWithTimeout(t, h, 5*time.Second)
}

// TestRunMultipleProcessesAcrossPriorities drives several always-different
// processes across priority levels through the full harness, pinning
// down that the loader's start-tick gating and the scheduler's MLQ
// selection cooperate to drain every process.
func TestRunMultipleProcessesAcrossPriorities(t *testing.T) {
	dir := chdirTemp(t)
	writeProgram(t, dir, "p0", "CALC\nCALC\n")
	writeProgram(t, dir, "p1", "CALC\nCALC\nCALC\n")
	writeProgram(t, dir, "p2", "CALC\n")

	cfg := &config.Config{
		TimeSlot:     1,
		NumCPUs:      2,
		NumProcesses: 3,
		Processes: []config.Process{
			{StartTick: 0, ProgBasename: "p0", Priority: 0},
			{StartTick: 0, ProgBasename: "p1", Priority: 1},
			{StartTick: 1, ProgBasename: "p2", Priority: 2},
		},
	}

	h := New(cfg)
	runWithTimeout(t, h, 5*time.Second)
}
