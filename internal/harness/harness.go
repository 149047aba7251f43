// Package harness is the OS harness of spec.md §4/§2 component 7: it
// builds the physical devices, paging engine, scheduler, and syscall
// dispatcher from a parsed Config, then spawns one loader goroutine and
// NumCPUs CPU-worker goroutines and joins them on completion. Grounded on
// the teacher's emu/core.Core Start/Stop shape (sync.WaitGroup plus a
// done signal), generalized from one fixed CPU to a configurable pool.
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
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rcornwell/osim/internal/config"
	"github.com/rcornwell/osim/internal/cpu"
	"github.com/rcornwell/osim/internal/event"
	"github.com/rcornwell/osim/internal/loader"
	"github.com/rcornwell/osim/internal/memory"
	"github.com/rcornwell/osim/internal/paging"
	"github.com/rcornwell/osim/internal/proc"
	"github.com/rcornwell/osim/internal/sched"
	syscallpkg "github.com/rcornwell/osim/internal/syscall"
)

// Default device sizes used when the configuration carries no memory
// line: a small RAM and one swap device, big enough to exercise paging
// in the default end-to-end scenarios.
const (
	defaultRAMBytes  = 4096
	defaultSwapBytes = 4096
)

// ProgramDir is where process basenames from the configuration are
// resolved, per spec.md §6.
const ProgramDir = "input/proc"

// Harness wires every core subsystem together and owns the pool of CPU
// workers plus the loader goroutine.
type Harness struct {
	cfg *config.Config

	RAM  *memory.Device
	Swap []*memory.Device

	Engine     *paging.Engine
	Sched      *sched.Scheduler
	Dispatcher *syscallpkg.Dispatcher
	Timer      *event.Timer

	Debug cpu.Debug

	wg   sync.WaitGroup
	done atomic.Bool

	nextPID atomic.Int64
}

// New builds a harness from a parsed configuration.
func New(cfg *config.Config) *Harness {
	h := &Harness{cfg: cfg, Timer: event.NewTimer()}

	ramBytes := defaultRAMBytes
	swapSizes := []int{defaultSwapBytes}
	if cfg.Memory != nil {
		ramBytes = cfg.Memory.RAMBytes
		swapSizes = swapSizes[:0]
		for i := 0; i < cfg.Memory.NumSwap; i++ {
			swapSizes = append(swapSizes, cfg.Memory.SwapBytes[i])
		}
	}

	h.RAM = memory.NewDevice(ramBytes, true)
	h.Swap = make([]*memory.Device, len(swapSizes))
	for i, sz := range swapSizes {
		h.Swap[i] = memory.NewDevice(sz, false)
	}

	h.Engine = paging.NewEngine(h.RAM, h.Swap)
	h.Sched = sched.NewScheduler()
	h.Dispatcher = syscallpkg.New(h.Engine, h.Sched)

	return h
}

// Run spawns the loader and every CPU worker, then blocks until all of
// them have exited: every submitted process has either run to
// completion or been killed, and the loader has submitted everything
// the configuration describes (spec.md §8 "Termination").
func (h *Harness) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runLoader()
	}()

	for i := 0; i < h.cfg.NumCPUs; i++ {
		h.wg.Add(1)
		id := i
		go func() {
			defer h.wg.Done()
			exec := cpu.New(id, h.Engine, h.Sched, h.Dispatcher, h.Timer, h.cfg.TimeSlot, &h.done)
			exec.Debug = h.Debug
			exec.Run()
		}()
	}

	h.wg.Wait()
}

// runLoader publishes each configured process to the scheduler once the
// shared tick clock reaches its start tick, in ascending start-tick
// order, then marks the done flag so idle CPU workers can exit once the
// scheduler drains.
func (h *Harness) runLoader() {
	h.Timer.Attach()
	defer h.Timer.Detach()

	procs := make([]config.Process, len(h.cfg.Processes))
	copy(procs, h.cfg.Processes)
	sort.SliceStable(procs, func(i, j int) bool { return procs[i].StartTick < procs[j].StartTick })

	for _, pc := range procs {
		for h.Timer.CurrentTime() < pc.StartTick {
			h.Timer.NextSlot()
		}
		pcb, err := h.load(pc)
		if err != nil {
			slog.Error("failed to load process", "prog", pc.ProgBasename, "err", err)
			continue
		}
		h.Sched.AddProc(pcb)
	}
	h.done.Store(true)
}

// load parses one configured process's program and builds its PCB, with
// a fresh AddressSpace bound to the harness's swap device 0.
func (h *Harness) load(pc config.Process) (*proc.PCB, error) {
	path := filepath.Join(ProgramDir, pc.ProgBasename)
	code, err := loader.ParseProgram(path)
	if err != nil {
		return nil, err
	}

	activeSwapID := -1
	if len(h.Swap) > 0 {
		activeSwapID = 0
	}
	as := paging.NewAddressSpace(h.RAM, h.Swap, activeSwapID)

	pid := int(h.nextPID.Add(1))
	return &proc.PCB{
		PID:      pid,
		Priority: pc.Priority,
		Code:     code,
		Path:     path,
		MM:       as,
	}, nil
}

// Dump prints the RAM device's contents, in the exact format spec.md §6
// requires.
func (h *Harness) Dump() {
	h.RAM.Dump()
}

// DumpSwap prints swap device idx's contents.
func (h *Harness) DumpSwap(idx int) error {
	if idx < 0 || idx >= len(h.Swap) {
		return fmt.Errorf("harness: no swap device %d", idx)
	}
	h.Swap[idx].Dump()
	return nil
}
