// Package syscall implements the numeric-indexed syscall dispatcher
// described in spec.md §4.4: a dense table routing a request number plus
// four arguments to a handler, built around the memmap trust boundary and
// the killall process-termination call.
package syscall

/*
 * osim - Syscall dispatcher
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

	"github.com/rcornwell/osim/internal/paging"
	"github.com/rcornwell/osim/internal/proc"
	"github.com/rcornwell/osim/internal/sched"
	"github.com/rcornwell/osim/internal/sysnum"
)

// handler matches every syscall's shape: a caller PCB and four arguments,
// returning a result word or an error.
type handler func(d *Dispatcher, caller *proc.PCB, a1, a2, a3, a4 int) (int, error)

var table = map[int]handler{
	sysnum.NrMemMap:  (*Dispatcher).memmap,
	sysnum.NrKillAll: (*Dispatcher).killall,
}

// Dispatcher routes syscalls for one running simulation: it needs the
// paging engine (to execute memmap sub-operations) and the scheduler (so
// killall can scan and prune ready queues).
type Dispatcher struct {
	Engine *paging.Engine
	Sched  *sched.Scheduler
}

// New builds a dispatcher over the given engine and scheduler, and wires
// the engine's SyscallFunc hook back to it -- this is the "calls back
// through the syscall dispatcher" indirection spec.md §4.3 describes.
func New(engine *paging.Engine, scheduler *sched.Scheduler) *Dispatcher {
	d := &Dispatcher{Engine: engine, Sched: scheduler}
	engine.Syscall = d.Invoke
	return d
}

// Invoke looks up nr in the dense table and dispatches to it. Out-of-range
// or unrecognized numbers go to a no-op handler, matching
// __sys_ni_syscall in the reference dispatcher.
func (d *Dispatcher) Invoke(caller *proc.PCB, nr int, a1, a2, a3, a4 int) (int, error) {
	h, ok := table[nr]
	if !ok {
		return 0, nil
	}
	return h(d, caller, a1, a2, a3, a4)
}

// memmap dispatches on a1 to the four privileged memory operations
// spec.md §4.4 documents.
func (d *Dispatcher) memmap(caller *proc.PCB, a1, a2, a3, a4 int) (int, error) {
	switch a1 {
	case sysnum.SysMemIncOp:
		vmaid, incBytes := a2, a3
		if err := d.Engine.ExtendVMA(caller, vmaid, incBytes); err != nil {
			return -1, err
		}
		return 0, nil

	case sysnum.SysMemSwpOp:
		srcFPN, dstFPN, direction := a2, a3, a4
		as, ok := caller.MM.(*paging.AddressSpace)
		if !ok || as == nil || as.ActiveSwap == nil {
			return -1, fmt.Errorf("syscall: memmap swap op with no active swap device")
		}
		src, dst := d.Engine.RAM, as.ActiveSwap
		if direction != 0 {
			src, dst = as.ActiveSwap, d.Engine.RAM
		}
		if err := d.Engine.CopyFrame(src, srcFPN, dst, dstFPN); err != nil {
			return -1, err
		}
		return 0, nil

	case sysnum.SysMemIORead:
		phys := a2
		b, err := d.Engine.RAM.Read(phys)
		if err != nil {
			return -1, err
		}
		return int(b), nil

	case sysnum.SysMemIOWrite:
		phys, value := a2, a3
		if err := d.Engine.RAM.Write(phys, byte(value)); err != nil {
			return -1, err
		}
		return 0, nil

	default:
		return 0, nil
	}
}

// killall implements spec.md §4.4's killall: read a NUL-terminated path
// string out of the caller's own region a1, then remove every ready-queue
// process whose path matches. Per SPEC_FULL.md §6 decision 5, each removed
// process has its address space frames released (the reference source's
// documented leak is fixed here).
func (d *Dispatcher) killall(caller *proc.PCB, a1, _, _, _ int) (int, error) {
	memrg := a1

	var name [100]byte
	n := 0
	for n < len(name)-1 {
		b, err := d.Engine.ReadByte(caller, memrg, n)
		if err != nil || b == 0 {
			// A read failure is treated the same as the reference
			// source's (uint32_t)-1 sentinel: both end the string.
			break
		}
		name[n] = b
		n++
	}
	path := string(name[:n])
	slog.Info("killall", "region", memrg, "path", path)

	killed := d.Sched.RemoveByPath(path)
	for _, p := range killed {
		fmt.Printf("Terminated process PID %d with name %q\n", p.PID, p.Path)
		if as, ok := p.MM.(*paging.AddressSpace); ok && as != nil {
			as.ReleaseAll()
		}
	}
	return 0, nil
}
