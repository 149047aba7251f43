package cpu

import (
	"sync/atomic"
	"testing"

	"github.com/rcornwell/osim/internal/event"
	"github.com/rcornwell/osim/internal/memory"
	"github.com/rcornwell/osim/internal/paging"
	"github.com/rcornwell/osim/internal/proc"
	"github.com/rcornwell/osim/internal/sched"
	"github.com/rcornwell/osim/internal/syscall"
)

// TestRunSingleProcessNoPaging reproduces the no-paging scenario: one
// process with four CALC instructions, already submitted, with the
// harness's done flag already set. Run must dispatch, execute to
// completion, retire, and return without blocking.
func TestRunSingleProcessNoPaging(t *testing.T) {
	ram := memory.NewDevice(256, true)
	engine := paging.NewEngine(ram, nil)
	scheduler := sched.NewScheduler()
	dispatcher := syscall.New(engine, scheduler)
	timer := event.NewTimer()

	p := &proc.PCB{
		PID:      1,
		Priority: 0,
		Code: []proc.Instruction{
			{Opcode: proc.CALC},
			{Opcode: proc.CALC},
			{Opcode: proc.CALC},
			{Opcode: proc.CALC},
		},
	}
	scheduler.AddProc(p)

	var done atomic.Bool
	done.Store(true)

	e := New(1, engine, scheduler, dispatcher, timer, 2, &done)
	e.Run()

	if !p.Done() {
		t.Fatalf("process PC = %d, want %d (fully executed)", p.PC, len(p.Code))
	}
	if !scheduler.QueueEmpty() {
		t.Fatal("scheduler should be empty after the sole process retires")
	}
}

// TestRunAllocAndFreeThroughEngine exercises ALLOC/WRITE/READ/FREE opcodes
// end to end against a real paging engine.
func TestRunAllocAndFreeThroughEngine(t *testing.T) {
	ram := memory.NewDevice(1024, true)
	swap := memory.NewDevice(256, false)
	engine := paging.NewEngine(ram, []*memory.Device{swap})
	scheduler := sched.NewScheduler()
	dispatcher := syscall.New(engine, scheduler)
	timer := event.NewTimer()

	as := paging.NewAddressSpace(ram, []*memory.Device{swap}, 0)
	p := &proc.PCB{
		PID:      2,
		Priority: 0,
		MM:       as,
		Code: []proc.Instruction{
			{Opcode: proc.ALLOC, Arg0: 40, Arg1: 0, Arg2: 1},
			{Opcode: proc.WRITE, Arg0: 0x42, Arg1: 0, Arg2: 5},
			{Opcode: proc.READ, Arg0: 0, Arg1: 5, Arg2: 2},
			{Opcode: proc.FREE, Arg0: 0},
		},
	}
	scheduler.AddProc(p)

	var done atomic.Bool
	done.Store(true)

	e := New(1, engine, scheduler, dispatcher, timer, 4, &done)
	e.Run()

	if !p.Done() {
		t.Fatalf("process PC = %d, want %d", p.PC, len(p.Code))
	}
	if p.Regs[2] != 0x42 {
		t.Fatalf("Regs[2] = %#x, want 0x42 (READ result)", p.Regs[2])
	}
	if p.Regs[1] != 0 {
		t.Fatalf("Regs[1] = %d, want 0 (ALLOC address)", p.Regs[1])
	}
}
