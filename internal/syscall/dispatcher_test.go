package syscall

import (
	"testing"

	"github.com/rcornwell/osim/internal/memory"
	"github.com/rcornwell/osim/internal/paging"
	"github.com/rcornwell/osim/internal/proc"
	"github.com/rcornwell/osim/internal/sched"
	"github.com/rcornwell/osim/internal/sysnum"
)

func newTestDispatcher(ramSize, swapSize int) (*Dispatcher, *paging.Engine, *proc.PCB) {
	ram := memory.NewDevice(ramSize, true)
	swap := memory.NewDevice(swapSize, false)
	engine := paging.NewEngine(ram, []*memory.Device{swap})
	scheduler := sched.NewScheduler()
	d := New(engine, scheduler)
	as := paging.NewAddressSpace(ram, []*memory.Device{swap}, 0)
	pcb := &proc.PCB{PID: 1, MM: as}
	return d, engine, pcb
}

func TestMemmapIncOpExtendsVMA(t *testing.T) {
	d, _, pcb := newTestDispatcher(1024, 256)
	addr, err := d.Engine.Alloc(pcb, 0, 0, 40)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if addr != 0 {
		t.Fatalf("Alloc address = %d, want 0", addr)
	}
}

func TestMemmapIOReadWriteRoundTrip(t *testing.T) {
	d, _, pcb := newTestDispatcher(256, 256)
	if _, err := d.Engine.Alloc(pcb, 0, 0, 40); err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	if _, err := d.Invoke(pcb, sysnum.NrMemMap, sysnum.SysMemIOWrite, 5, 0x42, 0); err != nil {
		t.Fatalf("memmap IO write: %v", err)
	}
	got, err := d.Invoke(pcb, sysnum.NrMemMap, sysnum.SysMemIORead, 5, 0, 0)
	if err != nil {
		t.Fatalf("memmap IO read: %v", err)
	}
	if got != 0x42 {
		t.Fatalf("memmap IO read = %#x, want 0x42", got)
	}
}

func TestMemmapSwapOpCopiesFrame(t *testing.T) {
	d, engine, pcb := newTestDispatcher(256, 256)
	if err := engine.RAM.Write(0, 0x77); err != nil {
		t.Fatalf("RAM.Write: %v", err)
	}

	if _, err := d.Invoke(pcb, sysnum.NrMemMap, sysnum.SysMemSwpOp, 0, 0, 0); err != nil {
		t.Fatalf("memmap swap op: %v", err)
	}
	as := pcb.MM.(*paging.AddressSpace)
	b, err := as.ActiveSwap.Read(0)
	if err != nil {
		t.Fatalf("swap.Read: %v", err)
	}
	if b != 0x77 {
		t.Fatalf("swap frame 0 byte 0 = %#x, want 0x77", b)
	}
}

func TestMemmapSwapOpNoActiveSwapFails(t *testing.T) {
	ram := memory.NewDevice(256, true)
	engine := paging.NewEngine(ram, nil)
	scheduler := sched.NewScheduler()
	d := New(engine, scheduler)
	as := paging.NewAddressSpace(ram, nil, -1)
	pcb := &proc.PCB{PID: 1, MM: as}

	if _, err := d.Invoke(pcb, sysnum.NrMemMap, sysnum.SysMemSwpOp, 0, 0, 0); err == nil {
		t.Fatal("memmap swap op with no active swap device should fail")
	}
}

func TestInvokeUnknownSyscallIsNoOp(t *testing.T) {
	d, _, pcb := newTestDispatcher(256, 256)
	if _, err := d.Invoke(pcb, 9999, 0, 0, 0, 0); err != nil {
		t.Fatalf("Invoke with unrecognized nr should be a no-op, got err %v", err)
	}
}

// TestKillallRemovesQueuedProcessesAndReleasesFrames reproduces the killall
// scenario: the caller holds the NUL-terminated path string in its own
// region, one queued process (the victim) carries that path and a queued
// bystander carries a different one. The victim must be pruned from the
// scheduler and have its RAM frames released; the bystander stays queued.
func TestKillallRemovesQueuedProcessesAndReleasesFrames(t *testing.T) {
	d, engine, caller := newTestDispatcher(1024, 256)
	const path = "victim"

	const memrg = 0 // symtab slot holding the path string, not its address
	if _, err := engine.Alloc(caller, 0, memrg, len(path)+1); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	for i, c := range []byte(path) {
		if err := engine.WriteByte(caller, memrg, i, c); err != nil {
			t.Fatalf("WriteByte: %v", err)
		}
	}
	if err := engine.WriteByte(caller, memrg, len(path), 0); err != nil {
		t.Fatalf("WriteByte (NUL): %v", err)
	}

	ramAS := paging.NewAddressSpace(engine.RAM, nil, -1)
	victim := &proc.PCB{PID: 2, Priority: 3, Path: path, MM: ramAS}
	bystander := &proc.PCB{PID: 3, Priority: 2, Path: "other"}
	d.Sched.AddProc(victim)
	d.Sched.AddProc(bystander)

	if _, err := engine.Alloc(victim, 0, 0, 20); err != nil {
		t.Fatalf("victim Alloc: %v", err)
	}
	freeBefore := engine.RAM.FreeFrameCount()

	if _, err := d.Invoke(caller, sysnum.NrKillAll, memrg, 0, 0, 0); err != nil {
		t.Fatalf("killall: %v", err)
	}

	if d.Sched.QueueEmpty() {
		t.Fatal("bystander with a different path should still be queued")
	}
	if got := engine.RAM.FreeFrameCount(); got <= freeBefore {
		t.Fatalf("victim's RAM frames were not released: free count = %d, want > %d", got, freeBefore)
	}
}
