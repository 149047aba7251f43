package sched

import (
	"testing"

	"github.com/rcornwell/osim/internal/proc"
)

// TestMLQFairness reproduces the documented round behavior: with every
// level always ready, a full replenishment cycle dispatches priority 0
// three times, priority 1 twice, and priority 2 once, matching the
// slot[i] = MaxPrio - i budgets.
func TestMLQFairness(t *testing.T) {
	s := NewScheduler()
	p0 := &proc.PCB{PID: 0, Priority: 0}
	p1 := &proc.PCB{PID: 1, Priority: 1}
	p2 := &proc.PCB{PID: 2, Priority: 2}
	s.AddProc(p0)
	s.AddProc(p1)
	s.AddProc(p2)

	counts := map[int]int{}
	for i := 0; i < 6; i++ {
		p := s.GetProc()
		if p == nil {
			t.Fatalf("GetProc() = nil on iteration %d", i)
		}
		counts[p.PID]++
		s.PutProc(p)
	}

	want := map[int]int{0: 3, 1: 2, 2: 1}
	for pid, n := range want {
		if counts[pid] != n {
			t.Fatalf("dispatch count for pid %d = %d, want %d (counts=%v)", pid, counts[pid], n, counts)
		}
	}
}

func TestGetProcEmptyReturnsNil(t *testing.T) {
	s := NewScheduler()
	if p := s.GetProc(); p != nil {
		t.Fatalf("GetProc() on an empty scheduler = %+v, want nil", p)
	}
}

func TestClampPrioOutOfRange(t *testing.T) {
	s := NewScheduler()
	p := &proc.PCB{PID: 9, Priority: 99}
	s.AddProc(p)
	if s.ready[MaxPrio-1].Empty() {
		t.Fatal("out-of-range priority should clamp onto the lowest (highest-numbered) level")
	}
}

func TestQueueEmptyAndRemoveByPath(t *testing.T) {
	s := NewScheduler()
	if !s.QueueEmpty() {
		t.Fatal("QueueEmpty() on a fresh scheduler should be true")
	}
	a := &proc.PCB{PID: 1, Priority: 0, Path: "victim"}
	b := &proc.PCB{PID: 2, Priority: 1, Path: "victim"}
	c := &proc.PCB{PID: 3, Priority: 2, Path: "other"}
	s.AddProc(a)
	s.AddProc(b)
	s.AddProc(c)

	removed := s.RemoveByPath("victim")
	if len(removed) != 2 {
		t.Fatalf("RemoveByPath removed %d processes, want 2", len(removed))
	}
	if s.QueueEmpty() {
		t.Fatal("QueueEmpty() should be false: \"other\" is still queued")
	}
}
