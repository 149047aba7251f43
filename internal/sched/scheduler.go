// Package sched implements the multilevel-priority scheduler of
// spec.md §4.7: fixed-priority ready queues, per-level slot budgets with
// global replenishment, and ascending-priority selection.
package sched

/*
 * osim - MLQ scheduler
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
	"sync"

	"github.com/rcornwell/osim/internal/proc"
)

// MaxPrio is the number of fixed priority levels the MLQ scheduler serves.
const MaxPrio = 3

// Scheduler is the MLQ ready-queue set plus its slot-budget accounting,
// all guarded by a single mutex (spec.md §5's "scheduler mutex").
type Scheduler struct {
	mu sync.Mutex

	ready     [MaxPrio]Queue
	slot      [MaxPrio]int // Static per-level budget, slot[i] = MaxPrio - i.
	slotUsage [MaxPrio]int // Remaining credits for the current round.
}

// NewScheduler builds a scheduler with the default priority-weighted
// round-robin policy: priority 0 gets the largest per-round budget.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	for i := 0; i < MaxPrio; i++ {
		s.slot[i] = MaxPrio - i
		s.slotUsage[i] = s.slot[i]
	}
	return s
}

func clampPrio(prio int) int {
	if prio < 0 {
		return 0
	}
	if prio >= MaxPrio {
		return MaxPrio - 1
	}
	return prio
}

// AddProc enqueues a newly-arrived process onto its priority level.
func (s *Scheduler) AddProc(p *proc.PCB) {
	s.PutProc(p)
}

// PutProc re-enqueues a process whose time slice expired, onto its
// priority level.
func (s *Scheduler) PutProc(p *proc.PCB) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready[clampPrio(p.Priority)].Enqueue(p)
}

// GetProc selects the next process to run: if every level's slot budget
// has been exhausted the budgets are replenished first, then levels are
// scanned in ascending priority order and the first non-empty level with
// remaining credit is dequeued from.
func (s *Scheduler) GetProc() *proc.PCB {
	s.mu.Lock()
	defer s.mu.Unlock()

	allZero := true
	for i := 0; i < MaxPrio; i++ {
		if s.slotUsage[i] > 0 {
			allZero = false
			break
		}
	}
	if allZero {
		for i := 0; i < MaxPrio; i++ {
			s.slotUsage[i] = s.slot[i]
		}
	}

	for pr := 0; pr < MaxPrio; pr++ {
		if s.slotUsage[pr] > 0 && !s.ready[pr].Empty() {
			p := s.ready[pr].Dequeue()
			s.slotUsage[pr]--
			return p
		}
	}
	return nil
}

// QueueEmpty reports whether every priority level is empty.
func (s *Scheduler) QueueEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < MaxPrio; i++ {
		if !s.ready[i].Empty() {
			return false
		}
	}
	return true
}

// RemoveByPath prunes every ready queue of processes whose Path matches,
// and returns the removed PCBs for the caller (the killall syscall
// handler) to finish tearing down. It cannot reach a process that is
// currently off every queue because a CPU worker is running it: per
// spec.md §5, killall never preempts a running instance.
func (s *Scheduler) RemoveByPath(path string) []*proc.PCB {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*proc.PCB
	for i := 0; i < MaxPrio; i++ {
		removed = append(removed, s.ready[i].RemoveByPath(path)...)
	}
	return removed
}
