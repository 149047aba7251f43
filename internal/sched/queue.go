package sched

/*
 * osim - Process queue
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

	"github.com/rcornwell/osim/internal/proc"
)

// MaxQueueSize bounds every queue's backing storage.
const MaxQueueSize = 256

// Queue holds PCB handles. Dequeue performs the reference implementation's
// O(n) min-priority-field scan rather than maintaining sorted order,
// making the queue effectively a priority bag: when every entry shares a
// priority (as within one MLQ level) the scan degenerates to plain FIFO,
// because the strict less-than comparison never displaces an earlier tie.
type Queue struct {
	proc []*proc.PCB
}

// Empty reports whether the queue holds no processes.
func (q *Queue) Empty() bool {
	return q == nil || len(q.proc) == 0
}

// Len returns the number of processes currently queued.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.proc)
}

// Enqueue appends p to the queue. A full queue drops the process and logs
// a warning, matching the reference's "Queue is full" diagnostic.
func (q *Queue) Enqueue(p *proc.PCB) {
	if p == nil {
		return
	}
	if len(q.proc) >= MaxQueueSize {
		slog.Warn("queue full, dropping process", "pid", p.PID)
		return
	}
	q.proc = append(q.proc, p)
}

// Dequeue removes and returns the process with the lowest Priority value.
func (q *Queue) Dequeue() *proc.PCB {
	if q.Empty() {
		return nil
	}
	best := 0
	for i := 1; i < len(q.proc); i++ {
		if q.proc[i].Priority < q.proc[best].Priority {
			best = i
		}
	}
	p := q.proc[best]
	q.proc = append(q.proc[:best], q.proc[best+1:]...)
	return p
}

// RemoveByPath removes every process whose Path equals path, preserving
// the relative order of the survivors, and returns the removed processes.
func (q *Queue) RemoveByPath(path string) []*proc.PCB {
	if q.Empty() {
		return nil
	}
	var removed []*proc.PCB
	kept := q.proc[:0]
	for _, p := range q.proc {
		if p.Path == path {
			removed = append(removed, p)
		} else {
			kept = append(kept, p)
		}
	}
	q.proc = kept
	return removed
}
