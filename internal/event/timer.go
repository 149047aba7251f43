// Package event provides the tick barrier CPU workers and the loader
// synchronize on. spec.md §1 treats the discrete-event timer as an
// external black box that "hands the core ... monotonically advancing
// ticks"; this package is the minimal concrete stand-in that contract
// requires, grounded on the attach/next_slot/current_time shape of the
// teacher's emu/event package without reproducing its priority event
// list (out of scope here -- osim's workers only need a shared clock).
package event

/*
 * osim - Tick timer
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

import "sync"

// Timer is a tick barrier: every attached participant must call NextSlot
// once per virtual tick before the clock advances and all of them are
// released together.
type Timer struct {
	mu           sync.Mutex
	cond         *sync.Cond
	participants int
	arrived      int
	tick         int
	gen          int
}

// NewTimer returns a fresh, unstarted timer at tick 0.
func NewTimer() *Timer {
	t := &Timer{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Attach registers one more participant the barrier must wait for.
func (t *Timer) Attach() {
	t.mu.Lock()
	t.participants++
	t.mu.Unlock()
}

// Detach removes a participant, e.g. when a CPU worker or the loader
// exits. If every remaining participant had already arrived for the
// current tick, detaching the last straggler advances the clock.
func (t *Timer) Detach() {
	t.mu.Lock()
	t.participants--
	if t.participants > 0 && t.arrived >= t.participants {
		t.tick++
		t.arrived = 0
		t.gen++
	}
	t.cond.Broadcast()
	t.mu.Unlock()
}

// NextSlot blocks the calling goroutine until every attached participant
// has called NextSlot for the current tick, then returns once the clock
// has advanced.
func (t *Timer) NextSlot() {
	t.mu.Lock()
	gen := t.gen
	t.arrived++
	if t.arrived >= t.participants {
		t.tick++
		t.arrived = 0
		t.gen++
		t.cond.Broadcast()
	} else {
		for gen == t.gen {
			t.cond.Wait()
		}
	}
	t.mu.Unlock()
}

// CurrentTime returns the current tick count.
func (t *Timer) CurrentTime() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tick
}
