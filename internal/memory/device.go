package memory

/*
 * osim - Physical memory device
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
	"errors"
	"fmt"
	"sync"
)

// PageSize is the fixed frame/page size in bytes shared by every device.
const PageSize = 64

// ErrNoFreeFrame is returned by GetFreeFrame when a device's free list is
// exhausted.
var ErrNoFreeFrame = errors.New("memory: no free frame")

// ErrOutOfRange is returned by Read/Write for an address outside [0, maxsz).
var ErrOutOfRange = errors.New("memory: address out of range")

// Device is a byte-addressable physical store: one RAM or one swap unit.
// Every frame number (FPN) is, at any instant, in exactly one of the
// free-frame list or a page table entry that targets this device.
type Device struct {
	mu        sync.Mutex
	storage   []byte
	maxsz     int
	random    bool // true: random access. false: sequential, cursor-based.
	cursor    int
	freeFrame []int // stack of free FPNs, LIFO.
}

// NewDevice allocates and formats a device of maxsz bytes. random selects
// random-access mode; when false the device is sequential and every access
// moves its cursor.
func NewDevice(maxsz int, random bool) *Device {
	d := &Device{
		storage: make([]byte, maxsz),
		maxsz:   maxsz,
		random:  random,
	}
	d.format()
	return d
}

// format fills the free-frame list with every frame number in the device,
// descending, so that GetFreeFrame's pop-from-the-end pops frame 0 first:
// a fresh device hands out frames 0, 1, 2, ... in that order, matching
// MEMPHY_format/MEMPHY_get_freefp in the original ossim_sierra source.
func (d *Device) format() {
	numfp := d.maxsz / PageSize
	d.freeFrame = make([]int, numfp)
	for i := range d.freeFrame {
		d.freeFrame[i] = numfp - 1 - i
	}
}

// Size returns the device capacity in bytes.
func (d *Device) Size() int {
	return d.maxsz
}

// moveCursor resets the sequential cursor to 0, then steps it forward addr
// bytes (modulo maxsz), leaving it at addr. The original reference device always re-homes the cursor to
// the requested address before the access rather than continuing from
// wherever a previous access left it; this is preserved deliberately.
func (d *Device) moveCursor(addr int) {
	d.cursor = 0
	numstep := 0
	for numstep < addr && numstep < d.maxsz {
		d.cursor = (d.cursor + 1) % d.maxsz
		numstep++
	}
}

// Read returns the byte at addr.
func (d *Device) Read(addr int) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if addr < 0 || addr >= d.maxsz {
		return 0, fmt.Errorf("%w: addr=%d maxsz=%d", ErrOutOfRange, addr, d.maxsz)
	}
	if d.random {
		return d.storage[addr], nil
	}
	d.moveCursor(addr)
	return d.storage[addr], nil
}

// Write stores value at addr.
func (d *Device) Write(addr int, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if addr < 0 || addr >= d.maxsz {
		return fmt.Errorf("%w: addr=%d maxsz=%d", ErrOutOfRange, addr, d.maxsz)
	}
	if !d.random {
		d.moveCursor(addr)
	}
	d.storage[addr] = value
	return nil
}

// GetFreeFrame pops and returns a free frame number.
func (d *Device) GetFreeFrame() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.freeFrame)
	if n == 0 {
		return 0, ErrNoFreeFrame
	}
	fpn := d.freeFrame[n-1]
	d.freeFrame = d.freeFrame[:n-1]
	return fpn, nil
}

// PutFreeFrame returns fpn to the free list.
func (d *Device) PutFreeFrame(fpn int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.freeFrame = append(d.freeFrame, fpn)
}

// FreeFrameCount reports the number of frames currently on the free list,
// used by the frame-conservation test property.
func (d *Device) FreeFrameCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.freeFrame)
}

// FrameCount returns the total number of fixed-size frames the device holds.
func (d *Device) FrameCount() int {
	return d.maxsz / PageSize
}

// Dump prints every non-zero byte in the device, in the exact diagnostic
// format external grading scripts depend on.
func (d *Device) Dump() {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Println("PHYSICAL MEMORY DUMP:")
	for i, b := range d.storage {
		if b != 0 {
			fmt.Printf("BYTE %08X: %d\n", i, b)
		}
	}
	fmt.Println("PHYSICAL MEMORY DUMP:")
	fmt.Println("================================================================")
}
