package paging

/*
 * osim - Per-process address space
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

	"github.com/rcornwell/osim/internal/memory"
)

const (
	// MaxPGN bounds the number of pages a single address space can map.
	MaxPGN = 256
	// MaxSym bounds the region/symbol table, one slot per guest ALLOC id.
	MaxSym = 32
	// MaxSwap is the number of swap devices the harness may configure.
	MaxSwap = 4
)

// Region is a half-open virtual byte range [Start, End) carved out of a
// VMA, or an empty region when Start == End == 0.
type Region struct {
	Start int
	End   int
}

func (r Region) empty() bool {
	return r.Start == 0 && r.End == 0
}

func (r Region) size() int {
	return r.End - r.Start
}

// vma is the single growable virtual memory area every address space owns.
type vma struct {
	start int
	end   int
	sbrk  int
}

// AddressSpace is the per-process page directory, region table, and FIFO
// eviction list described in spec.md §3.
type AddressSpace struct {
	pgd [MaxPGN]PTE

	area vma

	freeRegions []Region // first-fit scan order; newest carve goes to front.
	symtab      [MaxSym]Region

	fifo []int // queue of resident page numbers; front = oldest inserted.

	// ActiveSwap is the swap device currently used to receive evicted
	// pages; ActiveSwapID is its index within the harness's swap slice.
	ActiveSwap   *memory.Device
	ActiveSwapID int

	// ram and swap back ReleaseAll. Stored here (rather than threaded
	// through as call arguments) so *AddressSpace satisfies the
	// zero-argument proc.AddressSpace interface the PCB holds its
	// address space as.
	ram  *memory.Device
	swap []*memory.Device
}

// NewAddressSpace returns a freshly initialized address space bound to
// ram and swap: an empty VMA and an empty free-region list. activeSwapID
// selects which swap device receives this process's evicted pages; pass
// -1 for a non-paging setup.
func NewAddressSpace(ram *memory.Device, swap []*memory.Device, activeSwapID int) *AddressSpace {
	as := &AddressSpace{ram: ram, swap: swap}
	if activeSwapID >= 0 && activeSwapID < len(swap) {
		as.ActiveSwap = swap[activeSwapID]
		as.ActiveSwapID = activeSwapID
	}
	return as
}

// VMAStart, VMAEnd, Sbrk expose the single VMA's bounds for diagnostics and
// tests; mutation happens only through Engine.
func (as *AddressSpace) VMAStart() int { return as.area.start }
func (as *AddressSpace) VMAEnd() int   { return as.area.end }
func (as *AddressSpace) Sbrk() int     { return as.area.sbrk }

// getFreeRegion performs a first-fit scan of the free-region list, carving
// size bytes off the front of the first region large enough. The residual
// is kept in place (shrunk) unless it becomes empty, in which case the
// node is dropped. Adjacent free regions are never coalesced (see
// DESIGN.md / SPEC_FULL.md §6.4): fragmentation can only grow.
func (as *AddressSpace) getFreeRegion(size int) (Region, bool) {
	for i, r := range as.freeRegions {
		if r.size() < size {
			continue
		}
		out := Region{Start: r.Start, End: r.Start + size}
		r.Start += size
		if r.Start == r.End {
			as.freeRegions = append(as.freeRegions[:i], as.freeRegions[i+1:]...)
		} else {
			as.freeRegions[i] = r
		}
		return out, true
	}
	return Region{}, false
}

// putFreeRegion returns a region to the free list. New entries are placed
// at the front, mirroring the reference implementation's prepend-on-free.
func (as *AddressSpace) putFreeRegion(r Region) {
	as.freeRegions = append([]Region{r}, as.freeRegions...)
}

// enlistPage appends pgn to the back of the FIFO list: the oldest-inserted
// page is always at the front and is the next eviction victim.
func (as *AddressSpace) enlistPage(pgn int) {
	as.fifo = append(as.fifo, pgn)
}

// findVictim removes and returns the oldest page number in the FIFO list.
func (as *AddressSpace) findVictim() (int, bool) {
	if len(as.fifo) == 0 {
		return 0, false
	}
	pgn := as.fifo[0]
	as.fifo = as.fifo[1:]
	return pgn, true
}

// ReleaseAll returns every frame and swap slot this address space still
// owns to its device free lists, and satisfies the proc.AddressSpace
// interface used for termination and killall cleanup (spec.md §9, 4th
// bullet: a correct port invokes the free_pcb_memphy equivalent).
func (as *AddressSpace) ReleaseAll() {
	for pgn := 0; pgn < MaxPGN; pgn++ {
		pte := as.pgd[pgn]
		if !pte.Present() {
			continue
		}
		if pte.Swapped() {
			st := pte.SwapType()
			if st >= 0 && st < len(as.swap) {
				as.swap[st].PutFreeFrame(pte.SwapOffset())
			}
		} else {
			as.ram.PutFreeFrame(pte.FPN())
		}
		as.pgd[pgn] = 0
	}
	as.fifo = nil
}

// DumpPageTable prints every present PGN -> FPN mapping in [start, end),
// following the reference print_pgtbl format. end == -1 means "to the end
// of the VMA".
func (as *AddressSpace) DumpPageTable(start, end int) {
	if end == -1 {
		end = as.area.end
	}
	pgnStart := start / memory.PageSize
	pgnEnd := end / memory.PageSize
	for pgn := pgnStart; pgn < pgnEnd && pgn < MaxPGN; pgn++ {
		pte := as.pgd[pgn]
		if pte.Present() && !pte.Swapped() {
			fmt.Printf("Page Number: %d -> Frame Number: %d\n", pgn, pte.FPN())
		}
	}
	fmt.Println("================================================================")
}
