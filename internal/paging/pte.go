package paging

/*
 * osim - Page table entry encoding
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

import "errors"

// PTE is a 32-bit page table entry: present (bit 31), swapped (bit 30),
// dirty (bit 29), and either an FPN (present & !swapped) or a
// (swapType, swapOffset) pair (present & swapped).
type PTE uint32

const (
	ptePresentBit = 31
	pteSwappedBit = 30
	pteDirtyBit   = 29

	pteFPNMask       = 0x000FFFFF // bits 0-19: resident frame number.
	pteSwapOffMask   = 0x000FFFFF // bits 0-19: swap slot offset (FPN on the swap device).
	pteSwapTypeMask  = 0x00300000 // bits 20-21: swap device index (0-3).
	pteSwapTypeShift = 20
)

// ErrReservedFPN is returned when a caller tries to mark a page resident at
// frame 0, which is reserved to mean "invalid" in a present-swapped-absent
// encoding.
var ErrReservedFPN = errors.New("paging: frame 0 is reserved, cannot mark resident")

// Present reports whether the entry describes a mapped page (resident or
// swapped); a zeroed PTE means "not present".
func (p PTE) Present() bool {
	return p&(1<<ptePresentBit) != 0
}

// Swapped reports whether a present entry's page lives on a swap device.
func (p PTE) Swapped() bool {
	return p&(1<<pteSwappedBit) != 0
}

// Dirty reports the dirty bit.
func (p PTE) Dirty() bool {
	return p&(1<<pteDirtyBit) != 0
}

// FPN returns the resident frame number of a present, non-swapped entry.
func (p PTE) FPN() int {
	return int(p & pteFPNMask)
}

// SwapType returns the swap device index of a present, swapped entry.
func (p PTE) SwapType() int {
	return int(p&pteSwapTypeMask) >> pteSwapTypeShift
}

// SwapOffset returns the swap-device frame number of a present, swapped
// entry.
func (p PTE) SwapOffset() int {
	return int(p & pteSwapOffMask)
}

// InitPTE composes a PTE. present=false yields the zero "not present"
// value regardless of the other arguments. present=true and swap=false
// requires a non-zero fpn (frame 0 is reserved); present=true and
// swap=true encodes (swapType, swapOffset).
func InitPTE(present bool, fpn int, dirty bool, swap bool, swapType, swapOffset int) (PTE, error) {
	var pte PTE
	if !present {
		return 0, nil
	}
	pte |= 1 << ptePresentBit
	if dirty {
		pte |= 1 << pteDirtyBit
	}
	if !swap {
		if fpn == 0 {
			return 0, ErrReservedFPN
		}
		pte |= PTE(fpn & pteFPNMask)
		return pte, nil
	}
	pte |= 1 << pteSwappedBit
	pte |= PTE(swapType<<pteSwapTypeShift) & pteSwapTypeMask
	pte |= PTE(swapOffset) & pteSwapOffMask
	return pte, nil
}

// SetFPN mutates pte in place to mark it present and resident at fpn. Unlike
// InitPTE, frame 0 is accepted here: the reservation only guards the
// initial present/resident composition, not a live page's later
// re-mapping (spec.md §4.2, pte_set_fpn in the original libmem.c).
func SetFPN(pte *PTE, fpn int) error {
	*pte = (*pte &^ (1 << pteSwappedBit)) | (1 << ptePresentBit)
	*pte = (*pte &^ pteFPNMask) | PTE(fpn&pteFPNMask)
	return nil
}

// SetSwap mutates pte in place to mark it present and swapped-out to
// (swapType, swapOffset).
func SetSwap(pte *PTE, swapType, swapOffset int) {
	*pte |= (1 << ptePresentBit) | (1 << pteSwappedBit)
	*pte = (*pte &^ pteSwapTypeMask) | (PTE(swapType<<pteSwapTypeShift) & pteSwapTypeMask)
	*pte = (*pte &^ pteSwapOffMask) | (PTE(swapOffset) & pteSwapOffMask)
}
