// Package sysnum declares the syscall numbers and memmap sub-operation
// codes shared between the syscall dispatcher and the paging engine that
// calls back through it. Kept in its own package, the way the reference
// source's syscalltbl.lst is a standalone declaration file included by
// both syscall.c and libmem.c, so neither internal/paging nor
// internal/syscall has to import the other.
package sysnum

/*
 * osim - Syscall number declarations
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

// Syscall numbers, matching the (nr, symbol) pairs of the reference
// syscalltbl.lst declaration file.
const (
	NrMemMap  = 17
	NrKillAll = 11
)

// memmap sub-operations, selected by the first argument (a1) of NrMemMap.
const (
	SysMemIncOp = iota // Extend a VMA and back the new pages with frames.
	SysMemSwpOp        // Copy one frame between two devices.
	SysMemIORead       // Read one byte from RAM.
	SysMemIOWrite      // Write one byte to RAM.
)
