package proc

/*
 * osim - Process control block
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

// NumRegisters is the guest register file size (registers are 1-indexed in
// the instruction encoding, slot 0 is unused).
const NumRegisters = 16

// Opcode identifies a guest instruction.
type Opcode int

const (
	CALC    Opcode = iota // No-op ALU placeholder.
	ALLOC                 // arg0=size arg1=region -> address in reg
	FREE                  // arg0=region
	READ                  // arg0=region arg1=offset arg2=dest register
	WRITE                 // arg0=byte arg1=region arg2=offset
	SYSCALL               // arg0=number arg1..arg3=args
)

// Instruction is one guest opcode plus its four arguments.
type Instruction struct {
	Opcode Opcode
	Arg0   int
	Arg1   int
	Arg2   int
	Arg3   int
}

// AddressSpace is implemented by internal/paging; kept as an interface here
// so proc has no dependency on paging and paging can depend on proc.
type AddressSpace interface {
	ReleaseAll()
}

// PCB is the process control block. It is mutated only while its owning
// thread (a CPU worker or the loader) holds it off every scheduling queue.
type PCB struct {
	PID      int
	Priority int // Fixed priority, selects the MLQ level.
	PC       int
	Regs     [NumRegisters + 1]int // 1-indexed; Regs[0] unused.
	Code     []Instruction
	Path     string // input/proc/<basename>, used by killall matching.

	MM AddressSpace // nil unless the harness runs in paging mode.
}

// Done reports whether the process has executed past the end of its code.
func (p *PCB) Done() bool {
	return p.PC >= len(p.Code)
}
