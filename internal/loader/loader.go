// Package loader implements the minimum text-based guest program format
// needed to exercise the core deterministically (SPEC_FULL.md §5): a
// program is a sequence of instruction lines, one opcode per line, read
// from input/proc/<basename>. It plays the same role the reference
// source's black-box ELF-like loader plays for spec.md, but as a small,
// fully-specified format rather than a general one.
package loader

/*
 * osim - Guest program loader
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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/osim/internal/proc"
)

var opcodes = map[string]proc.Opcode{
	"CALC":    proc.CALC,
	"ALLOC":   proc.ALLOC,
	"FREE":    proc.FREE,
	"READ":    proc.READ,
	"WRITE":   proc.WRITE,
	"SYSCALL": proc.SYSCALL,
}

// ParseProgram reads a guest program: one instruction per line, `#`
// starts a line comment, blank lines are ignored. Each instruction line
// is an opcode name followed by up to four decimal arguments
// (opcode-specific, see internal/proc's Opcode doc comments); missing
// trailing arguments default to zero.
func ParseProgram(path string) ([]proc.Instruction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer file.Close()

	var code []proc.Instruction
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op, ok := opcodes[strings.ToUpper(fields[0])]
		if !ok {
			return nil, fmt.Errorf("loader: %s:%d: unknown opcode %q", path, lineNum, fields[0])
		}
		args := [4]int{}
		for i, tok := range fields[1:] {
			if i >= len(args) {
				break
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("loader: %s:%d: bad argument %q: %w", path, lineNum, tok, err)
			}
			args[i] = v
		}
		code = append(code, proc.Instruction{Opcode: op, Arg0: args[0], Arg1: args[1], Arg2: args[2], Arg3: args[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return code, nil
}
