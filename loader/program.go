// Package loader parses the text instruction-stream format consumed by
// both simulator variants into a decoded program: one hexadecimal 32-bit
// machine word plus its original assembly text per line, PCs assigned 0,
// 4, 8, ... in file order.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/archrv/rv5sim/insts"
)

// ErrEmptyProgram is wrapped into the error returned when a file produces
// zero valid instructions.
var ErrEmptyProgram = errors.New("program contains no instructions")

// Load reads the instruction file at path and returns the decoded
// program in file order. Lines that are empty, whitespace-only, or whose
// first non-whitespace character is '#' are skipped. Every remaining line
// must begin with a hexadecimal 32-bit machine word, optionally followed by
// whitespace and the instruction's original assembly text (which may
// itself carry a trailing '#' comment); a line with no assembly text gets
// the assembly "NOP".
func Load(path string) ([]*insts.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instruction file: %w", err)
	}
	defer f.Close()

	var program []*insts.Instruction
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := []string{trimmed}
		if idx := strings.IndexFunc(trimmed, unicode.IsSpace); idx >= 0 {
			fields = []string{trimmed[:idx], trimmed[idx+1:]}
		}
		word, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("failed to parse machine word %q: %w", fields[0], err)
		}

		assembly := "NOP"
		if len(fields) == 2 {
			assembly = normalizeAssembly(fields[1])
		}

		inst := insts.Decode(uint32(word))
		inst.Assembly = assembly
		program = append(program, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading instruction file: %w", err)
	}
	if len(program) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyProgram)
	}

	return program, nil
}

// normalizeAssembly strips a '#'-led comment tail, trims surrounding
// whitespace, and collapses internal whitespace runs to a single space;
// an empty result becomes "NOP". Grounded in the original reference
// simulator's stripComments behavior.
func normalizeAssembly(s string) string {
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		s = s[:idx]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "NOP"
	}
	return strings.Join(fields, " ")
}
