package emu

import (
	"errors"
	"fmt"

	"github.com/archrv/rv5sim/insts"
)

// DefaultDataMemorySize is the default byte capacity of a new DataMemory,
// matching the original reference simulator's flat byte store.
const DefaultDataMemorySize = 1 << 20 // 1 MiB

// ErrOutOfRange is wrapped into every error DataMemory returns for an
// access whose byte footprint falls outside the store's bounds.
var ErrOutOfRange = errors.New("address out of range")

// DataMemory is a byte-addressed linear store with little-endian
// multi-byte access. Any access whose footprint falls outside the store's
// bounds fails with an error wrapping ErrOutOfRange.
type DataMemory struct {
	bytes []byte
}

// NewDataMemory returns a zeroed DataMemory of DefaultDataMemorySize bytes.
func NewDataMemory() *DataMemory {
	return NewDataMemoryOfSize(DefaultDataMemorySize)
}

// NewDataMemoryOfSize returns a zeroed DataMemory of the given byte size.
func NewDataMemoryOfSize(size int) *DataMemory {
	return &DataMemory{bytes: make([]byte, size)}
}

func (m *DataMemory) bounds(addr uint32, width int) error {
	if int64(addr)+int64(width) > int64(len(m.bytes)) {
		return fmt.Errorf("access at 0x%x width %d: %w", addr, width, ErrOutOfRange)
	}
	return nil
}

// Read8 reads one byte at addr.
func (m *DataMemory) Read8(addr uint32) (uint8, error) {
	if err := m.bounds(addr, 1); err != nil {
		return 0, err
	}
	return m.bytes[addr], nil
}

// Read16 reads two little-endian bytes at addr.
func (m *DataMemory) Read16(addr uint32) (uint16, error) {
	if err := m.bounds(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.bytes[addr]) | uint16(m.bytes[addr+1])<<8, nil
}

// Read32 reads four little-endian bytes at addr.
func (m *DataMemory) Read32(addr uint32) (uint32, error) {
	if err := m.bounds(addr, 4); err != nil {
		return 0, err
	}
	return uint32(m.bytes[addr]) |
		uint32(m.bytes[addr+1])<<8 |
		uint32(m.bytes[addr+2])<<16 |
		uint32(m.bytes[addr+3])<<24, nil
}

// Write8 writes one byte at addr.
func (m *DataMemory) Write8(addr uint32, v uint8) error {
	if err := m.bounds(addr, 1); err != nil {
		return err
	}
	m.bytes[addr] = v
	return nil
}

// Write16 writes two little-endian bytes at addr.
func (m *DataMemory) Write16(addr uint32, v uint16) error {
	if err := m.bounds(addr, 2); err != nil {
		return err
	}
	m.bytes[addr] = byte(v)
	m.bytes[addr+1] = byte(v >> 8)
	return nil
}

// Write32 writes four little-endian bytes at addr.
func (m *DataMemory) Write32(addr uint32, v uint32) error {
	if err := m.bounds(addr, 4); err != nil {
		return err
	}
	m.bytes[addr] = byte(v)
	m.bytes[addr+1] = byte(v >> 8)
	m.bytes[addr+2] = byte(v >> 16)
	m.bytes[addr+3] = byte(v >> 24)
	return nil
}

// InstructionMemory is a read-only, word-indexed store of decoded
// instructions. Instructions are assigned PCs 0, 4, 8, ... in program
// order; a fetch whose PC falls outside the program yields a NOP rather
// than an error, per the specification's fetch-past-end behavior.
type InstructionMemory struct {
	program []*insts.Instruction
}

// NewInstructionMemory builds an InstructionMemory from a decoded program
// in load order.
func NewInstructionMemory(program []*insts.Instruction) *InstructionMemory {
	return &InstructionMemory{program: program}
}

// Count returns the number of instructions in the program.
func (m *InstructionMemory) Count() int { return len(m.program) }

// Fetch returns the instruction at index pc/4, or a NOP if that index is
// past the end of the program. The low two bits of pc are ignored, so a
// pc that is not word-aligned yields the instruction of its word.
func (m *InstructionMemory) Fetch(pc uint32) *insts.Instruction {
	idx := pc / 4
	if int(idx) >= len(m.program) {
		return insts.NOP()
	}
	return m.program[idx]
}

// InBounds reports whether pc corresponds to a real program instruction
// (as opposed to a fetch past the end of the program, which still
// succeeds but yields a NOP and should not be stamped into the occupancy
// diagram as an "IF" event).
func (m *InstructionMemory) InBounds(pc uint32) bool {
	return pc/4 < uint32(len(m.program))
}
