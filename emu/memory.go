package emu

import "encoding/binary"

// Memory is the byte/half/word/doubleword load-store interface the
// executor consumes. Addresses are unsigned and sized to the active
// XLEN; implementations are synchronous. A Memory shared between harts
// must serialize concurrent accesses itself.
type Memory interface {
	LoadByte(addr uint64) uint8
	LoadHalf(addr uint64) uint16
	LoadWord(addr uint64) uint32
	LoadDouble(addr uint64) uint64

	StoreByte(addr uint64, v uint8)
	StoreHalf(addr uint64, v uint16)
	StoreWord(addr uint64, v uint32)
	StoreDouble(addr uint64, v uint64)
}

// pageSize is the allocation granularity of SparseMemory.
const pageSize = 4096

// SparseMemory is a page-granular sparse memory. Unwritten locations
// read as zero. Multi-byte accesses are little-endian and may straddle
// page boundaries.
type SparseMemory struct {
	pages map[uint64]*[pageSize]byte
}

// NewSparseMemory creates an empty sparse memory.
func NewSparseMemory() *SparseMemory {
	return &SparseMemory{pages: make(map[uint64]*[pageSize]byte)}
}

func (m *SparseMemory) page(addr uint64, allocate bool) (*[pageSize]byte, uint64) {
	base := addr &^ uint64(pageSize-1)
	p, ok := m.pages[base]
	if !ok {
		if !allocate {
			return nil, addr - base
		}
		p = &[pageSize]byte{}
		m.pages[base] = p
	}
	return p, addr - base
}

// LoadByte reads one byte.
func (m *SparseMemory) LoadByte(addr uint64) uint8 {
	p, off := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[off]
}

// StoreByte writes one byte.
func (m *SparseMemory) StoreByte(addr uint64, v uint8) {
	p, off := m.page(addr, true)
	p[off] = v
}

// LoadHalf reads a little-endian halfword.
func (m *SparseMemory) LoadHalf(addr uint64) uint16 {
	var buf [2]byte
	m.read(addr, buf[:])
	return binary.LittleEndian.Uint16(buf[:])
}

// StoreHalf writes a little-endian halfword.
func (m *SparseMemory) StoreHalf(addr uint64, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	m.Write(addr, buf[:])
}

// LoadWord reads a little-endian word.
func (m *SparseMemory) LoadWord(addr uint64) uint32 {
	var buf [4]byte
	m.read(addr, buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

// StoreWord writes a little-endian word.
func (m *SparseMemory) StoreWord(addr uint64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	m.Write(addr, buf[:])
}

// LoadDouble reads a little-endian doubleword.
func (m *SparseMemory) LoadDouble(addr uint64) uint64 {
	var buf [8]byte
	m.read(addr, buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// StoreDouble writes a little-endian doubleword.
func (m *SparseMemory) StoreDouble(addr uint64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	m.Write(addr, buf[:])
}

func (m *SparseMemory) read(addr uint64, buf []byte) {
	for i := range buf {
		buf[i] = m.LoadByte(addr + uint64(i))
	}
}

// Write copies a byte slice into memory starting at addr. Program
// loaders use it to place segments.
func (m *SparseMemory) Write(addr uint64, data []byte) {
	for i, b := range data {
		m.StoreByte(addr+uint64(i), b)
	}
}
