package emulator

import (
	"io"
)

type Reg int

// Emulator is the CPU-emulation engine: it reserves guest memory, stores
// bytes into it and executes instructions from it. Implementations live in
// the backend packages and are obtained through New.
type Emulator interface {
	io.Closer
	Arch() ArchInfo
	ByteOrder() ByteOrder
	PageSize() uint64
	MemMap(addr, size uint64, prot MemProt) error
	MemUnmap(addr, size uint64) error
	MemProtect(addr, size uint64, prot MemProt) error
	MemRegions() ([]MemRegion, error)
	MemRead(addr, size uint64) ([]byte, error)
	MemWrite(addr uint64, data []byte) error
	RegRead(reg Reg) (uint64, error)
	RegWrite(reg Reg, value uint64) error
	Start(begin, until uint64) error
	Stop() error
}
