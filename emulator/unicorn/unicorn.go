//go:build cgo

package unicorn

import (
	"fmt"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"
	"github.com/wnxd/popcorn/emulator"
)

const Name = emulator.DefaultBackend

const fallbackPageSize = 0x1000

var _ = emulator.Register(Name, New)

type Unicorn struct {
	arch     emulator.ArchInfo
	mu       uc.Unicorn
	pageSize uint64
}

func New(arch emulator.ArchInfo) (emulator.Emulator, error) {
	ucArch, ucMode, err := convertArch(arch)
	if err != nil {
		return nil, err
	}
	mu, err := uc.NewUnicorn(ucArch, ucMode)
	if err != nil {
		return nil, fmt.Errorf("create unicorn %s: %w", arch, err)
	}
	pageSize, err := mu.Query(uc.QUERY_PAGE_SIZE)
	if err != nil || pageSize == 0 {
		pageSize = fallbackPageSize
	}
	return &Unicorn{arch: arch, mu: mu, pageSize: pageSize}, nil
}

func (u *Unicorn) Close() error {
	return u.mu.Close()
}

func (u *Unicorn) Arch() emulator.ArchInfo {
	return u.arch
}

func (u *Unicorn) ByteOrder() emulator.ByteOrder {
	return emulator.BO_LITTLE_ENDIAN
}

func (u *Unicorn) PageSize() uint64 {
	return u.pageSize
}

func (u *Unicorn) MemMap(addr, size uint64, prot emulator.MemProt) error {
	return u.mu.MemMapProt(addr, size, int(prot))
}

func (u *Unicorn) MemUnmap(addr, size uint64) error {
	return u.mu.MemUnmap(addr, size)
}

func (u *Unicorn) MemProtect(addr, size uint64, prot emulator.MemProt) error {
	return u.mu.MemProtect(addr, size, int(prot))
}

func (u *Unicorn) MemRegions() ([]emulator.MemRegion, error) {
	regions, err := u.mu.MemRegions()
	if err != nil {
		return nil, err
	}
	out := make([]emulator.MemRegion, len(regions))
	for i, r := range regions {
		// unicorn reports an inclusive end address
		out[i] = emulator.MemRegion{Addr: r.Begin, Size: r.End - r.Begin + 1, Prot: emulator.MemProt(r.Prot)}
	}
	return out, nil
}

func (u *Unicorn) MemRead(addr, size uint64) ([]byte, error) {
	return u.mu.MemRead(addr, size)
}

func (u *Unicorn) MemWrite(addr uint64, data []byte) error {
	return u.mu.MemWrite(addr, data)
}

func (u *Unicorn) RegRead(reg emulator.Reg) (uint64, error) {
	return u.mu.RegRead(int(reg))
}

func (u *Unicorn) RegWrite(reg emulator.Reg, value uint64) error {
	return u.mu.RegWrite(int(reg), value)
}

func (u *Unicorn) Start(begin, until uint64) error {
	return u.mu.Start(begin, until)
}

func (u *Unicorn) Stop() error {
	return u.mu.Stop()
}

func convertArch(arch emulator.ArchInfo) (int, int, error) {
	var ucArch, ucMode int
	switch arch.Arch {
	case emulator.ARCH_ARM:
		ucArch = uc.ARCH_ARM
	case emulator.ARCH_ARM64:
		ucArch = uc.ARCH_ARM64
	case emulator.ARCH_X86:
		ucArch = uc.ARCH_X86
	default:
		return 0, 0, fmt.Errorf("%w: %s", emulator.ErrArchUnsupported, arch)
	}
	switch arch.Mode {
	case emulator.MODE_ARM:
		ucMode = uc.MODE_ARM
	case emulator.MODE_THUMB:
		ucMode = uc.MODE_THUMB
	case emulator.MODE_16:
		ucMode = uc.MODE_16
	case emulator.MODE_32:
		ucMode = uc.MODE_32
	case emulator.MODE_64:
		ucMode = uc.MODE_64
	default:
		return 0, 0, fmt.Errorf("%w: %s", emulator.ErrArchUnsupported, arch)
	}
	return ucArch, ucMode, nil
}
