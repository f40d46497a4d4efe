// Package memory is a pure-Go engine backend. It keeps a faithful guest
// address space (page-granular regions, protections, zero-filled pages) and
// a register file, but does not execute instructions.
package memory

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/golang/glog"
	"github.com/wnxd/popcorn/emulator"
)

// Name is the backend name under which the engine is registered.
const Name = "memory"

// DefaultPageSize matches the granularity of the unicorn backend.
const DefaultPageSize = 0x1000

var _ = emulator.Register(Name, New)

type region struct {
	emulator.MemRegion
	data []byte
}

type Memory struct {
	mu       sync.Mutex
	arch     emulator.ArchInfo
	pageSize uint64
	regions  []*region
	regs     map[emulator.Reg]uint64
	closed   bool
}

func New(arch emulator.ArchInfo) (emulator.Emulator, error) {
	return NewWithPageSize(arch, DefaultPageSize)
}

// NewWithPageSize creates an engine with a custom page granularity, which
// must be a power of two.
func NewWithPageSize(arch emulator.ArchInfo, pageSize uint64) (*Memory, error) {
	if arch.Arch == emulator.ARCH_UNKNOWN || arch.Mode == emulator.MODE_UNKNOWN {
		return nil, emulator.ErrArchUnsupported
	}
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		return nil, fmt.Errorf("%w: page size 0x%x", emulator.ErrArgumentInvalid, pageSize)
	}
	return &Memory{
		arch:     arch,
		pageSize: pageSize,
		regs:     make(map[emulator.Reg]uint64),
	}, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, r := range m.regions {
		freeBacking(r.data)
	}
	m.regions = nil
	clear(m.regs)
	return nil
}

func (m *Memory) Arch() emulator.ArchInfo {
	return m.arch
}

func (m *Memory) ByteOrder() emulator.ByteOrder {
	return emulator.BO_LITTLE_ENDIAN
}

func (m *Memory) PageSize() uint64 {
	return m.pageSize
}

func (m *Memory) MemMap(addr, size uint64, prot emulator.MemProt) error {
	if err := m.checkRange(addr, size); err != nil {
		return err
	}
	if prot&^emulator.MEM_PROT_ALL != 0 {
		return fmt.Errorf("%w: prot %d", emulator.ErrArgumentInvalid, prot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return emulator.ErrClosed
	}
	want := emulator.MemRegion{Addr: addr, Size: size, Prot: prot}
	for _, r := range m.regions {
		if r.Overlaps(want) {
			return fmt.Errorf("%w: [0x%x, 0x%x) overlaps [0x%x, 0x%x)", emulator.ErrMemMapped, addr, want.End(), r.Addr, r.End())
		}
	}
	data, err := allocBacking(size)
	if err != nil {
		return err
	}
	i, _ := slices.BinarySearchFunc(m.regions, addr, func(r *region, addr uint64) int {
		return cmp.Compare(r.Addr, addr)
	})
	m.regions = slices.Insert(m.regions, i, &region{MemRegion: want, data: data})
	glog.V(2).Infof("memory: map [0x%x, 0x%x) %s", addr, want.End(), prot)
	return nil
}

func (m *Memory) MemUnmap(addr, size uint64) error {
	if err := m.checkRange(addr, size); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return emulator.ErrClosed
	}
	if !m.covered(addr, size) {
		return fmt.Errorf("%w: [0x%x, 0x%x)", emulator.ErrMemUnmapped, addr, addr+size)
	}
	return m.split(addr, size, nil)
}

func (m *Memory) MemProtect(addr, size uint64, prot emulator.MemProt) error {
	if err := m.checkRange(addr, size); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return emulator.ErrClosed
	}
	if !m.covered(addr, size) {
		return fmt.Errorf("%w: [0x%x, 0x%x)", emulator.ErrMemUnmapped, addr, addr+size)
	}
	return m.split(addr, size, &prot)
}

func (m *Memory) MemRegions() ([]emulator.MemRegion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, emulator.ErrClosed
	}
	regions := make([]emulator.MemRegion, len(m.regions))
	for i, r := range m.regions {
		regions[i] = r.MemRegion
	}
	return regions, nil
}

func (m *Memory) MemRead(addr, size uint64) ([]byte, error) {
	// Allocated on first callback, after the whole range is known to be mapped.
	var data []byte
	err := m.access(addr, size, func(r *region, off, n, pos uint64) {
		if data == nil {
			data = make([]byte, size)
		}
		copy(data[pos:pos+n], r.data[off:off+n])
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// MemWrite stores data from the host side. Like unicorn, host writes are not
// subject to the guest protection of the target pages.
func (m *Memory) MemWrite(addr uint64, data []byte) error {
	size := uint64(len(data))
	err := m.access(addr, size, func(r *region, off, n, pos uint64) {
		copy(r.data[off:off+n], data[pos:pos+n])
	})
	if err == nil {
		glog.V(2).Infof("memory: write 0x%x bytes at 0x%x", size, addr)
	}
	return err
}

func (m *Memory) RegRead(reg emulator.Reg) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, emulator.ErrClosed
	}
	return m.regs[reg], nil
}

func (m *Memory) RegWrite(reg emulator.Reg, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return emulator.ErrClosed
	}
	m.regs[reg] = value
	return nil
}

func (m *Memory) Start(begin, until uint64) error {
	return emulator.ErrNotImplemented
}

func (m *Memory) Stop() error {
	return nil
}

func (m *Memory) checkRange(addr, size uint64) error {
	if size == 0 || addr%m.pageSize != 0 || size%m.pageSize != 0 {
		return fmt.Errorf("%w: addr 0x%x size 0x%x not aligned to 0x%x", emulator.ErrArgumentInvalid, addr, size, m.pageSize)
	}
	if addr+size < addr {
		return fmt.Errorf("%w: addr 0x%x size 0x%x overflows", emulator.ErrArgumentInvalid, addr, size)
	}
	return nil
}

// covered reports whether [addr, addr+size) is fully mapped. Callers hold mu.
func (m *Memory) covered(addr, size uint64) bool {
	next, end := addr, addr+size
	for _, r := range m.regions {
		if r.End() <= next {
			continue
		}
		if r.Addr > next {
			return false
		}
		next = r.End()
		if next >= end {
			return true
		}
	}
	return next >= end
}

func (m *Memory) access(addr, size uint64, fn func(r *region, off, n, pos uint64)) error {
	if addr+size < addr {
		return fmt.Errorf("%w: addr 0x%x size 0x%x overflows", emulator.ErrArgumentInvalid, addr, size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return emulator.ErrClosed
	}
	if size == 0 {
		return nil
	}
	if !m.covered(addr, size) {
		return fmt.Errorf("%w: [0x%x, 0x%x)", emulator.ErrMemUnmapped, addr, addr+size)
	}
	end := addr + size
	for _, r := range m.regions {
		if r.End() <= addr || r.Addr >= end {
			continue
		}
		lo, hi := max(r.Addr, addr), min(r.End(), end)
		fn(r, lo-r.Addr, hi-lo, lo-addr)
	}
	return nil
}

// split cuts the regions intersecting [addr, addr+size) at the range
// boundaries. The inner pieces are dropped when prot is nil and get *prot
// otherwise. Nothing changes if a backing allocation fails. Callers hold mu.
func (m *Memory) split(addr, size uint64, prot *emulator.MemProt) error {
	end := addr + size
	var out, retired, fresh []*region
	for _, r := range m.regions {
		if r.End() <= addr || r.Addr >= end {
			out = append(out, r)
			continue
		}
		retired = append(retired, r)
		lo, hi := max(r.Addr, addr), min(r.End(), end)
		for _, span := range [][2]uint64{{r.Addr, lo}, {lo, hi}, {hi, r.End()}} {
			from, to := span[0], span[1]
			inner := from == lo && to == hi
			if from == to || (inner && prot == nil) {
				continue
			}
			data, err := allocBacking(to - from)
			if err != nil {
				for _, f := range fresh {
					freeBacking(f.data)
				}
				return err
			}
			copy(data, r.data[from-r.Addr:to-r.Addr])
			nr := &region{
				MemRegion: emulator.MemRegion{Addr: from, Size: to - from, Prot: r.Prot},
				data:      data,
			}
			if inner {
				nr.Prot = *prot
			}
			fresh = append(fresh, nr)
			out = append(out, nr)
		}
	}
	for _, r := range retired {
		freeBacking(r.data)
	}
	m.regions = out
	return nil
}
