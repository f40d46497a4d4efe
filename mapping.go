package popcorn

import (
	"fmt"
	"maps"

	"github.com/wnxd/popcorn/emulator"
)

// MemMap is a committed region of guest memory.
type MemMap struct {
	Addr, Size uint64
	Prot       emulator.MemProt
	Name       string
}

// MemMaps is a snapshot of the committed regions keyed by MemMap.Key.
type MemMaps map[string]MemMap

// Key returns the registry key of m: its name, or a name derived from the
// base address for anonymous mappings.
func (m MemMap) Key() string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf(".anonymous[0x%x]", m.Addr)
}

func (m MemMap) End() uint64 {
	return m.Addr + m.Size
}

func (m MemMap) String() string {
	return fmt.Sprintf("%s [0x%x, 0x%x) %s", m.Key(), m.Addr, m.End(), m.Prot)
}

type registry struct {
	entries MemMaps
}

// insert records m unless its key is taken. commit runs between the check
// and the store; if it fails nothing is recorded.
func (r *registry) insert(m MemMap, commit func(MemMap) error) error {
	key := m.Key()
	if _, ok := r.entries[key]; ok {
		return MapExistsError(m)
	}
	if commit != nil {
		if err := commit(m); err != nil {
			return err
		}
	}
	if r.entries == nil {
		r.entries = make(MemMaps)
	}
	r.entries[key] = m
	return nil
}

func (r *registry) snapshot() MemMaps {
	if r.entries == nil {
		return MemMaps{}
	}
	return maps.Clone(r.entries)
}
