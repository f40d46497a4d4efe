package emulator

import (
	"fmt"
	"slices"
	"sync"
)

// DefaultBackend is used by New when no backend name is given.
const DefaultBackend = "unicorn"

type Ctor func(ArchInfo) (Emulator, error)

var (
	backendMu  sync.RWMutex
	backendMap = make(map[string]Ctor)
)

// Register makes an engine backend available under name. It reports false
// if the name is already taken.
func Register(name string, ctor Ctor) bool {
	backendMu.Lock()
	defer backendMu.Unlock()
	if _, ok := backendMap[name]; ok {
		return false
	}
	backendMap[name] = ctor
	return true
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	names := make([]string, 0, len(backendMap))
	for name := range backendMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates a fresh engine instance for arch from the named backend.
func New(backend string, arch ArchInfo) (Emulator, error) {
	if backend == "" {
		backend = DefaultBackend
	}
	backendMu.RLock()
	ctor, ok := backendMap[backend]
	backendMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotFound, backend)
	}
	return ctor(arch)
}
