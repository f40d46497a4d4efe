// Package popcorn holds the emulator handle produced by the binary loaders:
// a CPU-emulation engine together with the architecture it was created for
// and the registry of guest memory regions committed into it.
package popcorn

import (
	"errors"
	"sync"

	"github.com/wnxd/popcorn/emulator"
)

// Executor runs guest code on behalf of an Emulator. The handle only
// forwards to it; instruction dispatch is the executor's business.
type Executor interface {
	Call(emu *Emulator, addr uint64, args []uint64) (uint64, error)
	Run(emu *Emulator, args []string) error
}

// Emulator owns one engine instance, its architecture and its mappings for
// its whole lifetime.
type Emulator struct {
	mu       sync.Mutex
	arch     emulator.ArchInfo
	engine   emulator.Emulator
	mappings registry
	executor Executor
	closed   bool
}

// New creates an Emulator around a fresh engine from the named backend.
func New(arch emulator.ArchInfo, backend string) (*Emulator, error) {
	engine, err := emulator.New(backend, arch)
	if err != nil {
		return nil, EngineError("create", err)
	}
	emu, err := NewWithEngine(arch, engine)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return emu, nil
}

// NewWithEngine wraps an engine the caller hands over. The engine must not
// be used through any other path afterwards.
func NewWithEngine(arch emulator.ArchInfo, engine emulator.Emulator) (*Emulator, error) {
	if engine == nil {
		return nil, EngineError("create", emulator.ErrArgumentInvalid)
	}
	if engine.Arch() != arch {
		return nil, EngineError("create", emulator.ErrArchMismatch)
	}
	if engine.PageSize() == 0 {
		return nil, EngineError("create", emulator.ErrArgumentInvalid)
	}
	return &Emulator{arch: arch, engine: engine}, nil
}

// Arch returns the architecture the emulator was created for.
func (emu *Emulator) Arch() emulator.ArchInfo {
	return emu.arch
}

// Engine returns the underlying engine for execution layers.
func (emu *Emulator) Engine() emulator.Emulator {
	return emu.engine
}

func (emu *Emulator) PageSize() uint64 {
	return emu.engine.PageSize()
}

// MemMap reserves m in the engine and records it. A mapping whose key is
// already registered is rejected without touching the engine.
func (emu *Emulator) MemMap(m MemMap) error {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if emu.closed {
		return EngineError("map", emulator.ErrClosed)
	}
	return emu.mappings.insert(m, func(m MemMap) error {
		if err := emu.engine.MemMap(m.Addr, m.Size, m.Prot); err != nil {
			return EngineError("map", err)
		}
		return nil
	})
}

// MemWrite copies data into already mapped guest memory at addr.
func (emu *Emulator) MemWrite(addr uint64, data []byte) error {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if emu.closed {
		return EngineError("write", emulator.ErrClosed)
	}
	if err := emu.engine.MemWrite(addr, data); err != nil {
		return EngineError("write", err)
	}
	return nil
}

func (emu *Emulator) MemRead(addr, size uint64) ([]byte, error) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if emu.closed {
		return nil, EngineError("read", emulator.ErrClosed)
	}
	data, err := emu.engine.MemRead(addr, size)
	if err != nil {
		return nil, EngineError("read", err)
	}
	return data, nil
}

// Mappings returns a copy of the committed regions.
func (emu *Emulator) Mappings() MemMaps {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	return emu.mappings.snapshot()
}

// SetExecutor attaches the execution layer used by CallAddr and Run.
func (emu *Emulator) SetExecutor(exec Executor) {
	emu.mu.Lock()
	emu.executor = exec
	emu.mu.Unlock()
}

// CallAddr calls the guest function at addr with args.
func (emu *Emulator) CallAddr(addr uint64, args ...uint64) (uint64, error) {
	exec, err := emu.execLayer("call")
	if err != nil {
		return 0, err
	}
	return exec.Call(emu, addr, args)
}

// Run executes the loaded program with args.
func (emu *Emulator) Run(args ...string) error {
	exec, err := emu.execLayer("run")
	if err != nil {
		return err
	}
	return exec.Run(emu, args)
}

func (emu *Emulator) execLayer(op string) (Executor, error) {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if emu.closed {
		return nil, EngineError(op, emulator.ErrClosed)
	}
	if emu.executor == nil {
		return nil, EngineError(op, emulator.ErrNotImplemented)
	}
	return emu.executor, nil
}

// Close releases the engine. The mappings die with it.
func (emu *Emulator) Close() error {
	emu.mu.Lock()
	defer emu.mu.Unlock()
	if emu.closed {
		return nil
	}
	emu.closed = true
	emu.mappings = registry{}
	if err := emu.engine.Close(); err != nil && !errors.Is(err, emulator.ErrClosed) {
		return EngineError("close", err)
	}
	return nil
}
