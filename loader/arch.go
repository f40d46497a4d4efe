package loader

import (
	"debug/elf"

	"github.com/wnxd/popcorn"
	"github.com/wnxd/popcorn/emulator"
)

var elfArchs = map[elf.Machine]emulator.ArchInfo{
	elf.EM_X86_64: {Arch: emulator.ARCH_X86, Mode: emulator.MODE_64},
}

// ArchFrom resolves an ELF machine to the engine architecture. Machines
// outside the supported set are rejected, never guessed.
func ArchFrom(machine elf.Machine) (emulator.ArchInfo, error) {
	if arch, ok := elfArchs[machine]; ok {
		return arch, nil
	}
	return emulator.ArchInfo{}, popcorn.UnsupportedArchError(machine.String())
}
