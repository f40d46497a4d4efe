package emulator

import "fmt"

type Arch int

const (
	ARCH_UNKNOWN Arch = iota
	ARCH_ARM
	ARCH_ARM64
	ARCH_X86
)

type Mode int

const (
	MODE_UNKNOWN Mode = iota
	MODE_ARM
	MODE_THUMB
	MODE_16
	MODE_32
	MODE_64
)

// ArchInfo is the instruction set and execution mode an engine is created for.
type ArchInfo struct {
	Arch Arch
	Mode Mode
}

func (a Arch) String() string {
	switch a {
	case ARCH_ARM:
		return "arm"
	case ARCH_ARM64:
		return "arm64"
	case ARCH_X86:
		return "x86"
	}
	return fmt.Sprintf("arch(%d)", int(a))
}

func (m Mode) String() string {
	switch m {
	case MODE_ARM:
		return "arm"
	case MODE_THUMB:
		return "thumb"
	case MODE_16:
		return "16"
	case MODE_32:
		return "32"
	case MODE_64:
		return "64"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (ai ArchInfo) String() string {
	return ai.Arch.String() + "/" + ai.Mode.String()
}

// PointerSize returns the native pointer width in bytes, or 0 if unknown.
func (ai ArchInfo) PointerSize() uint64 {
	switch ai.Mode {
	case MODE_16:
		return 2
	case MODE_32, MODE_ARM, MODE_THUMB:
		if ai.Arch == ARCH_ARM64 {
			return 8
		}
		return 4
	case MODE_64:
		return 8
	}
	return 0
}
