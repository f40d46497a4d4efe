package loader

import (
	"bytes"
	"debug/elf"

	"github.com/golang/glog"
	"github.com/wnxd/popcorn"
	"github.com/wnxd/popcorn/emulator"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// ELF is the Executable and Linkable Format loader.
var ELF Format = elfFormat{}

var _ = RegisterFormat(ELF)

type elfFormat struct{}

// CheckMagic reports whether magic is exactly the four-byte ELF signature.
func CheckMagic(magic []byte) bool {
	return bytes.Equal(magic, elfMagic)
}

// ProtFrom translates ELF segment flags. Only PF_R, PF_W and PF_X are
// honoured.
func ProtFrom(flags elf.ProgFlag) emulator.MemProt {
	prot := emulator.MEM_PROT_NONE
	if flags&elf.PF_R != 0 {
		prot |= emulator.MEM_PROT_READ
	}
	if flags&elf.PF_W != 0 {
		prot |= emulator.MEM_PROT_WRITE
	}
	if flags&elf.PF_X != 0 {
		prot |= emulator.MEM_PROT_EXEC
	}
	return prot
}

func (elfFormat) Name() string {
	return "elf"
}

func (elfFormat) Detect(magic []byte) bool {
	return CheckMagic(magic)
}

func (elfFormat) Load(src Source, cfg *Config) (*popcorn.Emulator, error) {
	f, err := elf.NewFile(src)
	if err != nil {
		glog.Errorf("Failed to parse ELF stream: %v", err)
		return nil, popcorn.ParserError("elf", err)
	}
	arch, err := ArchFrom(f.Machine)
	if err != nil {
		glog.Errorf("Failed to resolve architecture: %v", err)
		return nil, err
	}
	emu, err := cfg.NewEmulator(arch)
	if err != nil {
		glog.Errorf("Failed to create emulator: %v", err)
		return nil, err
	}
	if err := loadRegions(emu, src, elfRegions(f.Progs)); err != nil {
		emu.Close()
		return nil, err
	}
	return emu, nil
}

func elfRegions(progs []*elf.Prog) []Region {
	regions := make([]Region, 0, len(progs))
	for _, p := range progs {
		kind := REGION_OTHER
		if p.Type == elf.PT_LOAD {
			kind = REGION_LOAD
		}
		regions = append(regions, Region{
			Kind:   kind,
			Addr:   p.Vaddr,
			Size:   p.Memsz,
			Offset: p.Off,
			Length: p.Filesz,
			Align:  p.Align,
			Prot:   ProtFrom(p.Flags),
		})
	}
	return regions
}
