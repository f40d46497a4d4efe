package loader

import (
	"debug/elf"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wnxd/popcorn"
	"github.com/wnxd/popcorn/emulator"
)

func TestCheckMagic(t *testing.T) {
	if !CheckMagic([]byte{0x7f, 0x45, 0x4c, 0x46}) {
		t.Error("CheckMagic rejected the ELF signature")
	}
	for _, magic := range [][]byte{
		nil,
		{0, 0, 0, 0},
		{0x7f, 0x45, 0x4c},
		{0x7f, 0x45, 0x4c, 0x46, 0x02},
		[]byte("This"),
	} {
		if CheckMagic(magic) {
			t.Errorf("CheckMagic(% x) = true", magic)
		}
	}
	for i := 0; i < 4; i++ {
		for _, delta := range []byte{1, 0x80, 0xff} {
			magic := []byte{0x7f, 0x45, 0x4c, 0x46}
			magic[i] += delta
			if CheckMagic(magic) {
				t.Errorf("CheckMagic(% x) = true", magic)
			}
		}
	}
}

func TestProtFrom(t *testing.T) {
	for _, test := range []struct {
		flags elf.ProgFlag
		want  emulator.MemProt
	}{
		{flags: 0, want: emulator.MEM_PROT_NONE},
		{flags: elf.PF_R, want: emulator.MEM_PROT_READ},
		{flags: elf.PF_W, want: emulator.MEM_PROT_WRITE},
		{flags: elf.PF_X, want: emulator.MEM_PROT_EXEC},
		{flags: elf.PF_R | elf.PF_X, want: emulator.MEM_PROT_READ | emulator.MEM_PROT_EXEC},
		{flags: elf.PF_R | elf.PF_W, want: emulator.MEM_PROT_READ | emulator.MEM_PROT_WRITE},
		{flags: elf.PF_R | elf.PF_W | elf.PF_X, want: emulator.MEM_PROT_ALL},
		{flags: elf.PF_MASKOS | elf.PF_MASKPROC, want: emulator.MEM_PROT_NONE},
		{flags: elf.PF_MASKPROC | elf.PF_W, want: emulator.MEM_PROT_WRITE},
	} {
		if got := ProtFrom(test.flags); got != test.want {
			t.Errorf("ProtFrom(%v) = %v, want %v", test.flags, got, test.want)
		}
	}
}

func TestArchFrom(t *testing.T) {
	arch, err := ArchFrom(elf.EM_X86_64)
	if err != nil {
		t.Fatalf("ArchFrom(EM_X86_64): %v", err)
	}
	if want := (emulator.ArchInfo{Arch: emulator.ARCH_X86, Mode: emulator.MODE_64}); arch != want {
		t.Errorf("ArchFrom(EM_X86_64) = %v, want %v", arch, want)
	}

	for _, m := range []elf.Machine{elf.EM_386, elf.EM_AARCH64, elf.EM_ARM, elf.EM_RISCV, elf.EM_NONE, elf.Machine(0xbeef)} {
		_, err := ArchFrom(m)
		if !errors.Is(err, popcorn.ErrUnsupportedArch) {
			t.Errorf("ArchFrom(%v) = %v, want unsupported architecture", m, err)
			continue
		}
		var e *popcorn.Error
		if !errors.As(err, &e) || e.Value != m.String() {
			t.Errorf("ArchFrom(%v) error %v does not name the machine", m, err)
		}
	}
}

func TestPageMapping(t *testing.T) {
	for _, test := range []struct {
		name       string
		region     Region
		want       popcorn.MemMap
		wantOffset uint64
	}{
		{
			name:   "page aligned",
			region: Region{Addr: 0x400000, Size: 0x20, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_EXEC},
			want:   popcorn.MemMap{Addr: 0x400000, Size: 0x1000, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_EXEC},
		},
		{
			name:       "in page offset",
			region:     Region{Addr: 0x601e10, Size: 0x228, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_WRITE},
			want:       popcorn.MemMap{Addr: 0x601000, Size: 0x2000, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_WRITE},
			wantOffset: 0xe10,
		},
		{
			name:   "exact page multiple gets an extra page",
			region: Region{Addr: 0x1000, Size: 0x1000},
			want:   popcorn.MemMap{Addr: 0x1000, Size: 0x2000},
		},
		{
			name:       "empty segment",
			region:     Region{Addr: 0x2008},
			want:       popcorn.MemMap{Addr: 0x2000, Size: 0x1000},
			wantOffset: 8,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, offset := PageMapping(test.region, 0x1000)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("PageMapping diff (-want +got):\n%s", diff)
			}
			if offset != test.wantOffset {
				t.Errorf("offset = %#x, want %#x", offset, test.wantOffset)
			}
			if offset >= 0x1000 || got.Addr+offset != test.region.Addr {
				t.Errorf("offset %#x does not place %#x inside the first page of %#x", offset, test.region.Addr, got.Addr)
			}
			if got.End() < test.region.Addr+test.region.Size {
				t.Errorf("mapping %v does not cover [%#x, %#x)", got, test.region.Addr, test.region.Addr+test.region.Size)
			}
		})
	}
}

func TestElfRegions(t *testing.T) {
	progs := []*elf.Prog{
		{ProgHeader: elf.ProgHeader{Type: elf.PT_PHDR, Flags: elf.PF_R, Off: 0x40, Vaddr: 0x400040, Filesz: 0x118, Memsz: 0x118, Align: 8}},
		{ProgHeader: elf.ProgHeader{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Off: 0, Vaddr: 0x400000, Filesz: 0x700, Memsz: 0x700, Align: 0x1000}},
		{ProgHeader: elf.ProgHeader{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_W, Off: 0xe10, Vaddr: 0x600e10, Filesz: 0x228, Memsz: 0x230, Align: 0x1000}},
	}
	want := []Region{
		{Kind: REGION_OTHER, Addr: 0x400040, Size: 0x118, Offset: 0x40, Length: 0x118, Align: 8, Prot: emulator.MEM_PROT_READ},
		{Kind: REGION_LOAD, Addr: 0x400000, Size: 0x700, Offset: 0, Length: 0x700, Align: 0x1000, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_EXEC},
		{Kind: REGION_LOAD, Addr: 0x600e10, Size: 0x230, Offset: 0xe10, Length: 0x228, Align: 0x1000, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_WRITE},
	}
	if diff := cmp.Diff(want, elfRegions(progs)); diff != "" {
		t.Errorf("elfRegions diff (-want +got):\n%s", diff)
	}
}
