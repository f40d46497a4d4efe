package loader

import "testing"

func TestAlignedSize(t *testing.T) {
	for _, test := range []struct {
		size, page, want uint64
	}{
		{size: 1024, page: 1024, want: 2048},
		{size: 1023, page: 1024, want: 1024},
		{size: 0, page: 1024, want: 1024},
		{size: 1025, page: 1024, want: 2048},
		{size: 0x1010, page: 0x1000, want: 0x2000},
	} {
		if got := AlignedSize(test.size, test.page); got != test.want {
			t.Errorf("AlignedSize(%d, %d) = %d, want %d", test.size, test.page, got, test.want)
		}
	}
}

func TestAlignedAddr(t *testing.T) {
	for _, test := range []struct {
		addr, page, want uint64
	}{
		{addr: 1024, page: 1024, want: 1024},
		{addr: 1023, page: 1024, want: 0},
		{addr: 0, page: 1024, want: 0},
		{addr: 1025, page: 1024, want: 1024},
		{addr: 0x601e10, page: 0x1000, want: 0x601000},
	} {
		if got := AlignedAddr(test.addr, test.page); got != test.want {
			t.Errorf("AlignedAddr(%d, %d) = %d, want %d", test.addr, test.page, got, test.want)
		}
	}
}

func TestAlignedAddrProperties(t *testing.T) {
	addrs := []uint64{1, 7, 0xfff, 0x1000, 0x1001, 0x400123, 1<<64 - 1}
	pages := []uint64{1, 3, 0x200, 0x1000, 0x10000}
	for _, a := range addrs {
		for _, p := range pages {
			got := AlignedAddr(a, p)
			if got > a {
				t.Errorf("AlignedAddr(%#x, %#x) = %#x, above addr", a, p, got)
			}
			if got%p != 0 {
				t.Errorf("AlignedAddr(%#x, %#x) = %#x, not a multiple of the page", a, p, got)
			}
			if again := AlignedAddr(got, p); again != got {
				t.Errorf("AlignedAddr not idempotent for (%#x, %#x): %#x then %#x", a, p, got, again)
			}
		}
	}
}

func TestAlignedGeneric(t *testing.T) {
	if got := AlignedAddr[uint32](0x1234, 0x100); got != 0x1200 {
		t.Errorf("AlignedAddr[uint32] = %#x, want 0x1200", got)
	}
	if got := AlignedSize[uint](0x100, 0x100); got != 0x200 {
		t.Errorf("AlignedSize[uint] = %#x, want 0x200", got)
	}
}
