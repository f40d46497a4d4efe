package loader

import (
	"github.com/wnxd/popcorn/emulator"
)

type RegionKind int

const (
	REGION_OTHER RegionKind = iota
	REGION_LOAD
)

// Region describes one segment of a binary image: Size bytes of guest memory
// at Addr, the first Length of which come from the image at Offset.
type Region struct {
	Kind          RegionKind
	Addr, Size    uint64
	Offset        uint64
	Length, Align uint64
	Prot          emulator.MemProt
}
