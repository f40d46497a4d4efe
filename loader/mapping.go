package loader

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/golang/glog"
	"github.com/wnxd/popcorn"
)

// PageMapping returns the page-aligned mapping that covers r together with
// the offset of r.Addr inside its first page.
func PageMapping(r Region, pageSize uint64) (popcorn.MemMap, uint64) {
	pageAddr := AlignedAddr(r.Addr, pageSize)
	offset := r.Addr - pageAddr
	return popcorn.MemMap{
		Addr: pageAddr,
		Size: AlignedSize(r.Size+offset, pageSize),
		Prot: r.Prot,
	}, offset
}

var errRegionRange = errors.New("segment exceeds the address space")

// checkRegion rejects regions whose page mapping cannot be computed without
// wrapping around the 64-bit address space.
func checkRegion(r Region, pageSize uint64) error {
	offset := r.Addr - AlignedAddr(r.Addr, pageSize)
	total := r.Size + offset
	ok := r.Addr+r.Size >= r.Addr && total >= r.Size && total/pageSize < math.MaxUint64/pageSize
	if ok {
		m, _ := PageMapping(r, pageSize)
		ok = m.End() > m.Addr
	}
	if !ok {
		return popcorn.ParserError(fmt.Sprintf("segment 0x%x+0x%x", r.Addr, r.Size), errRegionRange)
	}
	return nil
}

// loadRegions maps every loadable region into emu and copies its file
// content from src. It stops at the first failure and leaves the mappings
// committed so far in place.
func loadRegions(emu *popcorn.Emulator, src io.ReadSeeker, regions []Region) error {
	pageSize := emu.PageSize()
	for _, r := range regions {
		if r.Kind != REGION_LOAD {
			continue
		}
		if err := checkRegion(r, pageSize); err != nil {
			glog.Errorf("Failed to place segment %+v: %v", r, err)
			return err
		}
		m, offset := PageMapping(r, pageSize)
		glog.V(1).Infof("segment 0x%x+0x%x (file 0x%x+0x%x) -> %s, page offset 0x%x", r.Addr, r.Size, r.Offset, r.Length, m, offset)
		if err := emu.MemMap(m); err != nil {
			glog.Errorf("Failed to map segment %+v: %v", r, err)
			return err
		}
		data, err := readRegion(src, r)
		if err != nil {
			glog.Errorf("Failed to read segment content %+v: %v", r, err)
			return err
		}
		if err := emu.MemWrite(r.Addr, data); err != nil {
			glog.Errorf("Failed to write segment to emulator %+v: %v", r, err)
			return err
		}
	}
	return nil
}

// readRegion reads exactly r.Length bytes at r.Offset. The limit keeps a
// bogus file size from allocating more than the file can provide.
func readRegion(src io.ReadSeeker, r Region) ([]byte, error) {
	if r.Offset > math.MaxInt64 {
		return nil, popcorn.IOError("seek", fmt.Errorf("offset 0x%x out of range", r.Offset))
	}
	if _, err := src.Seek(int64(r.Offset), io.SeekStart); err != nil {
		return nil, popcorn.IOError("seek", err)
	}
	data, err := io.ReadAll(io.LimitReader(src, int64(min(r.Length, math.MaxInt64))))
	if err != nil {
		return nil, popcorn.IOError("read", err)
	}
	if uint64(len(data)) != r.Length {
		return nil, popcorn.IOError("read", io.ErrUnexpectedEOF)
	}
	return data, nil
}
