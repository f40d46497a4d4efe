//go:build unix

package memory

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// allocBacking reserves zero-filled host pages for a guest region.
func allocBacking(size uint64) ([]byte, error) {
	if size > math.MaxInt {
		return nil, fmt.Errorf("region size 0x%x too large", size)
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap 0x%x bytes: %w", size, err)
	}
	return data, nil
}

func freeBacking(data []byte) {
	if len(data) > 0 {
		_ = unix.Munmap(data)
	}
}
