//go:build !unix

package memory

import (
	"fmt"
	"math"
)

func allocBacking(size uint64) ([]byte, error) {
	if size > math.MaxInt {
		return nil, fmt.Errorf("region size 0x%x too large", size)
	}
	return make([]byte, size), nil
}

func freeBacking([]byte) {}
