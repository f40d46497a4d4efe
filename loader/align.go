package loader

import "golang.org/x/exp/constraints"

// AlignedAddr rounds addr down to a multiple of pageSize.
func AlignedAddr[I constraints.Unsigned](addr, pageSize I) I {
	return addr / pageSize * pageSize
}

// AlignedSize rounds size up to a multiple of pageSize and then adds one
// more page, also when size is already a multiple: AlignedSize(1024, 1024)
// is 2048. Existing address-space layouts depend on the extra page.
func AlignedSize[I constraints.Unsigned](size, pageSize I) I {
	return (size/pageSize + 1) * pageSize
}
