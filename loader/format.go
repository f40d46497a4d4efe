package loader

import (
	"io"
	"slices"
	"sync"

	"github.com/wnxd/popcorn"
)

// MagicSize is the number of leading bytes handed to Format.Detect.
const MagicSize = 4

// Source is the opened binary image a Format loads from.
type Source interface {
	io.ReadSeeker
	io.ReaderAt
}

// Format is a binary container format the loader can recognise and load.
type Format interface {
	Name() string
	// Detect reports whether magic, the leading MagicSize bytes of an image,
	// belongs to this format.
	Detect(magic []byte) bool
	// Load builds an Emulator from src, which is positioned at offset 0.
	Load(src Source, cfg *Config) (*popcorn.Emulator, error)
}

var (
	formatMu   sync.RWMutex
	formatList []Format
)

// RegisterFormat appends f to the detection order. It reports false if a
// format with the same name is already registered.
func RegisterFormat(f Format) bool {
	formatMu.Lock()
	defer formatMu.Unlock()
	if slices.ContainsFunc(formatList, func(o Format) bool { return o.Name() == f.Name() }) {
		return false
	}
	formatList = append(formatList, f)
	return true
}

// Formats returns the registered formats in detection order.
func Formats() []Format {
	formatMu.RLock()
	defer formatMu.RUnlock()
	return slices.Clone(formatList)
}
