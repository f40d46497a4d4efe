package loader

import (
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/wnxd/popcorn"
)

// Load opens the binary image at path, detects its format and builds an
// Emulator holding its loadable segments. On failure nothing is returned
// but the error.
func Load(path string, opts ...Option) (*popcorn.Emulator, error) {
	file, err := os.Open(path)
	if err != nil {
		glog.Errorf("Failed to open %s: %v", path, err)
		return nil, popcorn.IOError("open", err)
	}
	defer file.Close()
	return LoadFrom(file, opts...)
}

// LoadFrom is Load for an already opened image.
func LoadFrom(src Source, opts ...Option) (*popcorn.Emulator, error) {
	cfg := newConfig(opts)
	magic := make([]byte, MagicSize)
	if _, err := io.ReadFull(src, magic); err != nil {
		glog.Errorf("Failed to read magic: %v", err)
		return nil, popcorn.IOError("read", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		glog.Errorf("Failed to rewind: %v", err)
		return nil, popcorn.IOError("seek", err)
	}
	for _, f := range cfg.Formats {
		if f.Detect(magic) {
			glog.V(1).Infof("detected %s image", f.Name())
			return f.Load(src, cfg)
		}
	}
	return nil, popcorn.UnknownFormatError(magic)
}
