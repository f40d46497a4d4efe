package loader

import (
	"github.com/wnxd/popcorn"
	"github.com/wnxd/popcorn/emulator"
)

// Config collects the settings of one Load call.
type Config struct {
	// Backend names the registered engine backend, emulator.DefaultBackend
	// if empty.
	Backend string
	// NewEngine, if set, creates the engine instead of the backend registry.
	NewEngine emulator.Ctor
	// Formats are tried in order; the registered formats if nil.
	Formats []Format
}

type Option func(*Config)

// WithBackend selects the engine backend by its registered name.
func WithBackend(name string) Option {
	return func(cfg *Config) {
		cfg.Backend = name
	}
}

// WithEngine creates engines with ctor, bypassing the backend registry.
func WithEngine(ctor emulator.Ctor) Option {
	return func(cfg *Config) {
		cfg.NewEngine = ctor
	}
}

// WithFormats restricts detection to formats, in the given order. With no
// arguments no format is recognised.
func WithFormats(formats ...Format) Option {
	return func(cfg *Config) {
		cfg.Formats = append([]Format{}, formats...)
	}
}

func newConfig(opts []Option) *Config {
	cfg := new(Config)
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Formats == nil {
		cfg.Formats = Formats()
	}
	return cfg
}

// NewEmulator creates an Emulator for arch with the configured engine.
func (cfg *Config) NewEmulator(arch emulator.ArchInfo) (*popcorn.Emulator, error) {
	if cfg.NewEngine == nil {
		return popcorn.New(arch, cfg.Backend)
	}
	engine, err := cfg.NewEngine(arch)
	if err != nil {
		return nil, popcorn.EngineError("create", err)
	}
	emu, err := popcorn.NewWithEngine(arch, engine)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return emu, nil
}
