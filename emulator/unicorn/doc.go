// Package unicorn adapts the Unicorn CPU emulator to the emulator.Emulator
// contract and registers it as the default backend. It requires cgo; without
// it the package is empty and the backend is not registered.
package unicorn
