// Package term adapts the real TTY to the core loops: raw-mode
// switching, blocking byte reads, and cell/pixel geometry queries.
// Grounded on the teacher corpus's terminal_host.go (golang.org/x/term
// raw mode + restore) and extended with a golang.org/x/sys/unix
// TIOCGWINSZ ioctl for pixel dimensions, which x/term.GetSize does not
// report.
package term

import (
	"io"

	"github.com/tvid/tvid/internal/geometry"
)

// Terminal is the interface the rest of tvid programs against, so
// render/input/decode stages never import x/term or unix directly
// (spec §6's "raw standard-input/output I/O and TTY mode switching"
// black box).
type Terminal interface {
	io.ReadWriteCloser
	// MakeRaw puts the TTY into raw mode, returning a restore func.
	MakeRaw() (restore func() error, err error)
	// Size returns the current cell and pixel dimensions.
	Size() (geometry.CellSize, geometry.CellSize, error)
}
