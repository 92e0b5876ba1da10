//go:build unix

package term

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/tvid/tvid/internal/geometry"
)

// TTY is the concrete Terminal backed by stdin/stdout, raw mode via
// golang.org/x/term, and a TIOCGWINSZ ioctl (golang.org/x/sys/unix)
// for pixel geometry that x/term.GetSize doesn't expose.
type TTY struct {
	in  *os.File
	out *os.File
}

func NewTTY() *TTY {
	return &TTY{in: os.Stdin, out: os.Stdout}
}

func (t *TTY) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t *TTY) Write(p []byte) (int, error) { return t.out.Write(p) }
func (t *TTY) Close() error                { return nil }

func (t *TTY) MakeRaw() (func() error, error) {
	fd := int(t.in.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, old) }, nil
}

func (t *TTY) Size() (geometry.CellSize, geometry.CellSize, error) {
	fd := int(t.out.Fd())
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return geometry.CellSize{}, geometry.CellSize{}, err
	}
	cells := geometry.CellSize{X: int(ws.Col), Y: int(ws.Row)}
	pixels := geometry.CellSize{X: int(ws.Xpixel), Y: int(ws.Ypixel)}
	return cells, pixels, nil
}
