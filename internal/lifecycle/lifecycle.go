// Package lifecycle implements the process-wide quit flag and the panic
// hook described in spec §5 ("Cancellation") and §7 ("panic in any
// thread (caught by a global hook ... flips the quit flag, and returns
// to normal shutdown")). Grounded on the teacher's context.CancelFunc
// idiom (audio/player.go, audio/ffmpegbase.go), generalised to a single
// shared flag plus condvar-style broadcast so every blocking loop in the
// core can re-check it on wake without needing its own context.
package lifecycle

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/tvid/tvid/internal/cell"
	"github.com/tvid/tvid/internal/errlog"
)

// Controller is the shared quit flag plus a broadcast channel closed
// exactly once when quitting, so any blocking select can wait on it.
type Controller struct {
	quit   atomic.Bool
	once   sync.Once
	doneCh chan struct{}
	ring   *errlog.Ring
}

func New(ring *errlog.Ring) *Controller {
	return &Controller{doneCh: make(chan struct{}), ring: ring}
}

// Quitting reports whether shutdown has been requested.
func (c *Controller) Quitting() bool { return c.quit.Load() }

// RequestQuit flips the flag and closes Done(); idempotent.
func (c *Controller) RequestQuit() {
	c.quit.Store(true)
	c.once.Do(func() { close(c.doneCh) })
}

// Done returns a channel closed once RequestQuit has been called, for use
// in select statements alongside condvar/timeout waits.
func (c *Controller) Done() <-chan struct{} { return c.doneCh }

// Supervise runs fn in the current goroutine, recovering any panic: the
// message and the panicking goroutine's stack are pushed to the error
// ring, the quit flag is raised, and control returns to the caller so
// normal shutdown can proceed (spec §7).
func (c *Controller) Supervise(component string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.ring.Push(component+": panic: "+formatPanic(r)+"\n"+string(debug.Stack()), cell.Color{}, cell.Color{})
			c.RequestQuit()
		}
	}()
	fn()
}

func formatPanic(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
