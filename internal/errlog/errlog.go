// Package errlog implements the bounded, timestamped error ring buffer
// described in spec §7 ("each thread has a local error-logging channel
// that pushes timestamped entries ... into a bounded ring buffer; entries
// older than 5s are evicted"), grounded on original_source/src/logging.rs's
// TTL-eviction design. It also provides an io.Writer shim so the
// charmbracelet/log logger used across the core (SPEC_FULL.md §1.1) can
// feed the same ring that gets replayed to stderr after the TTY is
// restored.
package errlog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tvid/tvid/internal/cell"
)

const ttl = 5 * time.Second

// Entry is one log line, optionally tinted for the (future) on-screen
// error toast; FG/BG default to the zero Color when unset.
type Entry struct {
	At      time.Time
	FG, BG  cell.Color
	Message string
}

// Ring is a bounded, time-evicting log buffer; safe for concurrent use.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Ring { return &Ring{} }

// Push appends msg with the current time, then evicts anything older
// than ttl.
func (r *Ring) Push(msg string, fg, bg cell.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.entries = append(r.entries, Entry{At: now, FG: fg, BG: bg, Message: msg})
	r.evictLocked(now)
}

func (r *Ring) evictLocked(now time.Time) {
	i := 0
	for i < len(r.entries) && now.Sub(r.entries[i].At) > ttl {
		i++
	}
	if i > 0 {
		r.entries = append([]Entry{}, r.entries[i:]...)
	}
}

// Snapshot returns a copy of all currently-retained entries.
func (r *Ring) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Flush writes every retained entry to stderr, in order, for the
// post-shutdown diagnostic dump (spec §7: "On final shutdown, remaining
// entries are written to the restored standard error").
func (r *Ring) Flush() {
	for _, e := range r.Snapshot() {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", e.At.Format(time.RFC3339), e.Message)
	}
}

// Writer adapts Ring to io.Writer so a structured logger can tee into it
// without every call site needing to know about the ring.
type Writer struct{ Ring *Ring }

func (w Writer) Write(p []byte) (int, error) {
	w.Ring.Push(string(p), cell.Color{}, cell.Color{})
	return len(p), nil
}
