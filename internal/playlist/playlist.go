// Package playlist manages the ordered list of input URIs and its
// persisted form, playlist.txt: one URI per line, "#" comments (spec
// §6). Hand-rolled for the same reason as internal/config; see
// DESIGN.md.
package playlist

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileName = "playlist.txt"

// Playlist is the ordered, navigable list of input URIs (spec §6, C13).
type Playlist struct {
	mu      sync.Mutex
	uris    []string
	current int
	looping bool
	jumped  bool // set by JumpTo: the next advance stays on current
}

func New() *Playlist {
	return &Playlist{current: 0, looping: true}
}

// NewFromArgs clears any persisted playlist and seeds it from a CLI
// argument list (spec §6: "With inputs: clear persisted playlist and
// set it to the argument list").
func NewFromArgs(uris []string) *Playlist {
	p := New()
	p.uris = append([]string(nil), uris...)
	return p
}

func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tvid"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads a persisted playlist.txt. A missing file yields an empty,
// non-error Playlist.
func Load(path string) (*Playlist, error) {
	p := New()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p.uris = append(p.uris, line)
	}
	if err := sc.Err(); err != nil {
		return p, err
	}
	return p, nil
}

// Save persists the playlist, one URI per line, creating the parent
// directory if needed (spec §6: "persisted on clean exit").
func (p *Playlist) Save(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var sb strings.Builder
	for _, u := range p.uris {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func (p *Playlist) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.uris) == 0
}

func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.uris)
}

func (p *Playlist) SetLooping(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.looping = v
}

// Current returns the URI at the current position, or "" if empty.
func (p *Playlist) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.uris) == 0 {
		return "", false
	}
	return p.uris[p.current], true
}

func (p *Playlist) CurrentIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Next advances to the next entry, wrapping if looping is enabled.
// Returns false if there is no next entry (empty list, or end reached
// with looping disabled).
func (p *Playlist) Next() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advance(1)
}

func (p *Playlist) Prev() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advance(-1)
}

func (p *Playlist) advance(delta int) (string, bool) {
	n := len(p.uris)
	if n == 0 {
		return "", false
	}
	if p.jumped {
		p.jumped = false
		return p.uris[p.current], true
	}
	next := p.current + delta
	if next < 0 || next >= n {
		if !p.looping {
			return "", false
		}
		next = ((next % n) + n) % n
	}
	p.current = next
	return p.uris[p.current], true
}

// JumpTo forces the current position to index (spec §6: "force next
// index"), used by the playlist-view select action. The following Next
// or Prev returns that entry instead of moving past it.
func (p *Playlist) JumpTo(index int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.uris) {
		return "", false
	}
	p.current = index
	p.jumped = true
	return p.uris[index], true
}

// Entries returns a snapshot of the URI list for UI display.
func (p *Playlist) Entries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.uris))
	copy(out, p.uris)
	return out
}
