// Package subtitle implements the subtitle overlay (spec §4.7, C8):
// ingests plain-text and ASS dialogue lines, time-filters the active
// set, and hands the render loop what to draw at the bottom of the
// grid. Grounded on the teacher's renderer.go overlay-composition shape
// and on original_source/ for the exact ASS comma-split grammar
// (SPEC_FULL.md §2.1: hand-rolled, no ASS parser appears anywhere in the
// retrieved corpus).
package subtitle

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// linger is the extra time an entry remains visible after its end, for
// fade-out (spec §3 "Subtitle entry").
const linger = 500 * time.Millisecond

// Entry is one subtitle line (spec §3).
type Entry struct {
	Start, End  time.Duration
	Text        string
	Layer       int
	Style       string
	DisplayTime time.Duration
	displayed   bool
}

// IsOpen reports whether this entry has not yet been closed by a
// subsequent push (spec §3: "an entry with end == 0 is open").
func (e *Entry) IsOpen() bool { return e.End == 0 }

// Store is the ordered subtitle queue (spec §3/§4.7); safe for
// concurrent use via a plain mutex (spec §5: "Subtitle queue ... plain
// mutex; no nested locks").
type Store struct {
	mu      sync.Mutex
	entries []*Entry
}

func New() *Store { return &Store{} }

// PushText appends a plain-text entry, closing whatever was previously
// open the same way PushASS does (spec §4.7: "Both push into an ordered
// queue").
func (s *Store) PushText(start, end time.Duration, text string, now time.Duration) {
	s.push(&Entry{Start: start, End: end, Text: text}, now)
}

// PushASSFields builds an Entry from the already-split fields of an ASS
// dialogue line; it does not push it. ParseASSDialogue does the
// splitting, and PushASS pushes the resulting Entry.
func PushASSFields(layer int, start, end time.Duration, style, text string) *Entry {
	return &Entry{Layer: layer, Start: start, End: end, Style: style, Text: text}
}

func (s *Store) PushASS(e *Entry, now time.Duration) {
	s.push(e, now)
}

// PushNothing closes any currently-open entry without adding a new one
// (spec §4.4's "nothing marker", §4.7's "or a nothing marker").
func (s *Store) PushNothing(now time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeOpenLocked(now)
}

func (s *Store) push(e *Entry, now time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeOpenLocked(now)
	s.entries = append(s.entries, e)
}

// closeOpenLocked sets end = now on any open entry (spec §4.7: "on each
// new push (or nothing marker) their end is set to the current audio-
// clock time if linger > 0, else they are dropped").
func (s *Store) closeOpenLocked(now time.Duration) {
	if linger <= 0 {
		filtered := s.entries[:0]
		for _, e := range s.entries {
			if e.IsOpen() {
				continue
			}
			filtered = append(filtered, e)
		}
		s.entries = filtered
		return
	}
	for _, e := range s.entries {
		if e.IsOpen() {
			e.End = now
		}
	}
}

// Active returns the entries visible at time t: evicts anything whose
// end+linger has passed, stamps display_time on first observation, and
// returns live entries first, then by descending end (spec §4.7).
func (s *Store) Active(t time.Duration) []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var visible []*Entry
	for _, e := range s.entries {
		if !e.IsOpen() && e.End+linger <= t {
			continue // evicted
		}
		kept = append(kept, e)
		if e.IsOpen() || (e.Start <= t && t <= e.End+linger) {
			if !e.displayed {
				e.DisplayTime = t
				e.displayed = true
			}
			visible = append(visible, e)
		}
	}
	s.entries = kept

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.IsOpen() != b.IsOpen() {
			return a.IsOpen() // live first
		}
		return a.End > b.End // then descending end
	})
	return visible
}

// FadeIn is k_in = clamp((t - display_time - 50*charIndex)/200, 0, 1),
// the per-character fade-in factor (spec §4.7).
func FadeIn(t, displayTime time.Duration, charIndex int) float64 {
	offset := t - displayTime - time.Duration(charIndex)*50*time.Millisecond
	return clamp01(float64(offset) / float64(200*time.Millisecond))
}

// FadeOut is k_out = clamp((t-end)/500, 0, 1), zero while the entry is
// still live (spec §4.7).
func FadeOut(t time.Duration, e *Entry) float64 {
	if e.IsOpen() {
		return 0
	}
	return clamp01(float64(t-e.End) / float64(500*time.Millisecond))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseASSDialogue splits an ASS "Dialogue:" payload on the first nine
// commas (spec §4.7) and builds an Entry from the fields; times are
// expected as ASS "H:MM:SS.cc" timestamps.
func ParseASSDialogue(payload string) (*Entry, bool) {
	fields := splitN(payload, ',', 10)
	if len(fields) < 10 {
		return nil, false
	}
	layer, _ := strconv.Atoi(strings.TrimSpace(fields[0]))
	start, okS := parseASSTime(fields[1])
	end, okE := parseASSTime(fields[2])
	if !okS || !okE {
		return nil, false
	}
	return &Entry{
		Layer: layer,
		Start: start,
		End:   end,
		Style: strings.TrimSpace(fields[3]),
		Text:  fields[9],
	}, true
}

// splitN splits s on sep up to n-1 times, leaving the remainder (which
// may itself contain sep) as the final field.
func splitN(s string, sep byte, n int) []string {
	var out []string
	for len(out) < n-1 {
		idx := strings.IndexByte(s, sep)
		if idx < 0 {
			break
		}
		out = append(out, s[:idx])
		s = s[idx+1:]
	}
	out = append(out, s)
	return out
}

func parseASSTime(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	total := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec*float64(time.Second))
	return total, true
}
