package input

import (
	"strconv"
	"strings"
	"time"
)

// escAmbiguityWindow is spec §4.10's "ESC followed by optional byte
// within 20ms" disambiguation window.
const escAmbiguityWindow = 20 * time.Millisecond

// Decoder is the stateful escape-sequence parser (spec §4.10, C12). Feed
// bytes as they arrive from stdin (or an SSH session's mailbox); the
// decoder dispatches through Registries as it recognizes complete
// events, buffering a trailing bare ESC until either more bytes arrive
// or escAmbiguityWindow elapses.
type Decoder struct {
	Registries *Registries
	mouse      mouseState

	pendingEsc     bool
	pendingEscTime time.Time
	parked         []byte // the not-yet-decidable bytes starting at the parked ESC
}

func NewDecoder(r *Registries) *Decoder {
	if r == nil {
		r = NewRegistries()
	}
	return &Decoder{Registries: r}
}

// Feed parses buf, a chunk of freshly-read input bytes.
func (d *Decoder) Feed(buf []byte) {
	i := 0
	if d.pendingEsc {
		d.pendingEsc = false
		pending := d.parked
		d.parked = nil
		if len(pending) == 1 && (time.Since(d.pendingEscTime) > escAmbiguityWindow || len(buf) == 0) {
			d.emitEscapeAlone()
			pending = nil
		}
		buf = append(pending, buf...)
	}

	for i < len(buf) {
		b := buf[i]
		if b == 0x1b {
			consumed := d.handleEscape(buf[i:])
			if consumed == 0 {
				// Not enough bytes yet to disambiguate; park it.
				d.pendingEsc = true
				d.pendingEscTime = time.Now()
				d.parked = append([]byte(nil), buf[i:]...)
				return
			}
			i += consumed
			continue
		}
		d.handlePlain(b)
		i++
	}
}

func (d *Decoder) emitEscapeAlone() {
	d.Registries.Keypress.Dispatch(Key{Kind: KindEscape})
}

// handlePlain maps a single non-ESC byte into a Key (spec §4.10: "Plain
// ASCII, mapping lower/upper/ctrl into Key variants").
func (d *Decoder) handlePlain(b byte) {
	var k Key
	switch {
	case b >= 'a' && b <= 'z':
		k = Key{Kind: KindChar, Letter: rune(b)}
	case b >= 'A' && b <= 'Z':
		k = Key{Kind: KindChar, Letter: rune(b + 32), Mod: ModShift}
	case b >= 1 && b <= 26: // Ctrl+letter
		k = Key{Kind: KindChar, Letter: rune(b + 'a' - 1), Mod: ModCtrl}
	default:
		d.Registries.InputText.Dispatch(rune(b))
		return
	}
	if !d.Registries.Keypress.Dispatch(k) {
		d.Registries.InputText.Dispatch(k.Letter)
	}
}

// handleEscape parses an ESC-prefixed sequence starting at buf[0]=0x1b.
// Returns the number of bytes consumed, or 0 if buf doesn't yet contain
// enough to decide (caller parks it as pendingEsc).
func (d *Decoder) handleEscape(buf []byte) int {
	if len(buf) < 2 {
		return 0
	}
	if buf[1] != '[' {
		// Alt/AltShift/CtrlAlt+letter: ESC followed directly by a char.
		return d.handleAltChar(buf)
	}
	if len(buf) < 3 {
		return 0
	}
	return d.handleCSI(buf)
}

func (d *Decoder) handleAltChar(buf []byte) int {
	b := buf[1]
	mod := ModAlt
	var letter rune
	switch {
	case b >= 'a' && b <= 'z':
		letter = rune(b)
	case b >= 'A' && b <= 'Z':
		letter = rune(b + 32)
		mod |= ModShift
	case b >= 1 && b <= 26:
		letter = rune(b + 'a' - 1)
		mod |= ModCtrl
	default:
		d.Registries.Keypress.Dispatch(Key{Kind: KindEscape})
		return 1
	}
	d.Registries.Keypress.Dispatch(Key{Kind: KindChar, Letter: letter, Mod: mod})
	return 2
}

// handleCSI parses "ESC [ ..." sequences: simple letter-terminated
// arrows/home/end, numeric "~"-terminated keys/paste, and SGR/legacy
// mouse reports (spec §4.10).
func (d *Decoder) handleCSI(buf []byte) int {
	// Simple single-letter forms: ESC [ A/B/C/D/H/F/Z
	switch buf[2] {
	case 'A':
		d.dispatchNamed(NamedUp)
		return 3
	case 'B':
		d.dispatchNamed(NamedDown)
		return 3
	case 'C':
		d.dispatchNamed(NamedRight)
		return 3
	case 'D':
		d.dispatchNamed(NamedLeft)
		return 3
	case 'H':
		d.dispatchNamed(NamedHome)
		return 3
	case 'F':
		d.dispatchNamed(NamedEnd)
		return 3
	case 'Z':
		d.dispatchNamed(NamedShiftTab)
		return 3
	case '<':
		return d.handleSGRMouse(buf)
	case 'M':
		return d.handleLegacyMouse(buf)
	}

	// Numeric forms: ESC [ N ~  or paste begin/end ESC [ 200~ / 201~
	end := 2
	for end < len(buf) && (buf[end] >= '0' && buf[end] <= '9') {
		end++
	}
	if end == 2 || end >= len(buf) || buf[end] != '~' {
		return 3 // unrecognized; consume the introducer conservatively
	}
	n, _ := strconv.Atoi(string(buf[2:end]))
	consumed := end + 1

	if n == 200 {
		return d.handleBracketedPaste(buf, consumed)
	}
	if n == 201 {
		return consumed // stray paste-end with no matching begin
	}
	d.dispatchNumbered(n)
	return consumed
}

func (d *Decoder) dispatchNamed(n NamedKey) {
	d.Registries.Keypress.Dispatch(Key{Kind: KindNamed, Code: n})
}

func (d *Decoder) dispatchNumbered(n int) {
	named, ok := numberedKey[n]
	if !ok {
		return
	}
	d.dispatchNamed(named)
}

var numberedKey = map[int]NamedKey{
	1: NamedHome, 2: NamedInsert, 3: NamedDelete, 4: NamedEnd,
	5: NamedPageUp, 6: NamedPageDown,
	11: NamedF1, 12: NamedF2, 13: NamedF3, 14: NamedF4, 15: NamedF5,
	17: NamedF6, 18: NamedF7, 19: NamedF8, 20: NamedF9, 21: NamedF10,
	23: NamedF11, 24: NamedF12,
}

const pasteEndMarker = "\x1b[201~"

// handleBracketedPaste consumes up to and including the matching
// ESC[201~ terminator, dispatching the body as one paste event (spec
// §8 scenario 6). Returns 0 (parks as pending) if the terminator hasn't
// arrived yet.
func (d *Decoder) handleBracketedPaste(buf []byte, bodyStart int) int {
	rest := string(buf[bodyStart:])
	idx := strings.Index(rest, pasteEndMarker)
	if idx < 0 {
		return 0
	}
	body := rest[:idx]
	d.Registries.Paste.Dispatch(body)
	return bodyStart + idx + len(pasteEndMarker)
}

// handleSGRMouse parses "ESC [ < b ; x ; y M/m" (spec §4.10).
func (d *Decoder) handleSGRMouse(buf []byte) int {
	rest := string(buf[3:])
	end := strings.IndexAny(rest, "Mm")
	if end < 0 {
		return 0
	}
	fields := strings.SplitN(rest[:end], ";", 3)
	if len(fields) != 3 {
		return 3 + end + 1
	}
	b, _ := strconv.Atoi(fields[0])
	x, _ := strconv.Atoi(fields[1])
	y, _ := strconv.Atoi(fields[2])
	pressed := rest[end] == 'M'

	button, mod, _, isMotion, isWheel := decodeSGRButtonByte(b)
	if isMotion && !isWheel {
		button = MouseMove
	}
	d.emitMouseTransition(button, x-1, y-1, mod, pressed)
	return 3 + end + 1
}

// handleLegacyMouse parses "ESC [ M b x y" (spec §4.10), each of b,x,y
// one byte offset by 32.
func (d *Decoder) handleLegacyMouse(buf []byte) int {
	if len(buf) < 6 {
		return 0
	}
	b := int(buf[3]) - 32
	x := int(buf[4]) - 32 - 1
	y := int(buf[5]) - 32 - 1
	button, mod, _, isMotion, isWheel := decodeSGRButtonByte(b)
	if isMotion && !isWheel {
		button = MouseMove
	}
	d.emitMouseTransition(button, x, y, mod, true)
	return 6
}

func (d *Decoder) emitMouseTransition(button MouseButton, x, y int, mod Modifier, pressed bool) {
	var idx int
	switch button {
	case MouseLeft:
		idx = 0
	case MouseMiddle:
		idx = 1
	case MouseRight:
		idx = 2
	default:
		d.Registries.Mouse.Dispatch(Mouse{Button: button, X: x, Y: y, Mod: mod, Pressed: pressed})
		return
	}
	if d.mouse.down[idx] == pressed {
		return // not a transition
	}
	d.mouse.down[idx] = pressed
	d.Registries.Mouse.Dispatch(Mouse{Button: button, X: x, Y: y, Mod: mod, Pressed: pressed})
}
